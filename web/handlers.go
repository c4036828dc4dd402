// ABOUTME: HTTP handlers for submissions, nonces, login checks and record lookups
// ABOUTME: Accepts plain and Elementor-style submission payloads
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

// CheckUserLoginAction is the AJAX action name the proposal form script posts.
const CheckUserLoginAction = "wfs_onboarding_check_user_login"

const maxBodyBytes = 1 << 20

// submissionPayload covers {form_name, fields:{id:value}} and the Elementor webhook
// shape {form:{name}, fields:{id:{value}}}.
type submissionPayload struct {
	FormName string `json:"form_name"`
	Form     struct {
		Name string `json:"name"`
	} `json:"form"`
	Fields map[string]json.RawMessage `json:"fields"`
}

func decodeSubmission(r io.Reader) (models.Submission, error) {
	var p submissionPayload
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	if err := dec.Decode(&p); err != nil {
		return models.Submission{}, fmt.Errorf("invalid body: %w", err)
	}

	name := p.FormName
	if name == "" {
		name = p.Form.Name
	}
	if strings.TrimSpace(name) == "" {
		return models.Submission{}, errors.New("form name is required")
	}

	fields := make(map[string]string, len(p.Fields))
	for id, raw := range p.Fields {
		v, err := fieldValue(raw)
		if err != nil {
			return models.Submission{}, fmt.Errorf("field %s: %w", id, err)
		}
		fields[id] = v
	}
	return models.Submission{FormName: name, Fields: fields}, nil
}

// fieldValue reads a field given either as a scalar or as an object with a value key.
func fieldValue(raw json.RawMessage) (string, error) {
	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return "", err
		}
		raw = wrapped.Value
	}
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch v.(type) {
	case float64, bool:
		return strings.Trim(string(raw), " "), nil
	default:
		return "", fmt.Errorf("unsupported value %s", raw)
	}
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.reconciler.Handle(r.Context(), sub)
	if err != nil {
		s.logger.Warn("submission rejected", zap.String("form", sub.FormName), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNonce(w http.ResponseWriter, _ *http.Request) {
	nonce, err := s.nonces.Issue(CheckUserLoginAction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue nonce")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"nonce":    nonce,
		"ajax_url": s.siteURL + "/ajax/check-user-login",
	})
}

type ajaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (s *Server) handleCheckUserLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeAjaxRaw(w, http.StatusBadRequest, "0")
		return
	}
	if r.PostForm.Get("action") != CheckUserLoginAction {
		writeAjaxRaw(w, http.StatusBadRequest, "0")
		return
	}
	if err := s.nonces.Verify(r.PostForm.Get("nonce"), CheckUserLoginAction); err != nil {
		writeAjaxRaw(w, http.StatusForbidden, "-1")
		return
	}

	id, ok, err := s.directory.CheckLogin(r.Context(), r.PostForm.Get("user_login"))
	if err != nil {
		s.logger.Error("login check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ajaxResponse{Success: false, Data: false})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, ajaxResponse{Success: false, Data: false})
		return
	}
	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: id})
}

func writeAjaxRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	contacts, err := s.directory.Contacts(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	clients, err := s.directory.Clients(r.Context(), title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}
