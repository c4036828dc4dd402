// ABOUTME: HTTP server for form webhooks and the user lookup AJAX endpoint
// ABOUTME: chi router with request logging, recovery and graceful shutdown
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

// Reconciler handles an inbound form submission.
type Reconciler interface {
	Handle(ctx context.Context, s models.Submission) (*models.Result, error)
}

// Directory serves read-only lookups.
type Directory interface {
	CheckLogin(ctx context.Context, login string) (int64, bool, error)
	Contacts(ctx context.Context, email string) ([]models.Contact, error)
	Clients(ctx context.Context, title string) ([]models.Client, error)
}

type Server struct {
	reconciler Reconciler
	directory  Directory
	nonces     *Nonces
	siteURL    string
	logger     *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

func NewServer(reconciler Reconciler, directory Directory, nonces *Nonces, siteURL string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		reconciler: reconciler,
		directory:  directory,
		nonces:     nonces,
		siteURL:    strings.TrimRight(siteURL, "/"),
		logger:     logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.handleHealth)

	r.Post("/forms/submissions", s.handleSubmission)

	r.Get("/ajax/nonce", s.handleNonce)
	r.Post("/ajax/check-user-login", s.handleCheckUserLogin)

	r.Get("/contacts", s.handleContacts)
	r.Get("/clients", s.handleClients)

	return r
}

// Start listens on addr and serves in the background until Shutdown.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("http server listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
