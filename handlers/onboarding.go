// ABOUTME: Onboarding MCP tool handlers
// ABOUTME: Implements submit_form, check_user_login, find_contacts and find_clients tools
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/whitefoxstudios/onboarding/models"
)

// Reconciler handles a form submission.
type Reconciler interface {
	Handle(ctx context.Context, s models.Submission) (*models.Result, error)
}

// Directory serves read-only lookups.
type Directory interface {
	CheckLogin(ctx context.Context, login string) (int64, bool, error)
	Contacts(ctx context.Context, email string) ([]models.Contact, error)
	Clients(ctx context.Context, title string) ([]models.Client, error)
}

type OnboardingHandlers struct {
	reconciler Reconciler
	directory  Directory
}

func NewOnboardingHandlers(reconciler Reconciler, directory Directory) *OnboardingHandlers {
	return &OnboardingHandlers{reconciler: reconciler, directory: directory}
}

type SubmitFormInput struct {
	FormName string            `json:"form_name" jsonschema:"Form name: Billing Contact or Proposal Agreement (required)"`
	Fields   map[string]string `json:"fields" jsonschema:"Submitted field values keyed by field id"`
}

type IdentitySummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Created  bool   `json:"created"`
	Notified bool   `json:"notified"`
}

type SubmitFormOutput struct {
	SubmissionID string           `json:"submission_id,omitempty"`
	Form         string           `json:"form"`
	User         *IdentitySummary `json:"user,omitempty"`
	Contacts     []int64          `json:"contacts"`
	Clients      []int64          `json:"clients"`
	ProposalID   int64            `json:"proposal_id,omitempty"`
}

func (h *OnboardingHandlers) SubmitForm(ctx context.Context, _ *mcp.CallToolRequest, input SubmitFormInput) (*mcp.CallToolResult, SubmitFormOutput, error) {
	if strings.TrimSpace(input.FormName) == "" {
		return nil, SubmitFormOutput{}, fmt.Errorf("form_name is required")
	}

	result, err := h.reconciler.Handle(ctx, models.Submission{FormName: input.FormName, Fields: input.Fields})
	if err != nil {
		return nil, SubmitFormOutput{}, fmt.Errorf("failed to reconcile submission: %w", err)
	}
	return nil, summarize(result), nil
}

func summarize(result *models.Result) SubmitFormOutput {
	out := SubmitFormOutput{
		SubmissionID: result.SubmissionID,
		Form:         result.Form,
		Contacts:     []int64{},
		Clients:      []int64{},
	}

	var user *models.IdentityOutcome
	switch {
	case result.Billing != nil:
		user = result.Billing.User
		if result.Billing.Contact != nil {
			out.Contacts = append(out.Contacts, result.Billing.Contact.ID)
		}
		out.Contacts = append(out.Contacts, result.Billing.Tagged...)
	case result.Signee != nil:
		user = result.Signee.User
		out.Contacts = append(out.Contacts, result.Signee.Contacts...)
	}
	if user != nil && user.Identity != nil {
		out.User = &IdentitySummary{
			ID:       user.Identity.ID,
			Email:    user.Identity.Email,
			Created:  user.Created,
			Notified: user.Notified,
		}
	}

	for _, c := range result.Clients {
		out.Clients = append(out.Clients, c.ID)
	}
	if result.Proposal != nil && result.Proposal.Post != nil {
		out.ProposalID = result.Proposal.Post.ID
	}
	return out
}

type CheckUserLoginInput struct {
	UserLogin string `json:"user_login" jsonschema:"Login to look up (required)"`
}

type CheckUserLoginOutput struct {
	Exists bool  `json:"exists"`
	UserID int64 `json:"user_id,omitempty"`
}

func (h *OnboardingHandlers) CheckUserLogin(ctx context.Context, _ *mcp.CallToolRequest, input CheckUserLoginInput) (*mcp.CallToolResult, CheckUserLoginOutput, error) {
	if strings.TrimSpace(input.UserLogin) == "" {
		return nil, CheckUserLoginOutput{}, fmt.Errorf("user_login is required")
	}
	id, ok, err := h.directory.CheckLogin(ctx, input.UserLogin)
	if err != nil {
		return nil, CheckUserLoginOutput{}, err
	}
	return nil, CheckUserLoginOutput{Exists: ok, UserID: id}, nil
}

type FindContactsInput struct {
	Email string `json:"email" jsonschema:"Contact email to search for (required)"`
}

type ContactOutput struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Company  string   `json:"company,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Total    *float64 `json:"total,omitempty"`
	Deposit  *float64 `json:"deposit,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	AuthorID int64    `json:"author_id,omitempty"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *OnboardingHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, FindContactsOutput{}, fmt.Errorf("email is required")
	}
	contacts, err := h.directory.Contacts(ctx, input.Email)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	out := FindContactsOutput{Contacts: make([]ContactOutput, 0, len(contacts))}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, ContactOutput{
			ID:       c.ID,
			Name:     c.Title,
			Email:    c.Email,
			Company:  c.Company,
			Domain:   c.Domain,
			Phone:    c.Phone,
			Total:    c.Total,
			Deposit:  c.Deposit,
			Tags:     c.Tags,
			AuthorID: c.AuthorID,
		})
	}
	return nil, out, nil
}

type FindClientsInput struct {
	Title string `json:"title" jsonschema:"Company name of the client (required)"`
}

type ClientOutput struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Started  string  `json:"started,omitempty"`
	Contacts []int64 `json:"contacts"`
}

type FindClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
}

func (h *OnboardingHandlers) FindClients(ctx context.Context, _ *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, FindClientsOutput{}, fmt.Errorf("title is required")
	}
	clients, err := h.directory.Clients(ctx, input.Title)
	if err != nil {
		return nil, FindClientsOutput{}, fmt.Errorf("failed to find clients: %w", err)
	}

	out := FindClientsOutput{Clients: make([]ClientOutput, 0, len(clients))}
	for _, c := range clients {
		contacts := c.ContactIDs
		if contacts == nil {
			contacts = []int64{}
		}
		out.Clients = append(out.Clients, ClientOutput{
			ID:       c.ID,
			Title:    c.Title,
			Status:   c.Status,
			Started:  c.Started,
			Contacts: contacts,
		})
	}
	return nil, out, nil
}
