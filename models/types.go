// ABOUTME: Data models for onboarding entities
// ABOUTME: Defines Identity, Post, Contact, Client, Submission and result structs
package models

import (
	"time"
)

// Identity is a user account keyed by email and login.
type Identity struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewIdentity holds the attributes used to create an Identity.
type NewIdentity struct {
	Login       string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	Role        string
}

// Post is a stored document of a given type with free-form meta fields.
type Post struct {
	ID        int64             `json:"id"`
	GUID      string            `json:"guid"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	AuthorID  int64             `json:"author_id"`
	Status    string            `json:"status"`
	Content   string            `json:"content,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// PostAttrs are the writable attributes of a Post.
type PostAttrs struct {
	Type     string
	Title    string
	AuthorID int64
	Status   string
	Meta     map[string]string
}

// PostQuery selects posts of one type, optionally by a meta value or an exact title.
type PostQuery struct {
	Type      string
	MetaKey   string
	MetaValue string
	Title     string
}

// Contact is a per-person record created from form data.
type Contact struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	AuthorID  int64    `json:"author_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone,omitempty"`
	Company   string   `json:"company,omitempty"`
	Domain    string   `json:"domain,omitempty"`
	Total     *float64 `json:"total,omitempty"`
	Deposit   *float64 `json:"deposit,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Client is a per-company record aggregating linked contacts.
type Client struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	AuthorID   int64   `json:"author_id"`
	Started    string  `json:"started"`
	Status     string  `json:"status"`
	ContactIDs []int64 `json:"contact_ids"`
}

// Document is a pass-through view of an arbitrary post and its fields.
type Document struct {
	Post   *Post             `json:"post"`
	Fields map[string]string `json:"fields"`
}

// Post types.
const (
	PostTypeContact  = "contact"
	PostTypeClient   = "client"
	PostTypeProposal = "proposal"
)

// Post status constants.
const (
	PostStatusPublish = "publish"
)

// Taxonomy and term constants.
const (
	TaxonomyType         = "type"
	TaxonomyContactTypes = "contact_types"

	TagBilling        = "billing"
	TagProposalSignee = "Proposal Signee"
)

// Contact and client meta keys.
const (
	MetaContactFirstName = "contact_fname"
	MetaContactLastName  = "contact_lname"
	MetaContactEmail     = "contact_email"
	MetaContactPhone     = "contact_phone"
	MetaContactCompany   = "contact_company"
	MetaContactDomain    = "contact_domain"
	MetaContactTotal     = "contact_total"
	MetaContactDeposit   = "contact_deposit"

	MetaClientStarted = "started"
	MetaClientStatus  = "status"

	RelationContacts = "contacts"
)

const (
	RoleCustomer = "Customer"

	ClientStatusSigned = "Signed"
)

// Submission status constants.
const (
	SubmissionReceived  = "received"
	SubmissionProcessed = "processed"
	SubmissionFailed    = "failed"
	SubmissionIgnored   = "ignored"
)

// Submission is an inbound form event. Fields are keyed by form field id.
type Submission struct {
	FormName string            `json:"form_name"`
	Fields   map[string]string `json:"fields"`
}

// SubmissionRecord is a logged Submission and its outcome.
type SubmissionRecord struct {
	ID          string            `json:"id"`
	FormName    string            `json:"form_name"`
	Fields      map[string]string `json:"fields"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
	Result      []byte            `json:"-"`
	ReceivedAt  time.Time         `json:"received_at"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
}

// NotificationSettings configure the activation email sent to new identities.
type NotificationSettings struct {
	From    Sender `json:"from"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Sender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IdentityOutcome reports how an identity was resolved for a submission.
type IdentityOutcome struct {
	Identity    *Identity `json:"identity"`
	Created     bool      `json:"created"`
	Notified    bool      `json:"notified"`
	NotifyError string    `json:"notify_error,omitempty"`
}

// BillingResult is the outcome of a Billing Contact submission.
type BillingResult struct {
	User    *IdentityOutcome `json:"user"`
	Contact *Contact         `json:"contact,omitempty"`
	Tagged  []int64          `json:"tagged,omitempty"`
}

// SigneeResult is the identity and contacts touched by a Proposal Agreement submission.
type SigneeResult struct {
	User     *IdentityOutcome `json:"user"`
	Contacts []int64          `json:"contacts"`
}

// Result is returned to the caller of a reconciliation and never persisted as records.
type Result struct {
	SubmissionID string            `json:"submission_id,omitempty"`
	Form         string            `json:"form"`
	Fields       map[string]string `json:"fields"`
	Billing      *BillingResult    `json:"billing,omitempty"`
	Signee       *SigneeResult     `json:"signee,omitempty"`
	Contacts     []Contact         `json:"contacts,omitempty"`
	Proposal     *Document         `json:"proposal,omitempty"`
	Clients      []Client          `json:"clients,omitempty"`
}

// WithDefaults fills every empty setting from d.
func (s NotificationSettings) WithDefaults(d NotificationSettings) NotificationSettings {
	if s.From.Name == "" {
		s.From.Name = d.From.Name
	}
	if s.From.Email == "" {
		s.From.Email = d.From.Email
	}
	if s.Subject == "" {
		s.Subject = d.Subject
	}
	if s.Message == "" {
		s.Message = d.Message
	}
	return s
}
