// ABOUTME: Reconciler entry point and the collaborators it consumes
// ABOUTME: Dispatches each submission to its workflow and logs the outcome
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

// UserRepository stores identities.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByLogin(ctx context.Context, login string) (*models.Identity, error)
	GetByID(ctx context.Context, id int64) (*models.Identity, error)
	Create(ctx context.Context, attrs models.NewIdentity) (*models.Identity, error)
}

// PostRepository stores contact, client and proposal posts.
type PostRepository interface {
	Find(ctx context.Context, q models.PostQuery) ([]int64, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Upsert(ctx context.Context, id int64, attrs models.PostAttrs) (*models.Post, error)
	AddTerm(ctx context.Context, id int64, taxonomy, term string) error
	Terms(ctx context.Context, id int64, taxonomy string) ([]string, error)
	Link(ctx context.Context, id int64, relation string, childIDs []int64) error
	Links(ctx context.Context, id int64, relation string) ([]int64, error)
}

// SettingsStore provides the admin-configured activation email settings.
type SettingsStore interface {
	NotificationSettings(ctx context.Context) (models.NotificationSettings, error)
}

// Notifier delivers the activation email for a new identity.
type Notifier interface {
	SendActivation(ctx context.Context, identity *models.Identity, settings models.NotificationSettings) error
}

// SubmissionLog records inbound submissions and their outcome.
type SubmissionLog interface {
	Record(ctx context.Context, s models.Submission) (string, error)
	MarkProcessed(ctx context.Context, id string, result *models.Result) error
	MarkFailed(ctx context.Context, id string, cause error) error
	MarkIgnored(ctx context.Context, id string, reason string) error
	Get(ctx context.Context, id string) (*models.SubmissionRecord, error)
}

// Reconciler turns form submissions into identities, contacts and clients.
type Reconciler struct {
	posts      PostRepository
	identities *IdentityResolver
	log        SubmissionLog
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Reconciler)

// WithSubmissionLog records every handled submission.
func WithSubmissionLog(log SubmissionLog) Option {
	return func(r *Reconciler) { r.log = log }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the time source used for client start dates.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(users UserRepository, posts PostRepository, settings SettingsStore, notifier Notifier, opts ...Option) *Reconciler {
	r := &Reconciler{
		posts:  posts,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.identities = NewIdentityResolver(users, settings, notifier, r.logger)
	return r
}

// Handle logs the submission when a log is configured, then processes it.
func (r *Reconciler) Handle(ctx context.Context, s models.Submission) (*models.Result, error) {
	if r.log == nil {
		return r.Process(ctx, s)
	}

	id, err := r.log.Record(ctx, s)
	if err != nil {
		return nil, err
	}
	logger := r.logger.With(zap.String("submission_id", id), zap.String("form", s.FormName))

	result, err := r.Process(ctx, s)
	switch {
	case errors.Is(err, ErrUnknownForm):
		logger.Warn("submission ignored", zap.Error(err))
		if markErr := r.log.MarkIgnored(ctx, id, err.Error()); markErr != nil {
			logger.Warn("failed to mark submission", zap.Error(markErr))
		}
		return nil, err
	case err != nil:
		logger.Error("submission failed", zap.Error(err))
		if markErr := r.log.MarkFailed(ctx, id, err); markErr != nil {
			logger.Warn("failed to mark submission", zap.Error(markErr))
		}
		return nil, err
	}

	result.SubmissionID = id
	if markErr := r.log.MarkProcessed(ctx, id, result); markErr != nil {
		logger.Warn("failed to mark submission", zap.Error(markErr))
	}
	return result, nil
}

// Process runs the workflow for the submission's form without logging it.
func (r *Reconciler) Process(ctx context.Context, s models.Submission) (*models.Result, error) {
	kind, err := ParseFormKind(s.FormName)
	if err != nil {
		return nil, err
	}

	fields := s.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	var result *models.Result
	switch kind {
	case FormBillingContact:
		result, err = r.billingContact(ctx, fields)
	case FormProposalAgreement:
		result, err = r.proposalAgreement(ctx, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	result.Form = kind.String()
	r.logger.Info("submission reconciled",
		zap.String("form", result.Form),
		zap.Int64s("contacts", contactIDs(result)),
		zap.Int("clients", len(result.Clients)))
	return result, nil
}

// Replay runs a logged submission again. Reconciliation is an upsert, so replaying
// a processed submission updates the same records.
func (r *Reconciler) Replay(ctx context.Context, id string) (*models.Result, error) {
	if r.log == nil {
		return nil, fmt.Errorf("replay requires a submission log")
	}
	rec, err := r.log.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Handle(ctx, models.Submission{FormName: rec.FormName, Fields: rec.Fields})
}

func contactIDs(result *models.Result) []int64 {
	switch {
	case result.Signee != nil:
		return result.Signee.Contacts
	case result.Billing != nil && result.Billing.Contact != nil:
		return []int64{result.Billing.Contact.ID}
	case result.Billing != nil:
		return result.Billing.Tagged
	}
	return nil
}
