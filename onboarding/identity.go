// ABOUTME: Identity resolution for form submitters
// ABOUTME: Finds users by id hint or email and creates missing ones with an activation email
package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

// IdentityRequest describes the submitter an identity is resolved for.
type IdentityRequest struct {
	Email string
	Names Names
	// OverrideID is a raw user id hint; non-numeric values are ignored.
	OverrideID string
}

// IdentityResolver finds or creates the identity behind a submission.
// Creating an identity sends exactly one activation notification; lookups never notify.
type IdentityResolver struct {
	users    UserRepository
	settings SettingsStore
	notifier Notifier
	logger   *zap.Logger
}

func NewIdentityResolver(users UserRepository, settings SettingsStore, notifier Notifier, logger *zap.Logger) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{
		users:    users,
		settings: settings,
		notifier: notifier,
		logger:   logger,
	}
}

// Lookup returns the identity registered with email, or nil.
func (r *IdentityResolver) Lookup(ctx context.Context, email string) (*models.Identity, error) {
	u, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}
	return u, nil
}

// Get returns the identity with id, or nil.
func (r *IdentityResolver) Get(ctx context.Context, id int64) (*models.Identity, error) {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity %d: %w", id, err)
	}
	return u, nil
}

// FromOverride returns the identity named by a raw id hint, or nil when the hint is
// absent or not numeric. A numeric hint naming no identity is ErrIdentityUnresolved.
func (r *IdentityResolver) FromOverride(ctx context.Context, raw string) (*models.Identity, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, nil
	}
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrIdentityUnresolved)
	}
	return u, nil
}

// Taken reports whether email is already used as a login and as an email.
func (r *IdentityResolver) Taken(ctx context.Context, email string) (asLogin, asEmail bool, err error) {
	byLogin, err := r.users.FindByLogin(ctx, email)
	if err != nil {
		return false, false, fmt.Errorf("failed to look up login: %w", err)
	}
	byEmail, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return false, false, fmt.Errorf("failed to look up email: %w", err)
	}
	return byLogin != nil, byEmail != nil, nil
}

// ResolveOrCreate uses the id hint when one is given, then an identity with the
// same email, and only then creates a new one.
func (r *IdentityResolver) ResolveOrCreate(ctx context.Context, req IdentityRequest) (*models.IdentityOutcome, error) {
	u, err := r.FromOverride(ctx, req.OverrideID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return &models.IdentityOutcome{Identity: u}, nil
	}

	u, err = r.Lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return &models.IdentityOutcome{Identity: u}, nil
	}

	return r.Create(ctx, req)
}

// Create registers a Customer identity whose login is the email and sends the activation
// email. A notification failure does not undo the identity; it is reported in the outcome.
func (r *IdentityResolver) Create(ctx context.Context, req IdentityRequest) (*models.IdentityOutcome, error) {
	email := strings.TrimSpace(req.Email)

	u, err := r.users.Create(ctx, models.NewIdentity{
		Login:       email,
		Email:       email,
		DisplayName: req.Names.Display,
		FirstName:   req.Names.First,
		LastName:    req.Names.Last,
		Role:        models.RoleCustomer,
	})
	if err != nil {
		return nil, &IdentityCreationError{Email: email, Err: err}
	}

	r.logger.Info("identity created",
		zap.Int64("user_id", u.ID),
		zap.String("email", u.Email))

	outcome := &models.IdentityOutcome{Identity: u, Created: true}
	if err := r.notify(ctx, u); err != nil {
		r.logger.Error("activation notification failed",
			zap.Int64("user_id", u.ID),
			zap.Error(err))
		outcome.NotifyError = err.Error()
		return outcome, nil
	}
	outcome.Notified = true
	return outcome, nil
}

func (r *IdentityResolver) notify(ctx context.Context, u *models.Identity) error {
	if r.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	settings, err := r.settings.NotificationSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to read notification settings: %w", err)
	}
	return r.notifier.SendActivation(ctx, u, settings)
}
