// ABOUTME: Activation notifier for newly created identities
// ABOUTME: Issues a reset key, renders the configured email and hands it to a transport
package notify

import (
	"context"
	"fmt"

	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

// KeyIssuer creates a one-time password reset key for a user.
type KeyIssuer interface {
	IssueResetKey(ctx context.Context, userID int64) (string, error)
}

// Message is a rendered activation email.
type Message struct {
	To        string
	FromName  string
	FromEmail string
	Subject   string
	Body      string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Activator sends the activation email for a new identity.
type Activator struct {
	keys      KeyIssuer
	transport Transport
	siteURL   string
	logger    *zap.Logger
}

func NewActivator(keys KeyIssuer, transport Transport, siteURL string, logger *zap.Logger) *Activator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activator{
		keys:      keys,
		transport: transport,
		siteURL:   siteURL,
		logger:    logger,
	}
}

// SendActivation issues a fresh reset key and sends the rendered settings message.
func (a *Activator) SendActivation(ctx context.Context, identity *models.Identity, settings models.NotificationSettings) error {
	key, err := a.keys.IssueResetKey(ctx, identity.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset key: %w", err)
	}

	msg := Message{
		To:        identity.Email,
		FromName:  settings.From.Name,
		FromEmail: settings.From.Email,
		Subject:   settings.Subject,
		Body:      RenderTemplate(identity, key, a.siteURL, settings.Message),
	}
	if err := a.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send activation email: %w", err)
	}

	a.logger.Debug("activation email sent",
		zap.Int64("user_id", identity.ID),
		zap.String("to", msg.To))
	return nil
}
