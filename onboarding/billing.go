// ABOUTME: Billing Contact workflow
// ABOUTME: Tags existing contacts for an email as billing or creates the contact and its identity
package onboarding

import (
	"context"
	"errors"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap"
)

func (r *Reconciler) billingContact(ctx context.Context, fields map[string]string) (*models.Result, error) {
	email := strings.TrimSpace(fields[FieldBillingEmail])
	if email == "" {
		return nil, &MissingFieldError{Field: FieldBillingEmail}
	}
	names := r.parseNames(fields[FieldBillingName])

	result := &models.Result{Fields: fields, Billing: &models.BillingResult{}}

	user, err := r.identities.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		result.Billing.User = &models.IdentityOutcome{Identity: user}
	}

	ids, err := r.findContacts(ctx, email)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		for _, id := range ids {
			if err := r.posts.AddTerm(ctx, id, models.TaxonomyType, models.TagBilling); err != nil {
				return nil, &RecordUpsertError{Kind: models.PostTypeContact, ID: id, Err: err}
			}
		}
		result.Billing.Tagged = ids
		return result, nil
	}

	outcome, err := r.identities.ResolveOrCreate(ctx, IdentityRequest{Email: email, Names: names})
	if err != nil {
		return nil, err
	}
	result.Billing.User = outcome

	contact, err := r.upsertContact(ctx, 0, models.PostAttrs{
		Type:     models.PostTypeContact,
		Title:    names.Display,
		AuthorID: outcome.Identity.ID,
		Status:   models.PostStatusPublish,
		Meta: map[string]string{
			models.MetaContactFirstName: names.First,
			models.MetaContactLastName:  names.Last,
			models.MetaContactEmail:     email,
			models.MetaContactPhone:     strings.TrimSpace(fields[FieldBillingPhone]),
		},
	}, models.TaxonomyType, models.TagBilling)
	if err != nil {
		return nil, err
	}
	result.Billing.Contact = contact
	return result, nil
}

// parseNames strips markup from a submitted name and splits it. A single word name
// is kept as the first name with an empty last name.
func (r *Reconciler) parseNames(raw string) Names {
	names, err := ParseName(StripTags(raw))
	if errors.Is(err, ErrNoLastName) {
		r.logger.Warn("name has no last name", zap.String("name", names.Display))
	}
	return names
}
