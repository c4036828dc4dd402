// ABOUTME: Proposal Agreement workflow
// ABOUTME: Records the signee, upserts their contacts and marks the company's clients as signed
package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
)

const startedLayout = "2006-01-02"

func (r *Reconciler) proposalAgreement(ctx context.Context, fields map[string]string) (*models.Result, error) {
	email := strings.TrimSpace(fields[FieldProposalEmail])
	if email == "" {
		return nil, &MissingFieldError{Field: FieldProposalEmail}
	}
	company := strings.TrimSpace(fields[FieldBusiness])
	if company == "" {
		return nil, &MissingFieldError{Field: FieldBusiness}
	}
	total, err := ParseAmount(fields[FieldTotal])
	if err != nil {
		return nil, err
	}
	names := r.parseNames(fields[FieldProposalName])

	outcome, err := r.signee(ctx, email, names, fields[FieldUserID])
	if err != nil {
		return nil, err
	}
	author := outcome.Identity.ID

	result := &models.Result{
		Fields: fields,
		Signee: &models.SigneeResult{User: outcome},
	}

	attrs := models.PostAttrs{
		Type:     models.PostTypeContact,
		Title:    names.Display,
		AuthorID: author,
		Status:   models.PostStatusPublish,
		Meta: map[string]string{
			models.MetaContactFirstName: names.First,
			models.MetaContactLastName:  names.Last,
			models.MetaContactEmail:     email,
			models.MetaContactCompany:   company,
			models.MetaContactDomain:    strings.TrimSpace(fields[FieldDomain]),
			models.MetaContactTotal:     formatAmount(total),
			models.MetaContactDeposit:   formatAmount(Deposit(total)),
		},
	}

	ids, err := r.findContacts(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids = []int64{0}
	}
	for _, id := range ids {
		contact, err := r.upsertContact(ctx, id, attrs, models.TaxonomyContactTypes, models.TagProposalSignee)
		if err != nil {
			return nil, err
		}
		result.Contacts = append(result.Contacts, *contact)
		result.Signee.Contacts = append(result.Signee.Contacts, contact.ID)
	}

	if id, ok := parseID(fields[FieldPostID]); ok {
		result.Proposal, err = r.document(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load proposal %d: %w", id, err)
		}
	}

	clientAttrs := models.PostAttrs{
		Type:     models.PostTypeClient,
		Title:    company,
		AuthorID: author,
		Status:   models.PostStatusPublish,
		Meta: map[string]string{
			models.MetaClientStarted: r.now().Format(startedLayout),
			models.MetaClientStatus:  models.ClientStatusSigned,
		},
	}

	clientIDs, err := r.findClients(ctx, company)
	if err != nil {
		return nil, err
	}
	if len(clientIDs) == 0 {
		clientIDs = []int64{0}
	}
	for _, id := range clientIDs {
		client, err := r.upsertClient(ctx, id, clientAttrs, result.Signee.Contacts)
		if err != nil {
			return nil, err
		}
		result.Clients = append(result.Clients, *client)
	}

	return result, nil
}

// signee resolves the identity that signed a proposal. A numeric user id hint wins.
// Without one an identity is created unless the email is taken both as a login and as
// an email. When only one of the two is taken the create is attempted anyway and the
// user store rejects it; this differs from the billing workflow, which only looks at
// the email.
func (r *Reconciler) signee(ctx context.Context, email string, names Names, hint string) (*models.IdentityOutcome, error) {
	u, err := r.identities.FromOverride(ctx, hint)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return &models.IdentityOutcome{Identity: u}, nil
	}

	asLogin, asEmail, err := r.identities.Taken(ctx, email)
	if err != nil {
		return nil, err
	}
	if !asLogin || !asEmail {
		return r.identities.Create(ctx, IdentityRequest{Email: email, Names: names})
	}

	u, err = r.identities.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%s: %w", email, ErrIdentityUnresolved)
	}
	return &models.IdentityOutcome{Identity: u}, nil
}
