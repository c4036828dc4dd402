// ABOUTME: Conversions between stored posts and contact or client records
// ABOUTME: Loads tags and links so results reflect what was written
package onboarding

import (
	"context"
	"strconv"

	"github.com/whitefoxstudios/onboarding/models"
)

func (r *Reconciler) findContacts(ctx context.Context, email string) ([]int64, error) {
	return r.posts.Find(ctx, models.PostQuery{
		Type:      models.PostTypeContact,
		MetaKey:   models.MetaContactEmail,
		MetaValue: email,
	})
}

func (r *Reconciler) findClients(ctx context.Context, title string) ([]int64, error) {
	return r.posts.Find(ctx, models.PostQuery{
		Type:  models.PostTypeClient,
		Title: title,
	})
}

// upsertContact writes a contact and tags it. id 0 inserts.
func (r *Reconciler) upsertContact(ctx context.Context, id int64, attrs models.PostAttrs, taxonomy, tag string) (*models.Contact, error) {
	post, err := r.posts.Upsert(ctx, id, attrs)
	if err != nil {
		return nil, &RecordUpsertError{Kind: models.PostTypeContact, ID: id, Err: err}
	}
	if err := r.posts.AddTerm(ctx, post.ID, taxonomy, tag); err != nil {
		return nil, &RecordUpsertError{Kind: models.PostTypeContact, ID: post.ID, Err: err}
	}
	return r.contact(ctx, post)
}

// upsertClient writes a client and links the contacts to it. id 0 inserts.
func (r *Reconciler) upsertClient(ctx context.Context, id int64, attrs models.PostAttrs, contacts []int64) (*models.Client, error) {
	post, err := r.posts.Upsert(ctx, id, attrs)
	if err != nil {
		return nil, &RecordUpsertError{Kind: models.PostTypeClient, ID: id, Err: err}
	}
	if len(contacts) > 0 {
		if err := r.posts.Link(ctx, post.ID, models.RelationContacts, contacts); err != nil {
			return nil, &RecordUpsertError{Kind: models.PostTypeClient, ID: post.ID, Err: err}
		}
	}
	return r.client(ctx, post)
}

func (r *Reconciler) contact(ctx context.Context, post *models.Post) (*models.Contact, error) {
	tags, err := r.posts.Terms(ctx, post.ID, "")
	if err != nil {
		return nil, err
	}
	return ContactFromPost(post, tags), nil
}

func (r *Reconciler) client(ctx context.Context, post *models.Post) (*models.Client, error) {
	links, err := r.posts.Links(ctx, post.ID, models.RelationContacts)
	if err != nil {
		return nil, err
	}
	return ClientFromPost(post, links), nil
}

// document loads any post as a pass-through document, or nil when it does not exist.
func (r *Reconciler) document(ctx context.Context, id int64) (*models.Document, error) {
	post, err := r.posts.Get(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	return &models.Document{Post: post, Fields: post.Meta}, nil
}

// ContactFromPost reads a contact out of a contact post.
func ContactFromPost(post *models.Post, tags []string) *models.Contact {
	m := post.Meta
	return &models.Contact{
		ID:        post.ID,
		Title:     post.Title,
		AuthorID:  post.AuthorID,
		Email:     m[models.MetaContactEmail],
		FirstName: m[models.MetaContactFirstName],
		LastName:  m[models.MetaContactLastName],
		Phone:     m[models.MetaContactPhone],
		Company:   m[models.MetaContactCompany],
		Domain:    m[models.MetaContactDomain],
		Total:     metaFloat(m, models.MetaContactTotal),
		Deposit:   metaFloat(m, models.MetaContactDeposit),
		Tags:      tags,
	}
}

// ClientFromPost reads a client out of a client post.
func ClientFromPost(post *models.Post, contacts []int64) *models.Client {
	return &models.Client{
		ID:         post.ID,
		Title:      post.Title,
		AuthorID:   post.AuthorID,
		Started:    post.Meta[models.MetaClientStarted],
		Status:     post.Meta[models.MetaClientStatus],
		ContactIDs: contacts,
	}
}

func metaFloat(m map[string]string, key string) *float64 {
	raw, ok := m[key]
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
