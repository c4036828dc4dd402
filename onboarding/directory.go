// ABOUTME: Read-side lookups shared by the HTTP, MCP and CLI surfaces
// ABOUTME: Finds contacts by email, clients by company title and users by login
package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
)

// Directory answers lookups without writing anything.
type Directory struct {
	users UserRepository
	posts PostRepository
}

func NewDirectory(users UserRepository, posts PostRepository) *Directory {
	return &Directory{users: users, posts: posts}
}

// CheckLogin returns the id of the user with this login. It backs the client-side
// user id hint on the proposal form.
func (d *Directory) CheckLogin(ctx context.Context, login string) (int64, bool, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, false, nil
	}
	u, err := d.users.FindByLogin(ctx, login)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check login: %w", err)
	}
	if u == nil {
		return 0, false, nil
	}
	return u.ID, true, nil
}

// Contacts lists the contacts recorded for an email, oldest first.
func (d *Directory) Contacts(ctx context.Context, email string) ([]models.Contact, error) {
	ids, err := d.posts.Find(ctx, models.PostQuery{
		Type:      models.PostTypeContact,
		MetaKey:   models.MetaContactEmail,
		MetaValue: strings.TrimSpace(email),
	})
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(ids))
	for _, id := range ids {
		post, err := d.posts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if post == nil {
			continue
		}
		tags, err := d.posts.Terms(ctx, id, "")
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *ContactFromPost(post, tags))
	}
	return contacts, nil
}

// Clients lists the clients with this company title, oldest first.
func (d *Directory) Clients(ctx context.Context, title string) ([]models.Client, error) {
	ids, err := d.posts.Find(ctx, models.PostQuery{
		Type:  models.PostTypeClient,
		Title: strings.TrimSpace(title),
	})
	if err != nil {
		return nil, err
	}

	clients := make([]models.Client, 0, len(ids))
	for _, id := range ids {
		post, err := d.posts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if post == nil {
			continue
		}
		links, err := d.posts.Links(ctx, id, models.RelationContacts)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *ClientFromPost(post, links))
	}
	return clients, nil
}
