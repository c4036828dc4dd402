// ABOUTME: Tests for post operations
// ABOUTME: Covers meta lookups, in-place upserts, idempotent terms and ordered links
package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whitefoxstudios/onboarding/models"
)

func contactAttrs(email string) models.PostAttrs {
	return models.PostAttrs{
		Type:  models.PostTypeContact,
		Title: "Jane Doe",
		Meta: map[string]string{
			models.MetaContactEmail:     email,
			models.MetaContactFirstName: "Jane",
		},
	}
}

func TestUpsertInsertsAndFinds(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))
	ctx := context.Background()

	post, err := repo.Upsert(ctx, 0, contactAttrs("jane@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.NotEmpty(t, post.GUID)
	assert.Equal(t, models.PostStatusPublish, post.Status)
	assert.Equal(t, "jane@example.com", post.Meta[models.MetaContactEmail])

	ids, err := repo.Find(ctx, models.PostQuery{
		Type:      models.PostTypeContact,
		MetaKey:   models.MetaContactEmail,
		MetaValue: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{post.ID}, ids)

	ids, err = repo.Find(ctx, models.PostQuery{
		Type:      models.PostTypeContact,
		MetaKey:   models.MetaContactEmail,
		MetaValue: "other@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Type scopes the lookup
	ids, err = repo.Find(ctx, models.PostQuery{Type: models.PostTypeClient, Title: "Jane Doe"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpsertUpdatesInPlaceAndMergesMeta(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))
	ctx := context.Background()

	post, err := repo.Upsert(ctx, 0, contactAttrs("jane@example.com"))
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, post.ID, models.PostAttrs{
		Title: "Jane Q Doe",
		Meta:  map[string]string{models.MetaContactCompany: "Acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, post.GUID, updated.GUID)
	assert.Equal(t, "Jane Q Doe", updated.Title)
	assert.Equal(t, "Acme", updated.Meta[models.MetaContactCompany])
	assert.Equal(t, "jane@example.com", updated.Meta[models.MetaContactEmail], "untouched meta is kept")

	ids, err := repo.Find(ctx, models.PostQuery{Type: models.PostTypeContact})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestUpsertMissingPost(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))

	_, err := repo.Upsert(context.Background(), 77, contactAttrs("jane@example.com"))
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFindByTitle(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.Upsert(ctx, 0, models.PostAttrs{Type: models.PostTypeClient, Title: "Acme"})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, 0, models.PostAttrs{Type: models.PostTypeClient, Title: "Acme"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 0, models.PostAttrs{Type: models.PostTypeClient, Title: "Globex"})
	require.NoError(t, err)

	ids, err := repo.Find(ctx, models.PostQuery{Type: models.PostTypeClient, Title: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID, second.ID}, ids)
}

func TestFindRequiresType(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))

	_, err := repo.Find(context.Background(), models.PostQuery{Title: "Acme"})
	assert.ErrorIs(t, err, ErrInvalidPost)
}

func TestGetMissingPost(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))

	post, err := repo.Get(context.Background(), 12)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestAddTermIsIdempotent(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))
	ctx := context.Background()

	post, err := repo.Upsert(ctx, 0, contactAttrs("jane@example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.AddTerm(ctx, post.ID, models.TaxonomyType, models.TagBilling))
	require.NoError(t, repo.AddTerm(ctx, post.ID, models.TaxonomyType, models.TagBilling))
	require.NoError(t, repo.AddTerm(ctx, post.ID, models.TaxonomyContactTypes, models.TagProposalSignee))

	terms, err := repo.Terms(ctx, post.ID, models.TaxonomyType)
	require.NoError(t, err)
	assert.Equal(t, []string{models.TagBilling}, terms)

	all, err := repo.Terms(ctx, post.ID, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.TagBilling, models.TagProposalSignee}, all)
}

func TestLinkKeepsOrderAndSkipsDuplicates(t *testing.T) {
	repo := NewPostsRepository(setupTestDB(t))
	ctx := context.Background()

	client, err := repo.Upsert(ctx, 0, models.PostAttrs{Type: models.PostTypeClient, Title: "Acme"})
	require.NoError(t, err)

	require.NoError(t, repo.Link(ctx, client.ID, models.RelationContacts, []int64{5, 3}))
	require.NoError(t, repo.Link(ctx, client.ID, models.RelationContacts, []int64{3, 9}))

	links, err := repo.Links(ctx, client.ID, models.RelationContacts)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 9}, links)

	other, err := repo.Links(ctx, client.ID, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
