// ABOUTME: End-to-end reconciliation against the sqlite repositories
// ABOUTME: Checks the signed proposal scenario and submission logging on a real database
package onboarding

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whitefoxstudios/onboarding/db"
	"github.com/whitefoxstudios/onboarding/models"
	"go.uber.org/zap/zaptest"
)

type sqliteHarness struct {
	users       *db.UsersRepository
	posts       *db.PostsRepository
	submissions *db.SubmissionsRepository
	notifier    *fakeNotifier
	rec         *Reconciler
}

func newSQLiteHarness(t *testing.T) *sqliteHarness {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "onboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	h := &sqliteHarness{
		users:       db.NewUsersRepository(database),
		posts:       db.NewPostsRepository(database),
		submissions: db.NewSubmissionsRepository(database),
		notifier:    &fakeNotifier{},
	}
	h.rec = New(h.users, h.posts, db.NewOptionsRepository(database, models.NotificationSettings{}), h.notifier,
		WithSubmissionLog(h.submissions),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }))
	return h
}

func TestSignedProposalEndToEnd(t *testing.T) {
	h := newSQLiteHarness(t)
	ctx := context.Background()

	res, err := h.rec.Handle(ctx, proposalSubmission(nil))
	require.NoError(t, err)

	u, err := h.users.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.Equal(t, "a@b.com", u.Login)
	assert.Len(t, h.notifier.sent, 1)

	contactIDs, err := h.posts.Find(ctx, models.PostQuery{
		Type: models.PostTypeContact, MetaKey: models.MetaContactEmail, MetaValue: "a@b.com",
	})
	require.NoError(t, err)
	require.Len(t, contactIDs, 1)

	post, err := h.posts.Get(ctx, contactIDs[0])
	require.NoError(t, err)
	contact := ContactFromPost(post, nil)
	assert.Equal(t, "Jane", contact.FirstName)
	assert.Equal(t, "Doe", contact.LastName)
	assert.Equal(t, 1000.0, *contact.Total)
	assert.Equal(t, 500.0, *contact.Deposit)
	assert.Equal(t, u.ID, contact.AuthorID)

	tags, err := h.posts.Terms(ctx, contactIDs[0], models.TaxonomyContactTypes)
	require.NoError(t, err)
	assert.Equal(t, []string{models.TagProposalSignee}, tags)

	clientIDs, err := h.posts.Find(ctx, models.PostQuery{Type: models.PostTypeClient, Title: "Acme"})
	require.NoError(t, err)
	require.Len(t, clientIDs, 1)
	links, err := h.posts.Links(ctx, clientIDs[0], models.RelationContacts)
	require.NoError(t, err)
	assert.Equal(t, contactIDs, links)

	clientPost, err := h.posts.Get(ctx, clientIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.ClientStatusSigned, clientPost.Meta[models.MetaClientStatus])
	assert.Equal(t, "2024-03-09", clientPost.Meta[models.MetaClientStarted])

	rec, err := h.submissions.Get(ctx, res.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionProcessed, rec.Status)
}

func TestSignedProposalThenBillingOnSQLite(t *testing.T) {
	h := newSQLiteHarness(t)
	ctx := context.Background()

	_, err := h.rec.Handle(ctx, proposalSubmission(nil))
	require.NoError(t, err)

	res, err := h.rec.Handle(ctx, billingSubmission("a@b.com", "Jane Doe", "555"))
	require.NoError(t, err)
	require.Len(t, res.Billing.Tagged, 1)
	assert.NotNil(t, res.Billing.User)

	tags, err := h.posts.Terms(ctx, res.Billing.Tagged[0], "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.TagProposalSignee, models.TagBilling}, tags)
	assert.Len(t, h.notifier.sent, 1)
}

func TestReplayOnSQLite(t *testing.T) {
	h := newSQLiteHarness(t)
	ctx := context.Background()

	first, err := h.rec.Handle(ctx, billingSubmission("pay@acme.com", "Jane Doe", "555"))
	require.NoError(t, err)

	replayed, err := h.rec.Replay(ctx, first.SubmissionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.SubmissionID, replayed.SubmissionID)
	assert.Equal(t, []int64{first.Billing.Contact.ID}, replayed.Billing.Tagged)

	list, err := h.submissions.List(ctx, models.SubmissionProcessed, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
