// ABOUTME: In-memory collaborators for reconciler tests
// ABOUTME: Mirror the sqlite repositories closely enough to exercise both workflows
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/whitefoxstudios/onboarding/models"
)

type fakeUsers struct {
	users     map[int64]*models.Identity
	nextID    int64
	createErr error
	created   int
}

func newFakeUsers(existing ...*models.Identity) *fakeUsers {
	f := &fakeUsers{users: map[int64]*models.Identity{}, nextID: 100}
	for _, u := range existing {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) find(match func(*models.Identity) bool) *models.Identity {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if match(f.users[id]) {
			return f.users[id]
		}
	}
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	return f.find(func(u *models.Identity) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (*models.Identity, error) {
	return f.find(func(u *models.Identity) bool { return strings.EqualFold(u.Login, login) }), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.Identity, error) {
	return f.users[id], nil
}

func (f *fakeUsers) Create(_ context.Context, attrs models.NewIdentity) (*models.Identity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	taken := f.find(func(u *models.Identity) bool {
		return strings.EqualFold(u.Login, attrs.Login) || strings.EqualFold(u.Email, attrs.Email)
	})
	if taken != nil {
		return nil, errors.New("duplicate user")
	}
	f.nextID++
	u := &models.Identity{
		ID:           f.nextID,
		Login:        attrs.Login,
		Email:        attrs.Email,
		DisplayName:  attrs.DisplayName,
		FirstName:    attrs.FirstName,
		LastName:     attrs.LastName,
		Role:         attrs.Role,
		RegisteredAt: time.Now(),
	}
	f.users[u.ID] = u
	f.created++
	return u, nil
}

type termEntry struct {
	taxonomy, term string
}

type fakePosts struct {
	posts     map[int64]*models.Post
	terms     map[int64][]termEntry
	links     map[int64][]int64
	nextID    int64
	upsertErr error
	upserts   int
}

func newFakePosts() *fakePosts {
	return &fakePosts{
		posts: map[int64]*models.Post{},
		terms: map[int64][]termEntry{},
		links: map[int64][]int64{},
	}
}

func (f *fakePosts) Find(_ context.Context, q models.PostQuery) ([]int64, error) {
	var ids []int64
	for id, p := range f.posts {
		if p.Type != q.Type || p.Status != models.PostStatusPublish {
			continue
		}
		if q.MetaKey != "" && p.Meta[q.MetaKey] != q.MetaValue {
			continue
		}
		if q.Title != "" && p.Title != q.Title {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakePosts) Get(_ context.Context, id int64) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Meta = map[string]string{}
	for k, v := range p.Meta {
		cp.Meta[k] = v
	}
	return &cp, nil
}

func (f *fakePosts) Upsert(ctx context.Context, id int64, attrs models.PostAttrs) (*models.Post, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts++
	status := attrs.Status
	if status == "" {
		status = models.PostStatusPublish
	}
	if id == 0 {
		f.nextID++
		id = f.nextID
		f.posts[id] = &models.Post{ID: id, Type: attrs.Type, Meta: map[string]string{}}
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d not found", id)
	}
	p.Title = attrs.Title
	p.AuthorID = attrs.AuthorID
	p.Status = status
	for k, v := range attrs.Meta {
		p.Meta[k] = v
	}
	return f.Get(ctx, id)
}

func (f *fakePosts) AddTerm(_ context.Context, id int64, taxonomy, term string) error {
	for _, e := range f.terms[id] {
		if e.taxonomy == taxonomy && e.term == term {
			return nil
		}
	}
	f.terms[id] = append(f.terms[id], termEntry{taxonomy, term})
	return nil
}

func (f *fakePosts) Terms(_ context.Context, id int64, taxonomy string) ([]string, error) {
	var out []string
	for _, e := range f.terms[id] {
		if taxonomy == "" || e.taxonomy == taxonomy {
			out = append(out, e.term)
		}
	}
	return out, nil
}

func (f *fakePosts) Link(_ context.Context, id int64, _ string, childIDs []int64) error {
	for _, c := range childIDs {
		seen := false
		for _, have := range f.links[id] {
			if have == c {
				seen = true
				break
			}
		}
		if !seen {
			f.links[id] = append(f.links[id], c)
		}
	}
	return nil
}

func (f *fakePosts) Links(_ context.Context, id int64, _ string) ([]int64, error) {
	return f.links[id], nil
}

// seed stores a post directly, bypassing the upsert counter.
func (f *fakePosts) seed(p models.Post) int64 {
	f.nextID++
	p.ID = f.nextID
	if p.Status == "" {
		p.Status = models.PostStatusPublish
	}
	if p.Meta == nil {
		p.Meta = map[string]string{}
	}
	f.posts[p.ID] = &p
	return p.ID
}

type fakeSettings struct {
	settings models.NotificationSettings
	err      error
}

func (f *fakeSettings) NotificationSettings(context.Context) (models.NotificationSettings, error) {
	return f.settings, f.err
}

type fakeNotifier struct {
	sent []*models.Identity
	err  error
}

func (f *fakeNotifier) SendActivation(_ context.Context, u *models.Identity, _ models.NotificationSettings) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, u)
	return nil
}

type fakeLog struct {
	records map[string]*models.SubmissionRecord
	order   []string
}

func newFakeLog() *fakeLog {
	return &fakeLog{records: map[string]*models.SubmissionRecord{}}
}

func (f *fakeLog) Record(_ context.Context, s models.Submission) (string, error) {
	id := fmt.Sprintf("sub-%d", len(f.order)+1)
	f.records[id] = &models.SubmissionRecord{
		ID:       id,
		FormName: s.FormName,
		Fields:   s.Fields,
		Status:   models.SubmissionReceived,
	}
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakeLog) MarkProcessed(_ context.Context, id string, _ *models.Result) error {
	f.records[id].Status = models.SubmissionProcessed
	return nil
}

func (f *fakeLog) MarkFailed(_ context.Context, id string, cause error) error {
	f.records[id].Status = models.SubmissionFailed
	f.records[id].Error = cause.Error()
	return nil
}

func (f *fakeLog) MarkIgnored(_ context.Context, id string, reason string) error {
	f.records[id].Status = models.SubmissionIgnored
	f.records[id].Error = reason
	return nil
}

func (f *fakeLog) Get(_ context.Context, id string) (*models.SubmissionRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

type harness struct {
	users    *fakeUsers
	posts    *fakePosts
	notifier *fakeNotifier
	log      *fakeLog
	rec      *Reconciler
}

var fixedNow = time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

func newHarness(existing ...*models.Identity) *harness {
	h := &harness{
		users:    newFakeUsers(existing...),
		posts:    newFakePosts(),
		notifier: &fakeNotifier{},
		log:      newFakeLog(),
	}
	h.rec = New(h.users, h.posts, &fakeSettings{}, h.notifier,
		WithSubmissionLog(h.log),
		WithClock(func() time.Time { return fixedNow }))
	return h
}
