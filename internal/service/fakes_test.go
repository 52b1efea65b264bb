package service

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =========================================================================
// fakeThoughtRepo
// =========================================================================

// fakeThoughtRepo keeps thoughts in a map and filters them with
// ThoughtQuery.Matches, the same predicate semantics the SQL adapters
// implement. It hands out copies so a caller mutating a result cannot
// change what is "stored".
type fakeThoughtRepo struct {
	thoughts map[string]model.Thought
	clock    time.Time
	err      error // returned by every call when set
}

func newFakeThoughtRepo() *fakeThoughtRepo {
	return &fakeThoughtRepo{
		thoughts: make(map[string]model.Thought),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so every write gets a distinct timestamp.
func (f *fakeThoughtRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeThoughtRepo) Create(_ context.Context, t *model.Thought) error {
	if f.err != nil {
		return f.err
	}
	t.ID = xid.New().String()
	t.CreatedAt = f.tick()
	t.UpdatedAt = t.CreatedAt
	f.thoughts[t.ID] = clone(*t)
	return nil
}

func (f *fakeThoughtRepo) GetByID(_ context.Context, id string) (*model.Thought, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.thoughts[id]
	if !ok {
		return nil, apperror.NotFound("thought")
	}
	c := clone(t)
	return &c, nil
}

func (f *fakeThoughtRepo) List(_ context.Context, q *repository.ThoughtQuery) ([]model.Thought, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Thought{}
	for _, t := range f.thoughts {
		if q.Matches(&t) {
			out = append(out, clone(t))
		}
	}
	slices.SortFunc(out, func(a, b model.Thought) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (f *fakeThoughtRepo) Update(_ context.Context, t *model.Thought) error {
	if f.err != nil {
		return f.err
	}
	prev, ok := f.thoughts[t.ID]
	if !ok || prev.UserID != t.UserID {
		return apperror.NotFound("thought")
	}
	t.UpdatedAt = f.tick()
	t.CreatedAt = prev.CreatedAt
	f.thoughts[t.ID] = clone(*t)
	return nil
}

func (f *fakeThoughtRepo) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.thoughts[id]; !ok {
		return apperror.NotFound("thought")
	}
	delete(f.thoughts, id)
	return nil
}

func (f *fakeThoughtRepo) Count(ctx context.Context, q *repository.ThoughtQuery) (int, error) {
	list, err := f.List(ctx, q)
	return len(list), err
}

func (f *fakeThoughtRepo) CountByCategory(ctx context.Context, ownerID string) ([]model.CategoryCount, error) {
	list, err := f.List(ctx, repository.NewThoughtQuery(ownerID))
	if err != nil {
		return nil, err
	}
	counts := map[model.Category]int{}
	for _, t := range list {
		counts[t.Category]++
	}
	out := []model.CategoryCount{}
	for c, n := range counts {
		out = append(out, model.CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b model.CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out, nil
}

func (f *fakeThoughtRepo) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	list, err := f.List(ctx, repository.NewThoughtQuery(ownerID))
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, t := range list {
		tags = append(tags, t.Tags...)
	}
	slices.Sort(tags)
	return slices.Compact(tags), nil
}

func clone(t model.Thought) model.Thought {
	t.Tags = slices.Clone(t.Tags)
	return t
}

// =========================================================================
// fakeUserRepo
// =========================================================================

type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	byGHID  map[int64]*model.User
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
		byGHID:  make(map[int64]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, taken := f.byEmail[u.Email]; taken && u.Email != "" {
		return apperror.Conflict("user", "email "+u.Email)
	}
	u.ID = xid.New().String()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	f.byID[u.ID] = &stored
	if u.Email != "" {
		f.byEmail[u.Email] = &stored
	}
	if u.GitHubID != 0 {
		f.byGHID[u.GitHubID] = &stored
	}
	return nil
}

func (f *fakeUserRepo) UpsertGitHubUser(ctx context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	existing, ok := f.byGHID[u.GitHubID]
	if !ok {
		return f.CreateUser(ctx, u)
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.AvatarURL = u.AvatarURL
	existing.UpdatedAt = time.Now()
	*u = *existing
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	c := *u
	c.PasswordHash = ""
	return &c, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	c := *u
	return &c, nil
}
