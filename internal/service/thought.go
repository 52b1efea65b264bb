// Package service holds the business rules of Brain Bank.
//
// SERVICE LAYER:
// Handlers decode HTTP, services decide, repositories store.
//
//	ThoughtHandler (HTTP) → ThoughtService (ownership, validation) → ThoughtRepository (DB)
//
// The service never sees a request or a status code. It returns *apperror
// values and lets the handler map them.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/repository"
)

// Ownership refusals. Each operation names its verb so the client can tell
// which action was refused.
const (
	msgNotYoursAccess = "Not authorized to access this thought"
	msgNotYoursUpdate = "Not authorized to update this thought"
	msgNotYoursDelete = "Not authorized to delete this thought"
)

// ThoughtService implements every thought operation for one caller at a time.
type ThoughtService struct {
	repo   repository.ThoughtRepository
	logger *slog.Logger
}

func NewThoughtService(repo repository.ThoughtRepository, logger *slog.Logger) *ThoughtService {
	return &ThoughtService{repo: repo, logger: logger}
}

// ThoughtFilter is the optional part of a list request. Empty strings and a
// nil Favorite mean "no constraint".
type ThoughtFilter struct {
	Search   string
	Category string
	Favorite *bool
	Tag      string
}

// query turns the filter into an owner-scoped repository query. Category is
// matched as given, so an unknown category simply matches nothing.
func (f ThoughtFilter) query(ownerID string) *repository.ThoughtQuery {
	q := repository.NewThoughtQuery(ownerID)
	if f.Search != "" {
		q.Search(f.Search)
	}
	if f.Category != "" {
		q.Category(model.Category(f.Category))
	}
	if f.Favorite != nil {
		q.Favorite(*f.Favorite)
	}
	if f.Tag != "" {
		q.Tag(f.Tag)
	}
	return q
}

// CreateThoughtInput is what a caller may supply when creating a thought.
// The owner is never part of it.
type CreateThoughtInput struct {
	Title    string
	Content  string
	Category model.Category
	Tags     []string
}

// ThoughtPatch describes an update. A nil field is left unchanged; a
// non-nil field overwrites, even with its zero value (that is how a JSON
// null clears a field).
type ThoughtPatch struct {
	Title      *string
	Content    *string
	Category   *model.Category
	Tags       *[]string
	IsFavorite *bool
}

// List returns the owner's thoughts matching filter, newest first.
func (s *ThoughtService) List(ctx context.Context, ownerID string, filter ThoughtFilter) ([]model.Thought, error) {
	thoughts, err := s.repo.List(ctx, filter.query(ownerID))
	if err != nil {
		return nil, fmt.Errorf("service: listing thoughts: %w", err)
	}
	return thoughts, nil
}

// Favorites returns the owner's favorite thoughts, newest first.
func (s *ThoughtService) Favorites(ctx context.Context, ownerID string) ([]model.Thought, error) {
	fav := true
	return s.List(ctx, ownerID, ThoughtFilter{Favorite: &fav})
}

// GetByID returns one thought. A missing (or malformed) id is NotFound; a
// thought that belongs to someone else is Forbidden.
func (s *ThoughtService) GetByID(ctx context.Context, ownerID, id string) (*model.Thought, error) {
	return s.owned(ctx, ownerID, id, msgNotYoursAccess)
}

// Create stores a new thought owned by ownerID.
func (s *ThoughtService) Create(ctx context.Context, ownerID string, in CreateThoughtInput) (*model.Thought, error) {
	thought := &model.Thought{
		UserID:   ownerID,
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
	}
	if thought.Category == "" {
		thought.Category = model.DefaultCategory
	}
	thought.Normalize()
	if err := thought.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, thought); err != nil {
		return nil, fmt.Errorf("service: creating thought: %w", err)
	}

	s.logger.Info("thought created",
		slog.String("id", thought.ID),
		slog.String("owner", ownerID),
		slog.String("category", string(thought.Category)),
	)
	return thought, nil
}

// Update applies patch to the caller's thought. The merged document is
// validated as a whole before anything is written.
func (s *ThoughtService) Update(ctx context.Context, ownerID, id string, patch ThoughtPatch) (*model.Thought, error) {
	thought, err := s.owned(ctx, ownerID, id, msgNotYoursUpdate)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		thought.Title = *patch.Title
	}
	if patch.Content != nil {
		thought.Content = *patch.Content
	}
	if patch.Category != nil {
		thought.Category = *patch.Category
	}
	if patch.Tags != nil {
		thought.Tags = *patch.Tags
	}
	if patch.IsFavorite != nil {
		thought.IsFavorite = *patch.IsFavorite
	}

	thought.Normalize()
	if err := thought.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, thought); err != nil {
		return nil, fmt.Errorf("service: updating thought %s: %w", id, err)
	}
	return thought, nil
}

// ToggleFavorite flips isFavorite on the caller's thought.
func (s *ThoughtService) ToggleFavorite(ctx context.Context, ownerID, id string) (*model.Thought, error) {
	thought, err := s.owned(ctx, ownerID, id, msgNotYoursUpdate)
	if err != nil {
		return nil, err
	}

	thought.IsFavorite = !thought.IsFavorite
	if err := s.repo.Update(ctx, thought); err != nil {
		return nil, fmt.Errorf("service: toggling favorite on %s: %w", id, err)
	}
	return thought, nil
}

// Delete removes the caller's thought permanently.
func (s *ThoughtService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id, msgNotYoursDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: deleting thought %s: %w", id, err)
	}

	s.logger.Info("thought deleted", slog.String("id", id), slog.String("owner", ownerID))
	return nil
}

// DeleteAll removes every thought the owner has and reports how many went.
// Used by the seed command's --clear flag.
func (s *ThoughtService) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	thoughts, err := s.repo.List(ctx, repository.NewThoughtQuery(ownerID))
	if err != nil {
		return 0, fmt.Errorf("service: listing thoughts to clear: %w", err)
	}
	for _, t := range thoughts {
		if err := s.repo.Delete(ctx, t.ID); err != nil {
			return 0, fmt.Errorf("service: clearing thought %s: %w", t.ID, err)
		}
	}
	return len(thoughts), nil
}

// Stats summarizes the caller's collection. Computed fresh on every call.
func (s *ThoughtService) Stats(ctx context.Context, ownerID string) (*model.Stats, error) {
	total, err := s.repo.Count(ctx, repository.NewThoughtQuery(ownerID))
	if err != nil {
		return nil, fmt.Errorf("service: counting thoughts: %w", err)
	}
	favorites, err := s.repo.Count(ctx, repository.NewThoughtQuery(ownerID).Favorite(true))
	if err != nil {
		return nil, fmt.Errorf("service: counting favorites: %w", err)
	}
	breakdown, err := s.repo.CountByCategory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: grouping by category: %w", err)
	}
	tags, err := s.repo.DistinctTags(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: collecting tags: %w", err)
	}

	if breakdown == nil {
		breakdown = []model.CategoryCount{}
	}
	if tags == nil {
		tags = []string{}
	}
	return &model.Stats{
		TotalThoughts:     total,
		FavoriteCount:     favorites,
		CategoryBreakdown: breakdown,
		TotalCategories:   len(breakdown),
		AllTags:           tags,
		TotalTags:         len(tags),
	}, nil
}

// owned loads a thought and checks that ownerID owns it. A missing thought
// is reported before an ownership mismatch.
func (s *ThoughtService) owned(ctx context.Context, ownerID, id, refusal string) (*model.Thought, error) {
	thought, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: fetching thought %s: %w", id, err)
	}
	if thought.UserID != ownerID {
		s.logger.Warn("ownership check failed",
			slog.String("id", id),
			slog.String("caller", ownerID),
		)
		return nil, apperror.Forbidden(refusal)
	}
	return thought, nil
}
