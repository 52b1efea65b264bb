// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in sub-packages (sqlite,
// postgres); tests use in-memory fakes.
//
// Every adapter is responsible for classifying its own driver errors before
// returning them: "no row" and structurally invalid ids become
// apperror.NotFound, unique violations become apperror.Conflict. Callers never
// inspect driver-specific errors.
package repository

import (
	"context"

	"github.com/sakif/brain-bank/internal/model"
)

// ThoughtRepository stores thoughts.
type ThoughtRepository interface {
	Create(ctx context.Context, thought *model.Thought) error
	GetByID(ctx context.Context, id string) (*model.Thought, error)
	List(ctx context.Context, q *ThoughtQuery) ([]model.Thought, error)
	Update(ctx context.Context, thought *model.Thought) error
	Delete(ctx context.Context, id string) error

	// Count returns how many thoughts match q.
	Count(ctx context.Context, q *ThoughtQuery) (int, error)
	// CountByCategory groups the owner's thoughts by category, largest
	// group first (ties broken by category name).
	CountByCategory(ctx context.Context, ownerID string) ([]model.CategoryCount, error)
	// DistinctTags returns every tag the owner has used, once, sorted.
	DistinctTags(ctx context.Context, ownerID string) ([]string, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	// CreateUser inserts a password user. Returns apperror.ErrConflict if the
	// email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	// UpsertGitHubUser inserts or refreshes a user keyed by GitHubID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	// GetUserByID returns the user without its password hash.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail returns the user including its password hash, for login.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Store bundles everything the server needs from a storage backend. It is
// constructed once at startup and injected; there is no package-level
// connection.
type Store interface {
	ThoughtRepository
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}
