package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, github_id, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email "+user.Email)
		}
		return fmt.Errorf("postgres: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// UpsertGitHubUser relies on INSERT ... ON CONFLICT against the partial
// unique index on github_id, so first and repeat logins are one round trip.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, github_id, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (github_id) WHERE github_id <> 0
		 DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
		               avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at, updated_at`,
		xid.New().String(),
		user.Name,
		user.Email,
		user.GitHubID,
		user.AvatarURL,
		now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email "+user.Email)
		}
		return fmt.Errorf("postgres: upserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// GetUserByID leaves password_hash out of the projection.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := xid.FromString(id); err != nil {
		return nil, apperror.NotFound("user")
	}

	var u model.User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, github_id, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.GitHubID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, classify(err, "user", "getting user "+id)
	}
	return &u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.NotFound("user")
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, name, email, password_hash, github_id, avatar_url, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}

	// RowToStructByPos fills userRow's fields in column order.
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}
	return u.toModel(), nil
}

// userRow matches the column order of the GetUserByEmail projection.
type userRow struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	GitHubID     int64
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		GitHubID:     r.GitHubID,
		AvatarURL:    r.AvatarURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
