package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/repository"
)

var _ repository.ThoughtRepository = (*DB)(nil)

const thoughtColumns = `id, user_id, title, content, category, tags, is_favorite, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so one scan
// function serves single lookups and list iteration.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanThought(row rowScanner) (*model.Thought, error) {
	var (
		t        model.Thought
		category string
		tagsJSON string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Content, &category, &tagsJSON,
		&t.IsFavorite, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Category = model.Category(category)
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of thought %s: %w", t.ID, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

// Create inserts a new thought.
//
// ID GENERATION WITH xid:
// xid ids are 20 URL-safe characters and sort by creation time, which gives
// us a stable tie-breaker when two thoughts share a created_at timestamp.
//
// Timestamps are stored in UTC so their text form sorts chronologically.
func (db *DB) Create(ctx context.Context, thought *model.Thought) error {
	thought.ID = xid.New().String()
	now := time.Now().UTC()
	thought.CreatedAt = now
	thought.UpdatedAt = now

	tags, err := encodeTags(thought.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating thought: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO thoughts (`+thoughtColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		thought.ID,
		thought.UserID,
		thought.Title,
		thought.Content,
		string(thought.Category),
		tags,
		thought.IsFavorite,
		thought.CreatedAt,
		thought.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating thought: %w", err)
	}
	return nil
}

// GetByID retrieves a single thought by its ID.
//
// An id that is not a well-formed xid can never exist, so it is reported as
// NotFound without touching the database. Callers cannot tell a malformed id
// from an unknown one.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Thought, error) {
	if _, err := xid.FromString(id); err != nil {
		return nil, apperror.NotFound("thought")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+thoughtColumns+` FROM thoughts WHERE id = ?`, id)
	t, err := scanThought(row)
	if err != nil {
		return nil, classify(err, "thought", "getting thought "+id)
	}
	return t, nil
}

// List returns every thought matching q, newest first. There is no LIMIT:
// the API returns all matches.
func (db *DB) List(ctx context.Context, q *repository.ThoughtQuery) ([]model.Thought, error) {
	where, args := whereClause(q)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+thoughtColumns+` FROM thoughts
		 WHERE `+where+`
		 ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing thoughts: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	thoughts := make([]model.Thought, 0)
	for rows.Next() {
		t, err := scanThought(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning thought row: %w", err)
		}
		thoughts = append(thoughts, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating thoughts: %w", err)
	}

	return thoughts, nil
}

// Update overwrites the mutable fields of a thought and refreshes updated_at.
// id, user_id and created_at are never written.
func (db *DB) Update(ctx context.Context, thought *model.Thought) error {
	if _, err := xid.FromString(thought.ID); err != nil {
		return apperror.NotFound("thought")
	}

	thought.UpdatedAt = time.Now().UTC()
	tags, err := encodeTags(thought.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: updating thought %s: %w", thought.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE thoughts
		 SET title = ?, content = ?, category = ?, tags = ?, is_favorite = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		thought.Title,
		thought.Content,
		string(thought.Category),
		tags,
		thought.IsFavorite,
		thought.UpdatedAt,
		thought.ID,
		thought.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating thought %s: %w", thought.ID, err)
	}

	// RowsAffected() == 0 means the WHERE clause matched nothing → not found.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("thought")
	}
	return nil
}

// Delete removes a thought permanently.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.NotFound("thought")
	}

	result, err := db.conn.ExecContext(ctx, `DELETE FROM thoughts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting thought %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("thought")
	}
	return nil
}

func (db *DB) Count(ctx context.Context, q *repository.ThoughtQuery) (int, error) {
	where, args := whereClause(q)

	var n int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM thoughts WHERE `+where, args...,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting thoughts: %w", err)
	}
	return n, nil
}

func (db *DB) CountByCategory(ctx context.Context, ownerID string) ([]model.CategoryCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT category, COUNT(*) AS n
		 FROM thoughts
		 WHERE user_id = ?
		 GROUP BY category
		 ORDER BY n DESC, category ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: grouping thoughts by category: %w", err)
	}
	defer rows.Close()

	counts := make([]model.CategoryCount, 0, len(model.Categories))
	for rows.Next() {
		var (
			category string
			c        model.CategoryCount
		)
		if err := rows.Scan(&category, &c.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category count: %w", err)
		}
		c.Category = model.Category(category)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category counts: %w", err)
	}
	return counts, nil
}

// DistinctTags unnests every tag array with json_each and de-duplicates.
func (db *DB) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT j.value
		 FROM thoughts t, json_each(t.tags) j
		 WHERE t.user_id = ?
		 ORDER BY j.value`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing distinct tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

// whereClause translates the query's clauses into a parameterized SQL
// condition. Values are always bound with ?, never spliced into the string.
//
// Search uses instr() rather than LIKE so that % and _ in the search term
// are matched literally, and go_lower() rather than lower() so that
// non-ASCII letters fold too.
func whereClause(q *repository.ThoughtQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	for _, c := range q.Clauses() {
		switch c.Kind {
		case repository.ClauseOwner:
			conds = append(conds, "user_id = ?")
			args = append(args, c.Value)
		case repository.ClauseSearch:
			conds = append(conds, "(instr(go_lower(title), go_lower(?)) > 0 OR instr(go_lower(content), go_lower(?)) > 0)")
			args = append(args, c.Value, c.Value)
		case repository.ClauseCategory:
			conds = append(conds, "category = ?")
			args = append(args, c.Value)
		case repository.ClauseFavorite:
			conds = append(conds, "is_favorite = ?")
			args = append(args, c.Flag)
		case repository.ClauseTag:
			conds = append(conds, "EXISTS (SELECT 1 FROM json_each(thoughts.tags) WHERE json_each.value = ?)")
			args = append(args, c.Value)
		}
	}
	return strings.Join(conds, " AND "), args
}
