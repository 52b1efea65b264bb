package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/repository"
)

var _ repository.ThoughtRepository = (*DB)(nil)

const thoughtColumns = `id, user_id, title, content, category, tags, is_favorite, created_at, updated_at`

func scanThought(row pgx.Row) (*model.Thought, error) {
	var (
		t        model.Thought
		category string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Content, &category, &t.Tags,
		&t.IsFavorite, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Category = model.Category(category)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (db *DB) Create(ctx context.Context, thought *model.Thought) error {
	thought.ID = xid.New().String()
	now := time.Now().UTC()
	thought.CreatedAt = now
	thought.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO thoughts (`+thoughtColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		thought.ID,
		thought.UserID,
		thought.Title,
		thought.Content,
		string(thought.Category),
		tagsOrEmpty(thought.Tags),
		thought.IsFavorite,
		thought.CreatedAt,
		thought.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating thought: %w", err)
	}
	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Thought, error) {
	if _, err := xid.FromString(id); err != nil {
		return nil, apperror.NotFound("thought")
	}

	t, err := scanThought(db.pool.QueryRow(ctx,
		`SELECT `+thoughtColumns+` FROM thoughts WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "thought", "getting thought "+id)
	}
	return t, nil
}

func (db *DB) List(ctx context.Context, q *repository.ThoughtQuery) ([]model.Thought, error) {
	where, args := whereClause(q)

	rows, err := db.pool.Query(ctx,
		`SELECT `+thoughtColumns+` FROM thoughts
		 WHERE `+where+`
		 ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing thoughts: %w", err)
	}
	defer rows.Close()

	thoughts := make([]model.Thought, 0)
	for rows.Next() {
		t, err := scanThought(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning thought row: %w", err)
		}
		thoughts = append(thoughts, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating thoughts: %w", err)
	}
	return thoughts, nil
}

func (db *DB) Update(ctx context.Context, thought *model.Thought) error {
	if _, err := xid.FromString(thought.ID); err != nil {
		return apperror.NotFound("thought")
	}
	thought.UpdatedAt = time.Now().UTC()

	tag, err := db.pool.Exec(ctx,
		`UPDATE thoughts
		 SET title = $1, content = $2, category = $3, tags = $4, is_favorite = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		thought.Title,
		thought.Content,
		string(thought.Category),
		tagsOrEmpty(thought.Tags),
		thought.IsFavorite,
		thought.UpdatedAt,
		thought.ID,
		thought.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating thought %s: %w", thought.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("thought")
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.NotFound("thought")
	}

	tag, err := db.pool.Exec(ctx, `DELETE FROM thoughts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting thought %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("thought")
	}
	return nil
}

func (db *DB) Count(ctx context.Context, q *repository.ThoughtQuery) (int, error) {
	where, args := whereClause(q)

	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM thoughts WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting thoughts: %w", err)
	}
	return n, nil
}

func (db *DB) CountByCategory(ctx context.Context, ownerID string) ([]model.CategoryCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT category, COUNT(*)::int AS n
		 FROM thoughts
		 WHERE user_id = $1
		 GROUP BY category
		 ORDER BY n DESC, category ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: grouping thoughts by category: %w", err)
	}
	defer rows.Close()

	counts := make([]model.CategoryCount, 0, len(model.Categories))
	for rows.Next() {
		var (
			category string
			c        model.CategoryCount
		)
		if err := rows.Scan(&category, &c.Count); err != nil {
			return nil, fmt.Errorf("postgres: scanning category count: %w", err)
		}
		c.Category = model.Category(category)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating category counts: %w", err)
	}
	return counts, nil
}

func (db *DB) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT tag
		 FROM thoughts, unnest(tags) AS tag
		 WHERE user_id = $1
		 ORDER BY tag`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing distinct tags: %w", err)
	}

	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: collecting tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// whereClause numbers placeholders as it goes ($1, $2, ...). strpos is used
// instead of ILIKE so % and _ in a search term match literally.
func whereClause(q *repository.ThoughtQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range q.Clauses() {
		switch c.Kind {
		case repository.ClauseOwner:
			conds = append(conds, "user_id = "+next(c.Value))
		case repository.ClauseSearch:
			p := next(c.Value)
			conds = append(conds, fmt.Sprintf("(strpos(lower(title), lower(%s)) > 0 OR strpos(lower(content), lower(%s)) > 0)", p, p))
		case repository.ClauseCategory:
			conds = append(conds, "category = "+next(c.Value))
		case repository.ClauseFavorite:
			conds = append(conds, "is_favorite = "+next(c.Flag))
		case repository.ClauseTag:
			conds = append(conds, next(c.Value)+" = ANY(tags)")
		}
	}
	return strings.Join(conds, " AND "), args
}
