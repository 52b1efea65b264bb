package repository

import (
	"slices"
	"strings"

	"github.com/sakif/brain-bank/internal/model"
)

// ClauseKind identifies one predicate in a ThoughtQuery.
type ClauseKind int

const (
	// ClauseOwner restricts to thoughts owned by Clause.Value. Always present.
	ClauseOwner ClauseKind = iota
	// ClauseSearch matches Clause.Value case-insensitively as a substring of
	// the title OR the content.
	ClauseSearch
	// ClauseCategory matches the category exactly.
	ClauseCategory
	// ClauseFavorite matches isFavorite == Clause.Flag.
	ClauseFavorite
	// ClauseTag matches thoughts whose tag list contains Clause.Value.
	ClauseTag
)

// Clause is a single typed predicate.
type Clause struct {
	Kind  ClauseKind
	Value string
	Flag  bool
}

// ThoughtQuery is an owner-scoped list of predicates combined with AND.
//
// BUILDER PATTERN:
// Instead of assembling an untyped map of conditions, callers chain methods:
//
//	q := repository.NewThoughtQuery(userID).Search("go").Tag("learning")
//
// The owner clause is added by the constructor, so a query that is not
// scoped to a user cannot be built. Each storage adapter translates the
// clauses into its own query language; Matches evaluates them in memory.
type ThoughtQuery struct {
	clauses []Clause
}

// NewThoughtQuery starts a query restricted to ownerID's thoughts.
func NewThoughtQuery(ownerID string) *ThoughtQuery {
	return &ThoughtQuery{clauses: []Clause{{Kind: ClauseOwner, Value: ownerID}}}
}

func (q *ThoughtQuery) Search(term string) *ThoughtQuery {
	q.clauses = append(q.clauses, Clause{Kind: ClauseSearch, Value: term})
	return q
}

func (q *ThoughtQuery) Category(c model.Category) *ThoughtQuery {
	q.clauses = append(q.clauses, Clause{Kind: ClauseCategory, Value: string(c)})
	return q
}

func (q *ThoughtQuery) Favorite(fav bool) *ThoughtQuery {
	q.clauses = append(q.clauses, Clause{Kind: ClauseFavorite, Flag: fav})
	return q
}

func (q *ThoughtQuery) Tag(tag string) *ThoughtQuery {
	q.clauses = append(q.clauses, Clause{Kind: ClauseTag, Value: tag})
	return q
}

// Clauses returns a copy of the predicates, owner clause first.
func (q *ThoughtQuery) Clauses() []Clause {
	return slices.Clone(q.clauses)
}

// OwnerID returns the user the query is scoped to.
func (q *ThoughtQuery) OwnerID() string {
	return q.clauses[0].Value
}

// Matches reports whether t satisfies every clause.
func (q *ThoughtQuery) Matches(t *model.Thought) bool {
	for _, c := range q.clauses {
		if !c.matches(t) {
			return false
		}
	}
	return true
}

func (c Clause) matches(t *model.Thought) bool {
	switch c.Kind {
	case ClauseOwner:
		return t.UserID == c.Value
	case ClauseSearch:
		term := strings.ToLower(c.Value)
		return strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Content), term)
	case ClauseCategory:
		return string(t.Category) == c.Value
	case ClauseFavorite:
		return t.IsFavorite == c.Flag
	case ClauseTag:
		return slices.Contains(t.Tags, c.Value)
	}
	return false
}
