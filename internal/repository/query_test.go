package repository

import (
	"testing"

	"github.com/sakif/brain-bank/internal/model"
)

func TestNewThoughtQuery_AlwaysScopedToOwner(t *testing.T) {
	q := NewThoughtQuery("user-a")

	clauses := q.Clauses()
	if len(clauses) != 1 || clauses[0].Kind != ClauseOwner || clauses[0].Value != "user-a" {
		t.Fatalf("Clauses() = %+v, want single owner clause", clauses)
	}
	if q.OwnerID() != "user-a" {
		t.Errorf("OwnerID() = %q, want %q", q.OwnerID(), "user-a")
	}
}

func TestClauses_ReturnsCopy(t *testing.T) {
	q := NewThoughtQuery("user-a").Tag("x")
	clauses := q.Clauses()
	clauses[0].Value = "user-b"

	if q.OwnerID() != "user-a" {
		t.Error("mutating Clauses() result changed the query")
	}
}

func TestMatches(t *testing.T) {
	th := &model.Thought{
		UserID:     "user-a",
		Title:      "Learning Go",
		Content:    "Channels are typed conduits",
		Category:   model.CategoryLearning,
		Tags:       []string{"go", "concurrency"},
		IsFavorite: true,
	}

	tests := []struct {
		name  string
		query *ThoughtQuery
		want  bool
	}{
		{"owner only", NewThoughtQuery("user-a"), true},
		{"other owner", NewThoughtQuery("user-b"), false},
		{"search title case-insensitive", NewThoughtQuery("user-a").Search("learning"), true},
		{"search content", NewThoughtQuery("user-a").Search("CONDUIT"), true},
		{"search miss", NewThoughtQuery("user-a").Search("rust"), false},
		{"category hit", NewThoughtQuery("user-a").Category(model.CategoryLearning), true},
		{"category miss", NewThoughtQuery("user-a").Category(model.CategoryGoal), false},
		{"favorite true", NewThoughtQuery("user-a").Favorite(true), true},
		{"favorite false", NewThoughtQuery("user-a").Favorite(false), false},
		{"tag hit", NewThoughtQuery("user-a").Tag("go"), true},
		{"tag is exact", NewThoughtQuery("user-a").Tag("Go"), false},
		{"conjunction all hit", NewThoughtQuery("user-a").Search("go").Tag("concurrency").Favorite(true), true},
		{"conjunction one miss", NewThoughtQuery("user-a").Category(model.CategoryLearning).Tag("x"), false},
		{"other owner with matching filters", NewThoughtQuery("user-b").Tag("go"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(th); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
