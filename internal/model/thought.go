// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/brain-bank/internal/apperror"
)

// Field limits for a Thought. Lengths are counted in characters (runes),
// not bytes, so "café" is 4 characters long.
const (
	MaxTitleLength   = 100
	MaxContentLength = 1000
)

// Category classifies what kind of thought an entry is.
//
// WHY A NAMED STRING TYPE?
// A plain string would accept anything. A named type lets us hang methods on
// it (Valid) and makes function signatures self-documenting: a parameter of
// type Category is obviously not a title or a tag.
type Category string

const (
	CategoryIdea     Category = "Idea"
	CategoryGoal     Category = "Goal"
	CategoryQuote    Category = "Quote"
	CategoryReminder Category = "Reminder"
	CategoryLearning Category = "Learning"
	CategoryRandom   Category = "Random"
)

// DefaultCategory is applied when a thought is created without one.
const DefaultCategory = CategoryRandom

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryIdea,
	CategoryGoal,
	CategoryQuote,
	CategoryReminder,
	CategoryLearning,
	CategoryRandom,
}

// Valid reports whether c is one of the fixed categories. Matching is exact:
// "idea" is not "Idea".
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Thought is a short note owned by exactly one user.
//
// UserID is the owner. It is set from the authenticated identity when the
// thought is created and never changes afterwards; every query, update and
// delete is scoped by it.
type Thought struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   Category  `json:"category"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Normalize trims title and content and replaces a nil tag list with an
// empty one (so it encodes as []). It does not touch the category: the
// default is a create-time rule, and a category cleared by an update must
// fail validation.
func (t *Thought) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Content = strings.TrimSpace(t.Content)
	if t.Tags == nil {
		t.Tags = []string{}
	}
}

// Validate checks the document-level rules every stored thought must satisfy.
// It is run on create and again on the merged document during an update, so
// an update can never persist a thought that would have failed creation.
//
// Call Normalize first; Validate does not trim.
func (t *Thought) Validate() error {
	var missing []string
	if t.Title == "" {
		missing = append(missing, "title")
	}
	if t.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}

	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("Title cannot be more than %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(t.Content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("Content cannot be more than %d characters", MaxContentLength))
	}

	if t.Category == "" {
		return apperror.ValidationFailed("category", "Please select a category")
	}
	if !t.Category.Valid() {
		return apperror.ValidationFailed("category",
			fmt.Sprintf("%q is not a valid category", string(t.Category)))
	}

	if t.UserID == "" {
		return apperror.ValidationFailed("user", "thought must have an owner")
	}
	return nil
}

// CategoryCount is one row of the per-category breakdown in Stats.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Stats is the summary returned by GET /api/thoughts/stats/summary.
type Stats struct {
	TotalThoughts     int             `json:"totalThoughts"`
	FavoriteCount     int             `json:"favoriteCount"`
	CategoryBreakdown []CategoryCount `json:"categoryBreakdown"`
	TotalCategories   int             `json:"totalCategories"`
	AllTags           []string        `json:"allTags"`
	TotalTags         int             `json:"totalTags"`
}
