package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/brain-bank/internal/apperror"
)

func validThought() *Thought {
	return &Thought{
		UserID:   "owner-1",
		Title:    "Dream Bigger",
		Content:  "Plan for who you want to become.",
		Category: CategoryGoal,
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%q.Valid() = false, want true", c)
		}
	}
	for _, c := range []Category{"", "idea", "Journal", "Random "} {
		if c.Valid() {
			t.Errorf("%q.Valid() = true, want false", c)
		}
	}
}

func TestNormalize(t *testing.T) {
	th := &Thought{Title: "  spaced  ", Content: "\tbody\n"}
	th.Normalize()

	if th.Title != "spaced" {
		t.Errorf("Title = %q, want %q", th.Title, "spaced")
	}
	if th.Content != "body" {
		t.Errorf("Content = %q, want %q", th.Content, "body")
	}
	if th.Tags == nil || len(th.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", th.Tags)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Thought)
		wantErr   bool
		wantField string
	}{
		{name: "valid", mutate: func(*Thought) {}},
		{
			name:      "missing title",
			mutate:    func(th *Thought) { th.Title = "" },
			wantErr:   true,
			wantField: "title",
		},
		{
			name:      "missing title and content",
			mutate:    func(th *Thought) { th.Title, th.Content = "", "" },
			wantErr:   true,
			wantField: "title,content",
		},
		{
			name:   "title at limit",
			mutate: func(th *Thought) { th.Title = strings.Repeat("a", MaxTitleLength) },
		},
		{
			name:      "title over limit",
			mutate:    func(th *Thought) { th.Title = strings.Repeat("a", MaxTitleLength+1) },
			wantErr:   true,
			wantField: "title",
		},
		{
			name:   "multibyte title counted in characters",
			mutate: func(th *Thought) { th.Title = strings.Repeat("é", MaxTitleLength) },
		},
		{
			name:      "content over limit",
			mutate:    func(th *Thought) { th.Content = strings.Repeat("b", MaxContentLength+1) },
			wantErr:   true,
			wantField: "content",
		},
		{
			name:      "empty category",
			mutate:    func(th *Thought) { th.Category = "" },
			wantErr:   true,
			wantField: "category",
		},
		{
			name:      "unknown category",
			mutate:    func(th *Thought) { th.Category = "Journal" },
			wantErr:   true,
			wantField: "category",
		},
		{
			name:      "no owner",
			mutate:    func(th *Thought) { th.UserID = "" },
			wantErr:   true,
			wantField: "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := validThought()
			tt.mutate(th)

			err := th.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}
