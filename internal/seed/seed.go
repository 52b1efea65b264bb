// Package seed loads sample thoughts for a user from a YAML fixture.
//
// Fixtures go through ThoughtService like any API call, so the usual
// validation applies and a bad entry stops the run with its index.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/service"
)

// Sample is the built-in fixture used when no file is given.
//
//go:embed sample.yaml
var Sample []byte

// Thought is one fixture entry.
type Thought struct {
	Title      string   `yaml:"title"`
	Content    string   `yaml:"content"`
	Category   string   `yaml:"category"`
	Tags       []string `yaml:"tags"`
	IsFavorite bool     `yaml:"isFavorite"`
}

type fixture struct {
	Thoughts []Thought `yaml:"thoughts"`
}

// Parse decodes a fixture. Unknown keys are an error so a typo such as
// "favourite" does not silently drop data.
func Parse(r io.Reader) ([]Thought, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed: fixture is empty")
		}
		return nil, fmt.Errorf("seed: parsing fixture: %w", err)
	}
	if len(f.Thoughts) == 0 {
		return nil, errors.New("seed: fixture has no thoughts")
	}
	return f.Thoughts, nil
}

// Result reports what a Run did.
type Result struct {
	Cleared int
	Created int
}

// Run creates items for ownerID. With clearFirst set, the owner's existing
// thoughts are deleted first.
func Run(ctx context.Context, thoughts *service.ThoughtService, ownerID string, items []Thought, clearFirst bool, logger *slog.Logger) (Result, error) {
	var res Result

	if clearFirst {
		n, err := thoughts.DeleteAll(ctx, ownerID)
		if err != nil {
			return res, err
		}
		res.Cleared = n
		logger.Info("cleared existing thoughts", slog.Int("count", n))
	}

	for i, item := range items {
		created, err := thoughts.Create(ctx, ownerID, service.CreateThoughtInput{
			Title:    item.Title,
			Content:  item.Content,
			Category: model.Category(item.Category),
			Tags:     item.Tags,
		})
		if err != nil {
			return res, fmt.Errorf("seed: thought #%d (%q): %w", i+1, item.Title, err)
		}
		res.Created++

		if item.IsFavorite {
			fav := true
			if _, err := thoughts.Update(ctx, ownerID, created.ID, service.ThoughtPatch{IsFavorite: &fav}); err != nil {
				return res, fmt.Errorf("seed: thought #%d (%q) was created but not favorited: %w", i+1, item.Title, err)
			}
		}
	}
	return res, nil
}
