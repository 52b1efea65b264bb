// Command seed loads sample thoughts for an existing user.
//
//	seed --email ada@example.com                      # built-in sample
//	seed --email ada@example.com --file mine.yaml
//	seed --email ada@example.com --file mine.yaml --clear
//
// It reads the same .env / environment as the server, so it writes to
// whichever database the server is configured for.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/brain-bank/internal/config"
	"github.com/sakif/brain-bank/internal/database"
	"github.com/sakif/brain-bank/internal/seed"
	"github.com/sakif/brain-bank/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		email      string
		file       string
		clearFirst bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample thoughts for a user",
		Long: `Seed creates thoughts for an existing Brain Bank user from a YAML fixture.

Each entry goes through the same validation as the API. The run stops at
the first invalid entry; thoughts created before it are kept.`,
		Example: `  seed --email ada@example.com
  seed --email ada@example.com --file thoughts.yaml --clear`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), email, file, clearFirst)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user who will own the thoughts")
	cmd.Flags().StringVar(&file, "file", "", "YAML fixture (defaults to the built-in sample)")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete the user's existing thoughts first")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func run(ctx context.Context, out io.Writer, email, file string, clearFirst bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	items, err := readFixture(file)
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	owner, err := store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}

	res, err := seed.Run(ctx, service.NewThoughtService(store, logger), owner.ID, items, clearFirst, logger)
	if err != nil {
		return err
	}

	if clearFirst {
		fmt.Fprintf(out, "Removed %d existing thoughts\n", res.Cleared)
	}
	fmt.Fprintf(out, "Seeded %d thoughts for %s\n", res.Created, owner.Email)
	return nil
}

func readFixture(path string) ([]seed.Thought, error) {
	if path == "" {
		return seed.Parse(bytes.NewReader(seed.Sample))
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("fixture %s does not exist", path)
		}
		return nil, err
	}
	defer f.Close()
	return seed.Parse(f)
}
