package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
)

// contextKey is unexported so no other package can read or overwrite the
// user we store in the request context.
type contextKey string

const userKey contextKey = "user"

// Messages sent with a 401 from the guard.
const (
	MsgNoToken     = "Not authorized, no token"
	MsgTokenFailed = "Not authorized, token failed"
	MsgNoUser      = "Not authorized, user not found"
)

// UserLookup is the slice of the user repository the guard needs. The
// returned user must not carry a password hash.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth guards a route group.
//
// GUARD STEPS:
//  1. read the token from the cookie named cookieName → 401 if absent
//  2. verify signature, issuer and expiry → 401 if any check fails
//  3. load the user by the token's subject → 401 if the user is gone,
//     500 if the store fails
//  4. put the user in the request context and call next
//
// Responses use the same {success,message,error} envelope as the handlers so
// a client sees one error shape whichever layer refused it.
func RequireAuth(tokens *TokenService, users UserLookup, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeGuardError(w, logger, http.StatusUnauthorized, MsgNoToken, "")
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.Debug("rejected token", slog.String("error", err.Error()))
				writeGuardError(w, logger, http.StatusUnauthorized, MsgTokenFailed, "")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			switch {
			case errors.Is(err, apperror.ErrNotFound):
				writeGuardError(w, logger, http.StatusUnauthorized, MsgNoUser, "")
				return
			case err != nil:
				logger.Error("auth guard: loading user",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				writeGuardError(w, logger, http.StatusInternalServerError, "Server Error", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user. Handlers read it back with
// UserFromContext; tests use it to skip the cookie round trip.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// UserIDFromContext is a shortcut for the owner id used by every thought
// operation.
func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}

type guardError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeGuardError writes the same {success, message, error} shape the
// handlers use. The guard runs before any handler, so it encodes its own.
func writeGuardError(w http.ResponseWriter, logger *slog.Logger, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(guardError{Message: message, Error: detail}); err != nil {
		logger.Error("auth guard: encoding response",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
}
