package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/model"
)

// fakeUsers serves GetUserByID from a map; err, when set, is returned for
// every lookup.
type fakeUsers struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

// runGuard sends one request through RequireAuth and returns the recorder
// plus the user the protected handler saw (nil if it never ran).
func runGuard(t *testing.T, users UserLookup, cookie *http.Cookie) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	ts := newTestTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen *model.User
	protected := RequireAuth(ts, users, "token", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/thoughts", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	return rec, seen
}

func decodeGuardError(t *testing.T, rec *httptest.ResponseRecorder) guardError {
	t.Helper()
	var body guardError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body
}

func TestRequireAuth_NoCookie(t *testing.T) {
	rec, seen := runGuard(t, &fakeUsers{}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if seen != nil {
		t.Error("handler should not run without a token")
	}
	if body := decodeGuardError(t, rec); body.Success || body.Message != MsgNoToken {
		t.Errorf("body = %+v", body)
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	rec, _ := runGuard(t, &fakeUsers{}, &http.Cookie{Name: "token", Value: "garbage"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeGuardError(t, rec); body.Message != MsgTokenFailed {
		t.Errorf("message = %q, want %q", body.Message, MsgTokenFailed)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.GenerateWithDuration("u1", -time.Minute)
	users := &fakeUsers{users: map[string]*model.User{"u1": {ID: "u1"}}}

	rec, _ := runGuard(t, users, &http.Cookie{Name: "token", Value: token})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("ghost")

	rec, _ := runGuard(t, &fakeUsers{}, &http.Cookie{Name: "token", Value: token})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeGuardError(t, rec); body.Message != MsgNoUser {
		t.Errorf("message = %q, want %q", body.Message, MsgNoUser)
	}
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("u1")

	rec, _ := runGuard(t, &fakeUsers{err: errors.New("disk on fire")}, &http.Cookie{Name: "token", Value: token})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeGuardError(t, rec)
	if body.Message != "Server Error" || body.Error != "disk on fire" {
		t.Errorf("body = %+v", body)
	}
}

func TestRequireAuth_AttachesUser(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("u1")
	users := &fakeUsers{users: map[string]*model.User{"u1": {ID: "u1", Name: "Ada"}}}

	rec, seen := runGuard(t, users, &http.Cookie{Name: "token", Value: token})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if seen == nil || seen.Name != "Ada" {
		t.Errorf("user in context = %+v", seen)
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("empty context should have no user")
	}

	ctx := WithUser(context.Background(), &model.User{ID: "u9"})
	id, ok := UserIDFromContext(ctx)
	if !ok || id != "u9" {
		t.Errorf("UserIDFromContext() = %q, %v", id, ok)
	}
}

// brokenWriter accepts headers but fails every body write, like a client
// that hung up.
type brokenWriter struct {
	header http.Header
	status int
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(status int) { b.status = status }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteGuardError_LogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	w := &brokenWriter{header: http.Header{}}

	writeGuardError(w, logger, http.StatusUnauthorized, MsgNoToken, "")

	if w.status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.status)
	}
	if !strings.Contains(logs.String(), "encoding response") || !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("log = %q, want the encode failure", logs.String())
	}
}
