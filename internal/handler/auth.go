package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/auth"
	"github.com/sakif/brain-bank/internal/service"
)

const stateCookie = "oauth_state"

// SessionCookie describes the cookie that carries the identity token.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// set writes the token cookie.
//
// COOKIE FLAGS:
//   - HttpOnly: page scripts cannot read the token
//   - SameSite=Lax locally; SameSite=None (which browsers only accept with
//     Secure) when the frontend is served from another site over HTTPS
func (c SessionCookie) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

func (c SessionCookie) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// AuthHandler serves /api/auth.
//
// HANDLERS:
//   - HandleRegister, HandleLogin → issue the session cookie
//   - HandleLogout                → clear it
//   - HandleMe                    → who am I (guarded)
//   - HandleGitHubLogin/Callback  → GitHub sign-in, when configured
type AuthHandler struct {
	auth        *service.AuthService
	github      *auth.GitHubProvider // nil when GitHub sign-in is off
	cookie      SessionCookie
	frontendURL string
	logger      *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	github *auth.GitHubProvider,
	cookie SessionCookie,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:        authService,
		github:      github,
		cookie:      cookie,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, "register", err)
		return
	}

	h.cookie.set(w, res.Token)
	writeData(w, http.StatusCreated, res.User)
}

// HandleLogin signs in with email and password.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.cookie.set(w, res.Token)
	writeData(w, http.StatusOK, res.User)
}

// HandleLogout clears the session cookie. The token itself stays valid until
// it expires; without the cookie the browser just stops sending it.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookie.clear(w)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Logged out successfully"})
}

// HandleMe returns the user RequireAuth put in the context.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized(auth.MsgNoToken))
		return
	}
	writeData(w, http.StatusOK, user)
}

// HandleGitHubLogin sends the browser to GitHub.
//
// HTTP: GET /api/auth/github/login
//
// A random state goes both into a short-lived cookie and into the GitHub
// URL; the callback only proceeds if the two match.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes GitHub sign-in and returns the browser to
// the frontend with the session cookie set.
//
// HTTP: GET /api/auth/github/callback?code=..&state=..
//
// FLOW:
//  1. compare state with the cookie (CSRF check)
//  2. bail out to the frontend if the user denied access
//  3. exchange the code for a GitHub profile
//  4. upsert the user and issue a token
//  5. set the cookie and redirect
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	saved, err := r.Cookie(stateCookie)
	if err != nil || saved.Value == "" || query.Get("state") != saved.Value {
		h.logger.Warn("github callback: state mismatch")
		writeError(w, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if reason := query.Get("error"); reason != "" {
		h.logger.Info("github callback: access denied", slog.String("error", reason))
		http.Redirect(w, r, h.frontendURL+"/?auth=denied", http.StatusSeeOther)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "Missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.frontendURL+"/?auth=failed", http.StatusSeeOther)
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: sign-in failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, h.frontendURL+"/?auth=failed", http.StatusSeeOther)
		return
	}

	h.cookie.set(w, res.Token)
	http.Redirect(w, r, h.frontendURL+"/", http.StatusSeeOther)
}

func (h *AuthHandler) fail(w http.ResponseWriter, action string, err error) {
	if _, known := statusFor(err); !known {
		h.logger.Error(action+" failed", slog.String("error", err.Error()))
	}
	writeError(w, err)
}
