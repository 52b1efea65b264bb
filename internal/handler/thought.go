package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/brain-bank/internal/apperror"
	"github.com/sakif/brain-bank/internal/auth"
	"github.com/sakif/brain-bank/internal/model"
	"github.com/sakif/brain-bank/internal/service"
)

// ThoughtHandler serves /api/thoughts. Every route sits behind
// auth.RequireAuth, so the caller is always in the request context.
type ThoughtHandler struct {
	thoughts *service.ThoughtService
	logger   *slog.Logger
}

func NewThoughtHandler(thoughts *service.ThoughtService, logger *slog.Logger) *ThoughtHandler {
	return &ThoughtHandler{thoughts: thoughts, logger: logger}
}

// createRequest is the body of POST /api/thoughts. It has no owner field,
// so a "user" key in the body is ignored by the decoder.
type createRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category model.Category `json:"category"`
	Tags     []string       `json:"tags"`
}

// optional records whether a JSON key was present at all. encoding/json
// calls UnmarshalJSON for a present key even when its value is null, and
// never calls it for an absent key, which is exactly the distinction an
// update needs.
type optional[T any] struct {
	Set   bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// ptr is nil for an absent key and points at the (possibly zero) value
// otherwise.
func (o optional[T]) ptr() *T {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// updateRequest is the body of PUT /api/thoughts/{id}.
type updateRequest struct {
	Title      optional[string]         `json:"title"`
	Content    optional[string]         `json:"content"`
	Category   optional[model.Category] `json:"category"`
	Tags       optional[[]string]       `json:"tags"`
	IsFavorite optional[bool]           `json:"isFavorite"`
}

func (u updateRequest) patch() service.ThoughtPatch {
	return service.ThoughtPatch{
		Title:      u.Title.ptr(),
		Content:    u.Content.ptr(),
		Category:   u.Category.ptr(),
		Tags:       u.Tags.ptr(),
		IsFavorite: u.IsFavorite.ptr(),
	}
}

// HandleList returns the caller's thoughts.
//
// HTTP: GET /api/thoughts?search=go&category=Learning&tag=coding&isFavorite=true
//
// Every query parameter is echoed back under "filters". isFavorite only
// means true when it is the literal string "true"; any other non-empty value
// filters for non-favorites.
func (h *ThoughtHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filters := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	filter := service.ThoughtFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Tag:      query.Get("tag"),
	}
	if v := query.Get("isFavorite"); v != "" {
		fav := v == "true"
		filter.Favorite = &fav
	}

	thoughts, err := h.thoughts.List(r.Context(), owner, filter)
	if err != nil {
		h.fail(w, r, "list thoughts", err)
		return
	}
	writeList(w, thoughts, len(thoughts), filters)
}

// HandleFavorites returns the caller's favorites.
//
// HTTP: GET /api/thoughts/favorites/all
func (h *ThoughtHandler) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	thoughts, err := h.thoughts.Favorites(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "list favorites", err)
		return
	}
	writeList(w, thoughts, len(thoughts), nil)
}

// HandleStats returns the caller's summary numbers.
//
// HTTP: GET /api/thoughts/stats/summary
func (h *ThoughtHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	stats, err := h.thoughts.Stats(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "compute stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// HandleGetByID returns one thought.
//
// HTTP: GET /api/thoughts/{id}
func (h *ThoughtHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	thought, err := h.thoughts.GetByID(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get thought", err)
		return
	}
	writeData(w, http.StatusOK, thought)
}

// HandleCreate stores a new thought for the caller.
//
// HTTP: POST /api/thoughts
// BODY: {"title":"...","content":"...","category":"Idea","tags":["go"]}
func (h *ThoughtHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	thought, err := h.thoughts.Create(r.Context(), owner, service.CreateThoughtInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		h.fail(w, r, "create thought", err)
		return
	}
	writeData(w, http.StatusCreated, thought)
}

// HandleUpdate patches a thought.
//
// HTTP: PUT /api/thoughts/{id}
//
// Keys left out of the body keep their stored value; a key sent as null is
// cleared. The result is validated as a whole, so {"title":null} is a 400.
func (h *ThoughtHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	thought, err := h.thoughts.Update(r.Context(), owner, chi.URLParam(r, "id"), req.patch())
	if err != nil {
		h.fail(w, r, "update thought", err)
		return
	}
	writeData(w, http.StatusOK, thought)
}

// HandleDelete removes a thought.
//
// HTTP: DELETE /api/thoughts/{id}
func (h *ThoughtHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	if err := h.thoughts.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete thought", err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Thought deleted successfully",
		Data:    struct{}{},
	})
}

// HandleToggleFavorite flips isFavorite.
//
// HTTP: PATCH /api/thoughts/{id}/favorite
func (h *ThoughtHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	thought, err := h.thoughts.ToggleFavorite(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "toggle favorite", err)
		return
	}
	writeData(w, http.StatusOK, thought)
}

// fail logs unexpected errors (expected ones are already in the access log
// as a 4xx) and writes the response.
func (h *ThoughtHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if _, known := statusFor(err); !known {
		h.logger.Error("failed to "+action,
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, err)
}

// ownerFrom reads the caller's id. Only reachable without one if a route
// was mounted outside the guard.
func ownerFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized(auth.MsgNoToken))
		return "", false
	}
	return id, true
}
