package handler

// RESPONSE ENVELOPE:
// Every JSON response, success or failure, has the same outer shape:
//
//	{"success": true,  "count": 2, "filters": {...}, "data": [...]}
//	{"success": false, "message": "Thought not found"}
//	{"success": false, "message": "Server Error", "error": "<detail>"}
//
// The frontend checks `success` first and only then looks at the rest.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/brain-bank/internal/apperror"
)

// maxBodyBytes caps request bodies. A thought is at most ~1100 characters
// of text, so this leaves generous room for JSON overhead and tags.
const maxBodyBytes = 1 << 20

// Envelope is the JSON shape of every API response. Optional members are
// interface-typed so an empty-but-present value ({} or []) is still written.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Filters any    `json:"filters,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends v with the given status. Headers must be set before
// WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone already; logging is all that is left.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

// writeList sends a collection with its count. filters is echoed back
// verbatim when non-nil.
func writeList(w http.ResponseWriter, data any, count int, filters map[string]string) {
	env := Envelope{Success: true, Count: &count, Data: data}
	if filters != nil {
		env.Filters = filters
	}
	writeJSON(w, http.StatusOK, env)
}

// writeError maps an error to its status code and envelope.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400
//	apperror.ErrUnauthorized → 401
//	apperror.ErrForbidden    → 403
//	apperror.ErrNotFound     → 404
//	apperror.ErrConflict     → 409
//	anything else            → 500 "Server Error" with the error text
//
// The kinds are found with errors.Is, so a service may wrap an AppError in
// as many fmt.Errorf("...: %w") layers as it likes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusFor(err); ok {
			writeJSON(w, status, Envelope{Message: appErr.Message, Field: appErr.Field})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, Envelope{
		Message: "Server Error",
		Error:   err.Error(),
	})
}

func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, true
	}
	return 0, false
}

// decodeJSON reads a single JSON document from the request body into dst.
// An empty body decodes as {}; any syntax or type error is a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("", "Request body too large")
		}
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}
