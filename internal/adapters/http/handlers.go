package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"brickyard/internal/domain/apperr"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts session notes to HTML, falling back to escaped text.
func renderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		slog.Warn("markdown_render_failed", "error", err)
		return "<p>" + htmlEscape(md) + "</p>"
	}
	return buf.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// generateToken creates an unguessable approval token.
func generateToken() string {
	return uuid.New().String()
}

// envelope is the uniform response body for every JSON endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a success envelope around data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// writeFailure writes a failure envelope with a client-facing message.
func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: message}); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// writeError maps an error to its status code and envelope.
// Validation and Conflict are 400, NotFound is 404, anything else is 500.
func writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		writeFailure(w, http.StatusBadRequest, err.Error())
	case apperr.KindNotFound:
		writeFailure(w, http.StatusNotFound, err.Error())
	default:
		internalError(w, err)
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeFailure(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}

// requireAdmin rejects requests without the admin=1 query flag.
// It is a toggle for the UI, not an access control.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("admin") == "1" {
		return true
	}
	writeFailure(w, http.StatusForbidden, "Admin access required")
	return false
}
