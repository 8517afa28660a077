package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pysugar/drivelink/internal/auth/session"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/logging"
	"github.com/pysugar/drivelink/internal/service"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, body map[string]interface{}) {
	if body == nil {
		body = map[string]interface{}{}
	}
	body["ok"] = true
	writeJSON(w, http.StatusOK, body)
}

// writeError maps service and upstream errors onto {ok:false, error}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		logging.Printf(r.Context(), "❌ %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, map[string]interface{}{"ok": false, "error": message})
}

func classify(err error) (int, string) {
	var upstream *drive.UpstreamError
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrMemberCapReached):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrScanInProgress):
		return http.StatusConflict, "scan in progress"
	case errors.As(err, &upstream):
		if upstream.Status < 400 {
			return http.StatusBadGateway, upstream.Message
		}
		return upstream.Status, upstream.Message
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// flexString accepts a JSON string or number. Telegram ids arrive as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// readJSON decodes the request body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return &service.Error{Kind: service.ErrValidation, Message: "Invalid request body"}
	}
	return nil
}

// queryBool reads a boolean query flag. Anything unparsable is false.
func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// sessionUser returns the signed-in user id set by the session middleware.
func sessionUser(r *http.Request) string {
	if id, ok := session.FromContext(r.Context()); ok {
		return id.UserID
	}
	return ""
}

// nullable renders an empty string as JSON null.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
