package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/lease"
	"github.com/pysugar/drivelink/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &service.Error{Kind: service.ErrValidation, Message: "Missing tg_id"}, http.StatusBadRequest, "Missing tg_id"},
		{"member cap", &service.Error{Kind: service.ErrMemberCapReached, Message: "Max 3 active members reached"}, http.StatusBadRequest, "Max 3 active members reached"},
		{"unauthorized", &service.Error{Kind: service.ErrUnauthorized, Message: "Not linked"}, http.StatusUnauthorized, "Not linked"},
		{"not found", &service.Error{Kind: service.ErrNotFound, Message: "Owner not found"}, http.StatusNotFound, "Owner not found"},
		{"lease held", fmt.Errorf("sync: %w", lease.ErrHeld), http.StatusConflict, "scan in progress"},
		{"upstream", fmt.Errorf("list: %w", &drive.UpstreamError{Status: 403, Message: "Rate Limit Exceeded"}), http.StatusForbidden, "Rate Limit Exceeded"},
		{"upstream without status", &drive.UpstreamError{Message: "bad gateway"}, http.StatusBadGateway, "bad gateway"},
		{"internal", errors.New("database is locked"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := classify(tt.err)
			if status != tt.status || message != tt.message {
				t.Errorf("classify() = (%d, %q), want (%d, %q)", status, message, tt.status, tt.message)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/api/bot/sync", nil), errors.New("dial tcp: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Server error","ok":false}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestFlexString(t *testing.T) {
	var body struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"  42 ","b":1234567890123,"c":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.A != "42" || body.B != "1234567890123" || body.C != "" {
		t.Errorf("unexpected values %+v", body)
	}

	if err := json.Unmarshal([]byte(`{"a":true}`), &body); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestQueryBool(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "1": true, "false": false, "yes": false, "": false} {
		req := httptest.NewRequest(http.MethodGet, "/api/bot/stats?force="+raw, nil)
		if got := queryBool(req, "force"); got != want {
			t.Errorf("queryBool(%q) = %v, want %v", raw, got, want)
		}
	}
}
