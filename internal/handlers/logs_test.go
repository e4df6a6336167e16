package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"audioscribe/internal/models"
	"audioscribe/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parsePrincipal: service.Principal{UserID: 99, Username: "warren"}}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.ActivityEvent{
		{EventID: "e1", Username: "warren", OccurredAt: now, Type: "UPLOAD", Description: "Audio uploaded"},
		{EventID: "e2", Username: "warren", OccurredAt: now.Add(1 * time.Second), Type: "TRANSCRIBE", Description: "Audio transcribed"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(newMockService(auth, nil, nil, logs))

	// invalid 'from' → 400
	w := doAuthed(r, http.MethodGet, "/api/v1/logs/?from=notatime", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// inverted range → 400
	w = doAuthed(r, http.MethodGet, "/api/v1/logs/?from=2025-08-02&to=2025-08-01", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}

	// Valid range and type (lowercase type should be normalized to upper in service call)
	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=transcribe"
	w = doAuthed(r, http.MethodGet, q, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                    `json:"count"`
		Events []models.ActivityEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.Events[0].Type != "UPLOAD" || out.Events[0].Username != "warren" {
		t.Fatalf("unexpected first event: %+v", out.Events[0])
	}
	if logs.lastType != "TRANSCRIBE" {
		t.Fatalf("expected lastType TRANSCRIBE, got %q", logs.lastType)
	}
	if logs.lastUsername != "warren" {
		t.Fatalf("log query not scoped to caller: %q", logs.lastUsername)
	}

	// date-only 'to' is treated as end of day inclusive
	w = doAuthed(r, http.MethodGet, "/api/v1/logs/?to=2025-08-31", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	endOfDay := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	if !logs.lastTo.Equal(endOfDay) {
		t.Fatalf("expected end-of-day 'to' %v, got %v", endOfDay, logs.lastTo)
	}
}
