package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"audioscribe/internal/models"
	"audioscribe/internal/service"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{
		signUpID:       42,
		genTokenToken:  "tok123",
		parsePrincipal: service.Principal{UserID: 1, Username: "u"},
	}
	sess := &mockSession{state: models.Session{Page: models.PageMain, Phase: models.PhaseIdle}}
	s := newMockService(auth, sess, nil, nil)
	r := newTestRouter(s)

	// sign-up success
	body := bytes.NewBufferString(`{"username":"u","password":"p"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if int(m["id"].(float64)) != 42 {
		t.Fatalf("expected id=42, got %v", m["id"])
	}

	// sign-in success opens the session and returns token + state
	body = bytes.NewBufferString(`{"username":"u","password":"p"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" {
		t.Fatalf("expected token tok123, got %v", m["token"])
	}
	if _, ok := m["state"]; !ok {
		t.Fatalf("expected session state in sign-in response, got %v", m)
	}
	if sess.beginCalls != 1 {
		t.Fatalf("expected Begin to be called once, got %d", sess.beginCalls)
	}
	if sess.lastPrincipal.UserID != 1 || sess.lastPrincipal.Username != "u" {
		t.Fatalf("session opened for wrong principal: %+v", sess.lastPrincipal)
	}

	// sign-in invalid body → 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(`{"username":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestAuthHandlers_SignUpConflict(t *testing.T) {
	auth := &mockAuth{signUpErr: service.ErrUsernameTaken}
	r := newTestRouter(newMockService(auth, nil, nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", bytes.NewBufferString(`{"username":"u","password":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken username, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestAuthHandlers_SignInInvalidCredentials(t *testing.T) {
	auth := &mockAuth{genTokenErr: service.ErrInvalidCredentials}
	sess := &mockSession{}
	r := newTestRouter(newMockService(auth, sess, nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(`{"username":"u","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}
	if sess.beginCalls != 0 {
		t.Fatalf("no session must open on failed sign-in, got %d Begin calls", sess.beginCalls)
	}
}
