package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMeIsNullWhenAnonymous(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user":null`) {
		t.Fatalf("anonymous /me should carry a null user, got %s", w.Body.String())
	}
}

func TestMeWithGarbageCookieIsStillAnonymous(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "quizgen_session", Value: "not-a-jwt"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("a bad cookie must not fail the probe, status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user":null`) {
		t.Fatalf("bad cookie should read as signed out, got %s", w.Body.String())
	}
}

func TestCallbackRejectsStateMismatch(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=forged&code=x", nil)
	req.AddCookie(&http.Cookie{Name: "quizgen_oauth_state", Value: "expected"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_OAUTH_STATE") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestLoginRedirectsToGoogle(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") || !strings.Contains(loc, "state=") {
		t.Fatalf("redirect location = %q", loc)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "quizgen_session" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("logout should expire the session cookie")
	}
}
