package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/tripkit/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func protected(t *testing.T, mw func(http.Handler) http.Handler, gotUser *int64) http.Handler {
	t.Helper()
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/expenses", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected message in error body")
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	foreign, _ := auth.NewTokenManager("another-secret-0123456789", time.Hour).Issue(1)

	for _, header := range []string{
		"Bearer",
		"Basic dXNlcjpwYXNz",
		"Bearer garbage",
		"Bearer " + foreign,
	} {
		var got int64
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		protected(t, RequireAuth(tokens), &got).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	token, _ := tokens.Issue(9)

	var got int64
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected(t, RequireAuth(tokens), &got).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got != 9 {
		t.Errorf("UserID = %d, want 9", got)
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	token, _ := tokens.Issue(3)

	var got int64
	rec := httptest.NewRecorder()
	protected(t, OptionalAuth(tokens), &got).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK || got != 0 {
		t.Errorf("anonymous: status = %d, user = %d", rec.Code, got)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected(t, OptionalAuth(tokens), &got).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || got != 3 {
		t.Errorf("authenticated: status = %d, user = %d", rec.Code, got)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	protected(t, OptionalAuth(tokens), &got).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}
