package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/tripkit/internal/apperr"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndAuthenticate(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := m.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestAuthenticateNonExpiring(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	token, _ := m.Issue(1)

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("exp = %v, want none", claims.ExpiresAt)
	}

	m.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }
	if _, err := m.Authenticate(token); err != nil {
		t.Errorf("authenticate far in the future: %v", err)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	valid, _ := m.Issue(5)

	expired := NewTokenManager(testSecret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue(5)

	otherKey, _ := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour).Issue(5)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "5"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "5"}).
		SignedString([]byte(testSecret))

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString([]byte(testSecret))

	zeroSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "0"}).
		SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "not.a.token"},
		{"tampered", valid + "x"},
		{"expired", old},
		{"wrong key", otherKey},
		{"alg none", none},
		{"wrong algorithm", hs512},
		{"non-numeric subject", badSubject},
		{"zero subject", zeroSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Authenticate(tt.token)
			if !apperr.Is(err, apperr.KindUnauthenticated) {
				t.Errorf("err = %v, want unauthenticated", err)
			}
		})
	}
}
