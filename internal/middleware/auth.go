package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/auth"
)

// Authenticator validates a bearer token and returns its user id.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// caller's Identity to the context otherwise.
func RequireAuth(tokens Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			userID, err := tokens.Authenticate(token)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an Identity when a token is present. Requests without
// an Authorization header pass through anonymously; a bad token is still
// rejected.
func OptionalAuth(tokens Authenticator) func(http.Handler) http.Handler {
	required := RequireAuth(tokens)
	return func(next http.Handler) http.Handler {
		withAuth := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Unauthenticated("authorization token required", nil)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperr.Unauthenticated("invalid authorization header", nil)
	}
	return strings.TrimSpace(token), nil
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	ae := apperr.As(err)
	msg := ae.Message
	if ae.Kind != apperr.KindUnauthenticated {
		msg = "invalid or expired token"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="tripkit"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
