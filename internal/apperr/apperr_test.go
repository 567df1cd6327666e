package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("name is required"), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{Unauthenticated("missing token", nil), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("expense"), http.StatusNotFound},
		{Conflict("username taken"), http.StatusConflict},
		{Upstream("yelp", http.StatusServiceUnavailable, nil), http.StatusServiceUnavailable},
		{Upstream("yelp", http.StatusUnauthorized, nil), http.StatusBadGateway},
		{Upstream("yelp", 0, errors.New("dial tcp")), http.StatusBadGateway},
		{Internal(errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.Status(); got != tt.want {
			t.Errorf("%v: Status() = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("get expense: %w", NotFound("expense"))
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindNotFound)
	}
	if !Is(err, KindNotFound) {
		t.Error("expected Is(err, KindNotFound)")
	}
	if Is(nil, KindNotFound) {
		t.Error("nil error should not match any kind")
	}
}

func TestAsUnclassified(t *testing.T) {
	cause := errors.New("boom")
	ae := As(cause)
	if ae.Kind != KindInternal {
		t.Errorf("kind = %v, want internal", ae.Kind)
	}
	if !errors.Is(ae, cause) {
		t.Error("expected internal error to unwrap to cause")
	}
	if ae.Message != "internal error" {
		t.Errorf("message = %q, want %q", ae.Message, "internal error")
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("packing list").Message; got != "packing list not found" {
		t.Errorf("message = %q", got)
	}
}
