package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestFromKeepsKindThroughWrapping(t *testing.T) {
	base := Conflict("slot occupied")
	wrapped := fmt.Errorf("create booking: %w", base)

	got := From(wrapped)
	if got.Kind != KindConflict {
		t.Fatalf("expected conflict, got %s", got.Kind)
	}
	if got.Message != "slot occupied" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestFromUnknownIsDatabase(t *testing.T) {
	got := From(errors.New("connection reset"))
	if got.Kind != KindDatabase {
		t.Fatalf("expected database kind, got %s", got.Kind)
	}
	if got.Detail != "connection reset" {
		t.Fatalf("expected detail to carry cause, got %q", got.Detail)
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) must be nil")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		code   codes.Code
	}{
		{KindValidation, http.StatusBadRequest, codes.InvalidArgument},
		{KindPermission, http.StatusForbidden, codes.PermissionDenied},
		{KindNotFound, http.StatusNotFound, codes.NotFound},
		{KindConflict, http.StatusConflict, codes.FailedPrecondition},
		{KindDatabase, http.StatusInternalServerError, codes.Internal},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.kind); got != c.status {
			t.Fatalf("%s: expected http %d, got %d", c.kind, c.status, got)
		}
		if got := GRPCCode(c.kind); got != c.code {
			t.Fatalf("%s: expected grpc %s, got %s", c.kind, c.code, got)
		}
	}
}

func TestIs(t *testing.T) {
	if !Is(NotFound("booking not found"), KindNotFound) {
		t.Fatalf("expected not found")
	}
	if Is(nil, KindNotFound) {
		t.Fatalf("nil must not match")
	}
}
