package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsExpectedUserBehavior(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid argument", InvalidArgumentError{Message: "Identifier is required"}, true},
		{"wrapped not found", fmt.Errorf("resolve: %w", NotFoundError{Message: "x"}), true},
		{"already exists", AlreadyExistsError{Field: "username"}, true},
		{"credentials", InvalidCredentialsError{}, true},
		{"rate limited", RateLimitedError{RetryAfter: time.Second}, true},
		{"unauthenticated", UnauthenticatedError{}, true},
		{"integrity", IntegrityError{Collection: "users", ID: "u1"}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpectedUserBehavior(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (NotFoundError{Message: `Username "ghost" not found`}).Error(); got != `Username "ghost" not found` {
		t.Errorf("unexpected message: %s", got)
	}
	if got := (IntegrityError{Collection: "users", ID: "u1"}).Error(); got != "integrity violation: missing users/u1" {
		t.Errorf("unexpected message: %s", got)
	}
	if got := (AlreadyExistsError{Field: "email"}).Error(); got != "email already exists" {
		t.Errorf("unexpected message: %s", got)
	}
}
