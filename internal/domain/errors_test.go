package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("content", "required")

	if got := err.Error(); got != "content: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "email", Message: "required"},
		{Field: "nickname", Message: "max 30 characters"},
	})

	if got := err.Error(); got != "email: required; nickname: max 30 characters" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestRuleError_UnwrapsThroughWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("community.Join: %w", NewRuleError("already a member of this community"))

	if !errors.Is(err, ErrRuleViolation) {
		t.Fatal("wrapped RuleError should match ErrRuleViolation")
	}

	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatal("errors.As should find *RuleError")
	}
	if re.Message != "already a member of this community" {
		t.Errorf("message = %q", re.Message)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrForbidden, ErrRuleViolation,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
