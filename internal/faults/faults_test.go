package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("save transcript: %w", ErrStorage), true},
		{fmt.Errorf("llm call: %w", ErrUpstreamUnavailable), true},
		{fmt.Errorf("parse profile: %w", ErrMalformedResponse), false},
		{ErrEmptyTranscript, false},
		{errors.New("something else"), false},
	}

	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestWrappedKindSurvivesDoubleWrap(t *testing.T) {
	err := fmt.Errorf("stage: %w", fmt.Errorf("inner: %w", ErrUpstreamUnavailable))
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatal("expected double-wrapped error to match sentinel")
	}
}
