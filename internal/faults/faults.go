// Package faults defines the error kinds shared across pipeline stages.
// Stages wrap these sentinels with fmt.Errorf("...: %w", ...) so the
// orchestrator can classify failures with errors.Is without depending on
// stage internals.
package faults

import "errors"

var (
	// ErrEmptyTranscript means the conversation produced no turns. There is
	// nothing downstream to do; the conversation is left unmarked so a later
	// poll can retry once the upstream service has finalized it.
	ErrEmptyTranscript = errors.New("empty transcript")

	// ErrStorage is a local I/O failure writing an artifact. Retryable.
	ErrStorage = errors.New("storage failure")

	// ErrUpstreamUnavailable is a transient failure against the LLM or
	// knowledge-base service (network, auth, rate limit, 5xx). Retryable
	// with bounded backoff.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse means the LLM answered but the payload could not
	// be parsed into the expected structure. Not retried automatically: a
	// fresh call to a non-deterministic model is no fix for a systemic
	// prompt/parse mismatch.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrUpstreamUnavailable)
}
