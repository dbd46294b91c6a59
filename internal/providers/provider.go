// Package providers implements text-to-speech clients behind a common
// interface, with config-driven registration and hot reload.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TTSProvider converts text to audio.
type TTSProvider interface {
	// Name returns the provider identifier (e.g., "openai").
	Name() string

	// Generate converts text to audio.
	Generate(ctx context.Context, req *TTSRequest) (*TTSResult, error)

	// HealthCheck verifies the provider is reachable and credentialed.
	HealthCheck(ctx context.Context) error

	// Retry properties used by the audio jobs.
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// VoicesLister is implemented by providers that can enumerate their voices.
type VoicesLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// TTSRequest is one text-to-speech generation request.
type TTSRequest struct {
	// Text to speak. Callers split long paragraphs before requesting.
	Text string `json:"text"`

	// Voice overrides the provider's configured default when set.
	Voice string `json:"voice,omitempty"`

	// Format is the audio output format ("mp3", "wav", ...).
	Format string `json:"format,omitempty"`

	// Instructions steer delivery on models that support them.
	Instructions string `json:"instructions,omitempty"`
}

// TTSResult is the outcome of a generation request.
type TTSResult struct {
	Success       bool          `json:"success"`
	Audio         []byte        `json:"-"`
	DurationMS    int           `json:"duration_ms"`
	Format        string        `json:"format"`
	CostUSD       float64       `json:"cost_usd"`
	CharCount     int           `json:"char_count"`
	ExecutionTime time.Duration `json:"execution_time"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// Voice describes one available voice.
type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

// RateLimitError signals a 429 from a provider, carrying the server's
// suggested backoff when one was given.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError unwraps err looking for a RateLimitError.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter interprets a Retry-After header value, either delay
// seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
