package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockTTSName = "mock"

// MockTTS is a TTSProvider for testing.
type MockTTS struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailFirst  int // Fail the first N requests (0 = never)
	Audio      []byte

	// Retry properties
	Retries    int
	RetryDelay time.Duration

	// State
	requestCount atomic.Int64
}

// NewMockTTS creates a new mock provider with sensible defaults.
func NewMockTTS() *MockTTS {
	return &MockTTS{
		Audio:      []byte("mock audio"),
		Retries:    3,
		RetryDelay: time.Millisecond,
	}
}

// Name returns the provider identifier.
func (m *MockTTS) Name() string {
	return MockTTSName
}

// MaxRetries returns the maximum retry attempts.
func (m *MockTTS) MaxRetries() int {
	return m.Retries
}

// RetryDelayBase returns the base delay between retries.
func (m *MockTTS) RetryDelayBase() time.Duration {
	return m.RetryDelay
}

// HealthCheck always succeeds unless the mock is set to fail.
func (m *MockTTS) HealthCheck(_ context.Context) error {
	if m.ShouldFail {
		return fmt.Errorf("mock provider unhealthy")
	}
	return nil
}

// RequestCount returns the number of Generate calls so far.
func (m *MockTTS) RequestCount() int64 {
	return m.requestCount.Load()
}

// Generate returns canned audio, failing the first FailFirst requests.
func (m *MockTTS) Generate(ctx context.Context, req *TTSRequest) (*TTSResult, error) {
	start := time.Now()
	n := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return &TTSResult{ErrorMessage: ctx.Err().Error()}, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if m.ShouldFail || n <= int64(m.FailFirst) {
		err := fmt.Errorf("mock generation failure")
		return &TTSResult{
			ErrorMessage:  err.Error(),
			CharCount:     len(req.Text),
			ExecutionTime: time.Since(start),
		}, err
	}

	format := req.Format
	if format == "" {
		format = "mp3"
	}
	return &TTSResult{
		Success:       true,
		Audio:         m.Audio,
		DurationMS:    len(req.Text) * 10,
		Format:        format,
		CharCount:     len(req.Text),
		ExecutionTime: time.Since(start),
	}, nil
}

var _ TTSProvider = (*MockTTS)(nil)
