// FILE: logship/src/internal/sink/sink.go
package sink

import (
	"context"
	"fmt"
	"time"
)

// Outcome classifies a delivery attempt.
type Outcome int

const (
	// OutcomeSuccess means the batch was accepted (2xx).
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable covers transport failures and 5xx responses.
	OutcomeRetryable
	// OutcomePermanent covers every other response; the batch is dropped.
	OutcomePermanent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomePermanent:
		return "permanent"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Classify maps an HTTP status code to an Outcome.
func Classify(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode >= 500:
		return OutcomeRetryable
	default:
		return OutcomePermanent
	}
}

// Result describes one delivery attempt.
type Result struct {
	Outcome Outcome
	// StatusCode is 0 when no response was received
	StatusCode int
	// Reason is the server-provided error text, if any
	Reason   string
	Err      error
	Duration time.Duration
}

// Transmitter delivers one enveloped batch body to the ingestion service.
type Transmitter interface {
	// Send performs exactly one attempt. It must not retry and must not
	// block past the context deadline or its own timeout.
	Send(ctx context.Context, body []byte) Result

	// GetStats returns transmitter statistics
	GetStats() TransmitterStats
}

// TransmitterStats contains statistics about a transmitter
type TransmitterStats struct {
	Type              string
	TotalRequests     uint64
	SuccessRequests   uint64
	RetryableFailures uint64
	PermanentFailures uint64
	BytesSent         uint64
	StartTime         time.Time
	LastSent          time.Time
	Details           map[string]any
}
