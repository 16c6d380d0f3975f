// FILE: logship/src/internal/sink/http_client.go
package sink

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

const maxReasonLength = 512

// HTTPTransmitter posts batches to the raw ingestion endpoint.
type HTTPTransmitter struct {
	url     string
	apiKey  string
	timeout time.Duration

	client *fasthttp.Client
	logger *log.Logger

	startTime time.Time

	// Statistics
	totalRequests     atomic.Uint64
	successRequests   atomic.Uint64
	retryableFailures atomic.Uint64
	permanentFailures atomic.Uint64
	bytesSent         atomic.Uint64
	lastStatusCode    atomic.Int64
	lastSent          atomic.Value // time.Time
}

// TransmitterOption customizes an HTTPTransmitter.
type TransmitterOption func(*HTTPTransmitter)

// WithDial replaces the connection dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) TransmitterOption {
	return func(h *HTTPTransmitter) {
		h.client.Dial = dial
	}
}

// NewHTTPTransmitter creates a transmitter for cfg.Endpoint.
func NewHTTPTransmitter(cfg config.ShipperConfig, logger *log.Logger, opts ...TransmitterOption) (*HTTPTransmitter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("transmitter endpoint cannot be empty")
	}
	if logger == nil {
		logger = log.NewLogger()
	}
	cfg = cfg.WithDefaults()

	h := &HTTPTransmitter{
		url:       cfg.IngestURL(),
		apiKey:    cfg.APIKey,
		timeout:   cfg.SendTimeout(),
		logger:    logger,
		startTime: time.Now(),
	}
	h.lastSent.Store(time.Time{})

	h.client = &fasthttp.Client{
		Name:                          version.UserAgent(),
		MaxConnsPerHost:               4,
		MaxIdleConnDuration:           10 * time.Second,
		ReadTimeout:                   h.timeout,
		WriteTimeout:                  h.timeout,
		DisableHeaderNamesNormalizing: true,
	}

	if strings.HasPrefix(h.url, "https://") && cfg.InsecureSkipVerify {
		h.client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
		logger.Warn("msg", "Server certificate verification disabled",
			"component", "http_transmitter",
			"url", h.url)
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Send posts body once and classifies the result.
func (h *HTTPTransmitter) Send(ctx context.Context, body []byte) Result {
	start := time.Now()
	h.totalRequests.Add(1)

	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		if err == nil {
			err = context.DeadlineExceeded
		}
		return h.record(Result{
			Outcome:  OutcomeRetryable,
			Err:      fmt.Errorf("send not attempted: %w", err),
			Duration: time.Since(start),
		})
	}

	// Acquire resources per attempt, release immediately after use
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(h.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(core.ContentType)
	req.Header.Set("User-Agent", version.UserAgent())
	if h.apiKey != "" {
		req.Header.Set(core.APIKeyHeader, h.apiKey)
	}
	req.SetBody(body)

	err := h.client.DoTimeout(req, resp, timeout)

	statusCode := resp.StatusCode()
	var responseBody []byte
	if len(resp.Body()) > 0 {
		responseBody = make([]byte, len(resp.Body()))
		copy(responseBody, resp.Body())
	}

	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			err = fmt.Errorf("request timed out after %v: %w", timeout, err)
		} else {
			err = fmt.Errorf("request failed: %w", err)
		}
		return h.record(Result{
			Outcome:  OutcomeRetryable,
			Err:      err,
			Duration: time.Since(start),
		})
	}

	h.bytesSent.Add(uint64(len(body)))
	h.lastSent.Store(time.Now())

	res := Result{
		Outcome:    Classify(statusCode),
		StatusCode: statusCode,
		Duration:   time.Since(start),
	}
	if res.Outcome != OutcomeSuccess {
		res.Reason = extractReason(responseBody)
		res.Err = fmt.Errorf("server returned status %d", statusCode)
	}
	return h.record(res)
}

func (h *HTTPTransmitter) record(res Result) Result {
	h.lastStatusCode.Store(int64(res.StatusCode))
	switch res.Outcome {
	case OutcomeSuccess:
		h.successRequests.Add(1)
	case OutcomeRetryable:
		h.retryableFailures.Add(1)
	case OutcomePermanent:
		h.permanentFailures.Add(1)
	}
	return res
}

// extractReason returns the Error field of a {"Error":"..."} body, or the
// body text itself, truncated.
func extractReason(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	reason := strings.TrimSpace(string(body))
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength] + "..."
	}
	return reason
}

// GetStats returns the transmitter's statistics.
func (h *HTTPTransmitter) GetStats() TransmitterStats {
	lastSent, _ := h.lastSent.Load().(time.Time)

	return TransmitterStats{
		Type:              "http",
		TotalRequests:     h.totalRequests.Load(),
		SuccessRequests:   h.successRequests.Load(),
		RetryableFailures: h.retryableFailures.Load(),
		PermanentFailures: h.permanentFailures.Load(),
		BytesSent:         h.bytesSent.Load(),
		StartTime:         h.startTime,
		LastSent:          lastSent,
		Details: map[string]any{
			"url":              h.url,
			"timeout_ms":       h.timeout.Milliseconds(),
			"api_key_set":      h.apiKey != "",
			"last_status_code": h.lastStatusCode.Load(),
		},
	}
}
