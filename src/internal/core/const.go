// FILE: logship/src/internal/core/const.go
package core

import "time"

// Ingestion endpoint wire constants
const (
	IngestPath   = "/api/events/raw"
	APIKeyHeader = "X-Seq-ApiKey"
	ContentType  = "application/json"
)

// Shipper defaults
const (
	DefaultBatchPayloadLimit    = 10 * 1024 * 1024
	DefaultEventBodyLimit       = 256 * 1024
	DefaultMaxRetries           = 5
	DefaultRetryDelay           = 2 * time.Second
	DefaultSendTimeout          = 30 * time.Second
	DefaultDebounceDelay        = 2 * time.Second
	DefaultPlaceholderPrefixLen = 64
)

// MinEventBodyLimit leaves room for a placeholder with an empty template
// prefix: timestamp, level, marker text and both size properties.
const MinEventBodyLimit = 256
