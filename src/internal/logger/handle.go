// FILE: logship/src/internal/logger/handle.go
package logger

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrNotInitialized is returned by Handle.Get before Set.
	ErrNotInitialized = errors.New("logger not initialized")
	// ErrAlreadyInitialized is returned by a second Handle.Set.
	ErrAlreadyInitialized = errors.New("logger already initialized")
)

// Handle is a set-once holder for the application's Logger. It replaces a
// package-level singleton: the owner creates one and passes it around.
type Handle struct {
	logger atomic.Pointer[Logger]
}

// Set stores l. Only the first call succeeds.
func (h *Handle) Set(l *Logger) error {
	if l == nil {
		return errors.New("logger cannot be nil")
	}
	if !h.logger.CompareAndSwap(nil, l) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get returns the stored Logger or ErrNotInitialized.
func (h *Handle) Get() (*Logger, error) {
	l := h.logger.Load()
	if l == nil {
		return nil, ErrNotInitialized
	}
	return l, nil
}
