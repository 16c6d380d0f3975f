// FILE: logship/src/cmd/logship/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/log"
)

// SignalHandler routes OS signals: SIGUSR1 flushes the queue, SIGINT and
// SIGTERM end the process.
type SignalHandler struct {
	logger  *log.Logger
	sigChan chan os.Signal
	flush   func(ctx context.Context) error
}

func NewSignalHandler(flush func(ctx context.Context) error, logger *log.Logger) *SignalHandler {
	sh := &SignalHandler{
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
		flush:   flush,
	}

	signal.Notify(sh.sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	return sh
}

// Handle blocks until a termination signal arrives or ctx is done.
func (sh *SignalHandler) Handle(ctx context.Context) os.Signal {
	for {
		select {
		case sig := <-sh.sigChan:
			if sig != syscall.SIGUSR1 {
				return sig
			}
			sh.logger.Info("msg", "Flush signal received",
				"component", "signal_handler",
				"signal", sig)
			if sh.flush != nil {
				go func() {
					if err := sh.flush(ctx); err != nil {
						sh.logger.Warn("msg", "Flush failed",
							"component", "signal_handler",
							"error", err)
					}
				}()
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (sh *SignalHandler) Stop() {
	signal.Stop(sh.sigChan)
}
