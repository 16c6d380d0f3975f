// FILE: logship/src/internal/source/stdin.go
package source

import (
	"bufio"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

const maxStdinLineBytes = 1024 * 1024

// StdinSource reads log lines from standard input
type StdinSource struct {
	reader      io.Reader
	bufferSize  int64
	subscribers []chan core.LogEvent
	mu          sync.RWMutex
	stopped     bool
	done        chan struct{}
	eof         chan struct{}
	logger      *log.Logger

	// Statistics
	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

// StdinIsTerminal reports whether standard input is an interactive terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewStdinSource creates a source reading os.Stdin.
func NewStdinSource(opts config.StdinSourceOptions, logger *log.Logger) *StdinSource {
	return newReaderSource(os.Stdin, opts.BufferSize, logger)
}

func newReaderSource(r io.Reader, bufferSize int64, logger *log.Logger) *StdinSource {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	s := &StdinSource{
		reader:     r,
		bufferSize: bufferSize,
		done:       make(chan struct{}),
		eof:        make(chan struct{}),
		logger:     logger,
		startTime:  time.Now(),
	}
	s.lastEntryTime.Store(time.Time{})
	return s
}

func (s *StdinSource) Subscribe() <-chan core.LogEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan core.LogEvent, s.bufferSize)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *StdinSource) Start() error {
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started", "component", "stdin_source")
	return nil
}

// EOF is closed when the input is exhausted.
func (s *StdinSource) EOF() <-chan struct{} {
	return s.eof
}

func (s *StdinSource) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.mu.Unlock()

	s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
}

func (s *StdinSource) GetStats() SourceStats {
	lastEntry, _ := s.lastEntryTime.Load().(time.Time)

	return SourceStats{
		Type:           "stdin",
		TotalEntries:   s.totalEntries.Load(),
		DroppedEntries: s.droppedEntries.Load(),
		StartTime:      s.startTime,
		LastEntryTime:  lastEntry,
		Details:        map[string]any{},
	}
}

func (s *StdinSource) readLoop() {
	defer close(s.eof)

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinLineBytes)
	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.publish(ParseLine(line, time.Now(), "stdin"))
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
		return
	}
	s.logger.Info("msg", "Stdin reached end of input",
		"component", "stdin_source",
		"total_entries", s.totalEntries.Load())
}

// publish hands event to every subscriber without blocking the reader.
func (s *StdinSource) publish(event core.LogEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}

	s.totalEntries.Add(1)
	s.lastEntryTime.Store(event.Timestamp)

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.droppedEntries.Add(1)
			s.logger.Debug("msg", "Dropped log event - subscriber buffer full",
				"component", "stdin_source")
		}
	}
}
