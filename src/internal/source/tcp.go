// FILE: logship/src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

var errLineTooLong = errors.New("line too long")

// TCPSource receives newline-delimited log lines over TCP
type TCPSource struct {
	host         string
	port         int64
	bufferSize   int64
	maxLineBytes int
	server       *tcpSourceServer
	subscribers  []chan core.LogEvent
	mu           sync.RWMutex
	stopped      bool
	engine       *gnet.Engine
	engineMu     sync.Mutex
	wg           sync.WaitGroup
	logger       *log.Logger

	// Statistics
	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	invalidEntries atomic.Uint64
	activeConns    atomic.Int64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

// NewTCPSource creates a TCP line source.
func NewTCPSource(opts config.TCPSourceOptions, logger *log.Logger) (*TCPSource, error) {
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("tcp source requires a valid port, got %d", opts.Port)
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	host := opts.Host
	if host == "" {
		host = "0.0.0.0"
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	maxLine := int(opts.MaxLineBytes)
	if maxLine <= 0 {
		maxLine = 1024 * 1024
	}

	t := &TCPSource{
		host:         host,
		port:         opts.Port,
		bufferSize:   bufferSize,
		maxLineBytes: maxLine,
		startTime:    time.Now(),
		logger:       logger,
	}
	t.lastEntryTime.Store(time.Time{})
	return t, nil
}

func (t *TCPSource) Subscribe() <-chan core.LogEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan core.LogEvent, t.bufferSize)
	t.subscribers = append(t.subscribers, ch)
	return ch
}

func (t *TCPSource) Start() error {
	t.server = &tcpSourceServer{
		source:  t,
		clients: make(map[gnet.Conn]*lineBuffer),
	}

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.logger.Info("msg", "TCP source server starting",
			"component", "tcp_source",
			"port", t.port)

		err := gnet.Run(t.server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			t.logger.Error("msg", "TCP source server failed",
				"component", "tcp_source",
				"port", t.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for server to start or fail
	select {
	case err := <-errChan:
		t.wg.Wait()
		if err == nil {
			err = fmt.Errorf("tcp source server exited during startup")
		}
		return err
	case <-time.After(100 * time.Millisecond):
		t.logger.Info("msg", "TCP source started",
			"component", "tcp_source",
			"host", t.host,
			"port", t.port)
		return nil
	}
}

func (t *TCPSource) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	t.logger.Info("msg", "Stopping TCP source", "component", "tcp_source")

	t.engineMu.Lock()
	engine := t.engine
	t.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		(*engine).Stop(ctx)
	}

	t.wg.Wait()

	t.mu.Lock()
	for _, ch := range t.subscribers {
		close(ch)
	}
	t.mu.Unlock()

	t.logger.Info("msg", "TCP source stopped", "component", "tcp_source")
}

func (t *TCPSource) GetStats() SourceStats {
	lastEntry, _ := t.lastEntryTime.Load().(time.Time)

	return SourceStats{
		Type:           "tcp",
		TotalEntries:   t.totalEntries.Load(),
		DroppedEntries: t.droppedEntries.Load(),
		StartTime:      t.startTime,
		LastEntryTime:  lastEntry,
		Details: map[string]any{
			"host":               t.host,
			"port":               t.port,
			"active_connections": t.activeConns.Load(),
			"invalid_entries":    t.invalidEntries.Load(),
		},
	}
}

func (t *TCPSource) publish(event core.LogEvent) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped {
		return
	}

	t.totalEntries.Add(1)
	t.lastEntryTime.Store(event.Timestamp)

	dropped := false
	for _, ch := range t.subscribers {
		select {
		case ch <- event:
		default:
			dropped = true
			t.droppedEntries.Add(1)
		}
	}

	if dropped {
		t.logger.Debug("msg", "Dropped log event - subscriber buffer full",
			"component", "tcp_source")
	}
}

// lineBuffer accumulates a connection's bytes and splits complete lines.
type lineBuffer struct {
	buf     bytes.Buffer
	maxLine int
}

// feed appends data and returns every complete non-empty line. It fails
// when a partial line grows past the limit.
func (b *lineBuffer) feed(data []byte) ([][]byte, error) {
	b.buf.Write(data)

	var lines [][]byte
	for {
		idx := bytes.IndexByte(b.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(b.buf.Next(idx+1), "\r\n")
		if len(line) > b.maxLine {
			return lines, errLineTooLong
		}
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}

	if b.buf.Len() > b.maxLine {
		return lines, errLineTooLong
	}
	return lines, nil
}

// tcpSourceServer handles gnet events
type tcpSourceServer struct {
	gnet.BuiltinEventEngine
	source  *TCPSource
	clients map[gnet.Conn]*lineBuffer
	mu      sync.RWMutex
}

func (s *tcpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()

	s.source.logger.Debug("msg", "TCP source server booted",
		"component", "tcp_source",
		"port", s.source.port)
	return gnet.None
}

func (s *tcpSourceServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	s.mu.Lock()
	s.clients[c] = &lineBuffer{maxLine: s.source.maxLineBytes}
	s.mu.Unlock()

	newCount := s.source.activeConns.Add(1)
	s.source.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_source",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpSourceServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	newCount := s.source.activeConns.Add(-1)
	s.source.logger.Debug("msg", "TCP connection closed",
		"component", "tcp_source",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount,
		"error", err)
	return gnet.None
}

func (s *tcpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading from connection",
			"component", "tcp_source",
			"error", err)
		return gnet.Close
	}

	lines, err := client.feed(data)

	now := time.Now()
	for _, line := range lines {
		s.source.publish(ParseLine(line, now, "tcp"))
	}

	if err != nil {
		s.source.invalidEntries.Add(1)
		s.source.logger.Warn("msg", "Line too long, closing connection",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"limit", s.source.maxLineBytes)
		return gnet.Close
	}

	return gnet.None
}
