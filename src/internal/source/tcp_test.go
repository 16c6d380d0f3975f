package source

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineBuffer(t *testing.T) {
	b := &lineBuffer{maxLine: 16}

	lines, err := b.feed([]byte("hello\r\nwor"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("hello")}, lines)

	lines, err = b.feed([]byte("ld\n\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("world")}, lines)

	_, err = b.feed([]byte(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, errLineTooLong)
}

func TestLineBuffer_LongCompleteLine(t *testing.T) {
	b := &lineBuffer{maxLine: 4}
	lines, err := b.feed([]byte("ok\ntoolong\n"))
	assert.ErrorIs(t, err, errLineTooLong)
	assert.Equal(t, [][]byte{[]byte("ok")}, lines)
}

func TestNewTCPSource_InvalidPort(t *testing.T) {
	_, err := NewTCPSource(config.TCPSourceOptions{Port: 0}, nil)
	assert.Error(t, err)
	_, err = NewTCPSource(config.TCPSourceOptions{Port: 70000}, nil)
	assert.Error(t, err)
}

func freePort(t *testing.T) int64 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return int64(port)
}

func TestTCPSource_ReceivesLines(t *testing.T) {
	port := freePort(t)
	s, err := NewTCPSource(config.TCPSourceOptions{
		Host:         "127.0.0.1",
		Port:         port,
		BufferSize:   10,
		MaxLineBytes: 1024,
	}, nil)
	require.NoError(t, err)

	ch := s.Subscribe()
	require.NoError(t, s.Start())
	defer s.Stop()

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	_, err = conn.Write([]byte("WARN low disk\n{\"@mt\":\"json {X}\",\"X\":1}\n"))
	require.NoError(t, err)
	defer conn.Close()

	var got []core.LogEvent
	timeout := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("received %d of 2 events", len(got))
		}
	}

	assert.Equal(t, core.LevelWarning, got[0].Level)
	assert.Equal(t, "WARN low disk", got[0].MessageTemplate)
	assert.Equal(t, "json {X}", got[1].MessageTemplate)
	assert.Equal(t, "tcp", got[1].Properties["Source"])
	assert.Equal(t, uint64(2), s.GetStats().TotalEntries)
}
