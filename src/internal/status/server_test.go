package status

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func startTestServer(t *testing.T, m *metrics.Metrics) *fasthttp.Client {
	t.Helper()

	cfg := &config.StatusConfig{
		Enabled:     true,
		Host:        "127.0.0.1",
		Port:        9110,
		StatusPath:  "/status",
		MetricsPath: "/metrics",
	}
	stats := func() map[string]any {
		return map[string]any{"shipper": map[string]any{"pending": 3}}
	}

	s, err := NewServer(cfg, stats, m, nil)
	require.NoError(t, err)

	ln := fasthttputil.NewInmemoryListener()
	go s.Serve(ln)
	t.Cleanup(func() {
		s.Stop()
		ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}
}

func get(t *testing.T, c *fasthttp.Client, path string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://status.local" + path)
	require.NoError(t, c.DoTimeout(req, resp, 2*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func TestServer_Status(t *testing.T) {
	c := startTestServer(t, metrics.New())

	code, body := get(t, c, "/status")
	require.Equal(t, fasthttp.StatusOK, code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "logship", status["service"])
	shipper, ok := status["shipper"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), shipper["pending"])
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.New()
	m.Emitted()
	c := startTestServer(t, m)

	code, body := get(t, c, "/metrics")
	require.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, string(body), "logship_events_emitted_total 1")
}

func TestServer_MetricsDisabled(t *testing.T) {
	c := startTestServer(t, nil)

	code, _ := get(t, c, "/metrics")
	assert.Equal(t, fasthttp.StatusNotFound, code)
}

func TestServer_NotFound(t *testing.T) {
	c := startTestServer(t, nil)

	code, body := get(t, c, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Not Found"}`, string(body))
}

func TestNewServer_NilConfig(t *testing.T) {
	_, err := NewServer(nil, nil, nil, nil)
	assert.Error(t, err)
}
