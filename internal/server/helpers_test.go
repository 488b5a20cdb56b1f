package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/minimax-mcp/internal/artifact"
	"github.com/ironsheep/minimax-mcp/internal/fal"
	"github.com/ironsheep/minimax-mcp/internal/infra"
)

// fakeGateway records calls and returns canned responses.
type fakeGateway struct {
	mu    sync.Mutex
	calls int

	result *fal.Result
	handle *fal.QueueHandle
	status *fal.QueueStatus
	err    error
	panics bool

	lastInput     fal.GenerateInput
	lastWebhook   string
	lastRequestID string
	lastLogs      bool
}

func (g *fakeGateway) record() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.panics {
		panic("gateway exploded")
	}
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) Subscribe(_ context.Context, input fal.GenerateInput) (*fal.Result, error) {
	g.record()
	g.lastInput = input
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *fakeGateway) Submit(_ context.Context, input fal.GenerateInput, webhookURL string) (*fal.QueueHandle, error) {
	g.record()
	g.lastInput = input
	g.lastWebhook = webhookURL
	if g.err != nil {
		return nil, g.err
	}
	h := *g.handle
	h.WebhookURL = webhookURL
	return &h, nil
}

func (g *fakeGateway) Status(_ context.Context, requestID string, logs bool) (*fal.QueueStatus, error) {
	g.record()
	g.lastRequestID = requestID
	g.lastLogs = logs
	if g.err != nil {
		return nil, g.err
	}
	return g.status, nil
}

func (g *fakeGateway) Result(_ context.Context, requestID string) (*fal.Result, error) {
	g.record()
	g.lastRequestID = requestID
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func testConfig(dir string) *infra.Config {
	return &infra.Config{
		APIKey:    "test-key",
		Model:     infra.DefaultModel,
		QueueURL:  infra.DefaultQueueURL,
		OutputDir: dir,
	}
}

// newTestServer wires a server to gw and a real materializer writing into a
// temporary directory.
func newTestServer(t *testing.T, cfg *infra.Config, gw Gateway) *Server {
	t.Helper()
	if cfg.OutputDir == "" {
		cfg.OutputDir = t.TempDir()
	}
	logger := infra.NopLogger()
	return New(Options{
		Config:       cfg,
		Gateway:      gw,
		Materializer: artifact.New(artifact.Options{Dir: cfg.OutputDir, Logger: &logger}),
		Logger:       &logger,
		Version:      "test",
	})
}

// newImageHost serves a small PNG under /img/ and 404s everything else.
func newImageHost(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	body := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
