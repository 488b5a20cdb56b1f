package server

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/minimax-mcp/internal/fal"
)

func TestNewFillsDefaults(t *testing.T) {
	s := New(Options{})

	require.NotNil(t, s)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.logger)
	assert.NotNil(t, s.materializer)
	assert.False(t, s.cfg.HasCredentials())
}

func TestRespondRecoversPanic(t *testing.T) {
	gw := &fakeGateway{panics: true}
	s := newTestServer(t, testConfig(t.TempDir()), gw)

	res, _, err := s.handleGenerate(context.Background(), nil, GenerateArgs{Prompt: "fox"})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Internal error while running "+ToolGenerate, resultText(t, res))
}

// connect runs s over an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := s.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

// rejected reports whether a call failed, either at the protocol level or as
// a tool error result.
func rejected(res *mcp.CallToolResult, err error) bool {
	return err != nil || (res != nil && res.IsError)
}

func TestListToolsOverMCP(t *testing.T) {
	cs := connect(t, newTestServer(t, testConfig(t.TempDir()), &fakeGateway{}))

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolGenerate, ToolGenerateQueue, ToolQueueStatus, ToolQueueResult}, names)
}

func TestNumImagesBoundsOverMCP(t *testing.T) {
	tests := []struct {
		name      string
		numImages int
		accepted  bool
	}{
		{"minimum", 1, true},
		{"maximum", 9, true},
		{"above maximum", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{result: &fal.Result{}}
			cs := connect(t, newTestServer(t, testConfig(t.TempDir()), gw))

			res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
				Name: ToolGenerate,
				Arguments: map[string]any{
					"prompt":     "a fox",
					"num_images": tt.numImages,
				},
			})

			if tt.accepted {
				require.NoError(t, err)
				assert.False(t, res.IsError)
				assert.Equal(t, 1, gw.Calls())
				assert.Equal(t, tt.numImages, gw.lastInput.NumImages)
				return
			}
			assert.True(t, rejected(res, err))
			assert.Equal(t, 0, gw.Calls())
		})
	}
}

func TestUnknownAspectRatioOverMCP(t *testing.T) {
	gw := &fakeGateway{handle: &fal.QueueHandle{RequestID: "x"}}
	cs := connect(t, newTestServer(t, testConfig(t.TempDir()), gw))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGenerateQueue,
		Arguments: map[string]any{"prompt": "a fox", "aspect_ratio": "5:4"},
	})

	assert.True(t, rejected(res, err))
	assert.Equal(t, 0, gw.Calls())
}

func TestMissingKeyOverMCP(t *testing.T) {
	gw := &fakeGateway{}
	cfg := testConfig(t.TempDir())
	cfg.APIKey = ""
	cs := connect(t, newTestServer(t, cfg, gw))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolQueueStatus,
		Arguments: map[string]any{"request_id": "abc"},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "FAL_KEY")
	assert.Equal(t, 0, gw.Calls())
}

func TestQueueStatusOverMCP(t *testing.T) {
	gw := &fakeGateway{status: &fal.QueueStatus{Status: fal.StatusCompleted}}
	cs := connect(t, newTestServer(t, testConfig(t.TempDir()), gw))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolQueueStatus,
		Arguments: map[string]any{"request_id": "req-xyz"},
	})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "req-xyz")
	assert.Contains(t, resultText(t, res), "COMPLETED")
	// logs defaults to true when omitted
	assert.True(t, gw.lastLogs)
}
