package server

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/minimax-mcp/internal/artifact"
	"github.com/ironsheep/minimax-mcp/internal/fal"
	"github.com/ironsheep/minimax-mcp/internal/infra"
)

// Name is reported to clients during the MCP handshake.
const Name = "minimax-mcp"

const instructions = "Generates images with the MiniMax Image-01 model on fal.ai. " +
	"Use minimax_generate to wait for images in one call, or minimax_generate_queue " +
	"followed by minimax_queue_status and minimax_queue_result for long jobs. " +
	"Generated images are saved under the server's local images directory."

// Gateway is the remote inference API the tools call into.
type Gateway interface {
	Subscribe(ctx context.Context, input fal.GenerateInput) (*fal.Result, error)
	Submit(ctx context.Context, input fal.GenerateInput, webhookURL string) (*fal.QueueHandle, error)
	Status(ctx context.Context, requestID string, logs bool) (*fal.QueueStatus, error)
	Result(ctx context.Context, requestID string) (*fal.Result, error)
}

// Materializer saves generated images locally.
type Materializer interface {
	Materialize(ctx context.Context, images []fal.Image, namingSeed string, seed *int64) []artifact.Artifact
	Dir() string
}

// Options configures a Server.
type Options struct {
	Config       *infra.Config
	Gateway      Gateway
	Materializer Materializer
	Logger       *infra.Logger
	Version      string
}

// Server exposes the MiniMax tools over MCP.
type Server struct {
	cfg          *infra.Config
	gateway      Gateway
	materializer Materializer
	logger       *infra.Logger
	mcp          *mcp.Server
}

// New creates a server with all tools registered. Gateway may be nil when no
// API key is configured; every tool call then reports the missing key.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = &infra.Config{}
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	materializer := opts.Materializer
	if materializer == nil {
		materializer = artifact.New(artifact.Options{Dir: cfg.OutputDir, Logger: logger})
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		cfg:          cfg,
		gateway:      opts.Gateway,
		materializer: materializer,
		logger:       logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    Name,
			Version: version,
		}, &mcp.ServerOptions{
			Instructions: instructions,
		}),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().
		Bool("credentials", s.cfg.HasCredentials()).
		Str("output_dir", s.materializer.Dir()).
		Msg("serving MCP on stdio")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp transport: %w", err)
	}
	return nil
}

// toolFunc is the body of a tool: it returns the success text or an error
// whose message is shown to the caller.
type toolFunc func(ctx context.Context, logger *infra.Logger) (string, error)

// respond runs a tool body and converts its outcome into a tool result. It
// enforces the credential check and never lets an error or panic escape.
func (s *Server) respond(ctx context.Context, tool string, fn toolFunc) (res *mcp.CallToolResult, _ any, _ error) {
	logger := s.logger.With().
		Str("call_id", uuid.NewString()).
		Str("tool", tool).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool handler panicked")
			res = errorResult(fmt.Sprintf("Internal error while running %s", tool))
		}
	}()

	if !s.cfg.HasCredentials() || s.gateway == nil {
		logger.Warn().Msg("call rejected: FAL_KEY not configured")
		return errorResult(missingKeyMessage), nil, nil
	}

	logger.Debug().Msg("tool call started")
	text, err := fn(ctx, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("tool call failed")
		return errorResult(err.Error()), nil, nil
	}
	logger.Debug().Msg("tool call finished")
	return textResult(text), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
