package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/minimax-mcp/internal/fal"
	"github.com/ironsheep/minimax-mcp/internal/infra"
)

const missingKeyMessage = "FAL_KEY environment variable is not set. " +
	"Set it to your fal.ai API key and restart the server to use MiniMax image generation."

// GenerateArgs are the arguments of minimax_generate.
type GenerateArgs struct {
	Prompt          string `json:"prompt"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	NumImages       int    `json:"num_images,omitempty"`
	PromptOptimizer *bool  `json:"prompt_optimizer,omitempty"`
	SyncMode        *bool  `json:"sync_mode,omitempty"`
}

// GenerateQueueArgs are the arguments of minimax_generate_queue.
type GenerateQueueArgs struct {
	Prompt          string `json:"prompt"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	NumImages       int    `json:"num_images,omitempty"`
	PromptOptimizer *bool  `json:"prompt_optimizer,omitempty"`
	WebhookURL      string `json:"webhook_url,omitempty"`
}

// QueueStatusArgs are the arguments of minimax_queue_status.
type QueueStatusArgs struct {
	RequestID string `json:"request_id"`
	Logs      *bool  `json:"logs,omitempty"`
}

// QueueResultArgs are the arguments of minimax_queue_result.
type QueueResultArgs struct {
	RequestID string `json:"request_id"`
}

// generationRequest is the validated form of the generate arguments.
type generationRequest struct {
	prompt          string
	aspectRatio     string
	numImages       int
	promptOptimizer *bool
}

func (r generationRequest) input() fal.GenerateInput {
	return fal.GenerateInput{
		Prompt:          r.prompt,
		AspectRatio:     r.aspectRatio,
		NumImages:       r.numImages,
		PromptOptimizer: r.promptOptimizer,
	}
}

// newGenerationRequest applies defaults and checks the same limits the
// input schema declares.
func newGenerationRequest(prompt, aspectRatio string, numImages int, optimizer *bool) (generationRequest, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return generationRequest{}, errors.New("prompt is required")
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return generationRequest{}, fmt.Errorf("prompt is %d characters, maximum is %d", n, MaxPromptLength)
	}
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}
	if !slices.Contains(AspectRatios, aspectRatio) {
		return generationRequest{}, fmt.Errorf("aspect_ratio %q is not one of %s", aspectRatio, strings.Join(AspectRatios, ", "))
	}
	if numImages == 0 {
		numImages = DefaultNumImages
	}
	if numImages < MinImages || numImages > MaxImages {
		return generationRequest{}, fmt.Errorf("num_images must be between %d and %d, got %d", MinImages, MaxImages, numImages)
	}
	return generationRequest{
		prompt:          prompt,
		aspectRatio:     aspectRatio,
		numImages:       numImages,
		promptOptimizer: optimizer,
	}, nil
}

func validateWebhook(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("webhook_url %q must be an absolute http or https URL", raw)
	}
	return raw, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *Server) handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, args GenerateArgs) (*mcp.CallToolResult, any, error) {
	return s.respond(ctx, ToolGenerate, func(ctx context.Context, logger *infra.Logger) (string, error) {
		req, err := newGenerationRequest(args.Prompt, args.AspectRatio, args.NumImages, args.PromptOptimizer)
		if err != nil {
			return "", fmt.Errorf("Invalid arguments: %w", err)
		}
		input := req.input()
		input.SyncMode = ptr(boolOr(args.SyncMode, true))

		logger.Info().
			Str("aspect_ratio", req.aspectRatio).
			Int("num_images", req.numImages).
			Msg("generating images")

		result, err := s.gateway.Subscribe(ctx, input)
		if err != nil {
			return "", fmt.Errorf("Error generating image with MiniMax: %w", err)
		}

		artifacts := s.materializer.Materialize(ctx, result.Images, req.prompt, result.Seed)
		return formatGeneration(generationSummary{
			request:   &req,
			requestID: result.RequestID,
			seed:      result.Seed,
			artifacts: artifacts,
			dir:       s.materializer.Dir(),
		}), nil
	})
}

func (s *Server) handleGenerateQueue(ctx context.Context, _ *mcp.CallToolRequest, args GenerateQueueArgs) (*mcp.CallToolResult, any, error) {
	return s.respond(ctx, ToolGenerateQueue, func(ctx context.Context, logger *infra.Logger) (string, error) {
		req, err := newGenerationRequest(args.Prompt, args.AspectRatio, args.NumImages, args.PromptOptimizer)
		if err != nil {
			return "", fmt.Errorf("Invalid arguments: %w", err)
		}
		webhook, err := validateWebhook(args.WebhookURL)
		if err != nil {
			return "", fmt.Errorf("Invalid arguments: %w", err)
		}

		handle, err := s.gateway.Submit(ctx, req.input(), webhook)
		if err != nil {
			return "", fmt.Errorf("Error submitting to queue: %w", err)
		}

		logger.Info().Str("request_id", handle.RequestID).Msg("request queued")
		return formatQueueSubmission(&req, handle), nil
	})
}

func (s *Server) handleQueueStatus(ctx context.Context, _ *mcp.CallToolRequest, args QueueStatusArgs) (*mcp.CallToolResult, any, error) {
	return s.respond(ctx, ToolQueueStatus, func(ctx context.Context, logger *infra.Logger) (string, error) {
		requestID := strings.TrimSpace(args.RequestID)
		if requestID == "" {
			return "", errors.New("Invalid arguments: request_id is required")
		}

		status, err := s.gateway.Status(ctx, requestID, boolOr(args.Logs, true))
		if err != nil {
			return "", fmt.Errorf("Error checking queue status: %w", err)
		}

		logger.Debug().Str("request_id", requestID).Str("status", status.Status).Msg("queue status")
		return formatQueueStatus(requestID, status), nil
	})
}

func (s *Server) handleQueueResult(ctx context.Context, _ *mcp.CallToolRequest, args QueueResultArgs) (*mcp.CallToolResult, any, error) {
	return s.respond(ctx, ToolQueueResult, func(ctx context.Context, logger *infra.Logger) (string, error) {
		requestID := strings.TrimSpace(args.RequestID)
		if requestID == "" {
			return "", errors.New("Invalid arguments: request_id is required")
		}

		result, err := s.gateway.Result(ctx, requestID)
		if err != nil {
			return "", fmt.Errorf("Error getting queue result: %w", err)
		}

		// The original prompt is not known here; name files after the request.
		artifacts := s.materializer.Materialize(ctx, result.Images, "queue_result "+requestID, result.Seed)
		logger.Info().Str("request_id", requestID).Int("images", len(artifacts)).Msg("queue result fetched")
		return formatGeneration(generationSummary{
			requestID: requestID,
			seed:      result.Seed,
			artifacts: artifacts,
			dir:       s.materializer.Dir(),
		}), nil
	})
}
