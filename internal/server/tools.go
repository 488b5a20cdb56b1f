package server

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolGenerate      = "minimax_generate"
	ToolGenerateQueue = "minimax_generate_queue"
	ToolQueueStatus   = "minimax_queue_status"
	ToolQueueResult   = "minimax_queue_result"
)

// Limits and defaults shared by the schemas and the argument checks.
const (
	MaxPromptLength    = 1500
	MinImages          = 1
	MaxImages          = 9
	DefaultAspectRatio = "1:1"
	DefaultNumImages   = 1
)

// AspectRatios lists the ratios the model accepts.
var AspectRatios = []string{"21:9", "16:9", "4:3", "3:2", "1:1", "2:3", "3:4", "9:16"}

func ptr[T any](v T) *T { return &v }

func rawDefault(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// generationProperties are the inputs shared by the sync and queued generate tools.
func generationProperties() map[string]*jsonschema.Schema {
	ratios := make([]any, len(AspectRatios))
	for i, r := range AspectRatios {
		ratios[i] = r
	}
	return map[string]*jsonschema.Schema{
		"prompt": {
			Type:        "string",
			Description: "Text description of the image to generate (max 1500 characters)",
			MinLength:   ptr(1),
			MaxLength:   ptr(MaxPromptLength),
		},
		"aspect_ratio": {
			Type:        "string",
			Description: "Aspect ratio of the generated image",
			Enum:        ratios,
			Default:     rawDefault(DefaultAspectRatio),
		},
		"num_images": {
			Type:        "integer",
			Description: "Number of images to generate (1-9)",
			Minimum:     ptr(float64(MinImages)),
			Maximum:     ptr(float64(MaxImages)),
			Default:     rawDefault(DefaultNumImages),
		},
		"prompt_optimizer": {
			Type:        "boolean",
			Description: "Let the model rewrite the prompt for better results",
		},
	}
}

func generateTool() *mcp.Tool {
	props := generationProperties()
	props["sync_mode"] = &jsonschema.Schema{
		Type:        "boolean",
		Description: "Wait for images to be uploaded before the model returns (default true)",
		Default:     rawDefault(true),
	}
	return &mcp.Tool{
		Name: ToolGenerate,
		Description: "Generate images from a text prompt with MiniMax Image-01 and wait for the result. " +
			"Images are downloaded to the local images directory and their paths are returned.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: props,
			Required:   []string{"prompt"},
		},
	}
}

func generateQueueTool() *mcp.Tool {
	props := generationProperties()
	props["webhook_url"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Optional URL that fal.ai calls when the request completes",
	}
	return &mcp.Tool{
		Name: ToolGenerateQueue,
		Description: "Submit an image generation request to the queue and return immediately with a request ID. " +
			"Use minimax_queue_status to follow progress and minimax_queue_result to fetch the images.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: props,
			Required:   []string{"prompt"},
		},
	}
}

func queueStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolQueueStatus,
		Description: "Check the status of a queued MiniMax request.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"request_id": {
					Type:        "string",
					Description: "Request ID returned by minimax_generate_queue",
					MinLength:   ptr(1),
				},
				"logs": {
					Type:        "boolean",
					Description: "Include runner log lines (default true)",
					Default:     rawDefault(true),
				},
			},
			Required: []string{"request_id"},
		},
	}
}

func queueResultTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolQueueResult,
		Description: "Fetch the result of a completed queued request and download its images locally.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"request_id": {
					Type:        "string",
					Description: "Request ID returned by minimax_generate_queue",
					MinLength:   ptr(1),
				},
			},
			Required: []string{"request_id"},
		},
	}
}

// ToolDefinitions returns every tool this server exposes, in registration order.
func ToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		generateTool(),
		generateQueueTool(),
		queueStatusTool(),
		queueResultTool(),
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, generateTool(), s.handleGenerate)
	mcp.AddTool(s.mcp, generateQueueTool(), s.handleGenerateQueue)
	mcp.AddTool(s.mcp, queueStatusTool(), s.handleQueueStatus)
	mcp.AddTool(s.mcp, queueResultTool(), s.handleQueueResult)
}
