package server

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/minimax-mcp/internal/artifact"
	"github.com/ironsheep/minimax-mcp/internal/fal"
)

// generationSummary collects what formatGeneration reports. request is nil
// for queue results, where the original arguments are unknown.
type generationSummary struct {
	request   *generationRequest
	requestID string
	seed      *int64
	artifacts []artifact.Artifact
	dir       string
}

func optimizerState(v *bool) string {
	switch {
	case v == nil:
		return "default"
	case *v:
		return "enabled"
	default:
		return "disabled"
	}
}

func seedText(seed *int64) string {
	if seed == nil {
		return "auto-generated"
	}
	return fmt.Sprintf("%d", *seed)
}

func formatGeneration(sum generationSummary) string {
	var b strings.Builder

	if sum.request != nil {
		fmt.Fprintf(&b, "Successfully generated %d image(s) with MiniMax Image-01\n\n", len(sum.artifacts))
		fmt.Fprintf(&b, "Prompt: %q\n", sum.request.prompt)
		fmt.Fprintf(&b, "Aspect Ratio: %s\n", sum.request.aspectRatio)
		fmt.Fprintf(&b, "Number of Images: %d\n", sum.request.numImages)
		fmt.Fprintf(&b, "Prompt Optimizer: %s\n", optimizerState(sum.request.promptOptimizer))
	} else {
		fmt.Fprintf(&b, "Queue result for request %s: %d image(s)\n\n", sum.requestID, len(sum.artifacts))
	}
	fmt.Fprintf(&b, "Seed: %s\n", seedText(sum.seed))
	fmt.Fprintf(&b, "Request ID: %s\n", sum.requestID)

	if len(sum.artifacts) == 0 {
		b.WriteString("\nNo images were returned.\n")
		return b.String()
	}

	b.WriteString("\nGenerated Images:\n")
	saved := 0
	for _, a := range sum.artifacts {
		fmt.Fprintf(&b, "\nImage %d:\n", a.Index+1)
		if a.Downloaded() {
			saved++
			fmt.Fprintf(&b, "  Local Path: %s\n", a.LocalPath)
			fmt.Fprintf(&b, "  Original URL: %s\n", a.Image.URL)
			fmt.Fprintf(&b, "  Filename: %s\n", a.Filename)
		} else {
			fmt.Fprintf(&b, "  Download failed: %s\n", downloadReason(a.Err))
			fmt.Fprintf(&b, "  Original URL: %s\n", a.Image.URL)
		}
		if a.Image.ContentType != "" {
			fmt.Fprintf(&b, "  Content Type: %s\n", a.Image.ContentType)
		}
		if a.Image.FileName != "" {
			fmt.Fprintf(&b, "  Remote File Name: %s\n", a.Image.FileName)
		}
		if a.Image.FileSize != nil {
			fmt.Fprintf(&b, "  File Size: %d bytes\n", *a.Image.FileSize)
		}
		if a.Info != nil {
			fmt.Fprintf(&b, "  Dimensions: %dx%d (%s)\n", a.Info.Width, a.Info.Height, a.Info.Format)
		}
	}

	dir := sum.dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	fmt.Fprintf(&b, "\nSaved %d of %d image(s) to %s\n", saved, len(sum.artifacts), dir)
	return b.String()
}

func downloadReason(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func formatQueueSubmission(req *generationRequest, handle *fal.QueueHandle) string {
	var b strings.Builder
	b.WriteString("Request submitted to the MiniMax queue\n\n")
	fmt.Fprintf(&b, "Request ID: %s\n", handle.RequestID)
	fmt.Fprintf(&b, "Prompt: %q\n", req.prompt)
	fmt.Fprintf(&b, "Aspect Ratio: %s\n", req.aspectRatio)
	fmt.Fprintf(&b, "Number of Images: %d\n", req.numImages)
	fmt.Fprintf(&b, "Prompt Optimizer: %s\n", optimizerState(req.promptOptimizer))
	if handle.WebhookURL != "" {
		fmt.Fprintf(&b, "Webhook URL: %s\n", handle.WebhookURL)
	}
	if handle.StatusURL != "" {
		fmt.Fprintf(&b, "Status URL: %s\n", handle.StatusURL)
	}
	if handle.ResponseURL != "" {
		fmt.Fprintf(&b, "Response URL: %s\n", handle.ResponseURL)
	}
	fmt.Fprintf(&b, "\nUse %s with this request ID to check progress, then %s to download the images.\n",
		ToolQueueStatus, ToolQueueResult)
	return b.String()
}

func formatQueueStatus(requestID string, status *fal.QueueStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Queue status for request %s\n\n", requestID)
	fmt.Fprintf(&b, "Status: %s\n", status.Status)
	if status.QueuePosition != nil {
		fmt.Fprintf(&b, "Queue Position: %d\n", *status.QueuePosition)
	}
	if status.ResponseURL != "" {
		fmt.Fprintf(&b, "Response URL: %s\n", status.ResponseURL)
	}
	if len(status.Logs) > 0 {
		b.WriteString("\nLogs:\n")
		for _, entry := range status.Logs {
			ts := entry.Timestamp
			if ts == "" {
				ts = "unknown time"
			}
			fmt.Fprintf(&b, "[%s] %s\n", ts, entry.Message)
		}
	}
	return b.String()
}
