// Package server implements the MCP (Model Context Protocol) server that exposes
// MiniMax Image-01 on fal.ai as tools.
//
// The server communicates over stdio using the official MCP Go SDK. Stdout is
// reserved for protocol traffic; all logging goes to stderr.
//
// # Available Tools
//
//   - minimax_generate: generate images and wait for them, then save locally
//   - minimax_generate_queue: submit a request and return its request ID
//   - minimax_queue_status: report the status and logs of a queued request
//   - minimax_queue_result: fetch a finished request and save its images
//
// Argument schemas are declared on each tool, so malformed calls (an unknown
// aspect ratio, num_images outside 1-9) are rejected by the SDK before any
// remote call. Handlers check the same limits again.
//
// # Error Handling
//
// Handlers never return a Go error to the SDK. Any failure, including a missing
// FAL_KEY or a panic inside a handler, becomes a tool result with IsError set
// and a human-readable message, so the server keeps serving.
//
// # Usage
//
//	srv := server.New(server.Options{Config: cfg, Gateway: client, Logger: &logger})
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server stopped")
//	}
package server
