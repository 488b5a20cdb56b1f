package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ironsheep/minimax-mcp/internal/artifact"
	"github.com/ironsheep/minimax-mcp/internal/fal"
	"github.com/ironsheep/minimax-mcp/internal/infra"
	"github.com/ironsheep/minimax-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("minimax-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("minimax-mcp - MCP server for MiniMax Image-01 on fal.ai")
			fmt.Println()
			fmt.Println("Usage: minimax-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  FAL_KEY                     fal.ai API key (required for every tool)")
			fmt.Println("  MINIMAX_MODEL               Model endpoint (default " + infra.DefaultModel + ")")
			fmt.Println("  FAL_QUEUE_URL               Queue base URL (default " + infra.DefaultQueueURL + ")")
			fmt.Println("  MINIMAX_OUTPUT_DIR          Where images are saved (default " + infra.DefaultOutputDir + ")")
			fmt.Println("  MINIMAX_POLL_INTERVAL_MS    Queue poll interval in milliseconds (default 500)")
			fmt.Println("  MINIMAX_MCP_LOG_LEVEL       debug, info, warn or error (default info)")
			fmt.Println("  MINIMAX_MCP_LOG_FORMAT      json or console (default json)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	cfg := infra.LoadConfig()
	logger := infra.NewLogger(cfg)
	logger.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("model", cfg.Model).
		Msg("starting minimax-mcp")

	var gateway server.Gateway
	if cfg.HasCredentials() {
		client, err := fal.NewClient(fal.Options{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			BaseURL:      cfg.QueueURL,
			PollInterval: cfg.PollInterval,
			Logger:       &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("create fal client")
		}
		gateway = client
	} else {
		logger.Warn().Msg("FAL_KEY is not set; tools will report an error until it is configured")
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Gateway: gateway,
		Materializer: artifact.New(artifact.Options{
			Dir:    cfg.OutputDir,
			Logger: &logger,
		}),
		Logger:  &logger,
		Version: Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
