package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/okx"
	"github.com/ternarybob/augur/internal/services/llm"
	"github.com/ternarybob/augur/internal/services/signal"
	"github.com/ternarybob/augur/internal/storage"
)

func main() {
	configPath := os.Getenv("AUGUR_CONFIG")
	if configPath == "" {
		configPath = "augur.toml"
	}

	var paths []string
	if _, err := os.Stat(configPath); err == nil {
		paths = append(paths, configPath)
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	llmService := llm.NewProviderFactory(config, logger)
	defer llmService.Close()

	opts := []okx.ClientOption{okx.WithLogger(logger)}
	if config.Exchange.BaseURL != "" {
		opts = append(opts, okx.WithBaseURL(config.Exchange.BaseURL))
	}
	market := okx.NewClient(okx.Credentials{
		APIKey:     config.Exchange.APIKey,
		SecretKey:  config.Exchange.SecretKey,
		Passphrase: config.Exchange.Passphrase,
	}, opts...)
	advisor := signal.NewAdvisor(config, market, llmService, storageManager.InsightStorage(), logger)

	mcpServer := server.NewMCPServer(
		"augur",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetLatestInsightTool(), handleGetLatestInsight(storageManager.InsightStorage(), logger))
	mcpServer.AddTool(createListInsightsTool(), handleListInsights(storageManager.InsightStorage(), logger))
	mcpServer.AddTool(createGetRecentQuestionsTool(), handleGetRecentQuestions(storageManager.ChatLogStorage(), logger))
	mcpServer.AddTool(createGetTechnicalSignalTool(), handleGetTechnicalSignal(advisor, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
