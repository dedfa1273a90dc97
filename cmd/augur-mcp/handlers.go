package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// signalAnalyzer produces a technical signal on demand
type signalAnalyzer interface {
	Analyze(ctx context.Context) (*models.TechnicalSignal, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleGetLatestInsight implements the get_latest_insight tool
func handleGetLatestInsight(insights interfaces.InsightStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := insights.Latest(ctx)
		if errors.Is(err, interfaces.ErrNotFound) {
			return textResult("No briefing has been generated yet."), nil
		}
		if err != nil {
			logger.Error().Err(err).Msg("Latest insight failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatInsight(report)), nil
	}
}

// handleListInsights implements the list_insights tool
func handleListInsights(insights interfaces.InsightStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 7)
		if limit <= 0 {
			limit = 7
		}
		if limit > 30 {
			limit = 30
		}

		reports, err := insights.List(ctx, limit)
		if err != nil {
			logger.Error().Err(err).Msg("List insights failed")
			return textResult(fmt.Sprintf("List error: %v", err)), nil
		}
		return textResult(formatInsightList(reports)), nil
	}
}

// handleGetRecentQuestions implements the get_recent_questions tool
func handleGetRecentQuestions(chats interfaces.ChatLogStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hours := request.GetInt("hours", 24)
		if hours <= 0 {
			hours = 24
		}

		logs, err := chats.ListSince(ctx, time.Now().Add(-time.Duration(hours)*time.Hour))
		if err != nil {
			logger.Error().Err(err).Msg("Recent questions failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatQuestions(logs, hours)), nil
	}
}

// handleGetTechnicalSignal implements the get_technical_signal tool
func handleGetTechnicalSignal(analyzer signalAnalyzer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := analyzer.Analyze(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Technical signal failed")
			return textResult(fmt.Sprintf("Signal unavailable: %v", err)), nil
		}
		return textResult(formatSignal(result)), nil
	}
}
