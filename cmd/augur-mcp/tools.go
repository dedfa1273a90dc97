package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetLatestInsightTool returns the get_latest_insight tool definition
func createGetLatestInsightTool() mcp.Tool {
	return mcp.NewTool("get_latest_insight",
		mcp.WithDescription("Return the most recent daily decision briefing as markdown"),
	)
}

// createListInsightsTool returns the list_insights tool definition
func createListInsightsTool() mcp.Tool {
	return mcp.NewTool("list_insights",
		mcp.WithDescription("List recent daily briefings, newest first, with a short preview of each"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum briefings to return (default: 7, max: 30)"),
		),
	)
}

// createGetRecentQuestionsTool returns the get_recent_questions tool definition
func createGetRecentQuestionsTool() mcp.Tool {
	return mcp.NewTool("get_recent_questions",
		mcp.WithDescription("List questions captured from the assistant UI within the last N hours"),
		mcp.WithNumber("hours",
			mcp.Description("Look-back window in hours (default: 24)"),
		),
	)
}

// createGetTechnicalSignalTool returns the get_technical_signal tool definition
func createGetTechnicalSignalTool() mcp.Tool {
	return mcp.NewTool("get_technical_signal",
		mcp.WithDescription("Compute RSI, Fibonacci levels and trend on the configured instrument and return an LLM trade recommendation"),
	)
}
