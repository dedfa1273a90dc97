package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/loader"
)

const previewRunes = 200

// formatInsight formats a single briefing as markdown
func formatInsight(report *models.InsightReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n\n", report.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(report.Content)
	sb.WriteString("\n")
	return sb.String()
}

// formatInsightList formats briefings with a one-paragraph preview each
func formatInsightList(reports []*models.InsightReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Recent briefings (%d)\n\n", len(reports)))

	if len(reports) == 0 {
		sb.WriteString("No briefings found.\n")
		return sb.String()
	}

	for i, r := range reports {
		preview := strings.Join(strings.Fields(r.Content), " ")
		if truncated := loader.Truncate(preview, previewRunes); truncated != preview {
			preview = truncated + "..."
		}
		sb.WriteString(fmt.Sprintf("### %d. %s (%s)\n", i+1, r.CreatedAt.Format("2006-01-02"), r.ID))
		sb.WriteString(preview)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// formatQuestions lists captured questions, oldest first
func formatQuestions(logs []*models.ChatLog, hours int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Questions from the last %d hours (%d)\n\n", hours, len(logs)))

	if len(logs) == 0 {
		sb.WriteString("No questions captured.\n")
		return sb.String()
	}

	for _, l := range logs {
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.Question))
	}
	return sb.String()
}

// formatSignal renders indicator values and the recommendation
func formatSignal(s *models.TechnicalSignal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s %s\n\n", s.Symbol, s.Timeframe))
	sb.WriteString(fmt.Sprintf("**Price:** %.2f\n", s.Price))
	if s.RSI != nil {
		sb.WriteString(fmt.Sprintf("**RSI:** %.2f\n", *s.RSI))
	} else {
		sb.WriteString("**RSI:** n/a\n")
	}
	sb.WriteString(fmt.Sprintf("**Trend:** %s\n", s.Trend))

	if len(s.Fibonacci) > 0 {
		sb.WriteString("**Fibonacci:**")
		for _, level := range s.Fibonacci {
			sb.WriteString(fmt.Sprintf(" %.3f=%.2f", level.Ratio, level.Price))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("**Account:** balance %.2f, position %s\n\n", s.Account.Balance, s.Account.Position))

	rec := s.Recommendation
	if rec.Direction != "" {
		sb.WriteString(fmt.Sprintf("### Recommendation: %s\n", rec.Direction))
		if rec.Reason != "" {
			sb.WriteString(fmt.Sprintf("- Reason: %s\n", rec.Reason))
		}
		if rec.Strategy != "" {
			sb.WriteString(fmt.Sprintf("- Strategy: %s\n", rec.Strategy))
		}
	} else {
		sb.WriteString("### Recommendation\n")
		sb.WriteString(rec.Comment)
		sb.WriteString("\n")
	}
	return sb.String()
}
