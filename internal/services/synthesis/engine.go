// Package synthesis fuses the category corpora into one daily briefing
// through a fixed sequence of LLM stages.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/calendar"
	"github.com/ternarybob/augur/internal/services/llm"
	"github.com/ternarybob/augur/internal/services/loader"
)

// Stage is a step of the synthesis pipeline
type Stage int

const (
	StageAssetAnalysis Stage = iota
	StageTechAnalysis
	StageFusion
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageAssetAnalysis:
		return "ASSET_ANALYSIS"
	case StageTechAnalysis:
		return "TECH_ANALYSIS"
	case StageFusion:
		return "FUSION"
	case StageDone:
		return "DONE"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Sentinel stage outputs used when a completion cannot be obtained
const (
	AnalysisFailed    = "analysis failed"
	AnalysisExhausted = "analysis failed (resource exhausted)"
)

// Category directories feeding each analysis stage
var (
	AssetCategories = []models.Category{models.CategoryAssets, models.CategoryTrends, models.CategoryIPO}
	TechCategories  = []models.Category{models.CategoryNews, models.CategoryAINews, models.CategoryReports, models.CategoryCommunity}
)

// Result carries every stage output of one run
type Result struct {
	Stage        Stage
	AssetInsight string
	TechInsight  string
	Fusion       string
	Excerpts     int
	Report       *models.InsightReport
}

// Engine runs ASSET_ANALYSIS -> TECH_ANALYSIS -> FUSION -> DONE and persists
// exactly one report per completed run
type Engine struct {
	llm            interfaces.LLMService
	retry          *llm.RetryPolicy
	loader         *loader.Loader
	insights       interfaces.InsightStorage
	chats          interfaces.ChatLogStorage
	dataDir        string
	stageDelay     time.Duration
	questionWindow time.Duration
	now            func() time.Time
	sleep          llm.SleepFunc
	advisory       func(time.Time) string
	logger         arbor.ILogger
}

// Option customises an Engine
type Option func(*Engine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSleep overrides the pause between stages and retries
func WithSleep(sleep llm.SleepFunc) Option {
	return func(e *Engine) {
		e.sleep = sleep
		e.retry.Sleep = sleep
	}
}

// WithAdvisory overrides the seasonal advisory source
func WithAdvisory(advisory func(time.Time) string) Option {
	return func(e *Engine) { e.advisory = advisory }
}

// NewEngine creates a synthesis engine
func NewEngine(
	config *common.Config,
	llmService interfaces.LLMService,
	corpusLoader *loader.Loader,
	insights interfaces.InsightStorage,
	chats interfaces.ChatLogStorage,
	logger arbor.ILogger,
	opts ...Option,
) *Engine {
	e := &Engine{
		llm:            llmService,
		retry:          llm.NewRetryPolicy(config.Synthesis.RetryAttempts, config.Synthesis.RetryCooldown.Std(), logger),
		loader:         corpusLoader,
		insights:       insights,
		chats:          chats,
		dataDir:        config.Data.Dir,
		stageDelay:     config.Synthesis.StageDelay.Std(),
		questionWindow: config.Synthesis.QuestionWindow.Std(),
		now:            time.Now,
		sleep:          common.Sleep,
		advisory:       calendar.Advisory,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every stage in order. Stage failures degrade to sentinel text
// and never abort the run; only persistence failure or cancellation is returned.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	started := e.now()
	result := &Result{Stage: StageAssetAnalysis}

	e.logger.Info().Msg("🧠 Synthesis started")

	assetCorpus := e.loader.Load(ctx, e.dirs(AssetCategories)...)
	techCorpus := e.loader.Load(ctx, e.dirs(TechCategories)...)
	result.Excerpts = len(assetCorpus) + len(techCorpus)
	interests := e.recentQuestions(ctx, started)

	result.AssetInsight = e.callStage(ctx, StageAssetAnalysis, assetPrompt(assetCorpus.String()))
	if err := e.advance(ctx, result, StageTechAnalysis); err != nil {
		return result, err
	}

	result.TechInsight = e.callStage(ctx, StageTechAnalysis, techPrompt(techCorpus.String(), interests))
	if err := e.advance(ctx, result, StageFusion); err != nil {
		return result, err
	}

	result.Fusion = e.callStage(ctx, StageFusion,
		fusionPrompt(result.AssetInsight, result.TechInsight, interests, e.advisory(started)))

	report := &models.InsightReport{
		ID:        common.NewInsightID(),
		CreatedAt: e.now(),
		Content:   RenderBriefing(started, result.Fusion),
	}
	if err := e.insights.Save(ctx, report); err != nil {
		return result, fmt.Errorf("failed to persist insight report: %w", err)
	}

	result.Report = report
	result.Stage = StageDone

	e.logger.Info().
		Str("report_id", report.ID).
		Int("excerpts", result.Excerpts).
		Dur("duration", e.now().Sub(started)).
		Msg("✅ Synthesis completed")

	return result, nil
}

func (e *Engine) advance(ctx context.Context, result *Result, next Stage) error {
	if err := e.sleep(ctx, e.stageDelay); err != nil {
		return fmt.Errorf("synthesis interrupted before %s: %w", next, err)
	}
	e.logger.Debug().Str("from", result.Stage.String()).Str("to", next.String()).Msg("Stage transition")
	result.Stage = next
	return nil
}

// callStage never fails: errors collapse to a sentinel string
func (e *Engine) callStage(ctx context.Context, stage Stage, prompt string) string {
	e.logger.Info().Str("stage", stage.String()).Int("prompt_len", len(prompt)).Msg("Running stage")

	text, err := e.retry.Complete(ctx, e.llm, prompt)
	if err == nil {
		return text
	}

	if errors.Is(err, llm.ErrRetriesExhausted) {
		e.logger.Error().Str("stage", stage.String()).Err(err).Msg("Stage exhausted retries")
		return AnalysisExhausted
	}

	e.logger.Error().Str("stage", stage.String()).Err(err).Msg("Stage failed")
	return AnalysisFailed
}

// recentQuestions returns the chat questions in the window as "- q" lines,
// falling back to CoreInterests
func (e *Engine) recentQuestions(ctx context.Context, now time.Time) string {
	if e.chats == nil {
		return CoreInterests
	}

	logs, err := e.chats.ListSince(ctx, now.Add(-e.questionWindow))
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to read recent questions, using core interests")
		return CoreInterests
	}
	if len(logs) == 0 {
		return CoreInterests
	}

	lines := make([]string, len(logs))
	for i, log := range logs {
		lines[i] = "- " + log.Question
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) dirs(categories []models.Category) []string {
	dirs := make([]string, len(categories))
	for i, c := range categories {
		dirs[i] = filepath.Join(e.dataDir, string(c))
	}
	return dirs
}
