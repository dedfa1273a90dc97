package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/collectors"
	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/eodhd"
	"github.com/ternarybob/augur/internal/handlers"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/okx"
	"github.com/ternarybob/augur/internal/services/browser"
	"github.com/ternarybob/augur/internal/services/imap"
	"github.com/ternarybob/augur/internal/services/llm"
	"github.com/ternarybob/augur/internal/services/loader"
	"github.com/ternarybob/augur/internal/services/pdf"
	"github.com/ternarybob/augur/internal/services/scheduler"
	"github.com/ternarybob/augur/internal/services/signal"
	"github.com/ternarybob/augur/internal/services/synthesis"
	"github.com/ternarybob/augur/internal/services/websearch"
	"github.com/ternarybob/augur/internal/storage"
)

// finnhubNewsLimit caps the secondary news feed per run
const finnhubNewsLimit = 20

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// LLM service (Gemini, Claude or OpenAI)
	LLMService *llm.ProviderFactory

	// Document services
	PDFExtractor *pdf.Extractor
	PDFExporter  *pdf.Exporter
	Loader       *loader.Loader

	// Collection
	Collectors *collectors.Registry

	// Analysis
	Synthesis *synthesis.Engine
	Signal    *signal.Advisor

	// Scheduling
	SchedulerService *scheduler.Service
	redisLocker      *scheduler.RedisLocker

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	InsightHandler   *handlers.InsightHandler
	ChatLogHandler   *handlers.ChatLogHandler
	SchedulerHandler *handlers.SchedulerHandler
	SignalHandler    *handlers.SignalHandler
	WSHandler        *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	appCtx, cancel := context.WithCancel(ctx)
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       appCtx,
		cancelCtx: cancel,
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("data_dir", cfg.Data.Dir).
		Str("storage", cfg.Storage.Type).
		Int("collectors", len(app.Collectors.Names())).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.ctx, a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Msg("Storage layer initialized")
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config

	a.LLMService = llm.NewProviderFactory(cfg, a.Logger)
	a.PDFExtractor = pdf.NewExtractor(a.Logger)
	a.PDFExporter = pdf.NewExporter(a.Logger)
	a.Loader = loader.NewLoader(a.PDFExtractor, loader.Options{
		FilesPerDir:   cfg.Synthesis.FilesPerDir,
		MaxExcerpt:    cfg.Synthesis.MaxExcerpt,
		MaxPDFExcerpt: cfg.Synthesis.MaxPDFExcerpt,
	}, a.Logger)

	a.Collectors = collectors.NewRegistry(a.collectorDeps())

	a.Synthesis = synthesis.NewEngine(
		cfg,
		a.LLMService,
		a.Loader,
		a.StorageManager.InsightStorage(),
		a.StorageManager.ChatLogStorage(),
		a.Logger,
	)

	opts := []okx.ClientOption{okx.WithLogger(a.Logger)}
	if cfg.Exchange.BaseURL != "" {
		opts = append(opts, okx.WithBaseURL(cfg.Exchange.BaseURL))
	}
	market := okx.NewClient(okx.Credentials{
		APIKey:     cfg.Exchange.APIKey,
		SecretKey:  cfg.Exchange.SecretKey,
		Passphrase: cfg.Exchange.Passphrase,
	}, opts...)
	a.Signal = signal.NewAdvisor(cfg, market, a.LLMService, a.StorageManager.InsightStorage(), a.Logger)

	return a.initScheduler()
}

// collectorDeps assembles the shared collaborators of every collector.
// Optional sources stay nil when their credentials are missing.
func (a *App) collectorDeps() *collectors.Deps {
	cfg := a.Config
	fetcher := collectors.NewFetcher(cfg.Collectors.UserAgent, cfg.Collectors.RequestTimeout.Std(), a.Logger)

	deps := &collectors.Deps{
		Config:     cfg,
		Writer:     collectors.NewWriter(cfg.Data.Dir),
		Fetcher:    fetcher,
		Saveticker: collectors.NewSaveticker(fetcher, cfg.Collectors.Saveticker),
		PDF:        a.PDFExtractor,
		Renderer: browser.NewRenderer(browser.Config{
			UserAgent: cfg.Collectors.UserAgent,
			Headless:  true,
		}, a.Logger),
		Searcher: websearch.NewDuckDuckGo(cfg.Collectors.UserAgent, a.Logger),
		Logger:   a.Logger,
		Now:      time.Now,
		Sleep:    common.Sleep,
	}

	if mail := imap.NewService(cfg.Collectors.IMAP, a.Logger); mail.IsConfigured() {
		deps.Mail = mail
	} else {
		a.Logger.Debug().Msg("Mailbox not configured, email collector will report it")
	}

	if cfg.Collectors.EODHD.APIKey != "" {
		deps.Quotes = eodhd.NewClient(cfg.Collectors.EODHD.APIKey, eodhd.WithLogger(a.Logger))
	}

	if cfg.Collectors.Finnhub.APIKey != "" {
		deps.MarketNews = collectors.NewFinnhubNews(cfg.Collectors.Finnhub.APIKey, cfg.Collectors.Finnhub.Category, finnhubNewsLimit)
	}

	return deps
}

func (a *App) initScheduler() error {
	var steps []scheduler.Step
	for _, entry := range a.Collectors.Entries() {
		steps = append(steps, scheduler.CollectorStep(entry.Collector, entry.Wave, a.Logger))
	}

	batch := scheduler.NewBatch(steps, a.runAnalysis, a.Config.Scheduler.StepDelay.Std(), a.Logger)

	var locker scheduler.RunLocker = scheduler.NewLocalLocker()
	if a.Config.Scheduler.Lock == "redis" {
		redisLocker, err := scheduler.NewRedisLocker(a.ctx, a.Config.Redis.URL, a.Config.Scheduler.LockTTL.Std())
		if err != nil {
			return err
		}
		a.redisLocker = redisLocker
		locker = redisLocker
	}

	a.SchedulerService = scheduler.NewService(a.ctx, batch, locker, a.Logger)
	return nil
}

func (a *App) runAnalysis(ctx context.Context) error {
	result, err := a.Synthesis.Run(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Str("report_id", result.Report.ID).
		Int("excerpts", result.Excerpts).
		Msg("Daily briefing stored")
	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Config.Data.Dir, a.Logger)
	a.InsightHandler = handlers.NewInsightHandler(a.StorageManager.InsightStorage(), a.PDFExporter, a.Logger)
	a.ChatLogHandler = handlers.NewChatLogHandler(a.StorageManager.ChatLogStorage(), a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
	a.SignalHandler = handlers.NewSignalHandler(a.Signal, a.Logger)

	a.WSHandler = handlers.NewWebSocketHandler(a.Logger)
	a.SchedulerService.Batch().Subscribe(a.WSHandler.BroadcastBatchEvent)
}

// Context is cancelled when the app closes
func (a *App) Context() context.Context {
	return a.ctx
}

// RunCollector runs a single collector by name outside the batch
func (a *App) RunCollector(ctx context.Context, name string) (*models.CollectionReport, error) {
	collector, err := a.Collectors.Get(name)
	if err != nil {
		return nil, err
	}
	return collector.Collect(ctx)
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.Logger.Info().Msg("Cancelling background work")
		a.cancelCtx()
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.redisLocker != nil {
		if err := a.redisLocker.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close redis lock client")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
