package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Data        DataConfig       `toml:"data"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Synthesis   SynthesisConfig  `toml:"synthesis"`
	Signal      SignalConfig     `toml:"signal"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	OpenAI      OpenAIConfig     `toml:"openai"`
	Exchange    ExchangeConfig   `toml:"exchange"`
	Redis       RedisConfig      `toml:"redis"`
	Collectors  CollectorsConfig `toml:"collectors"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lt=65536"`
	Host string `toml:"host"`
}

// DataConfig locates the category directories and ledgers
type DataConfig struct {
	Dir string `toml:"dir" validate:"required"` // Root of the category directories (default: "./data")
}

type StorageConfig struct {
	Type     string         `toml:"type" validate:"oneof=badger postgres"` // "badger" (default) or "postgres"
	Badger   BadgerConfig   `toml:"badger"`
	Postgres PostgresConfig `toml:"postgres"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// PostgresConfig holds the pgx connection string for the relational store
type PostgresConfig struct {
	URL      string `toml:"url"`
	MaxConns int32  `toml:"max_conns"`
	MinConns int32  `toml:"min_conns"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
	Dir    string   `toml:"dir"`    // augur.log directory (default: <data.dir>/logs)
}

// SchedulerConfig controls the daily collection batch
type SchedulerConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule" validate:"required"` // Cron schedule (default: "0 7 * * *")
	StepDelay Duration `toml:"step_delay"`                   // Pause between collector steps (default: 1s)
	Lock      string   `toml:"lock" validate:"oneof=local redis"`
	LockTTL   Duration `toml:"lock_ttl"` // Expiry of the distributed run-lock
}

// SynthesisConfig controls the staged analysis pipeline
type SynthesisConfig struct {
	StageDelay     Duration `toml:"stage_delay"`     // Pause between stage calls (default: 5s)
	RetryAttempts  int      `toml:"retry_attempts"`  // Attempts per stage on rate limit (default: 3)
	RetryCooldown  Duration `toml:"retry_cooldown"`  // Wait after a rate limit (default: 10s)
	QuestionWindow Duration `toml:"question_window"` // How far back to read chat questions (default: 24h)
	FilesPerDir    int      `toml:"files_per_dir"`   // Newest files per category directory (default: 3)
	MaxExcerpt     int      `toml:"max_excerpt"`     // Character cap per excerpt (default: 100000)
	MaxPDFExcerpt  int      `toml:"max_pdf_excerpt"` // Character cap per PDF excerpt (default: 1000)
}

// SignalConfig controls the technical signal
type SignalConfig struct {
	Symbol       string `toml:"symbol"`     // Display symbol (default: "BTC/USDT:USDT")
	InstrumentID string `toml:"instrument"` // Exchange instrument id (default: "BTC-USDT-SWAP")
	Timeframe    string `toml:"timeframe"`  // Candle interval (default: "4h")
	Candles      int    `toml:"candles"`    // Number of candles (default: 100)
	RSIPeriod    int    `toml:"rsi_period"` // RSI lookback (default: 14)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
	LLMProviderOpenAI LLMProvider = "openai"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude openai"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// OpenAIConfig contains OpenAI API configuration
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ExchangeConfig holds the OKX credentials used by the technical signal
type ExchangeConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	SecretKey  string `toml:"secret_key"`
	Passphrase string `toml:"passphrase"`
}

// RedisConfig is only required when scheduler.lock = "redis"
type RedisConfig struct {
	URL string `toml:"url"`
}

// Region is an administrative region used by the real-estate collectors
type Region struct {
	Name string `toml:"name"`
	Code string `toml:"code"`
}

// CollectorsConfig contains source credentials and endpoints for every collector
type CollectorsConfig struct {
	UserAgent      string   `toml:"user_agent"`
	RequestTimeout Duration `toml:"request_timeout"`
	Regions        []Region `toml:"regions"`
	OnbidRegions   []string `toml:"onbid_regions"` // Province names queried on the auction service

	Saveticker     SavetickerConfig     `toml:"saveticker"`
	Finnhub        FinnhubConfig        `toml:"finnhub"`
	EODHD          EODHDConfig          `toml:"eodhd"`
	OpenWeatherMap OpenWeatherMapConfig `toml:"openweathermap"`
	DataGoKr       DataGoKrConfig       `toml:"data_go_kr"`
	GoogleSearch   GoogleSearchConfig   `toml:"google_search"`
	Saramin        SaraminConfig        `toml:"saramin"`
	IMAP           IMAPConfig           `toml:"imap"`
	AINews         AINewsConfig         `toml:"ai_news"`
}

type SavetickerConfig struct {
	BaseURL   string `toml:"base_url"`
	AuthToken string `toml:"auth_token"`
	PageSize  int    `toml:"page_size"`
}

type FinnhubConfig struct {
	APIKey   string `toml:"api_key"`
	Category string `toml:"category"`
}

type EODHDConfig struct {
	APIKey  string   `toml:"api_key"`
	Symbols []string `toml:"symbols"` // Macro tickers, e.g. "TNX.INDX"
}

type OpenWeatherMapConfig struct {
	APIKey string `toml:"api_key"`
}

type DataGoKrConfig struct {
	ServiceKey string `toml:"service_key"`
}

type GoogleSearchConfig struct {
	APIKey  string   `toml:"api_key"`
	CX      string   `toml:"cx"`
	Queries []string `toml:"queries"` // "{year}" expands to the current year
}

type SaraminConfig struct {
	APIKey   string `toml:"api_key"`
	Keywords string `toml:"keywords"` // Space separated job-search keywords
	Count    int    `toml:"count"`
}

type IMAPConfig struct {
	Host      string   `toml:"host"`
	Port      int      `toml:"port"`
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
	UseTLS    bool     `toml:"use_tls"`
	Senders   []string `toml:"senders"`
	PerSender int      `toml:"per_sender"`
}

type AINewsConfig struct {
	URL      string   `toml:"url"`
	WaitTime Duration `toml:"wait_time"`
}

// ConfigError is returned when configuration is missing or malformed
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/db",
			},
			Postgres: PostgresConfig{
				MaxConns: 25,
				MinConns: 5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			Schedule:  "0 7 * * *", // Every day at 07:00
			StepDelay: Duration(time.Second),
			Lock:      "local",
			LockTTL:   Duration(2 * time.Hour),
		},
		Synthesis: SynthesisConfig{
			StageDelay:     Duration(5 * time.Second),
			RetryAttempts:  3,
			RetryCooldown:  Duration(10 * time.Second),
			QuestionWindow: Duration(24 * time.Hour),
			FilesPerDir:    3,
			MaxExcerpt:     100000,
			MaxPDFExcerpt:  1000,
		},
		Signal: SignalConfig{
			Symbol:       "BTC/USDT:USDT",
			InstrumentID: "BTC-USDT-SWAP",
			Timeframe:    "4h",
			Candles:      100,
			RSIPeriod:    14,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   8192,
			Temperature: 0.7,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Exchange: ExchangeConfig{
			BaseURL: "https://www.okx.com",
		},
		Collectors: CollectorsConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout: Duration(30 * time.Second),
			Regions:        []Region{{Name: "서울 강남구", Code: "11680"}},
			OnbidRegions:   []string{"서울특별시", "경기도", "인천광역시", "부산광역시"},
			Saveticker: SavetickerConfig{
				BaseURL:  "https://api.saveticker.com",
				PageSize: 20,
			},
			Finnhub: FinnhubConfig{
				Category: "general",
			},
			EODHD: EODHDConfig{
				Symbols: []string{"TNX.INDX", "DXY.INDX", "USDKRW.FOREX", "CL.COMM", "HG.COMM", "SOX.INDX", "VIX.INDX"},
			},
			GoogleSearch: GoogleSearchConfig{
				Queries: []string{
					`site:blackrock.com "{year} Midyear Outlook" filetype:pdf`,
					`site:blackrock.com "{year} Global Outlook" filetype:pdf`,
					`site:vanguard.com "economic and market outlook" {year} -fund -etf filetype:pdf`,
					`site:jpmorgan.com "{year} Market Outlook" filetype:pdf`,
				},
			},
			Saramin: SaraminConfig{
				Keywords: "backend java spring ai llm",
				Count:    20,
			},
			IMAP: IMAPConfig{
				Host:      "imap.gmail.com",
				Port:      993,
				UseTLS:    true,
				Senders:   []string{"StockTwits", "McKinsey", "Seeking Alpha", "Morgan Stanley", "Goldman Sachs"},
				PerSender: 2,
			},
			AINews: AINewsConfig{
				URL:      "https://vidraft-news-stream.hf.space",
				WaitTime: Duration(10 * time.Second),
			},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env
// Later files override earlier files. The result is validated and a *ConfigError is
// returned when a required field is missing or malformed.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Secrets live in .env next to the working directory; absence is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var configValidator = validator.New()

// Validate checks required fields and cross-field rules
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: strings.ToLower(fe.Namespace()), Reason: fmt.Sprintf("failed %q validation", fe.Tag())}
		}
		return &ConfigError{Field: "config", Reason: err.Error()}
	}

	if err := ValidateSchedule(c.Scheduler.Schedule); err != nil {
		return &ConfigError{Field: "scheduler.schedule", Reason: err.Error()}
	}

	if c.Storage.Type == "postgres" && c.Storage.Postgres.URL == "" {
		return &ConfigError{Field: "storage.postgres.url", Reason: "is required when storage.type is postgres"}
	}
	if c.Storage.Type == "badger" && c.Storage.Badger.Path == "" {
		return &ConfigError{Field: "storage.badger.path", Reason: "is required when storage.type is badger"}
	}
	if c.Scheduler.Lock == "redis" && c.Redis.URL == "" {
		return &ConfigError{Field: "redis.url", Reason: "is required when scheduler.lock is redis"}
	}
	if c.LLMAPIKey() == "" {
		return &ConfigError{Field: string(c.LLM.DefaultProvider) + ".api_key", Reason: "is required for the default LLM provider"}
	}

	return nil
}

// LLMAPIKey returns the API key of the configured default provider
func (c *Config) LLMAPIKey() string {
	switch c.LLM.DefaultProvider {
	case LLMProviderClaude:
		return c.Claude.APIKey
	case LLMProviderOpenAI:
		return c.OpenAI.APIKey
	default:
		return c.Gemini.APIKey
	}
}

// ValidateSchedule validates a standard five-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AUGUR_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("AUGUR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AUGUR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Data and storage
	if dir := os.Getenv("AUGUR_DATA_DIR"); dir != "" {
		config.Data.Dir = dir
	}
	if storageType := os.Getenv("AUGUR_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("AUGUR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if pgURL := os.Getenv("AUGUR_POSTGRES_URL"); pgURL != "" {
		config.Storage.Postgres.URL = pgURL
	}

	// Logging
	if level := os.Getenv("AUGUR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if dir := os.Getenv("AUGUR_LOG_DIR"); dir != "" {
		config.Logging.Dir = dir
	}
	if output := os.Getenv("AUGUR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Scheduler
	if enabled := os.Getenv("AUGUR_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("AUGUR_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
	if lock := os.Getenv("AUGUR_SCHEDULER_LOCK"); lock != "" {
		config.Scheduler.Lock = lock
	}
	if redisURL := os.Getenv("AUGUR_REDIS_URL"); redisURL != "" {
		config.Redis.URL = redisURL
	}

	// LLM
	if provider := os.Getenv("AUGUR_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if key := firstEnv("AUGUR_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := firstEnv("AUGUR_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := firstEnv("AUGUR_OPENAI_API_KEY", "OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}

	// Exchange
	if key := os.Getenv("AUGUR_OKX_API_KEY"); key != "" {
		config.Exchange.APIKey = key
	}
	if secret := os.Getenv("AUGUR_OKX_SECRET_KEY"); secret != "" {
		config.Exchange.SecretKey = secret
	}
	if passphrase := os.Getenv("AUGUR_OKX_PASSPHRASE"); passphrase != "" {
		config.Exchange.Passphrase = passphrase
	}

	// Collector credentials
	if token := os.Getenv("AUGUR_SAVETICKER_TOKEN"); token != "" {
		config.Collectors.Saveticker.AuthToken = token
	}
	if key := os.Getenv("AUGUR_FINNHUB_API_KEY"); key != "" {
		config.Collectors.Finnhub.APIKey = key
	}
	if key := os.Getenv("AUGUR_EODHD_API_KEY"); key != "" {
		config.Collectors.EODHD.APIKey = key
	}
	if key := os.Getenv("AUGUR_OPENWEATHERMAP_API_KEY"); key != "" {
		config.Collectors.OpenWeatherMap.APIKey = key
	}
	if key := os.Getenv("AUGUR_DATA_GO_KR_SERVICE_KEY"); key != "" {
		config.Collectors.DataGoKr.ServiceKey = key
	}
	if key := os.Getenv("AUGUR_GOOGLE_SEARCH_API_KEY"); key != "" {
		config.Collectors.GoogleSearch.APIKey = key
	}
	if cx := os.Getenv("AUGUR_GOOGLE_SEARCH_CX"); cx != "" {
		config.Collectors.GoogleSearch.CX = cx
	}
	if key := os.Getenv("AUGUR_SARAMIN_API_KEY"); key != "" {
		config.Collectors.Saramin.APIKey = key
	}
	if user := os.Getenv("AUGUR_IMAP_USERNAME"); user != "" {
		config.Collectors.IMAP.Username = user
	}
	if password := os.Getenv("AUGUR_IMAP_PASSWORD"); password != "" {
		config.Collectors.IMAP.Password = password
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ApplyFlagOverrides applies command-line flag overrides to config (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
