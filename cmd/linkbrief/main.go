package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/linkbrief/linkbrief/internal/api"
	"github.com/linkbrief/linkbrief/internal/dedup"
	"github.com/linkbrief/linkbrief/internal/fetch"
	"github.com/linkbrief/linkbrief/internal/lockfile"
	"github.com/linkbrief/linkbrief/internal/summarize"
	"github.com/linkbrief/linkbrief/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for LinkBrief state data
	DefaultStateDir = "/var/lib/linkbrief"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "linkbrief.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// The state directory holds the SQLite cache; only one instance may use it.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to lock state directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	opts := buildAPIOptions(config, flags)

	slog.Info("Bootstrapping LinkBrief",
		"state_dir", *flags.stateDir,
		"db_driver", resolveDriver(*flags.dbDriver, *flags.dbDSN),
		"api_addr", *flags.apiAddr,
		"cache_capacity", *flags.cacheCapacity)
	if err := api.Run(opts...); err != nil {
		slog.Error("LinkBrief failed to run", "error", err)
		lock.Release()
		os.Exit(1)
	}
	slog.Info("LinkBrief exited successfully")
}

// Config holds environment configuration
type Config struct {
	SlackToken        string
	OpenAIKey         string
	OpenAIModel       string
	StateDir          string
	DBDriver          string
	DBDSN             string
	APIAddr           string
	CacheCapacity     int
	FetchTimeout      time.Duration
	SummaryTimeout    time.Duration
	ReplyTimeout      time.Duration
	BlockedHosts      []string
	MarkAfterDispatch bool
}

// Flags holds command line flag values
type Flags struct {
	slackToken    *string
	openaiKey     *string
	openaiModel   *string
	stateDir      *string
	dbDriver      *string
	dbDSN         *string
	apiAddr       *string
	cacheCapacity *int
	fetchTimeout  *int
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		SlackToken:        os.Getenv("SLACK_BOT_TOKEN"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		StateDir:          os.Getenv("LINKBRIEF_STATE_DIR"),
		DBDriver:          os.Getenv("DB_DRIVER"),
		DBDSN:             os.Getenv("DB_DSN"),
		APIAddr:           os.Getenv("API_ADDR"),
		CacheCapacity:     util.ParseIntEnv("SEEN_CACHE_CAPACITY", dedup.DefaultCapacity),
		FetchTimeout:      time.Duration(util.ParseIntEnv("FETCH_TIMEOUT_SECONDS", int(fetch.DefaultTimeout/time.Second))) * time.Second,
		SummaryTimeout:    time.Duration(util.ParseIntEnv("SUMMARY_TIMEOUT_SECONDS", 60)) * time.Second,
		ReplyTimeout:      time.Duration(util.ParseIntEnv("REPLY_TIMEOUT_SECONDS", 15)) * time.Second,
		BlockedHosts:      util.ParseListEnv("FETCH_BLOCKED_HOSTS", fetch.DefaultBlockedHosts),
		MarkAfterDispatch: util.ParseBoolEnv("DEDUP_MARK_AFTER_DISPATCH", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No LINKBRIEF_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DBDSN == "" {
		config.DBDSN = os.Getenv("DATABASE_URL")
		if config.DBDSN != "" {
			slog.Debug("Using DATABASE_URL as DB_DSN")
		}
	}
	if config.DBDSN == "" {
		config.DBDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DBDSN)
	}

	slog.Debug("environment variables loaded",
		"SLACK_BOT_TOKEN_SET", config.SlackToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"LINKBRIEF_STATE_DIR", config.StateDir,
		"DB_DRIVER", config.DBDriver,
		"DB_DSN_SET", config.DBDSN != "",
		"API_ADDR", config.APIAddr,
		"SEEN_CACHE_CAPACITY", config.CacheCapacity)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		slackToken:    flag.String("slack-bot-token", config.SlackToken, "Slack bot token (overrides $SLACK_BOT_TOKEN)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:   flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for LinkBrief data (overrides $LINKBRIEF_STATE_DIR)"),
		dbDriver:      flag.String("db-driver", config.DBDriver, "database driver, sqlite3 or postgres (overrides $DB_DRIVER)"),
		dbDSN:         flag.String("db-dsn", config.DBDSN, "database DSN (overrides $DB_DSN or $DATABASE_URL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		cacheCapacity: flag.Int("seen-cache-capacity", config.CacheCapacity, "processed-message cache capacity (overrides $SEEN_CACHE_CAPACITY)"),
		fetchTimeout:  flag.Int("fetch-timeout", int(config.FetchTimeout/time.Second), "page fetch timeout in seconds (overrides $FETCH_TIMEOUT_SECONDS)"),
	}
	flag.Parse()
	return flags
}

// buildAPIOptions assembles the module options from config and flags.
func buildAPIOptions(config Config, flags Flags) []api.Option {
	opts := []api.Option{
		api.WithSlackToken(*flags.slackToken),
		api.WithDatabase(resolveDriver(*flags.dbDriver, *flags.dbDSN), *flags.dbDSN),
		api.WithCacheCapacity(*flags.cacheCapacity),
		api.WithMarkAfterDispatch(config.MarkAfterDispatch),
		api.WithTimeouts(config.SummaryTimeout, config.ReplyTimeout),
		api.WithFetchOptions(
			fetch.WithTimeout(time.Duration(*flags.fetchTimeout)*time.Second),
			fetch.WithBlockedHosts(config.BlockedHosts),
		),
	}
	if *flags.apiAddr != "" {
		opts = append(opts, api.WithAddr(*flags.apiAddr))
	}

	var sumOpts []summarize.Option
	if *flags.openaiKey != "" {
		sumOpts = append(sumOpts, summarize.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		sumOpts = append(sumOpts, summarize.WithModel(*flags.openaiModel))
	}
	if len(sumOpts) > 0 {
		opts = append(opts, api.WithSummarizeOptions(sumOpts...))
	}
	return opts
}

// resolveDriver picks the store backend. An explicit driver wins; otherwise
// a URL-style DSN selects Postgres and a file path selects SQLite.
func resolveDriver(driver, dsn string) string {
	if driver != "" {
		return driver
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}
