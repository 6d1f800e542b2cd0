package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/tkivisto/legalintake/internal/ai"
	"github.com/tkivisto/legalintake/internal/analysis"
	"github.com/tkivisto/legalintake/internal/db"
	"github.com/tkivisto/legalintake/internal/envstruct"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/intake"
	"github.com/tkivisto/legalintake/internal/logging"
	"github.com/tkivisto/legalintake/internal/pprofserver"
	"github.com/tkivisto/legalintake/internal/repositories"
	"github.com/tkivisto/legalintake/internal/turnlock"
)

type application struct {
	logger         *slog.Logger
	cases          *repositories.CaseRepository
	auditLogs      *repositories.AuditLogRepository
	controller     *intake.Controller
	extractor      *analysis.Extractor
	sessionManager *scs.SessionManager
	turnGuard      *turnlock.Guard[int64]
}

type config struct {
	Addr          string  `env:"LEGALINTAKE_ADDR" envDefault:"localhost:4000"`
	PprofPort     string  `env:"LEGALINTAKE_PPROF_PORT" envDefault:":6060"`
	SQLiteURL     string  `env:"LEGALINTAKE_SQLITE_URL" envDefault:"./legalintake.sqlite"`
	AIAPIKey      string  `env:"GROQ_API_KEY" envDefault:""`
	AIBaseURL     string  `env:"LEGALINTAKE_AI_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	AIModel       string  `env:"LEGALINTAKE_AI_MODEL" envDefault:"llama-3.3-70b-versatile"`
	AITemperature float64 `env:"LEGALINTAKE_AI_TEMPERATURE" envDefault:"0"`
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{ //nolint:exhaustruct // defaults are fine
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	logger := slog.New(loggerHandler)

	// The .env file is optional; environment variables win in any case.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded")
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := db.NewDatabase(cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	aiClient := ai.NewClient(ai.Options{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: float32(cfg.AITemperature),
	})

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	app := application{
		logger:         logger,
		cases:          repositories.NewCaseRepository(dbs, logger),
		auditLogs:      repositories.NewAuditLogRepository(dbs, logger),
		controller:     intake.NewController(aiClient, logger),
		extractor:      analysis.NewExtractor(aiClient, logger),
		sessionManager: sessionManager,
		turnGuard:      turnlock.New[int64](),
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
