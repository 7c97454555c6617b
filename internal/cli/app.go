package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"calorina/internal/assistant"
	"calorina/internal/auth"
	"calorina/internal/catalog"
	"calorina/internal/config"
	"calorina/internal/database"
	"calorina/internal/diet"
	"calorina/internal/i18n"
	"calorina/internal/llm"
	"calorina/internal/metrics"
	"calorina/internal/session"
)

// app holds the long-lived services shared by the server commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *database.DB
	store    *metrics.Store
	prom     *metrics.Collectors
	sessions *session.Manager
	catalog  *catalog.Catalog
	importer *catalog.Importer
	users    *auth.Directory
	tokens   *auth.Issuer
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	synth, err := diet.NewSynthesizer(diet.DefaultBank())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load meal bank: %w", err)
	}

	completer := llm.NewCompleter(cfg)
	store := metrics.NewStore(db.SQL)
	prom := metrics.NewCollectors()

	sessions := session.NewManager(assistant.NewOrchestrator(completer, logger), synth, session.Options{
		HistoryLimit:    cfg.HistoryLimit,
		Timeout:         cfg.LLMTimeout,
		DefaultLanguage: i18n.Language(cfg.DefaultLanguage),
		Telemetry:       metrics.NewRecorder(store, prom, logger),
		Logger:          logger,
	})

	logger.Info("services ready",
		"provider", cfg.LLMProvider,
		"database", cfg.DatabasePath,
		"history_limit", cfg.HistoryLimit,
		"timeout", cfg.LLMTimeout,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    store,
		prom:     prom,
		sessions: sessions,
		catalog:  catalog.New(catalog.DefaultSeed()),
		importer: catalog.NewImporter(completer),
		users:    auth.NewDirectory(auth.DefaultUsers),
		tokens:   auth.NewIssuer(cfg.SessionSecret, 0),
	}, nil
}

func (a *app) dataDir() string {
	return filepath.Dir(a.cfg.DatabasePath)
}

func (a *app) Close() error {
	return a.db.Close()
}
