// Package services assembles the processor and its dependencies from config.
// Binaries call Build once and Close on exit.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/core"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/llm/gemini"
	"github.com/joseph-ayodele/cardscan/internal/llm/openai"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
	repo "github.com/joseph-ayodele/cardscan/internal/repository"
)

// Options select the optional parts of the stack.
type Options struct {
	Database  bool // open the contact store
	RequireAI bool // fail instead of running without a provider
}

type Services struct {
	DB        *repo.DB
	Contacts  repo.ContactRepository
	Processor *core.Processor
	Exporter  *export.Service
	Provider  llm.Provider // nil when AI mode is unavailable
	Rules     *llm.RuleSet

	logger *slog.Logger
}

func Build(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{logger: logger}

	rules, err := llm.LoadRuleSet(cfg.LLM.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	s.Rules = rules

	var scanner core.ImageScanner
	if err := cfg.LLM.Validate(); err != nil {
		if opts.RequireAI {
			return nil, err
		}
		logger.Info("services.ai.disabled", "reason", err.Error())
	} else {
		if s.Provider, err = NewProvider(cfg.LLM, logger); err != nil {
			return nil, err
		}
		sc, err := pipeline.NewScanner(s.Provider, rules, pipeline.Config{
			StageTimeout: cfg.LLM.StageTimeout,
			MaxRetries:   cfg.LLM.MaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		scanner = sc
		logger.Info("services.ai.enabled", "provider", s.Provider.Name(), "model", cfg.LLM.Model, "rules", rules.Version)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.TesseractPath,
		TesseractLang: cfg.OCR.Languages,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		Timeout:       cfg.OCR.Timeout,
	}, logger)

	if opts.Database {
		if s.DB, err = InitDatabase(ctx, cfg.Database, logger); err != nil {
			return nil, err
		}
		s.Contacts = repo.NewContactRepository(s.DB, logger)
		s.Exporter = export.NewService(s.Contacts, logger)
	}

	s.Processor = core.NewProcessor(logger, scanner, extractor, s.Contacts, cfg.Server.MaxImageMB)
	return s, nil
}

// NewProvider builds the configured model client.
func NewProvider(cfg common.LLMConfig, logger *slog.Logger) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "gemini":
		return gemini.New(gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", common.ErrInvalidInput, cfg.Provider)
	}
}

// InitDatabase opens the contact store and applies the schema. InMemory
// selects an embedded sqlite database; otherwise DSN must point at Postgres.
func InitDatabase(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.DB, error) {
	var (
		db  *repo.DB
		err error
	)
	switch {
	case cfg.InMemory:
		db, err = repo.OpenSQLite(ctx, "", logger)
	case cfg.DSN == "":
		return nil, errors.New("DB_URL is required unless DB_INMEM is set")
	default:
		db, err = repo.Open(ctx, repo.Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		db.Close(logger)
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close(logger)
		return nil, err
	}
	logger.Info("database ready", "dialect", db.Dialect)
	return db, nil
}

func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close(s.logger)
	}
}
