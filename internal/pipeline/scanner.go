// Package pipeline runs the two-stage card scan: verbatim OCR of the image,
// then schema-constrained field extraction from that text.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

// Config bounds each provider call.
type Config struct {
	StageTimeout time.Duration // per attempt; default 45s
	MaxRetries   int           // extra attempts on transport failures only
	RetryBackoff time.Duration // multiplied by the attempt number; default 500ms
}

// Result is a completed scan. RawText is the stage 1 transcription.
type Result struct {
	Contact     entity.StructuredContact
	RawText     string
	RuleVersion string
	Provider    string
}

// Scanner is stateless across calls and safe for concurrent use.
type Scanner struct {
	provider llm.Provider
	rules    *llm.RuleSet
	schema   map[string]any
	cfg      Config
	logger   *slog.Logger
}

func NewScanner(provider llm.Provider, rules *llm.RuleSet, cfg Config, logger *slog.Logger) (*Scanner, error) {
	if provider == nil {
		return nil, errors.New("pipeline: provider is required")
	}
	if rules == nil {
		var err error
		if rules, err = llm.DefaultRuleSet(); err != nil {
			return nil, err
		}
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 45 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		provider: provider,
		rules:    rules,
		schema:   llm.BuildContactJSONSchema(rules),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ScanCardImage turns a base64 card photo (raw or data: URL) into a contact.
// Stage 2 only runs when stage 1 produced text; any failure aborts without a
// partial contact.
func (s *Scanner) ScanCardImage(ctx context.Context, imageBase64 string) (entity.StructuredContact, error) {
	img, err := llm.DecodeImage(imageBase64)
	if err != nil {
		return entity.StructuredContact{}, err
	}
	res, err := s.Scan(ctx, img)
	if err != nil {
		return entity.StructuredContact{}, err
	}
	return res.Contact, nil
}

// Scan is ScanCardImage for an already decoded image; it also returns the
// stage 1 text.
func (s *Scanner) Scan(ctx context.Context, img llm.Image) (Result, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	log := s.logger.With("req_id", reqID, "provider", s.provider.Name(), "rules", s.rules.Version)
	start := time.Now()

	ocrSys, ocrUser := llm.BuildOCRPrompts(s.rules)
	var text string
	err := s.withRetry(ctx, log, "ocr", func(ctx context.Context) error {
		var err error
		text, err = s.provider.RecognizeText(ctx, llm.RecognizeRequest{
			Image: img, SystemPrompt: ocrSys, UserPrompt: ocrUser,
		})
		return err
	})
	if err != nil {
		log.Error("pipeline.stage1.failed", "err", err)
		return Result{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn("pipeline.stage1.empty")
		return Result{}, common.ErrEmptyExtraction
	}
	log.Info("pipeline.stage1.ok", "text_len", len(text))

	req := llm.ExtractRequest{
		Text:         text,
		SystemPrompt: llm.BuildExtractionSystemPrompt(s.rules),
		UserPrompt:   llm.BuildExtractionUserPrompt(s.rules, text),
		SchemaName:   llm.SchemaName,
		Schema:       s.schema,
	}
	var raw []byte
	err = s.withRetry(ctx, log, "extract", func(ctx context.Context) error {
		var err error
		raw, err = s.provider.ExtractFields(ctx, req)
		return err
	})
	if err != nil {
		log.Error("pipeline.stage2.failed", "err", err)
		return Result{}, err
	}

	fields, err := llm.DecodeContactFields(raw, s.schema, log)
	if err != nil {
		log.Error("pipeline.stage2.decode_failed", "err", err)
		return Result{}, err
	}

	contact := ToStructuredContact(fields)
	log.Info("pipeline.scan.ok",
		"confidence", fields.ConfidenceScore,
		"language", fields.DetectedLanguage,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{
		Contact:     contact,
		RawText:     text,
		RuleVersion: s.rules.Version,
		Provider:    s.provider.Name(),
	}, nil
}

// withRetry runs fn under a per-attempt timeout. Only transport failures are
// retried, and never after the caller's context is done.
func (s *Scanner) withRetry(ctx context.Context, log *slog.Logger, stage string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("pipeline.stage.retry", "stage", stage, "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
			}
		}
		sctx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
		err = fn(sctx)
		cancel()
		if err == nil || !errors.Is(err, llm.ErrTransport) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("%s stage: %w", stage, err)
}
