// Package gemini runs both scan stages against Google's Gemini models through
// the generative-ai-go SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

const (
	stageOCR     = "ocr"
	stageExtract = "extract"
)

type Config struct {
	APIKey      string
	Model       string // default gemini-1.5-flash
	Temperature float32
	MaxTokens   int
}

// Engine implements llm.Provider. A client is opened per call.
type Engine struct {
	cfg Config
	log *slog.Logger
}

var _ llm.Provider = (*Engine)(nil)

func New(cfg Config, logger *slog.Logger) *Engine {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, log: logger.With("provider", "gemini")}
}

func (e *Engine) Name() string { return "gemini" }

// RecognizeText sends the card image as an inline blob.
func (e *Engine) RecognizeText(ctx context.Context, req llm.RecognizeRequest) (string, error) {
	start := time.Now()
	parts := []genai.Part{
		genai.Text(req.UserPrompt),
		&genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data},
	}
	txt, err := e.generate(ctx, stageOCR, req.SystemPrompt, "text/plain", parts)
	if err != nil {
		return "", err
	}
	e.log.Info("llm.ocr.ok", "model", e.cfg.Model, "text_len", len(txt), "elapsed_ms", time.Since(start).Milliseconds())
	return txt, nil
}

// ExtractFields requests JSON output. Gemini's own schema type differs from
// JSON Schema, so the schema travels in the system instruction and is
// enforced locally by llm.DecodeContactFields.
func (e *Engine) ExtractFields(ctx context.Context, req llm.ExtractRequest) ([]byte, error) {
	start := time.Now()
	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	sys := req.SystemPrompt + "\n\nJSON schema of the response:\n" + string(schemaJSON)

	txt, err := e.generate(ctx, stageExtract, sys, "application/json", []genai.Part{genai.Text(req.UserPrompt)})
	if err != nil {
		return nil, err
	}
	e.log.Info("llm.extract.ok", "model", e.cfg.Model, "bytes", len(txt), "elapsed_ms", time.Since(start).Milliseconds())
	return []byte(llm.StripCodeFences(txt)), nil
}

func (e *Engine) generate(ctx context.Context, stage, system, mime string, parts []genai.Part) (string, error) {
	if e.cfg.APIKey == "" {
		return "", common.NewProviderError(e.Name(), stage, 0, "GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrTransport, err)
	}
	defer func() {
		if err := cl.Close(); err != nil {
			e.log.Warn("llm.gemini.close_error", "error", err)
		}
	}()

	m := cl.GenerativeModel(e.cfg.Model)
	m.SetTemperature(e.cfg.Temperature)
	m.SetMaxOutputTokens(int32(e.cfg.MaxTokens))
	m.ResponseMIMEType = mime
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	e.log.Info("llm.gemini.request", "stage", stage, "model", e.cfg.Model)
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", e.classify(stage, err)
	}
	return strings.TrimSpace(firstText(resp)), nil
}

// classify turns SDK errors into provider errors carrying the API's message,
// or transport errors when no answer came back.
func (e *Engine) classify(stage string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		return common.NewProviderError(e.Name(), stage, gerr.Code, msg)
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return common.NewProviderError(e.Name(), stage, 0, blocked.Error())
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		default:
			return common.NewProviderError(e.Name(), stage, 0, st.Message())
		}
	}
	e.log.Error("llm.gemini.send_error", "stage", stage, "error", err)
	return fmt.Errorf("%w: %w", llm.ErrTransport, err)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
