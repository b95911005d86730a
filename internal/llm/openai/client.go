package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

const (
	stageOCR     = "ocr"
	stageExtract = "extract"
)

var _ llm.Provider = (*Client)(nil)

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// RecognizeText implements llm.TextRecognizer with a single vision message.
func (c *Client) RecognizeText(ctx context.Context, req llm.RecognizeRequest) (string, error) {
	start := time.Now()
	if !llm.IsSupportedImageMIME(req.Image.MIMEType) {
		return "", fmt.Errorf("%w: unsupported image type %q", common.ErrInvalidInput, req.Image.MIMEType)
	}

	c.log.Info("llm.ocr.start",
		"model", c.cfg.Model,
		"mime", req.Image.MIMEType,
		"image_bytes", len(req.Image.Data),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": req.UserPrompt},
				{"type": "image_url", "image_url": map[string]any{"url": req.Image.DataURL()}},
			}},
		},
	}

	content, err := c.complete(ctx, stageOCR, body)
	if err != nil {
		return "", err
	}
	c.log.Info("llm.ocr.ok", "text_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// ExtractFields implements llm.FieldExtractor using text-only chat/completions
// with a strict json_schema response format.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) ([]byte, error) {
	start := time.Now()
	c.log.Info("llm.extract.start",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	name := req.SchemaName
	if name == "" {
		name = llm.SchemaName
	}
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"strict": true,
				"schema": req.Schema,
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserPrompt},
		},
	}

	content, err := c.complete(ctx, stageExtract, body)
	if err != nil {
		return nil, err
	}
	c.log.Info("llm.extract.ok", "bytes", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return []byte(content), nil
}

// complete posts one chat completion and returns the first choice's content.
func (c *Client) complete(ctx context.Context, stage string, body map[string]any) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		if errors.Is(err, llm.ErrTransport) || status == 0 {
			return "", err
		}
		return "", common.NewProviderError(c.Name(), stage, status, errorMessage(raw, status))
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.openai.decode_error", "stage", stage, "error", err, "raw_bytes", len(raw))
		return "", common.NewProviderError(c.Name(), stage, status, "openai returned an unreadable response")
	}
	if len(cc.Choices) == 0 {
		return "", common.NewProviderError(c.Name(), stage, status, "openai returned no choices")
	}
	msg := cc.Choices[0].Message
	if msg.Refusal != "" {
		return "", common.NewProviderError(c.Name(), stage, status, msg.Refusal)
	}
	return strings.TrimSpace(msg.Content), nil
}

// errorMessage pulls error.message out of a failure body; anything else is
// reported with a truncated body.
func errorMessage(raw []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Error.Message) != "" {
		return env.Error.Message
	}
	return fmt.Sprintf("openai status %d: %s", status, truncate(raw, 256))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
