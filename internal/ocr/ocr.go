// Package ocr reads card photos locally with the tesseract CLI. It backs the
// offline scan mode, where the text goes to the heuristic parser.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	// PSM 6 (uniform block) suits most cards; 11 (sparse text) helps busy layouts.
	PSM int
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
	Timeout             time.Duration
}

type ExtractionResult struct {
	Text       string
	Method     string // "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // 0..1
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner (tests).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	if r != nil {
		e.runner = r
	}
	return e
}

// ExtractFile OCRs an image on disk.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (ExtractionResult, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != constants.IMAGE {
		e.logger.Error("ocr.unsupported_extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidInput, ext)
	}
	return e.extractImage(ctx, path)
}

// ExtractImage OCRs an in-memory image by spooling it to a temp file.
func (e *Extractor) ExtractImage(ctx context.Context, img llm.Image) (ExtractionResult, error) {
	tmp, err := os.CreateTemp("", "cardscan-*"+extForMIME(img.MIMEType))
	if err != nil {
		return ExtractionResult{}, err
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			e.logger.Warn("ocr.temp_remove_failed", "path", tmp.Name(), "error", err)
		}
	}()
	if _, err := tmp.Write(img.Data); err != nil {
		_ = tmp.Close()
		return ExtractionResult{}, fmt.Errorf("spool image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ExtractionResult{}, fmt.Errorf("spool image: %w", err)
	}
	return e.extractImage(ctx, tmp.Name())
}

func extForMIME(m string) string {
	switch m {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
