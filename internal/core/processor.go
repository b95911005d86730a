package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/heuristic"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/normalize"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
	"github.com/joseph-ayodele/cardscan/internal/repository"
)

// MaxTextBytes caps text submitted for heuristic parsing.
const MaxTextBytes = 64 << 10

// ImageScanner is the two-stage AI pipeline.
type ImageScanner interface {
	Scan(ctx context.Context, img llm.Image) (pipeline.Result, error)
}

// ImageOCR is the local OCR used by the offline image path.
type ImageOCR interface {
	ExtractImage(ctx context.Context, img llm.Image) (ocr.ExtractionResult, error)
}

type ScanRequest struct {
	ImageBase64 string
	Mode        constants.ScanMethod // "" means heuristic
	Persist     bool
}

// ScanResult is what every entry point returns. RecordID is uuid.Nil when the
// scan was not persisted.
type ScanResult struct {
	Contact     entity.StructuredContact
	RawText     string
	Method      constants.ScanMethod
	RuleVersion string
	RecordID    uuid.UUID
}

// Processor routes card input to the heuristic parser or the AI pipeline and
// optionally stores the outcome for later review. Any dependency may be nil;
// the operations that need it then fail with ErrInvalidInput.
type Processor struct {
	logger     *slog.Logger
	scanner    ImageScanner
	ocr        ImageOCR
	repo       repository.ContactRepository
	maxImageMB int
}

func NewProcessor(
	logger *slog.Logger,
	scanner ImageScanner,
	ocrExtractor ImageOCR,
	repo repository.ContactRepository,
	maxImageMB int,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxImageMB <= 0 {
		maxImageMB = constants.MaxImageMBDefault
	}
	return &Processor{
		logger:     logger,
		scanner:    scanner,
		ocr:        ocrExtractor,
		repo:       repo,
		maxImageMB: maxImageMB,
	}
}

// ParseText runs the heuristic parser over already recognized text.
func (p *Processor) ParseText(ctx context.Context, text string, persist bool) (ScanResult, error) {
	v := common.NewValidator().Field("text", text, common.MaxBytes(MaxTextBytes))
	if err := v.Error(); err != nil {
		return ScanResult{}, err
	}
	res := ScanResult{
		Contact: heuristic.ParseCardText(text),
		RawText: text,
		Method:  constants.MethodHeuristic,
	}
	p.logger.Debug("processor.parse_text.ok", "lines", strings.Count(text, "\n")+1, "name_found", res.Contact.Name != "")
	return p.maybePersist(ctx, res, constants.TXT, persist)
}

// ScanImage decodes a base64 card photo and runs the requested mode.
func (p *Processor) ScanImage(ctx context.Context, req ScanRequest) (ScanResult, error) {
	// base64 inflates by 4/3; a data: prefix gets a little slack
	maxEncoded := p.maxImageMB<<20/3*4 + 256
	v := common.NewValidator().
		Field("image_base64", req.ImageBase64, common.Required, common.MaxBytes(maxEncoded))
	if err := v.Error(); err != nil {
		return ScanResult{}, err
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return ScanResult{}, err
	}
	img, err := llm.DecodeImage(req.ImageBase64)
	if err != nil {
		return ScanResult{}, err
	}
	return p.scanDecoded(ctx, img, mode, req.Persist)
}

// ScanFile reads a card from disk: .txt files go to the heuristic parser,
// images follow mode.
func (p *Processor) ScanFile(ctx context.Context, path string, mode constants.ScanMethod, persist bool) (ScanResult, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return ScanResult{}, fmt.Errorf("%w: unsupported file %q", common.ErrInvalidInput, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ScanResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	if format == constants.TXT {
		return p.ParseText(ctx, string(data), persist)
	}
	mode, err = parseMode(mode)
	if err != nil {
		return ScanResult{}, err
	}
	if len(data) > p.maxImageMB<<20 {
		return ScanResult{}, fmt.Errorf("%w: image exceeds %d MB", common.ErrInvalidInput, p.maxImageMB)
	}
	img, err := llm.NewImage(data)
	if err != nil {
		return ScanResult{}, err
	}
	return p.scanDecoded(ctx, img, mode, persist)
}

func parseMode(m constants.ScanMethod) (constants.ScanMethod, error) {
	mode, ok := constants.ParseScanMethod(string(m))
	if !ok {
		return "", fmt.Errorf("%w: mode must be ai or heuristic, got %q", common.ErrInvalidInput, m)
	}
	return mode, nil
}

func (p *Processor) scanDecoded(ctx context.Context, img llm.Image, mode constants.ScanMethod, persist bool) (ScanResult, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	log := p.logger.With("req_id", reqID, "mode", mode)
	start := time.Now()

	var (
		res ScanResult
		err error
	)
	if mode == constants.MethodAI {
		res, err = p.scanAI(ctx, img)
	} else {
		res, err = p.scanOffline(ctx, img)
	}
	if err != nil {
		log.Error("processor.scan.failed", "err", err, "elapsed_ms", time.Since(start).Milliseconds())
		return ScanResult{}, err
	}
	log.Info("processor.scan.ok", "name_found", res.Contact.Name != "", "elapsed_ms", time.Since(start).Milliseconds())
	return p.maybePersist(ctx, res, constants.IMAGE, persist)
}

func (p *Processor) scanAI(ctx context.Context, img llm.Image) (ScanResult, error) {
	if p.scanner == nil {
		return ScanResult{}, fmt.Errorf("%w: ai mode is not configured", common.ErrInvalidInput)
	}
	r, err := p.scanner.Scan(ctx, img)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{
		Contact:     r.Contact,
		RawText:     r.RawText,
		Method:      constants.MethodAI,
		RuleVersion: r.RuleVersion,
	}, nil
}

func (p *Processor) scanOffline(ctx context.Context, img llm.Image) (ScanResult, error) {
	if p.ocr == nil {
		return ScanResult{}, fmt.Errorf("%w: local ocr is not configured", common.ErrInvalidInput)
	}
	r, err := p.ocr.ExtractImage(ctx, img)
	if err != nil {
		return ScanResult{}, err
	}
	if strings.TrimSpace(r.Text) == "" {
		return ScanResult{}, common.ErrEmptyExtraction
	}
	return ScanResult{
		Contact: heuristic.ParseCardText(r.Text),
		RawText: r.Text,
		Method:  constants.MethodHeuristic,
	}, nil
}

func (p *Processor) maybePersist(ctx context.Context, res ScanResult, source string, persist bool) (ScanResult, error) {
	if !persist {
		return res, nil
	}
	if p.repo == nil {
		return res, fmt.Errorf("%w: persistence is not configured", common.ErrInvalidInput)
	}
	rec, err := p.repo.Create(ctx, &entity.ScanRecord{
		Method:      string(res.Method),
		SourceType:  source,
		RawText:     res.RawText,
		RuleVersion: res.RuleVersion,
		Contact:     res.Contact,
	})
	if err != nil {
		return res, err
	}
	res.RecordID = rec.ID
	return res, nil
}

// Review stores user-edited fields and confirms the scan. Phones are compacted
// and blank secondaries restored to the sentinel.
func (p *Processor) Review(ctx context.Context, id string, c entity.StructuredContact) (*entity.ScanRecord, error) {
	scanID, err := p.parseID(id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.JobTitle = strings.TrimSpace(c.JobTitle)
	c.Company = strings.TrimSpace(c.Company)
	c.Website = strings.TrimSpace(c.Website)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = normalize.CompactPhone(c.Phone)
	c.PhoneSecondary = normalize.CompactPhone(normalize.OrSentinel(c.PhoneSecondary))
	c.EmailSecondary = normalize.OrSentinel(c.EmailSecondary)

	rec, err := p.repo.UpdateContact(ctx, scanID, c)
	if err != nil {
		return nil, err
	}
	p.logger.Info("processor.review.ok", "scan_id", scanID)
	return rec, nil
}

func (p *Processor) Get(ctx context.Context, id string) (*entity.ScanRecord, error) {
	scanID, err := p.parseID(id)
	if err != nil {
		return nil, err
	}
	return p.repo.GetByID(ctx, scanID)
}

func (p *Processor) List(ctx context.Context, f repository.ListFilter) ([]*entity.ScanRecord, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("%w: persistence is not configured", common.ErrInvalidInput)
	}
	if f.Status != "" {
		v := common.NewValidator().Field("status", string(f.Status),
			common.OneOf(string(constants.ScanStatusPendingReview), string(constants.ScanStatusConfirmed)))
		if err := v.Error(); err != nil {
			return nil, err
		}
		f.Status = constants.ScanStatus(strings.ToUpper(string(f.Status)))
	}
	return p.repo.List(ctx, f)
}

func (p *Processor) parseID(id string) (uuid.UUID, error) {
	if p.repo == nil {
		return uuid.Nil, fmt.Errorf("%w: persistence is not configured", common.ErrInvalidInput)
	}
	if err := common.NewValidator().Field("id", id, common.Required, common.UUID).Error(); err != nil {
		return uuid.Nil, err
	}
	scanID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.Join(common.ErrInvalidInput, err)
	}
	return scanID, nil
}
