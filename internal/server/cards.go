package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/core"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/repository"
)

// CardService adapts core.Processor to the RPC surface. Domain errors are
// mapped to status codes with common.ToStatus.
type CardService struct {
	proc     *core.Processor
	exporter *export.Service
	logger   *slog.Logger
}

var _ CardScanServiceServer = (*CardService)(nil)

func NewCardService(proc *core.Processor, exporter *export.Service, logger *slog.Logger) *CardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardService{proc: proc, exporter: exporter, logger: logger}
}

func (s *CardService) ParseText(ctx context.Context, req *ParseTextRequest) (*ScanResponse, error) {
	res, err := s.proc.ParseText(ctx, req.Text, req.Persist)
	if err != nil {
		s.logger.Warn("rpc.parse_text.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return toScanResponse(res), nil
}

func (s *CardService) ScanImage(ctx context.Context, req *ScanImageRequest) (*ScanResponse, error) {
	res, err := s.proc.ScanImage(ctx, core.ScanRequest{
		ImageBase64: req.ImageBase64,
		Mode:        constants.ScanMethod(strings.TrimSpace(req.Mode)),
		Persist:     req.Persist,
	})
	if err != nil {
		s.logger.Warn("rpc.scan_image.failed", "mode", req.Mode, "error", err)
		return nil, common.ToStatus(err)
	}
	return toScanResponse(res), nil
}

func (s *CardService) GetContact(ctx context.Context, req *GetContactRequest) (*ScanRecordResponse, error) {
	rec, err := s.proc.Get(ctx, strings.TrimSpace(req.ID))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &ScanRecordResponse{Scan: rec}, nil
}

func (s *CardService) ListContacts(ctx context.Context, req *ListContactsRequest) (*ListContactsResponse, error) {
	recs, err := s.proc.List(ctx, repository.ListFilter{
		Status: constants.ScanStatus(strings.TrimSpace(req.Status)),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		s.logger.Error("rpc.list_contacts.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Debug("rpc.list_contacts.ok", "count", len(recs))
	return &ListContactsResponse{Scans: recs}, nil
}

func (s *CardService) ReviewContact(ctx context.Context, req *ReviewContactRequest) (*ScanRecordResponse, error) {
	rec, err := s.proc.Review(ctx, strings.TrimSpace(req.ID), req.Contact)
	if err != nil {
		s.logger.Warn("rpc.review_contact.failed", "id", req.ID, "error", err)
		return nil, common.ToStatus(err)
	}
	return &ScanRecordResponse{Scan: rec}, nil
}

func (s *CardService) ExportContacts(ctx context.Context, req *ExportContactsRequest) (*ExportContactsResponse, error) {
	if s.exporter == nil {
		return nil, common.InternalError("export is not configured")
	}
	st := strings.ToUpper(strings.TrimSpace(req.Status))
	v := common.NewValidator().Field("status", st,
		common.OneOf(string(constants.ScanStatusPendingReview), string(constants.ScanStatusConfirmed)))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	data, err := s.exporter.ExportContactsXLSX(ctx, constants.ScanStatus(st))
	if err != nil {
		s.logger.Error("rpc.export_contacts.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	name := fmt.Sprintf("contacts_%s.xlsx", time.Now().UTC().Format("20060102"))
	return &ExportContactsResponse{Filename: name, XLSX: data}, nil
}

func toScanResponse(r core.ScanResult) *ScanResponse {
	out := &ScanResponse{
		Contact:     r.Contact,
		Method:      string(r.Method),
		RawText:     r.RawText,
		RuleVersion: r.RuleVersion,
	}
	if r.RecordID != uuid.Nil {
		out.ScanID = r.RecordID.String()
	}
	return out
}
