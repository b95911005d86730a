package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/repository"
)

const sheet = "Contacts"

// Headers are the workbook columns, in order.
var Headers = []string{
	"Name", "Job Title", "Company", "Website", "Phone", "Phone 2",
	"Email", "Email 2", "Address", "Confidence", "Language", "Method", "Status", "Scanned At",
}

// ContactLister is the read side of repository.ContactRepository.
type ContactLister interface {
	List(ctx context.Context, f repository.ListFilter) ([]*entity.ScanRecord, error)
}

// Service produces XLSX bytes for stored scans.
type Service struct {
	repo   ContactLister
	logger *slog.Logger
}

func NewService(repo ContactLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportContactsXLSX returns a workbook with one row per stored scan, newest
// first. An empty status exports everything.
func (s *Service) ExportContactsXLSX(ctx context.Context, status constants.ScanStatus) ([]byte, error) {
	start := time.Now()

	var recs []*entity.ScanRecord
	const page = 500
	for offset := 0; ; offset += page {
		batch, err := s.repo.List(ctx, repository.ListFilter{Status: status, Limit: page, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("query contacts: %w", err)
		}
		recs = append(recs, batch...)
		if len(batch) < page {
			break
		}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()
	// rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, r := range recs {
		c := r.Contact
		var conf any = ""
		if c.ConfidenceScore != nil {
			conf = *c.ConfidenceScore
		}
		values := []any{
			c.Name, c.JobTitle, c.Company, c.Website, c.Phone, c.PhoneSecondary,
			c.Email, c.EmailSecondary, truncate(c.Address, 140), conf, c.DetectedLanguage,
			r.Method, r.Status, r.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 24)
	_ = f.SetColWidth(sheet, "D", "D", 28)
	_ = f.SetColWidth(sheet, "E", "F", 16)
	_ = f.SetColWidth(sheet, "G", "H", 28)
	_ = f.SetColWidth(sheet, "I", "I", 48)
	_ = f.SetColWidth(sheet, "N", "N", 22)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"status", status,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
