package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/repository"
)

type stubLister struct {
	recs    []*entity.ScanRecord
	err     error
	filters []repository.ListFilter
}

func (s *stubLister) List(_ context.Context, f repository.ListFilter) ([]*entity.ScanRecord, error) {
	s.filters = append(s.filters, f)
	if s.err != nil {
		return nil, s.err
	}
	if f.Offset >= len(s.recs) {
		return nil, nil
	}
	end := min(len(s.recs), f.Offset+f.Limit)
	return s.recs[f.Offset:end], nil
}

func TestExportContactsXLSX(t *testing.T) {
	score := 77
	c := entity.NewStructuredContact()
	c.Name = "John Smith"
	c.Email = "john@acme.io"
	c.ConfidenceScore = &score
	c.Address = strings.Repeat("x", 200)
	lister := &stubLister{recs: []*entity.ScanRecord{{
		Method: "AI", Status: "CONFIRMED", Contact: c,
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}}}

	out, err := NewService(lister, nil).ExportContactsXLSX(context.Background(), constants.ScanStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, lister.filters, 1)
	assert.Equal(t, constants.ScanStatusConfirmed, lister.filters[0].Status)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "John Smith", rows[1][0])
	assert.Equal(t, "-", rows[1][5])
	assert.Equal(t, "john@acme.io", rows[1][6])
	assert.Equal(t, 140, len([]rune(rows[1][8])))
	assert.Equal(t, "77", rows[1][9])
	assert.Equal(t, "2024-05-01T09:00:00Z", rows[1][13])
}

func TestExportPropagatesListError(t *testing.T) {
	_, err := NewService(&stubLister{err: errors.New("db down")}, nil).ExportContactsXLSX(context.Background(), "")
	assert.ErrorContains(t, err, "db down")
}
