package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// timestamps are stored as fixed-width UTC text so they sort on both drivers
const timeLayout = "2006-01-02T15:04:05.000000Z"

const scanColumns = `id, method, source_type, status, raw_text, rule_version,
	name, job_title, company, website, phone, phone_secondary, email, email_secondary,
	address, confidence_score, detected_language, created_at, updated_at`

// ListFilter narrows List. Zero values mean no filter; Limit defaults to 50.
type ListFilter struct {
	Status constants.ScanStatus
	Limit  int
	Offset int
}

type ContactRepository interface {
	Create(ctx context.Context, rec *entity.ScanRecord) (*entity.ScanRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanRecord, error)
	List(ctx context.Context, f ListFilter) ([]*entity.ScanRecord, error)
	UpdateContact(ctx context.Context, id uuid.UUID, c entity.StructuredContact) (*entity.ScanRecord, error)
}

type contactRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewContactRepository(db *DB, logger *slog.Logger) ContactRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &contactRepository{db: db, logger: logger, now: time.Now}
}

// Create inserts a new scan. Missing id and status are filled in.
func (r *contactRepository) Create(ctx context.Context, rec *entity.ScanRecord) (*entity.ScanRecord, error) {
	out := *rec
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Status == "" {
		out.Status = string(constants.ScanStatusPendingReview)
	}
	ts := r.now().UTC()
	out.CreatedAt, out.UpdatedAt = ts, ts
	c := out.Contact

	q := r.db.rebind(`INSERT INTO card_scans (` + scanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.SQL.ExecContext(ctx, q,
		out.ID.String(), out.Method, out.SourceType, out.Status, out.RawText, out.RuleVersion,
		c.Name, c.JobTitle, c.Company, c.Website, c.Phone, c.PhoneSecondary, c.Email, c.EmailSecondary,
		c.Address, nullableInt(c.ConfidenceScore), c.DetectedLanguage,
		ts.Format(timeLayout), ts.Format(timeLayout),
	)
	if err != nil {
		r.logger.Error("repo.scan.create_failed", "id", out.ID, "error", err)
		return nil, fmt.Errorf("%w: insert scan: %v", common.ErrDatabase, err)
	}
	r.logger.Debug("repo.scan.created", "id", out.ID, "method", out.Method)
	return &out, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanRecord, error) {
	q := r.db.rebind(`SELECT ` + scanColumns + ` FROM card_scans WHERE id = ?`)
	rec, err := scanRecord(r.db.SQL.QueryRowContext(ctx, q, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repo.scan.get_failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: get scan: %v", common.ErrDatabase, err)
	}
	return rec, nil
}

// List returns scans newest first.
func (r *contactRepository) List(ctx context.Context, f ListFilter) ([]*entity.ScanRecord, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := `SELECT ` + scanColumns + ` FROM card_scans`
	args := make([]any, 0, 3)
	if f.Status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, max(0, f.Offset))

	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		r.logger.Error("repo.scan.list_failed", "error", err)
		return nil, fmt.Errorf("%w: list scans: %v", common.ErrDatabase, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.logger.Warn("repo.scan.rows_close_failed", "error", err)
		}
	}(rows)

	var out []*entity.ScanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", common.ErrDatabase, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list scans: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// UpdateContact stores the reviewed fields and marks the scan confirmed.
func (r *contactRepository) UpdateContact(ctx context.Context, id uuid.UUID, c entity.StructuredContact) (*entity.ScanRecord, error) {
	ts := r.now().UTC().Format(timeLayout)
	q := r.db.rebind(`UPDATE card_scans SET
		name = ?, job_title = ?, company = ?, website = ?, phone = ?, phone_secondary = ?,
		email = ?, email_secondary = ?, address = ?, confidence_score = ?, detected_language = ?,
		status = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.SQL.ExecContext(ctx, q,
		c.Name, c.JobTitle, c.Company, c.Website, c.Phone, c.PhoneSecondary,
		c.Email, c.EmailSecondary, c.Address, nullableInt(c.ConfidenceScore), c.DetectedLanguage,
		string(constants.ScanStatusConfirmed), ts, id.String(),
	)
	if err != nil {
		r.logger.Error("repo.scan.update_failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: update scan: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.ScanRecord, error) {
	var (
		rec                  entity.ScanRecord
		id, created, updated string
		conf                 sql.NullInt64
	)
	c := &rec.Contact
	err := row.Scan(&id, &rec.Method, &rec.SourceType, &rec.Status, &rec.RawText, &rec.RuleVersion,
		&c.Name, &c.JobTitle, &c.Company, &c.Website, &c.Phone, &c.PhoneSecondary, &c.Email, &c.EmailSecondary,
		&c.Address, &conf, &c.DetectedLanguage, &created, &updated)
	if err != nil {
		return nil, err
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad id %q: %w", id, err)
	}
	if conf.Valid {
		v := int(conf.Int64)
		c.ConfidenceScore = &v
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &rec, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
