package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecord represents a persisted card scan for data transfer between layers.
type ScanRecord struct {
	ID          uuid.UUID         `json:"id"`
	Method      string            `json:"method"`
	SourceType  string            `json:"source_type"`
	Status      string            `json:"status"`
	RawText     string            `json:"raw_text,omitempty"`
	RuleVersion string            `json:"rule_version,omitempty"` // AI scans only
	Contact     StructuredContact `json:"contact"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
