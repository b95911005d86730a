package server

import "github.com/joseph-ayodele/cardscan/internal/entity"

type ParseTextRequest struct {
	Text    string `json:"text"`
	Persist bool   `json:"persist,omitempty"`
}

type ScanImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	Mode        string `json:"mode,omitempty"` // "ai" or "heuristic" (default)
	Persist     bool   `json:"persist,omitempty"`
}

// ScanResponse carries the extracted contact. ScanID is empty unless the
// request asked for persistence.
type ScanResponse struct {
	Contact     entity.StructuredContact `json:"contact"`
	Method      string                   `json:"method"`
	RawText     string                   `json:"raw_text,omitempty"`
	RuleVersion string                   `json:"rule_version,omitempty"`
	ScanID      string                   `json:"scan_id,omitempty"`
}

type GetContactRequest struct {
	ID string `json:"id"`
}

type ListContactsRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type ListContactsResponse struct {
	Scans []*entity.ScanRecord `json:"scans"`
}

type ReviewContactRequest struct {
	ID      string                   `json:"id"`
	Contact entity.StructuredContact `json:"contact"`
}

type ScanRecordResponse struct {
	Scan *entity.ScanRecord `json:"scan"`
}

type ExportContactsRequest struct {
	Status string `json:"status,omitempty"`
}

type ExportContactsResponse struct {
	Filename string `json:"filename"`
	XLSX     []byte `json:"xlsx"`
}
