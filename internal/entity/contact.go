package entity

// Sentinel marks an absent secondary phone/email. Downstream renderers compare
// against the literal string, so it must never be replaced with "" or null.
const Sentinel = "-"

// StructuredContact is the normalized output of both card pipelines.
// Every string field is always serialized; absence is "" (or Sentinel for the
// secondary fields), never omission.
type StructuredContact struct {
	Name             string `json:"name"`
	JobTitle         string `json:"jobTitle"`
	Company          string `json:"company"`
	Website          string `json:"website"`
	Phone            string `json:"phone"`
	PhoneSecondary   string `json:"phoneSecondary"`
	Email            string `json:"email"`
	EmailSecondary   string `json:"emailSecondary"`
	Address          string `json:"address"`
	ConfidenceScore  *int   `json:"confidenceScore,omitempty"` // AI pipeline only (0..100)
	DetectedLanguage string `json:"detectedLanguage"`
}

// NewStructuredContact returns an empty contact with the secondary sentinels set.
func NewStructuredContact() StructuredContact {
	return StructuredContact{
		PhoneSecondary: Sentinel,
		EmailSecondary: Sentinel,
	}
}

// IsEmpty reports whether no primary field carries a value.
func (c StructuredContact) IsEmpty() bool {
	for _, v := range []string{c.Name, c.JobTitle, c.Company, c.Website, c.Phone, c.Email, c.Address} {
		if v != "" && v != Sentinel {
			return false
		}
	}
	return true
}
