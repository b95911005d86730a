package pipeline

import (
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/normalize"
)

// ToStructuredContact maps stage 2 output onto the contact record. The "-"
// sentinel passes through untouched; blank secondaries become "-".
func ToStructuredContact(f llm.ContactFields) entity.StructuredContact {
	score := max(0, min(100, f.ConfidenceScore))
	c := entity.NewStructuredContact()
	c.Name = strings.TrimSpace(f.Name)
	c.JobTitle = strings.TrimSpace(f.JobTitle)
	c.Company = strings.TrimSpace(f.BusinessName)
	c.Website = strings.TrimSpace(f.Website)
	c.Phone = normalize.CompactPhone(f.Phone1)
	c.PhoneSecondary = normalize.OrSentinel(normalize.CompactPhone(f.Phone2))
	c.Email = strings.TrimSpace(f.Email1)
	c.EmailSecondary = normalize.OrSentinel(f.Email2)
	c.Address = strings.TrimSpace(f.Address)
	c.ConfidenceScore = &score
	c.DetectedLanguage = strings.TrimSpace(f.DetectedLanguage)
	return c
}
