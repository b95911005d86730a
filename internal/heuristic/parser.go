// Package heuristic segments raw business-card OCR text into contact fields
// without any remote dependency. It is a best-effort fallback: it never fails,
// and misclassifications (a slogan picked as a name) are accepted behavior.
package heuristic

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/normalize"
)

// FieldCandidate is a scored guess for the name field. It only lives for the
// duration of one parse.
type FieldCandidate struct {
	Text  string
	Score int
}

// ParseCardText converts newline-delimited OCR text into a StructuredContact.
// The result is fully determined by the input. Address, ConfidenceScore and
// DetectedLanguage are never set.
func ParseCardText(rawText string) entity.StructuredContact {
	out := entity.NewStructuredContact()
	lines := splitLines(rawText)
	if len(lines) == 0 {
		return out
	}

	out.Email, out.EmailSecondary = extractEmails(rawText)
	out.Phone = extractPhone(lines)
	out.Website = extractWebsite(lines)

	candidates := classifyLines(lines, &out)
	if best, ok := pickName(candidates); ok {
		out.Name = best.Text
	}

	if out.Company == "" && out.Website != "" {
		out.Company = normalize.CompanyFromHost(out.Website)
	}
	return out
}

func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// extractEmails scans the whole text; the first match is the primary email and
// the next distinct one (document order) the secondary.
func extractEmails(raw string) (primary, secondary string) {
	secondary = entity.Sentinel
	for _, m := range reEmail.FindAllString(raw, -1) {
		clean := normalize.Sanitize(m)
		if !reEmailFull.MatchString(clean) {
			continue
		}
		switch {
		case primary == "":
			primary = clean
		case !strings.EqualFold(clean, primary):
			return primary, clean
		}
	}
	return primary, secondary
}

func extractPhone(lines []string) string {
	for _, ln := range lines {
		m := rePhone.FindString(ln)
		if len(m) <= 9 {
			continue
		}
		return normalize.FixMisreadPrefix(normalize.PhoneDigits(m))
	}
	return ""
}

func extractWebsite(lines []string) string {
	for _, ln := range lines {
		if strings.Contains(ln, "@") {
			continue
		}
		if m := reWebsite.FindString(ln); m != "" {
			return normalize.StripWebsiteLabel(m)
		}
	}
	return ""
}

// classifyLines runs the single exclusive pass over all lines. Title and company
// are written into out; remaining name-like lines come back as candidates.
func classifyLines(lines []string, out *entity.StructuredContact) []FieldCandidate {
	var candidates []FieldCandidate
	for _, raw := range lines {
		line := normalize.Sanitize(raw)
		if len(line) < 2 {
			continue
		}
		lower := strings.ToLower(line)

		if splitTitleCompany(line, out) {
			continue
		}

		isTitle := hasAny(lower, titleKeywords)
		if !isTitle && isContactShaped(line, lower) {
			if out.Company == "" {
				out.Company = normalize.CompanyFromTLDLine(line)
			}
			continue
		}

		if out.JobTitle == "" && isTitle {
			out.JobTitle = normalize.TitleCase(line)
			continue
		}

		isLegal := hasAny(lower, legalMarkers)
		if out.Company == "" && isLegal {
			out.Company = line
			continue
		}

		// legal-entity lines never name a person, even once a company is set
		if isTitle || isLegal || reDigit.MatchString(line) {
			continue
		}
		if c, ok := scoreName(raw); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// splitTitleCompany handles "<title> - <company>" lines in either order.
func splitTitleCompany(line string, out *entity.StructuredContact) bool {
	m := reTitleSplit.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	a, b := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	switch {
	case hasAny(strings.ToLower(a), titleKeywords):
		out.JobTitle = normalize.TitleCase(a)
		out.Company = companyFromSide(b)
	case hasAny(strings.ToLower(b), titleKeywords):
		out.JobTitle = normalize.TitleCase(b)
		out.Company = companyFromSide(a)
	default:
		return false
	}
	return true
}

func companyFromSide(s string) string {
	if strings.Contains(s, ".") {
		return normalize.CompanyFromDomain(s)
	}
	return s
}

func isContactShaped(line, lower string) bool {
	return strings.Contains(line, "@") || rePhone.MatchString(line) || hasAny(lower, contactMarkers)
}

// scoreName scores a raw line as a person name. The raw (unsanitized) line is
// used so bracketed labels such as "[a]" are still recognizable.
func scoreName(raw string) (FieldCandidate, bool) {
	score := 0
	text := strings.TrimSpace(raw)

	if loc := reEircom.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
		score += penaltyJunkPrefix
	}
	lowerText := strings.ToLower(text)
	for _, p := range junkPrefixes {
		if strings.HasPrefix(lowerText, p) {
			text = strings.TrimLeft(text[len(p):], " :.-")
			score += penaltyJunkPrefix
			break
		}
	}
	text = normalize.Sanitize(text)

	if len(text) < minCandidateLen {
		return FieldCandidate{}, false
	}

	words := strings.Fields(text)
	if len(words) > 1 {
		score += bonusMultiWord
	}
	for _, w := range words {
		if r := []rune(w)[0]; unicode.IsUpper(r) {
			score += bonusCapitalized
		}
	}
	if len(words) == 1 {
		score += penaltySingleWord
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "no:") {
		score += penaltyNumberLabel
	}
	if len(text) > longCandidate {
		score += bonusLong
	}
	return FieldCandidate{Text: normalize.TitleCase(text), Score: score}, true
}

// pickName returns the highest scoring candidate (earliest wins ties) if it
// clears the rejection threshold.
func pickName(cands []FieldCandidate) (FieldCandidate, bool) {
	if len(cands) == 0 {
		return FieldCandidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	if best.Score <= nameRejectScore {
		return FieldCandidate{}, false
	}
	return best, true
}

func hasAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
