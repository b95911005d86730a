package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

var (
	reJunk        = regexp.MustCompile(`[|!_\[\]]`)
	reNonPhone    = regexp.MustCompile(`[^\d+]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
	reSiteLabel   = regexp.MustCompile(`(?i)^(?:re|e|w)[!:]{1,2}\s*`)
	reCRLF        = regexp.MustCompile(`\r\n?`)
	reTabs        = regexp.MustCompile(`\t+`)
	reMultiSpace  = regexp.MustCompile(` {2,}`)
	reMultiBlank  = regexp.MustCompile(`\n{3,}`)
	reLabelBefore = regexp.MustCompile(`[A-Za-z0-9-]+$`)
)

// misreadPrefixes are leading digit runs where OCR read "+" as a digit
// (e.g. "+91" scanned as "491" or "191").
var misreadPrefixes = []string{"491", "191"}

// Sanitize removes OCR junk characters (| ! _ [ ]) and trims. Idempotent.
func Sanitize(s string) string {
	return strings.TrimSpace(reJunk.ReplaceAllString(s, ""))
}

// TitleCase lowercases s and capitalizes each word.
func TitleCase(s string) string {
	// Casers are stateful; one per call.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// PhoneDigits keeps digits and '+' only.
func PhoneDigits(s string) string {
	return reNonPhone.ReplaceAllString(s, "")
}

// FixMisreadPrefix turns "4919876543210" into "+919876543210".
func FixMisreadPrefix(phone string) string {
	if len(phone) <= 11 {
		return phone
	}
	for _, p := range misreadPrefixes {
		if strings.HasPrefix(phone, p) {
			return "+" + phone[1:]
		}
	}
	return phone
}

// CompactPhone strips whitespace while preserving a leading '+'. The sentinel
// passes through unchanged.
func CompactPhone(s string) string {
	s = strings.TrimSpace(s)
	if s == entity.Sentinel {
		return s
	}
	return reWhitespace.ReplaceAllString(s, "")
}

// OrSentinel returns the sentinel for blank input.
func OrSentinel(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return entity.Sentinel
	}
	return s
}

// StripWebsiteLabel removes "re:", "e:", "w:" style labels glued to a URL.
func StripWebsiteLabel(s string) string {
	return strings.TrimSpace(reSiteLabel.ReplaceAllString(strings.TrimSpace(s), ""))
}

// CompanyFromDomain takes the part before the first dot ("acme.io" -> "Acme").
func CompanyFromDomain(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return TitleCase(s)
}

// CompanyFromTLDLine derives a company guess from the label right before a
// trailing ".io"/".com" ("john@acme.io" -> "Acme"). Returns "" when none.
func CompanyFromTLDLine(line string) string {
	t := strings.TrimSpace(line)
	lower := strings.ToLower(t)
	var stem string
	switch {
	case strings.HasSuffix(lower, ".io"):
		stem = t[:len(t)-len(".io")]
	case strings.HasSuffix(lower, ".com"):
		stem = t[:len(t)-len(".com")]
	default:
		return ""
	}
	label := reLabelBefore.FindString(stem)
	if label == "" {
		return ""
	}
	return TitleCase(label)
}

// CompanyFromHost derives a company name from a website ("https://www.acme.io/x"
// -> "Acme"). Parse failures yield "".
func CompanyFromHost(website string) string {
	raw := strings.TrimSpace(website)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	return TitleCase(label)
}

// OCRText applies NFKC, unifies line endings, collapses runs of spaces and
// blank lines, and drops control characters other than newlines.
func OCRText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
