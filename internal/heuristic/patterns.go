package heuristic

import "regexp"

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}`)
	// anchored form used to re-check an email after junk stripping
	reEmailFull = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}$`)

	// optional country code, optional (area) code, space/dot/dash separators
	rePhone = regexp.MustCompile(`(?:\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// loose "name.tld", optionally with scheme/www; labels like "w:" may be
	// swallowed and are stripped afterwards
	reWebsite = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[^\s@]+\.[a-z]{2,}`)

	// "<A> - <B>", "<A> @ <B>", "<A> at <B>"
	reTitleSplit = regexp.MustCompile(`(?i)^(.+?)\s+(?:-|@|at)\s+(.+)$`)

	reEircom = regexp.MustCompile(`(?i)^eircom\W*`)
	reDigit  = regexp.MustCompile(`\d`)
)

// titleKeywords are matched as case-insensitive substrings.
var titleKeywords = []string{
	"ceo", "founder", "president", "manager", "director", "lead", "head", "vp",
	"vice president", "executive", "engineer", "developer", "designer",
	"consultant", "associate", "chief", "partner", "owner", "co-founder", "chairman",
}

// legalMarkers flag a company line.
var legalMarkers = []string{"inc", "llc", "ltd", "pvt"}

// contactMarkers flag web-ish lines that never hold a name or company.
var contactMarkers = []string{"www.", ".com", ".io"}

// junkPrefixes are OCR'd field labels in front of a value; at most one is
// stripped per candidate.
var junkPrefixes = []string{
	"eircom", "email", "tel", "fax", "mob", "web", "http", "www", "address", "[a]", "[ a]",
}

// Name scoring weights. Behavior is defined by these exact values.
const (
	penaltyJunkPrefix  = -2
	bonusMultiWord     = 5
	bonusCapitalized   = 3
	penaltySingleWord  = -5
	penaltyNumberLabel = -10
	bonusLong          = 2

	minCandidateLen = 3
	longCandidate   = 10
	// candidates must score strictly above this to become the name
	nameRejectScore = -5
)
