package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmailish = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[a-z]{2,}`)
	rePhoneish = regexp.MustCompile(`\+?\d[\d\s().-]{8,}\d`)
	reWebish   = regexp.MustCompile(`(?:www\.|https?://)|\.(?:com|io|net|org|co)\b`)
	reBoxNoise = regexp.MustCompile(`[\x{2500}-\x{259F}]+`)
)

// heuristicConfidence scores how card-like the text looks: contact artifacts
// (email, phone, website) and a few lines of content.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reEmailish.MatchString(txtL) {
		score += 0.25
	}
	if rePhoneish.MatchString(txtL) {
		score += 0.2
	}
	if reWebish.MatchString(txtL) {
		score += 0.15
	}
	if strings.Count(strings.TrimSpace(txt), "\n") >= 2 {
		score += 0.1
	}
	return min(score, 1.0)
}
