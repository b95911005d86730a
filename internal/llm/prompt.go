package llm

import (
	"strings"
)

// BuildOCRPrompts returns the stage 1 system and user messages.
func BuildOCRPrompts(rs *RuleSet) (system, user string) {
	return strings.TrimSpace(rs.OCR.System), strings.TrimSpace(rs.OCR.User)
}

// BuildExtractionSystemPrompt renders the preamble, the per-field rules and the
// strict-mode rules into one instruction.
func BuildExtractionSystemPrompt(rs *RuleSet) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(rs.Extraction.Preamble))
	b.WriteString("\n\nField rules:\n")
	for _, f := range rs.Extraction.Fields {
		b.WriteString("- ")
		b.WriteString(f.Key)
		if d := strings.TrimSpace(f.Description); d != "" {
			b.WriteString(": ")
			b.WriteString(d)
		}
		for _, r := range f.Rules {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(r))
		}
		b.WriteString("\n")
	}
	if len(rs.Extraction.Strict) > 0 {
		b.WriteString("\nStrict mode:\n")
		for _, r := range rs.Extraction.Strict {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(r))
			b.WriteString("\n")
		}
	}
	b.WriteString("\nRule set version: ")
	b.WriteString(rs.Version)
	return b.String()
}

// BuildExtractionUserPrompt embeds the stage 1 text into the user template.
func BuildExtractionUserPrompt(rs *RuleSet, text string) string {
	return strings.TrimSpace(strings.ReplaceAll(rs.Extraction.User, "{{text}}", strings.TrimSpace(text)))
}
