package llm

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed rules/default.yaml
var defaultRulesYAML []byte

// ContactKeys are the stage 2 keys every rule set must define.
var ContactKeys = []string{
	"name", "business_name", "job_title", "phone_1", "phone_2",
	"email_1", "email_2", "website", "address", "confidence_score", "detected_language",
}

// RuleSet is the versioned source for both stage prompts and the stage 2
// schema. Changing a rule changes Version, so wording and schema stay
// reviewable together.
type RuleSet struct {
	Version    string         `yaml:"version"`
	OCR        OCRRules       `yaml:"ocr"`
	Extraction ExtractionRule `yaml:"extraction"`
}

type OCRRules struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type ExtractionRule struct {
	Preamble string      `yaml:"preamble"`
	User     string      `yaml:"user"`
	Fields   []FieldRule `yaml:"fields"`
	Strict   []string    `yaml:"strict"`
}

// FieldRule describes one output key. Type defaults to "string".
type FieldRule struct {
	Key         string   `yaml:"key"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Rules       []string `yaml:"rules"`
}

// DefaultRuleSet returns the embedded rule set.
func DefaultRuleSet() (*RuleSet, error) {
	return ParseRuleSet(defaultRulesYAML)
}

// LoadRuleSet reads a rule set override from path, or the embedded default
// when path is empty.
func LoadRuleSet(path string) (*RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRuleSet()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	return ParseRuleSet(b)
}

// ParseRuleSet decodes and validates a YAML rule set.
func ParseRuleSet(b []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks that the rule set covers exactly the contact keys.
func (rs *RuleSet) Validate() error {
	if strings.TrimSpace(rs.Version) == "" {
		return fmt.Errorf("rule set: version is required")
	}
	if strings.TrimSpace(rs.OCR.System) == "" {
		return fmt.Errorf("rule set %s: ocr.system is required", rs.Version)
	}
	if !strings.Contains(rs.Extraction.User, "{{text}}") {
		return fmt.Errorf("rule set %s: extraction.user must contain {{text}}", rs.Version)
	}
	seen := make(map[string]bool, len(rs.Extraction.Fields))
	for _, f := range rs.Extraction.Fields {
		if !slices.Contains(ContactKeys, f.Key) {
			return fmt.Errorf("rule set %s: unknown field %q", rs.Version, f.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("rule set %s: duplicate field %q", rs.Version, f.Key)
		}
		switch f.Type {
		case "", "string", "integer":
		default:
			return fmt.Errorf("rule set %s: field %q has unsupported type %q", rs.Version, f.Key, f.Type)
		}
		seen[f.Key] = true
	}
	for _, k := range ContactKeys {
		if !seen[k] {
			return fmt.Errorf("rule set %s: missing field %q", rs.Version, k)
		}
	}
	return nil
}
