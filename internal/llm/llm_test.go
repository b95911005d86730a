package llm

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

func mustRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := DefaultRuleSet()
	require.NoError(t, err)
	return rs
}

func TestDefaultRuleSetCoversContactKeys(t *testing.T) {
	rs := mustRules(t)
	assert.NotEmpty(t, rs.Version)

	schema := BuildContactJSONSchema(rs)
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, ContactKeys, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.Equal(t, "integer", props["confidence_score"].(map[string]any)["type"])
	assert.Equal(t, "string", props["phone_2"].(map[string]any)["type"])
}

func TestRuleSetValidate(t *testing.T) {
	base := `
version: "t1"
ocr:
  system: read it
extraction:
  user: "{{text}}"
  fields:
`
	var all strings.Builder
	all.WriteString(base)
	for _, k := range ContactKeys {
		all.WriteString("    - key: " + k + "\n")
	}
	_, err := ParseRuleSet([]byte(all.String()))
	require.NoError(t, err)

	_, err = ParseRuleSet([]byte(base + "    - key: name\n"))
	assert.ErrorContains(t, err, "missing field")

	_, err = ParseRuleSet([]byte(all.String() + "    - key: fax\n"))
	assert.ErrorContains(t, err, "unknown field")

	_, err = ParseRuleSet([]byte(strings.Replace(all.String(), `version: "t1"`, "", 1)))
	assert.ErrorContains(t, err, "version is required")
}

func TestLoadRuleSetOverride(t *testing.T) {
	rs, err := LoadRuleSet("")
	require.NoError(t, err)
	assert.Equal(t, mustRules(t).Version, rs.Version)

	b, err := os.ReadFile(filepath.Join("rules", "default.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(b), `version: "2024.2"`, `version: "custom-1"`, 1)), 0o600))

	rs, err = LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", rs.Version)

	_, err = LoadRuleSet(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	rs := mustRules(t)
	sys, user := BuildOCRPrompts(rs)
	assert.Contains(t, sys, "exactly as printed")
	assert.NotEmpty(t, user)

	ext := BuildExtractionSystemPrompt(rs)
	for _, k := range ContactKeys {
		assert.Contains(t, ext, "- "+k)
	}
	assert.Contains(t, ext, "Strict mode")
	assert.Contains(t, ext, rs.Version)

	up := BuildExtractionUserPrompt(rs, "  JOHN SMITH\nACME  ")
	assert.Contains(t, up, "JOHN SMITH\nACME")
	assert.NotContains(t, up, "{{text}}")
}

const validContact = `{
  "name": "John Smith", "business_name": "Acme", "job_title": "President",
  "phone_1": "+14155550100", "phone_2": "-", "email_1": "john@acme.io", "email_2": "-",
  "website": "acme.io", "address": "1 Main St, Springfield", "confidence_score": 96,
  "detected_language": "English"
}`

func TestDecodeContactFields(t *testing.T) {
	schema := BuildContactJSONSchema(mustRules(t))

	t.Run("valid", func(t *testing.T) {
		f, err := DecodeContactFields([]byte(validContact), schema, nil)
		require.NoError(t, err)
		assert.Equal(t, "John Smith", f.Name)
		assert.Equal(t, "-", f.Phone2)
		assert.Equal(t, 96, f.ConfidenceScore)
	})

	t.Run("code fenced", func(t *testing.T) {
		f, err := DecodeContactFields([]byte("```json\n"+validContact+"\n```"), schema, nil)
		require.NoError(t, err)
		assert.Equal(t, "Acme", f.BusinessName)
	})

	t.Run("lenient fixes", func(t *testing.T) {
		in := `{"name":" Jane ","business_name":"Globex","job_title":"CEO","phone_1":"123",
		"email_1":"j@g.com","email_2":null,"website":"-","address":"-","confidence_score":"0.9",
		"detected_language":"English","extra":"x"}`
		f, err := DecodeContactFields([]byte(in), schema, nil)
		require.NoError(t, err)
		assert.Equal(t, "Jane", f.Name)
		assert.Equal(t, "-", f.Phone2)
		assert.Equal(t, "-", f.Email2)
		assert.Equal(t, 90, f.ConfidenceScore)
	})

	failures := map[string]string{
		"empty":           "",
		"empty object":    "{}",
		"not json":        "Sorry, I cannot help with that.",
		"array":           `[1,2]`,
		"missing name":    strings.Replace(validContact, `"name": "John Smith", `, "", 1),
		"wrong conf type": strings.Replace(validContact, `96`, `"high"`, 1),
	}
	for name, in := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeContactFields([]byte(in), schema, nil)
			require.ErrorIs(t, err, common.ErrStructuredOutput)
		})
	}
}

func TestNormalizeClampsScore(t *testing.T) {
	assert.Equal(t, 100, clampScore(140))
	assert.Equal(t, 0, clampScore(-3))
	assert.Equal(t, 87, clampScore(86.6))
	assert.Equal(t, 95, clampScore(0.95))
}

func TestDecodeImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	b64 := base64.StdEncoding.EncodeToString(png)

	img, err := DecodeImage(b64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, png, img.Data)

	img, err = DecodeImage("data:image/jpeg;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.True(t, strings.HasPrefix(img.DataURL(), "data:image/jpeg;base64,"))

	for _, bad := range []string{"", "   ", "data:image/png;base64", "!!not base64!!"} {
		_, err := DecodeImage(bad)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "input %q", bad)
	}
}
