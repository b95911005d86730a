package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
)

// sentinel is the literal stage 2 marker for an unresolved field.
const sentinel = "-"

// NormalizeContactJSON makes near-miss model output schema friendly:
//   - trims string values
//   - coerces confidence_score from float or numeric string to an int in 0..100
//   - fills absent, null or blank phone_2/email_2 with "-"
//   - turns null string fields into "-"
//   - removes keys the schema does not know
//
// Missing primary keys are left missing so validation still rejects them.
func NormalizeContactJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changed := make([]string, 0, 4)

	known := make(map[string]struct{}, len(ContactKeys))
	for _, k := range ContactKeys {
		known[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := known[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	for _, k := range ContactKeys {
		if k == "confidence_score" {
			continue
		}
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			m[k] = strings.TrimSpace(t)
		case nil:
			m[k] = sentinel
			changed = append(changed, k+"(null)")
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
			changed = append(changed, k+"(number)")
		}
	}

	for _, k := range []string{"phone_2", "email_2"} {
		if s, ok := m[k].(string); !ok || s == "" {
			if _, present := m[k]; present && !ok {
				continue // wrong type; let validation report it
			}
			m[k] = sentinel
			changed = append(changed, k+"(default)")
		}
	}

	if v, ok := m["confidence_score"]; ok {
		switch t := v.(type) {
		case float64:
			m["confidence_score"] = clampScore(t)
			if t != math.Trunc(t) || t < 0 || t > 100 {
				changed = append(changed, "confidence_score(coerced)")
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				m["confidence_score"] = clampScore(f)
				changed = append(changed, "confidence_score(string)")
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "changed", changed)
	}
	return out, changed, nil
}

// clampScore rounds to the nearest integer; fractions in 0..1 are read as a
// ratio.
func clampScore(f float64) int {
	if f > 0 && f < 1 {
		f *= 100
	}
	n := int(math.Round(f))
	return max(0, min(100, n))
}
