package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

// DecodeContactFields turns raw stage 2 content into ContactFields. Every
// failure wraps common.ErrStructuredOutput; an empty object counts as one.
func DecodeContactFields(content []byte, schema map[string]any, logger *slog.Logger) (ContactFields, error) {
	if logger == nil {
		logger = slog.Default()
	}
	body := StripCodeFences(string(content))
	if body == "" {
		return ContactFields{}, fmt.Errorf("%w: empty content", common.ErrStructuredOutput)
	}

	var probe map[string]any
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		logger.Error("llm.extract.decode_error", "error", err, "bytes", len(body))
		return ContactFields{}, fmt.Errorf("%w: %v", common.ErrStructuredOutput, err)
	}
	if len(probe) == 0 {
		return ContactFields{}, fmt.Errorf("%w: empty object", common.ErrStructuredOutput)
	}

	cleaned, _, err := NormalizeContactJSON([]byte(body), logger)
	if err != nil {
		return ContactFields{}, fmt.Errorf("%w: %v", common.ErrStructuredOutput, err)
	}
	if schema != nil {
		if err := ValidateJSONAgainstSchema(schema, cleaned); err != nil {
			logger.Error("llm.extract.schema_validation_failed", "error", err, "content", string(cleaned))
			return ContactFields{}, fmt.Errorf("%w: %v", common.ErrStructuredOutput, err)
		}
	}

	var out ContactFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return ContactFields{}, fmt.Errorf("%w: %v", common.ErrStructuredOutput, err)
	}
	return out, nil
}

// StripCodeFences removes a surrounding ```json fence some models add even in
// JSON mode.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
