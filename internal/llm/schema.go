package llm

// SchemaName is the response-format name sent to providers that want one.
const SchemaName = "business_card_contact"

// BuildContactJSONSchema returns the stage 2 JSON schema as a generic map. We
// pass it to providers as the structured-output constraint and use it locally
// to validate. All keys are required and nothing else is allowed.
func BuildContactJSONSchema(rs *RuleSet) map[string]any {
	props := make(map[string]any, len(rs.Extraction.Fields))
	required := make([]string, 0, len(rs.Extraction.Fields))
	for _, f := range rs.Extraction.Fields {
		p := map[string]any{"type": "string"}
		if f.Type == "integer" {
			p = map[string]any{"type": "integer", "minimum": 0, "maximum": 100}
		}
		if f.Description != "" {
			p["description"] = f.Description
		}
		props[f.Key] = p
		required = append(required, f.Key)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
