package llm

import "context"

// ContactFields is the stage 2 output shape. Every key is required in the
// response; "-" marks a field the model could not resolve.
type ContactFields struct {
	Name             string `json:"name"`
	BusinessName     string `json:"business_name"`
	JobTitle         string `json:"job_title"`
	Phone1           string `json:"phone_1"`
	Phone2           string `json:"phone_2"`
	Email1           string `json:"email_1"`
	Email2           string `json:"email_2"`
	Website          string `json:"website"`
	Address          string `json:"address"`
	ConfidenceScore  int    `json:"confidence_score"`
	DetectedLanguage string `json:"detected_language"`
}

// Image is a decoded card photo.
type Image struct {
	Data     []byte
	MIMEType string
}

// RecognizeRequest is a stage 1 call: one image, verbatim transcription.
type RecognizeRequest struct {
	Image        Image
	SystemPrompt string
	UserPrompt   string
}

// ExtractRequest is a stage 2 call: text only, constrained by Schema.
type ExtractRequest struct {
	Text         string
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       map[string]any
}

// TextRecognizer performs stage 1. An empty string with a nil error means the
// provider saw no text.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, req RecognizeRequest) (string, error)
}

// FieldExtractor performs stage 2 and returns the model's raw JSON content.
// Decoding is left to DecodeContactFields so every provider shares one path.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) ([]byte, error)
}

// Provider is a multimodal model backend able to run both stages.
type Provider interface {
	TextRecognizer
	FieldExtractor
	Name() string
}
