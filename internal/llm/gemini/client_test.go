package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

func TestClassify(t *testing.T) {
	e := New(Config{APIKey: "k"}, nil)

	tests := []struct {
		name      string
		err       error
		provider  bool
		message   string
		transport bool
	}{
		{name: "googleapi", err: &googleapi.Error{Code: 400, Message: "API key not valid"}, provider: true, message: "API key not valid"},
		{name: "grpc quota", err: status.Error(codes.ResourceExhausted, "Quota exceeded"), provider: true, message: "Quota exceeded"},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "connection reset"), transport: true},
		{name: "plain", err: errors.New("dial tcp: timeout"), transport: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.classify("ocr", tt.err)
			var pe *common.ProviderError
			if tt.provider {
				require.ErrorAs(t, got, &pe)
				assert.Equal(t, tt.message, pe.Error())
				assert.Equal(t, "gemini", pe.Provider)
			}
			if tt.transport {
				assert.ErrorIs(t, got, llm.ErrTransport)
				assert.False(t, errors.As(got, &pe))
			}
		})
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	e := New(Config{}, nil)
	_, err := e.RecognizeText(context.Background(), llm.RecognizeRequest{})
	var pe *common.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "GEMINI_API_KEY is empty", pe.Error())
}

func TestFirstText(t *testing.T) {
	assert.Equal(t, "", firstText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("JOHN SMITH\n"), genai.Text("ACME")}}},
	}}
	assert.Equal(t, "JOHN SMITH\nACME", firstText(resp))
}
