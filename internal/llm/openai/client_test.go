package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: 5 * time.Second}, nil)
}

func TestRecognizeTextSendsImage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		_, _ = io.WriteString(w, completion("  JOHN SMITH\nACME  "))
	})

	txt, err := c.RecognizeText(context.Background(), llm.RecognizeRequest{
		Image:        llm.Image{Data: pngBytes, MIMEType: "image/png"},
		SystemPrompt: "verbatim",
		UserPrompt:   "transcribe",
	})
	require.NoError(t, err)
	assert.Equal(t, "JOHN SMITH\nACME", txt)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].([]any)
	img := user[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.Contains(t, img, "data:image/png;base64,")
	assert.EqualValues(t, 1024, got["max_tokens"])
}

func TestRecognizeTextRejectsUnsupportedMIME(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	_, err := c.RecognizeText(context.Background(), llm.RecognizeRequest{
		Image: llm.Image{Data: []byte("%PDF-1.4"), MIMEType: "application/pdf"},
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExtractFieldsUsesStrictSchema(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		_, _ = io.WriteString(w, completion(`{"name":"John Smith"}`))
	})

	schema := map[string]any{"type": "object"}
	raw, err := c.ExtractFields(context.Background(), llm.ExtractRequest{
		Text: "JOHN SMITH", SystemPrompt: "sys", UserPrompt: "user", Schema: schema,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"John Smith"}`, string(raw))

	rf := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", rf["type"])
	js := rf["json_schema"].(map[string]any)
	assert.Equal(t, true, js["strict"])
	assert.Equal(t, llm.SchemaName, js["name"])
}

func TestProviderErrorMessageIsVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"You exceeded your current quota.","type":"insufficient_quota"}}`)
	})

	_, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "x"})
	var pe *common.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "You exceeded your current quota.", err.Error())
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "extract", pe.Stage)
}

func TestProviderErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})
	_, err := c.RecognizeText(context.Background(), llm.RecognizeRequest{Image: llm.Image{Data: pngBytes, MIMEType: "image/png"}})
	var pe *common.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "openai status 502: upstream down", pe.Message)
}

func TestTransportFailureIsMarked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil)
	_, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "x"})
	assert.ErrorIs(t, err, llm.ErrTransport)
}

func TestEmptyContentIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, completion(""))
	})
	txt, err := c.RecognizeText(context.Background(), llm.RecognizeRequest{Image: llm.Image{Data: pngBytes, MIMEType: "image/png"}})
	require.NoError(t, err)
	assert.Empty(t, txt)
}
