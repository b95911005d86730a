package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

func baseConfig() *common.Config {
	return &common.Config{
		Database: common.DatabaseConfig{InMemory: true},
		Server:   common.ServerConfig{GRPCAddr: ":0", MaxImageMB: 1},
		LLM:      common.LLMConfig{Provider: "openai", Model: "gpt-4o-mini"},
	}
}

func TestBuildWithoutProviderKey(t *testing.T) {
	s, err := Build(context.Background(), baseConfig(), Options{Database: true}, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Provider)
	assert.NotNil(t, s.Exporter)
	assert.Equal(t, "sqlite", s.DB.Dialect)

	res, err := s.Processor.ParseText(context.Background(), "Jane Doe\njane@globex.com", true)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", res.Contact.Name)
}

func TestBuildRequireAI(t *testing.T) {
	_, err := Build(context.Background(), baseConfig(), Options{RequireAI: true}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	cfg := baseConfig()
	cfg.LLM.APIKey = "sk-test"
	s, err := Build(context.Background(), cfg, Options{RequireAI: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", s.Provider.Name())
	assert.Nil(t, s.DB)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(common.LLMConfig{Provider: "gemini", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = NewProvider(common.LLMConfig{Provider: "claude"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestInitDatabaseNeedsDSN(t *testing.T) {
	_, err := InitDatabase(context.Background(), common.DatabaseConfig{}, slog.Default())
	assert.Error(t, err)
}

func TestBuildRejectsBadRulesPath(t *testing.T) {
	cfg := baseConfig()
	cfg.LLM.RulesPath = "/does/not/exist.yaml"
	_, err := Build(context.Background(), cfg, Options{}, nil)
	assert.Error(t, err)
}
