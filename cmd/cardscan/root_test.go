package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseFromStdin(t *testing.T) {
	out, err := run(t, "John Smith\nPresident - Acme.io\n+1 415 555 0100\njohn@acme.io", "parse")
	require.NoError(t, err)

	var got struct {
		Method  string         `json:"method"`
		ScanID  string         `json:"scan_id"`
		Contact map[string]any `json:"contact"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "HEURISTIC", got.Method)
	assert.Empty(t, got.ScanID)
	assert.Equal(t, "John Smith", got.Contact["name"])
	assert.Equal(t, "Acme", got.Contact["company"])
	assert.Equal(t, "-", got.Contact["phoneSecondary"])
	assert.NotContains(t, got.Contact, "confidenceScore")
}

func TestParsePersistInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\njane@globex.com"), 0o600))

	out, err := run(t, "", "--inmem", "parse", "--persist", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"scan_id"`)
}

func TestBatchHeuristicTextCards(t *testing.T) {
	dir := t.TempDir()
	cards := filepath.Join(dir, "cards")
	require.NoError(t, os.MkdirAll(cards, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cards, "a.txt"), []byte("Ada Lovelace\nada@engines.io"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cards, "b.txt"), []byte("Grace Hopper\nw:www.hopperlabs.net"), 0o600))
	xlsx := filepath.Join(dir, "out.xlsx")

	out, err := run(t, "", "--inmem", "batch", "--dir", cards, "--out", xlsx, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "- Cards extracted: 2")
	assert.Contains(t, out, "- Failures: 0")

	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestScanRejectsUnknownMode(t *testing.T) {
	_, err := run(t, "", "scan", "--mode", "magic", "card.png")
	assert.ErrorContains(t, err, "--mode")
}
