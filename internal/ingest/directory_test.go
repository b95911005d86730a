package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestCollectCardFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.png"))
	touch(t, filepath.Join(root, "a.TXT"))
	touch(t, filepath.Join(root, "notes.pdf"))
	touch(t, filepath.Join(root, "sub", "c.jpeg"))
	touch(t, filepath.Join(root, ".hidden", "d.png"))
	touch(t, filepath.Join(root, ".e.png"))

	files, stats, problems, err := CollectCardFiles(root, nil, true)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Equal(t, []string{
		filepath.Join(root, "a.TXT"),
		filepath.Join(root, "b.png"),
		filepath.Join(root, "sub", "c.jpeg"),
	}, files)
	assert.Equal(t, uint32(3), stats.Matched)

	files, _, _, err = CollectCardFiles(root, []string{".png"}, false)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCollectCardFilesErrors(t *testing.T) {
	_, _, _, err := CollectCardFiles(" ", nil, false)
	assert.Error(t, err)

	_, _, _, err = CollectCardFiles(filepath.Join(t.TempDir(), "missing"), nil, false)
	assert.Error(t, err)
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".JPG"))
	assert.True(t, AllowedExt("txt"))
	assert.False(t, AllowedExt("pdf"))
}
