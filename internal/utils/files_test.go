package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/resortgen/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	require.NoError(t, utils.SafeWriteFile(p, []byte("a\n")))
	require.NoError(t, utils.SafeWriteFile(p, []byte("b\n")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFindRunRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "01_problem-revenue-integrity", "data_raw")
	require.NoError(t, utils.EnsureDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, utils.ManifestName), []byte("{}"), 0o644))
	f := filepath.Join(nested, "p1_daily_revenue_raw.csv")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	got, err := utils.FindRunRoot(f)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = utils.FindRunRoot(t.TempDir())
	assert.Error(t, err)
}
