package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat_Missing(t *testing.T) {
	a, err := Stat(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.False(t, a.Exists)
}

func TestStat_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o640))
	require.NoError(t, os.Chmod(path, 0o640))

	a, err := Stat(path)
	require.NoError(t, err)
	assert.True(t, a.Exists)
	assert.Equal(t, os.FileMode(0o640), a.Mode)
	if a.HasOwner {
		assert.Equal(t, os.Getuid(), a.UID)
	}
}

func TestWriteAtomic_NewFileUsesPerm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users_roles")

	require.NoError(t, WriteAtomic(path, []byte("superuser:a\n"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "superuser:a\n", string(got))

	a, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), a.Mode)
}

func TestWriteAtomic_PreservesExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, WriteAtomic(path, []byte("new\n"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	a, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), a.Mode)
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users")

	require.NoError(t, WriteAtomic(path, []byte("a\n"), 0o600))
	require.NoError(t, WriteAtomic(path, []byte("b\n"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "users", entries[0].Name())
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "users")
	assert.Error(t, WriteAtomic(path, []byte("a"), 0o600))
}
