package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHash_StableAndWellFormed(t *testing.T) {
	h1, err := Hash()
	require.NoError(t, err)
	h2, err := Hash()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, hashLen)
	_, err = hex.DecodeString(h1)
	assert.NoError(t, err)
}

// TestHash_MatchesDecompressedContent is the round-trip property: the
// embedded hash equals the hash of the decompressed payload bytes.
func TestHash_MatchesDecompressedContent(t *testing.T) {
	data, err := Bytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	sum := sha256.Sum256(data)
	want := hex.EncodeToString(sum[:])[:hashLen]

	got, err := Hash()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestStager_Idempotent verifies both the create path and the
// already-exists short-circuit return the identical path, and that the
// staged file holds the decompressed payload.
func TestStager_Idempotent(t *testing.T) {
	dir := t.TempDir()
	stager := NewStagerIn(dir, zap.NewNop())

	first, err := stager.Stage()
	require.NoError(t, err)

	info1, err := os.Stat(first)
	require.NoError(t, err)

	second, err := stager.Stage()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The short-circuit must not rewrite the file.
	info2, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())

	staged, err := os.ReadFile(first)
	require.NoError(t, err)
	want, err := Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, staged)
}

func TestStager_PathIsContentAddressed(t *testing.T) {
	dir := t.TempDir()
	stager := NewStagerIn(dir, zap.NewNop())

	path, err := stager.Stage()
	require.NoError(t, err)

	hash, err := Hash()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "loader-"+hash+".dll"), path)
}

func TestStager_MissingTempDirIsFatal(t *testing.T) {
	stager := NewStagerIn(filepath.Join(t.TempDir(), "nope"), zap.NewNop())

	_, err := stager.Stage()
	require.Error(t, err)
}

// TestStager_ReusesForeignMaterialization covers the cross-instance race:
// another tool instance already wrote the file, so staging reuses it as-is.
func TestStager_ReusesForeignMaterialization(t *testing.T) {
	dir := t.TempDir()
	hash, err := Hash()
	require.NoError(t, err)

	dest := filepath.Join(dir, "loader-"+hash+".dll")
	want, err := Bytes()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, want, 0o644))

	stager := NewStagerIn(dir, zap.NewNop())
	path, err := stager.Stage()
	require.NoError(t, err)
	assert.Equal(t, dest, path)
}
