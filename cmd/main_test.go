package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_90_couch.dcm", "a.DCM", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.dcm"), 0o755))
	single := filepath.Join(t.TempDir(), "single.bin")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0o600))

	files, err := collectFiles([]string{single, dir})
	require.NoError(t, err)
	require.Equal(t, []string{
		single,
		filepath.Join(dir, "a.DCM"),
		filepath.Join(dir, "b_90_couch.dcm"),
	}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing.dcm")})
	require.Error(t, err)
}
