package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixture returns the path of name under the repository's testdata
// directory and fails t when the file is missing.
func Fixture(t testing.TB, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "no caller information")
	// this file lives in internal/testutil
	p := filepath.Join(filepath.Dir(file), "..", "..", "testdata", name)
	require.FileExists(t, p)
	return p
}

// VocabularyFile returns the sample JIS/DIN vocabulary file.
func VocabularyFile(t testing.TB) string {
	t.Helper()
	return Fixture(t, "vocabulary.yaml")
}

// FileExists reports whether path names a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
