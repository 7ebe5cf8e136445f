package redact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAllowlist(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAllowlist(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, "allowlist.toml", `
[allowlist]
paths = ["testdata/.*"]
regexes = ["DEMO_KEY", "EXAMPLE_TOKEN"]
`)

	allowlist, err := LoadAllowlist(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"testdata/.*"}, allowlist.Paths)
	assert.Equal(t, []string{"DEMO_KEY", "EXAMPLE_TOKEN"}, allowlist.Regexes)
}

func TestLoadAllowlist_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeAllowlist(t, dir, "project.toml", `
[allowlist]
regexes = ["PROJECT_KEY"]
`)
	second := writeAllowlist(t, dir, "user.toml", `
[allowlist]
paths = ["docs/.*"]
regexes = ["USER_KEY"]
`)

	allowlist, err := LoadAllowlist(first, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"PROJECT_KEY", "USER_KEY"}, allowlist.Regexes)
	assert.Equal(t, []string{"docs/.*"}, allowlist.Paths)
}

func TestLoadAllowlist_MissingFilesSkipped(t *testing.T) {
	dir := t.TempDir()

	allowlist, err := LoadAllowlist("", filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)

	assert.Empty(t, allowlist.Paths)
	assert.Empty(t, allowlist.Regexes)
}

func TestLoadAllowlist_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, "broken.toml", `this is not toml ===`)

	_, err := LoadAllowlist(path)
	assert.ErrorIs(t, err, ErrInvalidTOML)
}

func TestLoadAllowlist_InvalidRegex(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, "badregex.toml", `
[allowlist]
regexes = ["[unclosed"]
`)

	_, err := LoadAllowlist(path)
	assert.ErrorIs(t, err, ErrInvalidRegex)
}

func TestLoadAllowlist_InvalidPathPattern(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, "badpath.toml", `
[allowlist]
paths = ["(*invalid"]
`)

	_, err := LoadAllowlist(path)
	assert.ErrorIs(t, err, ErrInvalidRegex)
}
