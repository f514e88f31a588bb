package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	opts, err := parseFlags([]string{"-url", "https://roma.se", "-pages", "crawl.json"}, &stderr)
	require.NoError(t, err)
	require.Equal(t, "https://roma.se", opts.baseURL)
	require.Equal(t, "crawl.json", opts.pagesPath)
	require.Empty(t, opts.configPath)
}

func TestParseFlagsRequiresURL(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	_, err := parseFlags(nil, &stderr)
	require.Error(t, err)
	require.Contains(t, stderr.String(), "-url is required")
}

func TestRunExitCodes(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	require.Equal(t, 2, run([]string{"-bogus"}, &stderr))

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	require.Equal(t, 1, run([]string{"-url", "https://roma.se", "-config", missing}, &stderr))
	require.Contains(t, stderr.String(), "load config failed")
}

func TestRunPagesFileMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kb.yaml")
	cfgYAML := "output:\n  provider: memory\nmetrics:\n  enabled: false\nlogging:\n  development: false\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	var stderr bytes.Buffer
	code := run([]string{"-url", "https://roma.se", "-config", cfgPath, "-pages", filepath.Join(dir, "none.json")}, &stderr)
	require.Equal(t, 1, code)
}
