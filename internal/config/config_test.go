package config_test

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/repo-manifest/internal/config"
	"github.com/rohmanhakim/repo-manifest/pkg/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestWithDefault(t *testing.T) {
	root := mustParseURL(t, "https://repo.example.com/project/")

	cfg, err := config.WithDefault(root).Build()
	require.NoError(t, err)

	assert.Equal(t, root, cfg.RootURL())
	assert.Equal(t, 0, cfg.MaxDepth())
	assert.Equal(t, 0, cfg.MaxPages())
	assert.Equal(t, int64(64<<20), cfg.MaxBodySizeBytes())
	assert.Equal(t, 10, cfg.Concurrency())
	assert.Equal(t, 3, cfg.MaxAttempt())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, "repo-manifest/1.0", cfg.UserAgent())
	assert.Equal(t, "manifest.csv", cfg.ManifestPath())
	assert.Equal(t, digest.AlgoSHA256, cfg.HashAlgo())
	assert.False(t, cfg.DryRun())
	assert.NotZero(t, cfg.RandomSeed())
}

func TestBuilderOverrides(t *testing.T) {
	root := mustParseURL(t, "https://repo.example.com/project/")

	cfg, err := config.WithDefault(root).
		WithConcurrency(4).
		WithMaxDepth(2).
		WithMaxPages(50).
		WithTimeout(3 * time.Second).
		WithUserAgent("custom-agent/2.0").
		WithOutputDir("mirror").
		WithManifestPath("out/manifest.csv").
		WithReportPath("out/report.md").
		WithHashAlgo(digest.AlgoBLAKE3).
		WithRequestsPerSecond(2.5).
		WithRandomSeed(42).
		WithDryRun(true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Concurrency())
	assert.Equal(t, 2, cfg.MaxDepth())
	assert.Equal(t, 50, cfg.MaxPages())
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, "custom-agent/2.0", cfg.UserAgent())
	assert.Equal(t, "mirror", cfg.OutputDir())
	assert.Equal(t, "out/manifest.csv", cfg.ManifestPath())
	assert.Equal(t, "out/report.md", cfg.ReportPath())
	assert.Equal(t, digest.AlgoBLAKE3, cfg.HashAlgo())
	assert.Equal(t, 2.5, cfg.RequestsPerSecond())
	assert.Equal(t, int64(42), cfg.RandomSeed())
	assert.True(t, cfg.DryRun())
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		builder *config.Config
	}{
		{
			name:    "relative root URL",
			builder: config.WithDefault(mustParseURL(t, "/repo/")),
		},
		{
			name:    "unsupported scheme",
			builder: config.WithDefault(mustParseURL(t, "ftp://example.com/repo/")),
		},
		{
			name:    "zero concurrency",
			builder: config.WithDefault(mustParseURL(t, "https://example.com/repo/")).WithConcurrency(0),
		},
		{
			name:    "zero max attempt",
			builder: config.WithDefault(mustParseURL(t, "https://example.com/repo/")).WithMaxAttempt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"rootUrl": "https://repo.example.com/project/",
		"concurrency": 3,
		"maxDepth": 4,
		"timeout": 5000000000,
		"userAgent": "file-agent/1.0",
		"outputDir": "mirror",
		"hashAlgo": "blake3",
		"dryRun": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	rootURL := cfg.RootURL()
	assert.Equal(t, "https://repo.example.com/project/", rootURL.String())
	assert.Equal(t, 3, cfg.Concurrency())
	assert.Equal(t, 4, cfg.MaxDepth())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "file-agent/1.0", cfg.UserAgent())
	assert.Equal(t, "mirror", cfg.OutputDir())
	assert.Equal(t, digest.AlgoBLAKE3, cfg.HashAlgo())
	assert.True(t, cfg.DryRun())
}

func TestWithConfigFile_Missing(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}

func TestWithConfigFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := config.WithConfigFile(path)
	assert.ErrorIs(t, err, config.ErrConfigParsingFail)
}

func TestWithConfigFile_BadHashAlgo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"rootUrl": "https://repo.example.com/project/", "hashAlgo": "md5"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := config.WithConfigFile(path)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
