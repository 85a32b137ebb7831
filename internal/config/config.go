package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/repo-manifest/pkg/digest"
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Root listing (or single file) URL the crawl starts from. Discovery
	// is confined to this URL's origin and path prefix.
	rootURL url.URL

	//===============
	// Limits
	//===============
	// Maximum number of hyperlink hops from the root URL. 0 means unlimited.
	maxDepth int
	// Maximum number of total targets allowed to be fetched. 0 means unlimited.
	maxPages int
	// Maximum size of a single response body in bytes
	maxBodySizeBytes int64

	//===============
	// Politeness
	//===============
	// Maximum number of crawl worker goroutines processing targets concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Global request rate across all workers. 0 means unthrottled.
	requestsPerSecond float64
	// Randomized variation added on top of computed backoff delays
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Output
	//===============
	// Directory in which to mirror downloaded file bytes. Empty disables mirroring.
	outputDir string
	// Path of the CSV manifest to write
	manifestPath string
	// Path of the Markdown crawl report. Empty disables the report.
	reportPath string
	// Digest algorithm for manifest entries
	hashAlgo digest.Algo
	// Whether the program simulates what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool
}

type configDTO struct {
	RootURL                string        `json:"rootUrl"`
	MaxDepth               int           `json:"maxDepth,omitempty"`
	MaxPages               int           `json:"maxPages,omitempty"`
	MaxBodySizeBytes       int64         `json:"maxBodySizeBytes,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	RequestsPerSecond      float64       `json:"requestsPerSecond,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty"`
	ManifestPath           string        `json:"manifestPath,omitempty"`
	ReportPath             string        `json:"reportPath,omitempty"`
	HashAlgo               string        `json:"hashAlgo,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	parsedRoot, err := url.Parse(dto.RootURL)
	if err != nil {
		return Config{}, fmt.Errorf("%w: rootUrl: %s", ErrInvalidConfig, err.Error())
	}

	// Start with default config
	builder := WithDefault(*parsedRoot)

	// For other fields, only override if a non-zero value is provided
	if dto.MaxDepth != 0 {
		builder = builder.WithMaxDepth(dto.MaxDepth)
	}
	if dto.MaxPages != 0 {
		builder = builder.WithMaxPages(dto.MaxPages)
	}
	if dto.MaxBodySizeBytes != 0 {
		builder = builder.WithMaxBodySizeBytes(dto.MaxBodySizeBytes)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.RequestsPerSecond != 0 {
		builder = builder.WithRequestsPerSecond(dto.RequestsPerSecond)
	}
	if dto.Jitter != 0 {
		builder = builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder = builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder = builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder = builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if dto.OutputDir != "" {
		builder = builder.WithOutputDir(dto.OutputDir)
	}
	if dto.ManifestPath != "" {
		builder = builder.WithManifestPath(dto.ManifestPath)
	}
	if dto.ReportPath != "" {
		builder = builder.WithReportPath(dto.ReportPath)
	}
	if dto.HashAlgo != "" {
		algo, err := digest.ParseAlgo(dto.HashAlgo)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithHashAlgo(algo)
	}
	// DryRun is a boolean; the DTO value is used as-is
	builder = builder.WithDryRun(dto.DryRun)

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with the provided root URL and default
// values for all other fields. rootURL is mandatory and must be absolute.
func WithDefault(rootURL url.URL) *Config {
	defaultConfig := Config{
		rootURL:                rootURL,
		maxDepth:               0,
		maxPages:               0,
		maxBodySizeBytes:       64 << 20,
		concurrency:            10,
		requestsPerSecond:      0,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                time.Second * 10,
		userAgent:              "repo-manifest/1.0",
		outputDir:              "",
		manifestPath:           "manifest.csv",
		reportPath:             "",
		hashAlgo:               digest.AlgoSHA256,
		dryRun:                 false,
	}
	return &defaultConfig
}

func (c *Config) WithRootURL(u url.URL) *Config {
	c.rootURL = u
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithMaxBodySizeBytes(size int64) *Config {
	c.maxBodySizeBytes = size
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithRequestsPerSecond(rps float64) *Config {
	c.requestsPerSecond = rps
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithManifestPath(path string) *Config {
	c.manifestPath = path
	return c
}

func (c *Config) WithReportPath(path string) *Config {
	c.reportPath = path
	return c
}

func (c *Config) WithHashAlgo(algo digest.Algo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) Build() (Config, error) {
	if c.rootURL.Scheme == "" || c.rootURL.Host == "" {
		return Config{}, fmt.Errorf("%w: rootUrl must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if c.rootURL.Scheme != "http" && c.rootURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, c.rootURL.Scheme)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) RootURL() url.URL {
	return c.rootURL
}

func (c Config) MaxDepth() int {
	return c.maxDepth
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) MaxBodySizeBytes() int64 {
	return c.maxBodySizeBytes
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) RequestsPerSecond() float64 {
	return c.requestsPerSecond
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) ManifestPath() string {
	return c.manifestPath
}

func (c Config) ReportPath() string {
	return c.reportPath
}

func (c Config) HashAlgo() digest.Algo {
	return c.hashAlgo
}

func (c Config) DryRun() bool {
	return c.dryRun
}
