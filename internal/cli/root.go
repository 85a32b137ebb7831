package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohmanhakim/repo-manifest/internal/build"
	"github.com/rohmanhakim/repo-manifest/internal/config"
	"github.com/rohmanhakim/repo-manifest/internal/crawler"
	"github.com/rohmanhakim/repo-manifest/internal/manifest"
	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/digest"
)

// Environment variable fallbacks, loaded from the process environment or a
// local .env file.
const (
	envRootURL   = "REPO_MANIFEST_ROOT_URL"
	envOutputDir = "REPO_MANIFEST_OUTPUT_DIR"
)

var (
	cfgFile           string
	rootURLArg        string
	maxDepth          int
	maxPages          int
	concurrency       int
	requestsPerSecond float64
	maxAttempt        int
	timeout           time.Duration
	jitter            time.Duration
	randomSeed        int64
	userAgent         string
	outputDir         string
	manifestPath      string
	reportPath        string
	hashAlgoArg       string
	dryRun            bool
	verbose           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "repo-manifest",
	Short: "Crawl a web directory listing into a content-digest manifest.",
	Long: `repo-manifest walks a statically served directory listing (the kind
rendered for raw repository mirrors), downloads every file it can reach
under the root URL, and emits a deterministic CSV manifest mapping each
file path to its content digest.

The crawl never leaves the root's origin and path prefix. Re-running
against an unchanged site yields byte-identical output, which makes the
manifest suitable for change detection and integrity checks.`,
	Version:      build.FullVersion(),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&rootURLArg, "root-url", "", "root listing URL to crawl (falls back to "+envRootURL+")")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from the root (0 for unlimited)")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of URLs to crawl (0 for unlimited)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent fetch workers")
	rootCmd.PersistentFlags().Float64Var(&requestsPerSecond, "requests-per-second", 0, "global request rate limit (0 for unthrottled)")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "fetch attempts per URL before recording a failure")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to retry backoff")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for retry jitter (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "mirror downloaded files under this directory (falls back to "+envOutputDir+")")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest-path", "", "where to write the CSV manifest (default manifest.csv)")
	rootCmd.PersistentFlags().StringVar(&reportPath, "report-path", "", "write a Markdown crawl report to this path")
	rootCmd.PersistentFlags().StringVar(&hashAlgoArg, "hash-algo", "", "digest algorithm: sha256 or blake3")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "crawl without writing files; the manifest goes to stdout")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "human-readable debug logging instead of JSON")
}

func run(ctx context.Context) error {
	// A missing .env is fine; flags and the process environment still apply.
	_ = godotenv.Load()

	if rootURLArg == "" {
		rootURLArg = os.Getenv(envRootURL)
	}
	if outputDir == "" {
		outputDir = os.Getenv(envOutputDir)
	}

	cfg, err := InitConfigWithError(rootURLArg)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	recorder := metadata.NewRecorder("coordinator", logger)
	c := crawler.NewCrawler(cfg, &recorder)

	m, crawlErr := c.Crawl(ctx)

	// The manifest is written even when the run was cancelled or failed;
	// it then holds whatever completed.
	if err := writeManifest(cfg, &m); err != nil {
		return err
	}
	if cfg.ReportPath() != "" && !cfg.DryRun() {
		if err := writeReport(cfg, &m); err != nil {
			return err
		}
	}

	printSummary(cfg, &m)

	if crawlErr != nil {
		return crawlErr
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// InitConfigWithError builds the effective Config from the config file or,
// when none is given, from the root URL plus flag overrides. Exported for
// tests.
func InitConfigWithError(rawRootURL string) (config.Config, error) {
	if cfgFile != "" {
		return config.WithConfigFile(cfgFile)
	}

	if rawRootURL == "" {
		return config.Config{}, fmt.Errorf(
			"%w: --root-url (or %s) is required when no config file is given",
			config.ErrInvalidConfig, envRootURL,
		)
	}
	rootURL, err := url.Parse(rawRootURL)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: root URL %q: %s", config.ErrInvalidConfig, rawRootURL, err.Error())
	}

	builder := config.WithDefault(*rootURL)

	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if concurrency > 0 {
		builder = builder.WithConcurrency(concurrency)
	}
	if requestsPerSecond > 0 {
		builder = builder.WithRequestsPerSecond(requestsPerSecond)
	}
	if maxAttempt > 0 {
		builder = builder.WithMaxAttempt(maxAttempt)
	}
	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}
	if jitter > 0 {
		builder = builder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if outputDir != "" {
		builder = builder.WithOutputDir(outputDir)
	}
	if manifestPath != "" {
		builder = builder.WithManifestPath(manifestPath)
	}
	if reportPath != "" {
		builder = builder.WithReportPath(reportPath)
	}
	if hashAlgoArg != "" {
		algo, err := digest.ParseAlgo(hashAlgoArg)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
		}
		builder = builder.WithHashAlgo(algo)
	}
	if dryRun {
		builder = builder.WithDryRun(dryRun)
	}

	return builder.Build()
}

func writeManifest(cfg config.Config, m *manifest.Manifest) error {
	if cfg.DryRun() {
		return manifest.WriteCSV(os.Stdout, m)
	}

	file, err := os.Create(cfg.ManifestPath())
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer file.Close()

	if err := manifest.WriteCSV(file, m); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func writeReport(cfg config.Config, m *manifest.Manifest) error {
	file, err := os.Create(cfg.ReportPath())
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	rootURL := cfg.RootURL()
	if err := manifest.WriteMarkdownReport(file, rootURL.String(), m); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func printSummary(cfg config.Config, m *manifest.Manifest) {
	summary := m.Summary()
	fmt.Printf("Files digested: %d\n", summary.TotalFiles())
	fmt.Printf("Failures: %d\n", summary.TotalFailures())
	fmt.Printf("Bytes transferred: %d\n", summary.TotalBytes())
	fmt.Printf("Duration: %v\n", summary.Duration().Round(time.Millisecond))
	if !cfg.DryRun() {
		fmt.Printf("Manifest: %s\n", cfg.ManifestPath())
		if cfg.ReportPath() != "" {
			fmt.Printf("Report: %s\n", cfg.ReportPath())
		}
		if cfg.OutputDir() != "" {
			fmt.Printf("Mirror: %s\n", cfg.OutputDir())
		}
	}
}

// ResetFlags restores every flag variable to its zero value. Tests use it
// to isolate flag state between cases.
func ResetFlags() {
	cfgFile = ""
	rootURLArg = ""
	maxDepth = 0
	maxPages = 0
	concurrency = 0
	requestsPerSecond = 0
	maxAttempt = 0
	timeout = 0
	jitter = 0
	randomSeed = 0
	userAgent = ""
	outputDir = ""
	manifestPath = ""
	reportPath = ""
	hashAlgoArg = ""
	dryRun = false
	verbose = false
}

// Test hooks for flag-driven config construction.

func SetConfigFileForTest(path string) { cfgFile = path }

func SetMaxDepthForTest(depth int) { maxDepth = depth }

func SetConcurrencyForTest(n int) { concurrency = n }

func SetOutputDirForTest(dir string) { outputDir = dir }

func SetManifestPathForTest(path string) { manifestPath = path }

func SetHashAlgoForTest(algo string) { hashAlgoArg = algo }

func SetDryRunForTest(enabled bool) { dryRun = enabled }

func SetTimeoutForTest(d time.Duration) { timeout = d }

func SetMaxAttemptForTest(n int) { maxAttempt = n }

func SetRequestsPerSecondForTest(r float64) { requestsPerSecond = r }
