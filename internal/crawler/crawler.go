package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/rohmanhakim/repo-manifest/internal/config"
	"github.com/rohmanhakim/repo-manifest/internal/fetcher"
	"github.com/rohmanhakim/repo-manifest/internal/frontier"
	"github.com/rohmanhakim/repo-manifest/internal/listing"
	"github.com/rohmanhakim/repo-manifest/internal/manifest"
	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/internal/storage"
	"github.com/rohmanhakim/repo-manifest/pkg/digest"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
	"github.com/rohmanhakim/repo-manifest/pkg/retry"
	"github.com/rohmanhakim/repo-manifest/pkg/timeutil"
	"github.com/rohmanhakim/repo-manifest/pkg/urlutil"
)

/*
 Crawler is the sole control-plane authority of the crawl.

 Determinism and admission guarantees:
 - Crawler is the ONLY component allowed to decide whether a URL
   may enter the crawl frontier.
 - All semantic admission checks (scope, depth, page limits, dedup)
   MUST be completed before a URL reaches a worker.
 - No other component may enqueue, reject, or reorder URLs.
 - Pipeline stages may detect and classify failure, but must never decide
   retry, continuation, or abortion.

 Concurrency model:
 - A single coordinating goroutine owns the frontier and the manifest
   builder. Workers fetch, parse and digest; they never touch shared
   crawl state, they only send one targetOutcome back.
 - Worker count is bounded by a weighted semaphore of `concurrency`
   slots. No lock is held across a network call.

 Failure policy:
 - A failed file target becomes a manifest row carrying the error.
 - A failed listing target prunes its own subtree and nothing else.
 - Only a run that processes zero targets successfully is an error.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or crawl termination.
*/

type Crawler struct {
	cfg            config.Config
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	fetcher        fetcher.Fetcher
	parser         listing.LinkParser
	storageSink    storage.Sink
}

func NewCrawler(cfg config.Config, recorder *metadata.Recorder) Crawler {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond() > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond()), 1)
	}
	httpFetcher := fetcher.NewHTTPFetcher(
		recorder,
		cfg.Timeout(),
		cfg.MaxBodySizeBytes(),
		limiter,
	)

	var sink storage.Sink = storage.NopSink{}
	if cfg.OutputDir() != "" && !cfg.DryRun() {
		localSink := storage.NewLocalSink(recorder, cfg.OutputDir())
		sink = &localSink
	}

	return Crawler{
		cfg:            cfg,
		metadataSink:   recorder,
		crawlFinalizer: recorder,
		fetcher:        &httpFetcher,
		parser:         listing.NewLinkParser(recorder),
		storageSink:    sink,
	}
}

// NewCrawlerWithDeps creates a Crawler with injected dependencies for
// testing.
func NewCrawlerWithDeps(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	crawlFinalizer metadata.CrawlFinalizer,
	fetch fetcher.Fetcher,
	sink storage.Sink,
) Crawler {
	return Crawler{
		cfg:            cfg,
		metadataSink:   metadataSink,
		crawlFinalizer: crawlFinalizer,
		fetcher:        fetch,
		parser:         listing.NewLinkParser(metadataSink),
		storageSink:    sink,
	}
}

// Crawl walks the listing tree under the configured root and returns the
// manifest of every discovered file. The manifest is returned even when
// the run ends in a CrawlError or a cancellation; it then holds whatever
// completed before the run stopped.
func (c *Crawler) Crawl(ctx context.Context) (manifest.Manifest, failure.ClassifiedError) {
	startTime := time.Now()

	rootURL := c.cfg.RootURL()
	builder := manifest.NewBuilder(string(c.cfg.HashAlgo()))

	front := frontier.NewFrontier(c.cfg.MaxDepth(), c.cfg.MaxPages())
	front.Submit(frontier.NewCrawlTarget(
		rootURL,
		listing.ClassifyRoot(rootURL),
		0,
		frontier.SourceSeed,
	))

	retryParam := retry.NewRetryParam(
		c.cfg.BackoffInitialDuration(),
		c.cfg.Jitter(),
		c.cfg.RandomSeed(),
		c.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			c.cfg.BackoffInitialDuration(),
			c.cfg.BackoffMultiplier(),
			c.cfg.BackoffMaxDuration(),
		),
	)

	var (
		sem          = semaphore.NewWeighted(int64(c.cfg.Concurrency()))
		results      = make(chan targetOutcome)
		inFlight     = 0
		totalTargets = 0
		totalErrors  = 0
		successCount = 0
		totalBytes   = uint64(0)
	)

	for {
		// Dispatch as long as there is both a queued target and a free
		// worker slot. Cancellation stops dispatch; in-flight targets
		// still drain below.
		for ctx.Err() == nil && sem.TryAcquire(1) {
			target, ok := front.Next()
			if !ok {
				sem.Release(1)
				break
			}
			inFlight++
			go func(target frontier.CrawlTarget) {
				defer sem.Release(1)
				results <- c.process(ctx, target, rootURL, retryParam)
			}(target)
		}

		if inFlight == 0 {
			break
		}

		outcome := <-results
		inFlight--
		totalTargets++

		if outcome.err != nil {
			totalErrors++
			if outcome.target.Role() == listing.RoleFile {
				builder.AddFailure(outcome.relPath, outcome.err.Error())
			}
			continue
		}
		successCount++

		switch outcome.target.Role() {
		case listing.RoleListing:
			childDepth := outcome.target.Depth() + 1
			for i := range outcome.links {
				link := &outcome.links[i]
				front.Submit(frontier.NewCrawlTarget(
					link.URL(),
					link.Role(),
					childDepth,
					frontier.SourceCrawl,
				))
			}
		case listing.RoleFile:
			builder.AddSuccess(outcome.relPath, outcome.digest, outcome.sizeBytes)
			totalBytes += outcome.sizeBytes
		}
	}

	c.crawlFinalizer.RecordFinalCrawlStats(
		totalTargets,
		totalErrors,
		totalBytes,
		time.Since(startTime),
	)

	built := builder.Build()
	if successCount == 0 {
		return built, &CrawlError{
			Message: fmt.Sprintf("nothing crawlable under %s", rootURL.String()),
			Cause:   ErrCauseNoTargetsProcessed,
		}
	}

	return built, nil
}

// process runs the full pipeline for one target inside a worker: fetch,
// then either listing expansion or digest + mirror. It never touches the
// frontier or the builder.
func (c *Crawler) process(
	ctx context.Context,
	target frontier.CrawlTarget,
	rootURL url.URL,
	retryParam retry.RetryParam,
) targetOutcome {
	outcome := targetOutcome{
		target:  target,
		relPath: urlutil.RelativePath(rootURL, target.URL()),
	}

	fetchParam := fetcher.NewFetchParam(target.URL(), c.cfg.UserAgent())
	result, err := c.fetcher.Fetch(ctx, target.Depth(), fetchParam, retryParam)
	if err != nil {
		outcome.err = err
		return outcome
	}

	switch target.Role() {
	case listing.RoleListing:
		links, parseErr := c.parser.Parse(rootURL, target.URL(), result.Body())
		if parseErr != nil {
			outcome.err = parseErr
			return outcome
		}
		outcome.links = links

	case listing.RoleFile:
		hexDigest, size, hashErr := digest.HashReader(
			bytes.NewReader(result.Body()),
			c.cfg.HashAlgo(),
		)
		if hashErr != nil {
			outcome.err = &ProcessError{
				Message: hashErr.Error(),
				Cause:   ErrCauseDigestFailure,
			}
			return outcome
		}
		outcome.digest = hexDigest
		outcome.sizeBytes = uint64(size)

		// A failed mirror write loses only the local copy; the digest and
		// the manifest row survive. The sink records the failure itself.
		_, _ = c.storageSink.Write(outcome.relPath, result.Body())
	}

	return outcome
}
