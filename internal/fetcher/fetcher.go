package fetcher

import (
	"context"

	"github.com/rohmanhakim/repo-manifest/pkg/failure"
	"github.com/rohmanhakim/repo-manifest/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		crawlDepth int,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
