package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
	"github.com/rohmanhakim/repo-manifest/pkg/retry"
	"golang.org/x/time/rate"
)

/*
Responsibilities

- Perform HTTP GET requests
- Apply headers, per-request timeouts and the global rate limit
- Classify responses and transport failures

Fetch Semantics

- Any 2xx response is returned with its body and content type; the caller
  decides whether the bytes are a listing (HTML) or file content
- Transient failures (timeout, transport error, 5xx, 429) are retried
- Non-transient failures (4xx, DNS resolution) are not retried
- Response bodies are capped at maxBodySize

The fetcher never parses content and never touches the filesystem; it only
returns bytes and metadata.
*/

type HTTPFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	limiter      *rate.Limiter
	timeout      time.Duration
	maxBodySize  int64
}

// NewHTTPFetcher builds a fetcher with a per-request timeout and an
// optional global rate limiter (nil means unthrottled).
func NewHTTPFetcher(
	metadataSink metadata.MetadataSink,
	timeout time.Duration,
	maxBodySize int64,
	limiter *rate.Limiter,
) HTTPFetcher {
	return HTTPFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
		limiter:      limiter,
		timeout:      timeout,
		maxBodySize:  maxBodySize,
	}
}

func (h *HTTPFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HTTPFetcher.Fetch"
	startTime := time.Now()

	result, attempts, err := h.fetchWithRetry(ctx, fetchParam, retryParam)

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	retryCount := attempts - 1
	if retryCount < 0 {
		retryCount = 0
	}

	if err == nil {
		statusCode = result.Code()
		contentType = result.ContentType()
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		retryCount,
		crawlDepth,
	)

	if err != nil {
		if errors.Is(err, &retry.RetryError{}) {
			h.recordRetryError(callerMethod, fetchParam.fetchUrl, err)
		} else {
			h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		}
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HTTPFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
				metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchError.StatusCode)),
			},
		)
	}
}

func (h *HTTPFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HTTPFetcher) fetchWithRetry(ctx context.Context, fetchParam FetchParam, retryParam retry.RetryParam) (FetchResult, int, failure.ClassifiedError) {
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)
	}

	result := retry.Retry(retryParam, fetchTask)

	if result.IsFailure() {
		err := result.Err()
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			// The underlying error is a FetchError, return it directly
			return FetchResult{}, result.Attempts(), fetchErr
		}
		// It's a RetryError, return it as-is
		return FetchResult{}, result.Attempts(), err
	}

	return result.Value(), result.Attempts(), nil
}

func (h *HTTPFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	// The rate limit applies to every attempt, retries included.
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("rate limiter wait aborted: %v", err),
				Retryable: false,
				Cause:     ErrCauseCancelled,
			}
		}
	}

	reqCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		// Server errors (5xx) are retryable
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return FetchResult{}, &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 400:
		// Client errors are not retryable
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// Redirects are followed by http.Client; anything else non-2xx
		// that leaks through is a terminal per-target failure.
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodySize+1))
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}
	if int64(len(body)) > h.maxBodySize {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("response body exceeds %d bytes", h.maxBodySize),
			Retryable: false,
			Cause:     ErrCauseBodyTooLarge,
		}
	}

	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			contentType:         resp.Header.Get("Content-Type"),
			transferredSizeByte: uint64(len(body)),
		},
	}

	return result, nil
}

// classifyTransportError separates transient transport failures from the
// ones retrying cannot fix (DNS resolution, external cancellation).
func classifyTransportError(ctx context.Context, err error) *FetchError {
	if ctx.Err() != nil {
		return &FetchError{
			Message:   fmt.Sprintf("fetch aborted: %v", err),
			Retryable: false,
			Cause:     ErrCauseCancelled,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &FetchError{
			Message:   fmt.Sprintf("DNS lookup failed: %v", err),
			Retryable: false,
			Cause:     ErrCauseDNSFailure,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}

	// Remaining transport errors (refused connections, resets) are
	// treated as transient.
	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}
