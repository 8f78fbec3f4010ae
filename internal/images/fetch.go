package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout = 10 * time.Second
	fetchUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
	maxImageBytes       = 10 << 20
)

// Fetcher downloads pending external images and embeds them as data URIs.
type Fetcher struct {
	client      *http.Client
	concurrency int
	timeout     time.Duration
}

// NewFetcher returns a fetcher with the given pool size and per-fetch
// timeout; sizes below one fall back to a single worker, a zero timeout to
// the 10s default.
func NewFetcher(concurrency int, timeout time.Duration) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// FetchAll downloads every pending, non-tracking record in the index through
// a bounded worker pool. Each fetch is independent: failures are logged and
// leave the record on its URL fallback, and never abort sibling fetches.
func (f *Fetcher) FetchAll(ctx context.Context, ix *Index) {
	var pending []*Record
	for _, rec := range ix.Records() {
		if rec.Pending() && !rec.Tracking {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return
	}

	log.Info().Int("count", len(pending)).Msg("fetching external images")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, rec := range pending {
		rec := rec
		g.Go(func() error {
			if err := f.fetchOne(ctx, rec); err != nil {
				log.Warn().Err(err).Str("url", rec.URL).Msg("external image fetch failed")
			} else {
				log.Debug().Str("url", rec.URL).Msg("external image embedded")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (f *Fetcher) fetchOne(ctx context.Context, rec *Record) error {
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rec.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", fetchUserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return err
		}

		contentType := resp.Header.Get("Content-Type")
		if i := strings.Index(contentType, ";"); i >= 0 {
			contentType = contentType[:i]
		}
		rec.SetData(strings.TrimSpace(contentType), data)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	return backoff.Retry(op, policy)
}
