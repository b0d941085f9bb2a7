package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobboard-api/internal/ingest/extract"
)

// buildSearchURL assembles the shared board wire contract: GET
// {base}/jobs?q=<query>&l=<location>&start=<offset>.
func buildSearchURL(base, query, location string, offset int) string {
	values := url.Values{}
	values.Set("q", query)
	if location != "" {
		values.Set("l", location)
	}
	if offset > 0 {
		values.Set("start", fmt.Sprintf("%d", offset))
	}
	return fmt.Sprintf("%s/jobs?%s", base, values.Encode())
}

// fetchDocument issues one GET and parses the body. The bool return
// classifies a failure as transient (retryable) or permanent.
func fetchDocument(ctx context.Context, client *http.Client, target, userAgent string) (*goquery.Document, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("http %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return doc, false, nil
}

// retryPolicy drives exponential backoff for transient page failures
type retryPolicy struct {
	maxRetries  int
	backoffBase time.Duration
}

// fetchFragments fetches one page with retries and slices the document
// into per-listing fragments using the card selector. Transient failures
// back off exponentially (base, 2x base, 4x base, ...); a permanent
// failure aborts immediately.
func fetchFragments(ctx context.Context, client *http.Client, target, userAgent, cardSelector, sourceName string, offset int, policy retryPolicy) ([]extract.Fragment, error) {
	attempts := policy.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := policy.backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		doc, transient, err := fetchDocument(ctx, client, target, userAgent)
		if err != nil {
			if !transient {
				return nil, &FetchError{
					Source:    sourceName,
					Offset:    offset,
					Transient: false,
					Attempts:  attempt + 1,
					Err:       err,
				}
			}
			lastErr = err
			continue
		}

		var fragments []extract.Fragment
		doc.Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
			fragments = append(fragments, extract.Fragment{Selection: s})
		})
		return fragments, nil
	}

	return nil, &FetchError{
		Source:    sourceName,
		Offset:    offset,
		Transient: true,
		Attempts:  attempts,
		Err:       lastErr,
	}
}
