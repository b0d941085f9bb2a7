// Package ingest drives the scraped-job pipeline: paginated fetching
// through a source adapter, field extraction, and deduplicated persistence
// into the canonical job store.
package ingest

import (
	"context"
	"errors"

	"jobboard-api/internal/ingest/source"
	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
)

// ErrSourceDisabled is returned when a run targets a source whose config
// has is_active=false. Checked once before paging starts.
var ErrSourceDisabled = errors.New("source is disabled")

// RunResult is the outcome of the paging loop for one run
type RunResult struct {
	// Records accumulated across pages, truncated to the requested limit
	Records []models.CandidateRecord

	// TotalFetched counts candidate records extracted before truncation
	TotalFetched int

	// PagesFetched counts page requests actually issued
	PagesFetched int

	// FetchErr is set when a page fetch failed after retries and the run
	// stopped with partial results. Nil on a clean stop.
	FetchErr error
}

// noisePageSlack is the number of extra pages allowed beyond what the
// limit strictly requires, covering cards the extractor drops.
const noisePageSlack = 2

// runPages pulls pages in strictly increasing offset order until the limit
// is reached, a short page signals the end of results, or a page fetch
// fails. A fetch failure with nothing accumulated fails the run; with
// partial results it stops the loop and surfaces the error on the result.
// Offsets are bounded: if a source keeps serving full pages that yield no
// records, the loop stops after enough pages to satisfy the limit plus
// slack.
func runPages(ctx context.Context, rt *source.Runtime, query, location string, limit int, logger logging.Logger) (*RunResult, error) {
	pageSize := rt.Adapter.PageSize()
	maxPages := (limit+pageSize-1)/pageSize + noisePageSlack
	result := &RunResult{}

	for page, offset := 0, 0; page < maxPages; page, offset = page+1, offset+pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fragments, err := rt.Adapter.FetchPage(ctx, query, location, offset)
		if err != nil {
			if len(result.Records) == 0 {
				return nil, err
			}
			logger.Warn("page fetch failed, stopping run with partial results", map[string]interface{}{
				"source": rt.Adapter.Name(),
				"offset": offset,
				"error":  err.Error(),
			})
			result.FetchErr = err
			break
		}
		result.PagesFetched++

		for _, frag := range fragments {
			record, ok := rt.Extractor.Extract(frag)
			if !ok {
				continue
			}
			result.Records = append(result.Records, *record)
		}

		if len(result.Records) >= limit {
			break
		}
		if len(fragments) < pageSize {
			// Short page signals the end of results
			break
		}
	}

	result.TotalFetched = len(result.Records)
	if len(result.Records) > limit {
		result.Records = result.Records[:limit]
	}

	return result, nil
}
