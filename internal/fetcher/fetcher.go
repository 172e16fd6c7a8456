package fetcher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"discussionblog/entities"
)

// PageRequest selects one page of discussions.
// Empty After starts from the beginning; empty CategoryID means all categories.
type PageRequest struct {
	First       int
	After       string
	CategoryID  string
	IncludeBody bool
}

// PageFetcher performs single round trips against the discussion board.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (*entities.Page, error)
	FetchCategories(ctx context.Context) ([]entities.Category, error)
}

// FetchOptions configures a full pagination run.
type FetchOptions struct {
	// PageSize is sent as `first`; 0 means MaxPageSize.
	PageSize    int
	CategoryID  string
	IncludeBody bool
}

// FetchAll follows the endCursor until the remote reports no next page and
// returns every node in arrival order. Pages are requested one at a time.
// Any failing page aborts the run without a partial result.
func FetchAll(ctx context.Context, pages PageFetcher, opts FetchOptions) ([]entities.Discussion, error) {
	start := time.Now()

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = MaxPageSize
	}

	req := PageRequest{
		First:       pageSize,
		CategoryID:  opts.CategoryID,
		IncludeBody: opts.IncludeBody,
	}

	var discussions []entities.Discussion
	pageCount := 0

	for {
		page, err := pages.FetchPage(ctx, req)
		if err != nil {
			return nil, err
		}
		pageCount++

		// an empty page may still have a successor
		discussions = append(discussions, page.Nodes...)

		if !page.PageInfo.HasNextPage {
			break
		}

		req.After = page.PageInfo.EndCursor
	}

	log.Debug().
		Str("category_id", opts.CategoryID).
		Int("pages", pageCount).
		Int("discussions", len(discussions)).
		Dur("duration", time.Since(start)).
		Msg("Fetched all discussions")

	return discussions, nil
}
