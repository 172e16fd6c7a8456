// Package blog is the entry point content consumers use to read posts.
// A Service fetches discussions of one category through full pagination and
// memoizes the result, so every page of a site build shares one fetch.
package blog

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"discussionblog/entities"
	"discussionblog/internal/cache"
	"discussionblog/internal/fetcher"
	"discussionblog/internal/logging"
)

const categoriesKey = "categories"

// Query selects the discussions of one category. The cursor is never supplied:
// a query always covers the category from the newest post to the oldest.
type Query struct {
	CategoryName string
	// PageSize is the `first` of each page request; 0 means fetcher.MaxPageSize.
	PageSize    int
	IncludeBody bool
}

func (q Query) normalized() Query {
	if q.PageSize <= 0 {
		q.PageSize = fetcher.MaxPageSize
	}
	return q
}

// CacheKey is the canonical key of the normalized query, so {Blog} and
// {Blog, 100, false} share an entry.
func (q Query) CacheKey() string {
	q = q.normalized()
	return cache.Key{
		Namespace: "discussions",
		Params: map[string]string{
			"category": q.CategoryName,
			"first":    strconv.Itoa(q.PageSize),
			"body":     strconv.FormatBool(q.IncludeBody),
		},
	}.String()
}

// Service memoizes discussion and category fetches for the process lifetime.
type Service struct {
	pages       fetcher.PageFetcher
	discussions *cache.Memo[[]entities.Discussion]
	categories  *cache.Memo[[]entities.Category]
	log         zerolog.Logger
}

// NewService creates a Service with an empty cache. store is an optional shared
// layer and may be nil.
func NewService(pages fetcher.PageFetcher, store cache.Store) *Service {
	return &Service{
		pages:       pages,
		discussions: cache.NewMemo[[]entities.Discussion](store),
		categories:  cache.NewMemo[[]entities.Category](store),
		log:         logging.NewLogger("blog"),
	}
}

// GetDiscussionsByCategory returns every discussion of q.CategoryName, newest first.
// Calls with the same normalized query share one fetch, including calls that arrive
// while that fetch is still running. Failures are returned unchanged and never cached.
// The returned slice is shared between callers and must not be modified.
func (s *Service) GetDiscussionsByCategory(ctx context.Context, q Query) ([]entities.Discussion, error) {
	q = q.normalized()

	return s.discussions.Get(ctx, q.CacheKey(), func(ctx context.Context) ([]entities.Discussion, error) {
		start := time.Now()

		categories, err := s.Categories(ctx)
		if err != nil {
			return nil, err
		}

		category, err := fetcher.FindCategory(categories, q.CategoryName)
		if err != nil {
			return nil, err
		}

		discussions, err := fetcher.FetchAll(ctx, s.pages, fetcher.FetchOptions{
			PageSize:    q.PageSize,
			CategoryID:  category.ID,
			IncludeBody: q.IncludeBody,
		})
		if err != nil {
			s.log.Error().
				Err(err).
				Str("category", q.CategoryName).
				Msg("Failed to fetch discussions")
			return nil, err
		}

		s.log.Info().
			Str("category", q.CategoryName).
			Int("discussions", len(discussions)).
			Dur("duration", time.Since(start)).
			Msg("Fetched discussions")

		return discussions, nil
	})
}

// Categories returns the repository's discussion categories, fetched once.
func (s *Service) Categories(ctx context.Context) ([]entities.Category, error) {
	return s.categories.Get(ctx, categoriesKey, s.pages.FetchCategories)
}

// Cached reports whether q already has a resolved result.
func (s *Service) Cached(q Query) bool {
	_, ok := s.discussions.Lookup(q.CacheKey())
	return ok
}
