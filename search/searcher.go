package search

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/rs/zerolog"
)

// Library is the part of the media API a search needs.
type Library interface {
	List(ctx context.Context, accessToken string, pageSize int, pageToken string) (media.Page, error)
	Search(ctx context.Context, accessToken string, filter media.Filter, pageSize int, pageToken string) (media.Page, error)
}

var _ Library = (*media.Client)(nil)

type Request struct {
	Query     string
	PageSize  int
	PageToken string
	// Strategy continues a previous result's stream; page tokens are only valid on the
	// stream that issued them.
	Strategy Strategy
}

type Result struct {
	media.Page
	Strategy Strategy `json:"strategy"`
}

// Searcher executes a Plan against the library, falling back from category search to a
// filename match over the listing.
type Searcher struct {
	library         Library
	fallbackOnEmpty bool
	scanPages       int
}

type SearcherOption func(*Searcher)

// WithFallbackOnEmpty controls whether an empty first page of a category search falls back
// to the filename match.
func WithFallbackOnEmpty(enabled bool) SearcherOption {
	return func(s *Searcher) {
		s.fallbackOnEmpty = enabled
	}
}

// WithScanPages sets how many listing pages a filename match may read before returning an
// empty page.
func WithScanPages(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.scanPages = n
		}
	}
}

// WithConfig applies the search settings from configuration.
func WithConfig(cfg config.SearchConfig) SearcherOption {
	return func(s *Searcher) {
		WithFallbackOnEmpty(cfg.GetSearchFallbackOnEmpty())(s)
		WithScanPages(cfg.GetSearchFallbackScanPages())(s)
	}
}

func NewSearcher(library Library, opts ...SearcherOption) *Searcher {
	s := &Searcher{library: library, fallbackOnEmpty: true, scanPages: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Searcher) Search(ctx context.Context, accessToken string, req Request) (Result, error) {
	plan := Translate(req.Query)
	strategy := s.continuation(plan, req)

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("strategy", string(strategy)).Strs("categories", plan.Filter.Categories).
		Str("media_type", plan.Filter.MediaType).Msg("search plan")

	switch strategy {
	case StrategyListing:
		page, err := s.library.List(ctx, accessToken, req.PageSize, req.PageToken)
		return Result{Page: page, Strategy: StrategyListing}, err

	case StrategyCategory:
		page, err := s.library.Search(ctx, accessToken, plan.Filter, req.PageSize, req.PageToken)
		if err != nil {
			return Result{}, err
		}
		// A later page of a category stream is never swapped for another stream.
		if len(page.Items) > 0 || req.PageToken != "" || !s.fallbackOnEmpty {
			return Result{Page: page, Strategy: StrategyCategory}, nil
		}
		logger.Debug().Msg("category search empty, falling back to filename match")
		return s.substring(ctx, accessToken, plan.Query, req.PageSize, "")

	default:
		return s.substring(ctx, accessToken, plan.Query, req.PageSize, req.PageToken)
	}
}

// continuation honours a strategy passed back by the caller when it is consistent with the
// query; otherwise the plan's own strategy starts a new stream.
func (s *Searcher) continuation(plan Plan, req Request) Strategy {
	if req.PageToken == "" || !req.Strategy.Valid() || plan.Strategy == StrategyListing {
		return plan.Strategy
	}
	if req.Strategy == StrategyCategory && plan.Strategy != StrategyCategory {
		return plan.Strategy
	}
	if req.Strategy == StrategyListing {
		return StrategySubstring
	}
	return req.Strategy
}

func (s *Searcher) substring(ctx context.Context, accessToken, query string, pageSize int, pageToken string) (Result, error) {
	token := pageToken
	for scanned := 1; ; scanned++ {
		page, err := s.library.List(ctx, accessToken, pageSize, token)
		if err != nil {
			return Result{}, err
		}

		matched := MatchFilename(page.Items, query)
		if len(matched) > 0 || page.NextPageToken == "" || scanned >= s.scanPages {
			return Result{
				Page:     media.Page{Items: matched, NextPageToken: page.NextPageToken},
				Strategy: StrategySubstring,
			}, nil
		}
		token = page.NextPageToken
	}
}

// MatchFilename keeps items whose filename contains query, ignoring case. Order is preserved.
func MatchFilename(items []media.MediaItem, query string) []media.MediaItem {
	needle := strings.ToLower(strings.TrimSpace(query))
	matched := make([]media.MediaItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Filename), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}
