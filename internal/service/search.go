package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/search"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/store"
)

// searchHandlerID is the bus handler id the search index reindexes under.
const searchHandlerID = "search-index"

// SearchService keeps the search index in step with the record store and
// answers queries.
type SearchService struct {
	index     *search.Index
	store     *store.Store
	selection *selection.State
	logger    *slog.Logger
}

// NewSearchService creates a search service and subscribes it to dataset
// loads so the index is rebuilt with every new base set.
func NewSearchService(
	index *search.Index,
	st *store.Store,
	sel *selection.State,
	b *bus.Bus,
	logger *slog.Logger,
) (*SearchService, error) {
	s := &SearchService{index: index, store: st, selection: sel, logger: logger}
	if err := b.Subscribe(bus.KindDatasetLoaded, searchHandlerID, s.onDatasetLoaded); err != nil {
		return nil, fmt.Errorf("subscribe search index: %w", err)
	}
	return s, nil
}

func (s *SearchService) onDatasetLoaded(context.Context, bus.Event) error {
	return s.Reindex()
}

// Reindex rebuilds the index from the store's base set.
func (s *SearchService) Reindex() error {
	if err := s.index.Replace(s.store.Base()); err != nil {
		return fmt.Errorf("reindex movies: %w", err)
	}
	return nil
}

// DocumentCount returns the number of indexed movies.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// SearchHit is a search match with the caller's selection state attached.
type SearchHit struct {
	search.Hit
	Selected bool `json:"selected"`
	// Included is false when the genre filter hides the movie.
	Included bool `json:"included"`
}

// SearchResult is one page of hits.
type SearchResult struct {
	Query  string              `json:"query"`
	Total  uint64              `json:"total"`
	TookMs int64               `json:"took_ms"`
	Hits   []SearchHit         `json:"hits"`
	Genres []search.FacetCount `json:"genres,omitempty"`
}

// Search runs a query and marks which hits are selected or filtered out.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*SearchResult, error) {
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	out := &SearchResult{
		Query:  res.Query,
		Total:  res.Total,
		TookMs: res.TookMs,
		Hits:   make([]SearchHit, len(res.Hits)),
		Genres: res.Genres,
	}
	for i, h := range res.Hits {
		out.Hits[i] = SearchHit{
			Hit:      h,
			Selected: s.selection.IsSelected(h.Name),
			Included: s.selection.Includes(h.Genre),
		}
	}

	s.logger.Debug("search", slog.String("query", params.Query), slog.Uint64("total", res.Total))
	return out, nil
}
