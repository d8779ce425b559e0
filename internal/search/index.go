package search

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/moviescope/internal/domain"
)

// Index wraps an in-memory Bleve index of the loaded movies.
//
// All methods are safe for concurrent use. Replace swaps in a freshly built
// index so searches never see a half-built one.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewIndex creates an empty index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace rebuilds the index from movies.
func (s *Index) Replace(movies []domain.Movie) error {
	next, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	const batchSize = 500
	for i := 0; i < len(movies); i += batchSize {
		end := min(i+batchSize, len(movies))

		batch := next.NewBatch()
		for _, m := range movies[i:end] {
			doc := NewMovieDocument(m)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				_ = next.Close()
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := next.Batch(batch); err != nil {
			_ = next.Close()
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	s.mu.Lock()
	old := s.index
	s.index = next
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Info("search index rebuilt", "movies", len(movies))
	return nil
}

// DocumentCount returns the number of indexed movies.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
