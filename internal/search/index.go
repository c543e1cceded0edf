package search

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/logger"
)

// Index is an in-memory Bleve index over the tobacco collection.
//
// Thread safety: all methods are safe for concurrent use. Reset swaps the
// underlying index under the write lock.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
	detach func()
	mu     sync.RWMutex
}

// NewIndex creates an empty index.
func NewIndex(log *slog.Logger) (*Index, error) {
	index, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Index{
		index:  index,
		logger: logger.OrDiscard(log).With("component", "search"),
	}, nil
}

func newMemIndex() (bleve.Index, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close detaches from the store and releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	return s.index.Close()
}

// IndexTobacco adds or replaces one tobacco.
func (s *Index) IndexTobacco(t domain.Tobacco) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := TobaccoToDocument(t)
	return s.index.Index(doc.ID, doc.ToMap())
}

// DeleteTobacco removes a tobacco from the index.
func (s *Index) DeleteTobacco(tobaccoID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocID(tobaccoID))
}

// Reset replaces the whole index with tobaccos in one batch.
func (s *Index) Reset(tobaccos []domain.Tobacco) error {
	index, err := newMemIndex()
	if err != nil {
		return err
	}

	batch := index.NewBatch()
	for _, t := range tobaccos {
		doc := TobaccoToDocument(t)
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			_ = index.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	s.logger.Debug("search index rebuilt", "documents", len(tobaccos))
	return old.Close()
}

// DocumentCount returns the number of indexed tobaccos.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Match returns the ids of tobaccos whose name or brand contains q, ignoring case.
// An empty or blank q matches everything.
func (s *Index) Match(ctx context.Context, q string) (map[int64]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return map[int64]bool{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), int(count), 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make(map[int64]bool, len(res.Hits))
	for _, hit := range res.Hits {
		tobaccoID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("unexpected document id", "id", hit.ID)
			continue
		}
		ids[tobaccoID] = true
	}
	return ids, nil
}

// Filter returns the entries of tobaccos matched by q, keeping their order.
func (s *Index) Filter(ctx context.Context, tobaccos []domain.Tobacco, q string) ([]domain.Tobacco, error) {
	if strings.TrimSpace(q) == "" {
		return tobaccos, nil
	}
	ids, err := s.Match(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tobacco, 0, len(ids))
	for _, t := range tobaccos {
		if ids[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func buildQuery(q string) query.Query {
	q = strings.TrimSpace(q)
	if q == "" {
		return bleve.NewMatchAllQuery()
	}
	pattern := ".*" + regexp.QuoteMeta(strings.ToLower(q)) + ".*"

	name := bleve.NewRegexpQuery(pattern)
	name.SetField("name")
	brand := bleve.NewRegexpQuery(pattern)
	brand.SetField("brand")
	return bleve.NewDisjunctionQuery(name, brand)
}
