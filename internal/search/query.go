package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query string

	// Filters
	Genres   []string // exact genre labels, OR-ed
	MinYear  int
	MaxYear  int
	MinScore float64

	Limit  int
	Offset int

	// SortBy is "relevance" (default), "name", "year" or "score".
	SortBy    string
	SortOrder string // "asc", "desc"

	IncludeFacets bool
	Highlight     bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result is one page of search hits.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// Hit is a matching movie.
type Hit struct {
	Name       string            `json:"name"`
	Director   string            `json:"director"`
	Genre      string            `json:"genre"`
	Year       int               `json:"year"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("genre", bleve.NewFacetRequest("genre", 20))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("director")
	}
	req.Fields = []string{"name", "director", "genre", "year", "score"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{Name: h.ID}
		if d, ok := h.Fields["director"].(string); ok {
			hit.Director = d
		}
		if g, ok := h.Fields["genre"].(string); ok {
			hit.Genre = g
		}
		if y, ok := h.Fields["year"].(float64); ok {
			hit.Year = int(y)
		}
		if sc, ok := h.Fields["score"].(float64); ok {
			hit.Score = sc
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string)
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if facet, ok := res.Facets["genre"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Genres = append(result.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildQuery matches titles first, then directors, with fuzzy and prefix
// fallbacks on titles for typos and autocomplete.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		directorMatch := bleve.NewMatchQuery(q)
		directorMatch.SetField("director")
		directorMatch.SetBoost(1.5)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		text := []query.Query{nameMatch, directorMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, g := range params.Genres {
			tq := bleve.NewTermQuery(g)
			tq.SetField("genre")
			genreQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 3000
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("year")
		queries = append(queries, rq)
	}

	if params.MinScore > 0 {
		lo := params.MinScore
		rq := bleve.NewNumericRangeQuery(&lo, nil)
		rq.SetField("score")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func addSorting(req *bleve.SearchRequest, params Params) {
	desc := params.SortOrder == "desc"
	field := ""
	switch params.SortBy {
	case "name", "title":
		field = "_id"
	case "year":
		field = "year"
	case "score":
		field = "score"
	default:
		req.SortBy([]string{"-_score"})
		return
	}
	if desc {
		field = "-" + field
	}
	if field == "_id" || field == "-_id" {
		req.SortBy([]string{field})
		return
	}
	req.SortBy([]string{field, "_id"})
}
