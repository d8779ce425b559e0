package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/moviescope/internal/search"
	"github.com/listenupapp/moviescope/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search movies",
		Description: "Full-text search over movie names and directors. Hits carry the selection state so a client can toggle them.",
		Tags:        []string{"Search"},
		Errors:      []int{http.StatusBadRequest},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query    string   `query:"q" doc:"Search text, empty matches every movie"`
	Genres   []string `query:"genre" doc:"Restrict to genres (labels or slugs)"`
	MinYear  int      `query:"min_year" minimum:"0" doc:"Earliest release year"`
	MaxYear  int      `query:"max_year" minimum:"0" doc:"Latest release year"`
	MinScore float64  `query:"min_score" minimum:"0" maximum:"10" doc:"Lowest rating"`
	Limit    int      `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset   int      `query:"offset" minimum:"0"`
	Sort     string   `query:"sort" default:"relevance" enum:"relevance,name,year,score"`
	Order    string   `query:"order" default:"desc" enum:"asc,desc"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body service.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinScore = input.MinScore
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.SortBy = input.Sort
	params.SortOrder = input.Order

	for _, raw := range input.Genres {
		label, err := s.resolveGenre(raw)
		if err != nil {
			return nil, problem(err)
		}
		params.Genres = append(params.Genres, label)
	}

	res, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, problem(err)
	}
	return &SearchOutput{Body: *res}, nil
}
