package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/moviescope/internal/domain"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
	"github.com/listenupapp/moviescope/internal/store"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies",
		Summary:     "List movies",
		Description: "Returns the loaded movies, either all of them or only those passing the genre filter",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMovie",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/{name}",
		Summary:     "Get movie",
		Description: "Returns one movie by its unique name",
		Tags:        []string{"Movies"},
	}, s.handleGetMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns genre counts of the loaded movies with colors and filter state",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "listYears",
		Method:      http.MethodGet,
		Path:        "/api/v1/years",
		Summary:     "List years",
		Description: "Returns per-year movie counts, including how many pass the genre filter",
		Tags:        []string{"Movies"},
	}, s.handleListYears)
}

// === DTOs ===

// MovieResponse is a movie with the dashboard's state attached.
type MovieResponse struct {
	Name     string         `json:"name" doc:"Unique movie name"`
	Genre    string         `json:"genre" doc:"Canonical genre label"`
	Director string         `json:"director"`
	Year     int            `json:"year"`
	Score    *float64       `json:"score,omitempty" doc:"Rating, absent when unknown"`
	Votes    float64        `json:"votes" doc:"Votes in millions"`
	Gross    float64        `json:"gross" doc:"Revenue in billions"`
	Selected bool           `json:"selected"`
	Included bool           `json:"included" doc:"False when the genre filter hides the movie"`
	Tooltip  domain.Tooltip `json:"tooltip"`
}

// ListMoviesInput contains parameters for listing movies.
type ListMoviesInput struct {
	Scope string `query:"scope" default:"all" enum:"all,active" doc:"all movies or only those passing the genre filter"`
	Genre string `query:"genre" doc:"Restrict to one genre (label or slug)"`
}

// MoviesResponse lists movies.
type MoviesResponse struct {
	Movies []MovieResponse `json:"movies"`
	Total  int             `json:"total" doc:"Movies in the loaded dataset"`
	Active int             `json:"active" doc:"Movies passing the genre filter"`
}

// ListMoviesOutput wraps the movie list for Huma.
type ListMoviesOutput struct {
	Body MoviesResponse
}

// GetMovieInput identifies a movie.
type GetMovieInput struct {
	Name string `path:"name" doc:"Movie name, URL encoded"`
}

// MovieOutput wraps a single movie for Huma.
type MovieOutput struct {
	Body MovieResponse
}

// GenreResponse is one genre bucket.
type GenreResponse struct {
	Genre       string `json:"genre"`
	Slug        string `json:"slug"`
	Count       int    `json:"count" doc:"Movies of this genre in the dataset"`
	ActiveCount int    `json:"active_count" doc:"Movies of this genre passing the filter"`
	Color       string `json:"color"`
	Active      bool   `json:"active" doc:"Whether the genre is part of the filter"`
}

// GenresResponse lists genre buckets.
type GenresResponse struct {
	Genres       []GenreResponse `json:"genres"`
	ActiveGenres []string        `json:"active_genres"`
}

// ListGenresOutput wraps the genre list for Huma.
type ListGenresOutput struct {
	Body GenresResponse
}

// YearResponse is one year bucket.
type YearResponse struct {
	Year     int `json:"year"`
	Count    int `json:"count"`
	Included int `json:"included" doc:"Movies of this year passing the genre filter"`
}

// YearsResponse lists year buckets.
type YearsResponse struct {
	Years []YearResponse `json:"years"`
}

// ListYearsOutput wraps the year list for Huma.
type ListYearsOutput struct {
	Body YearsResponse
}

// === Handlers ===

func (s *Server) handleListMovies(_ context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	base := s.store.Base()
	active := s.store.Active()

	set := base
	if input.Scope == "active" {
		set = active
	}

	if input.Genre != "" {
		label, err := s.resolveGenre(input.Genre)
		if err != nil {
			return nil, problem(err)
		}
		set = store.FilterByGenres(set, []string{label})
	}

	resp := MoviesResponse{
		Movies: make([]MovieResponse, len(set)),
		Total:  len(base),
		Active: len(active),
	}
	for i, m := range set {
		resp.Movies[i] = s.movieResponse(m)
	}

	return &ListMoviesOutput{Body: resp}, nil
}

func (s *Server) handleGetMovie(_ context.Context, input *GetMovieInput) (*MovieOutput, error) {
	m, err := s.store.Lookup(input.Name)
	if err != nil {
		// Some routers hand over the still-escaped segment.
		unescaped, uerr := url.PathUnescape(input.Name)
		if uerr != nil || unescaped == input.Name {
			return nil, problem(err)
		}
		if m, err = s.store.Lookup(unescaped); err != nil {
			return nil, problem(err)
		}
	}

	return &MovieOutput{Body: s.movieResponse(m)}, nil
}

func (s *Server) handleListGenres(_ context.Context, _ *struct{}) (*ListGenresOutput, error) {
	base := store.BuildIndex(s.store.Base())
	active := s.store.Index()

	resp := GenresResponse{
		Genres:       make([]GenreResponse, len(base.Genres)),
		ActiveGenres: s.selection.ActiveGenres(),
	}
	for i, gc := range base.Genres {
		resp.Genres[i] = GenreResponse{
			Genre:       gc.Genre,
			Slug:        genre.Slugify(gc.Genre),
			Count:       gc.Count,
			ActiveCount: active.GenreCount(gc.Genre),
			Color:       s.palette.For(gc.Genre),
			Active:      s.selection.GenreActive(gc.Genre),
		}
	}

	return &ListGenresOutput{Body: resp}, nil
}

func (s *Server) handleListYears(_ context.Context, _ *struct{}) (*ListYearsOutput, error) {
	base := store.BuildIndex(s.store.Base())

	resp := YearsResponse{Years: make([]YearResponse, len(base.Years))}
	for i, b := range base.Years {
		included := 0
		for _, m := range b.Movies {
			if s.selection.Includes(m.Genre) {
				included++
			}
		}
		resp.Years[i] = YearResponse{Year: b.Year, Count: b.Count(), Included: included}
	}

	return &ListYearsOutput{Body: resp}, nil
}

func (s *Server) movieResponse(m domain.Movie) MovieResponse {
	resp := MovieResponse{
		Name:     m.Name,
		Genre:    m.Genre,
		Director: m.Director,
		Year:     m.Year,
		Votes:    m.Votes,
		Gross:    m.Gross,
		Selected: s.selection.IsSelected(m.Name),
		Included: s.selection.Includes(m.Genre),
		Tooltip:  m.Tooltip(),
	}
	if m.HasScore {
		score := m.Score
		resp.Score = &score
	}
	return resp
}

// resolveGenre accepts a genre label or slug and returns the label.
// Labels outside the closed set are accepted when the loaded data has them.
func (s *Server) resolveGenre(raw string) (string, error) {
	if label, ok := genre.FromSlug(raw); ok {
		return label, nil
	}
	slug := genre.Slugify(raw)
	for _, g := range s.store.Genres() {
		if g == raw || genre.Slugify(g) == slug {
			return g, nil
		}
	}
	return "", domainerrors.NotFoundf("genre %q not found", raw)
}
