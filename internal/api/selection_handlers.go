package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/moviescope/internal/service"
)

func (s *Server) registerSelectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/selection",
		Summary:     "Get selection",
		Description: "Returns the selected movies and the active genre filter",
		Tags:        []string{"Selection"},
	}, s.handleGetSelection)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "toggleMovie",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/toggle",
		Summary:     "Toggle movie",
		Description: "Selects a movie, or deselects it when already selected",
		Tags:        []string{"Selection"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}), s.handleToggleMovie)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "resetSelection",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/reset",
		Summary:     "Reset selection",
		Description: "Clears the selection and the genre filter",
		Tags:        []string{"Selection"},
	}), s.handleResetSelection)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "toggleGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres/{genre}/toggle",
		Summary:     "Toggle genre",
		Description: "Adds a genre to the filter, or removes it when already active",
		Tags:        []string{"Genres"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}), s.handleToggleGenre)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "setActiveGenres",
		Method:      http.MethodPut,
		Path:        "/api/v1/genres/active",
		Summary:     "Set active genres",
		Description: "Replaces the genre filter. An empty list shows every genre.",
		Tags:        []string{"Genres"},
		Errors:      []int{http.StatusBadRequest},
	}), s.handleSetActiveGenres)
}

// === DTOs ===

// SelectionOutput wraps the selection state for Huma.
type SelectionOutput struct {
	Body service.State
}

// ToggleMovieRequest is the request body for toggling a movie.
type ToggleMovieRequest struct {
	Name string `json:"name" minLength:"1" doc:"Movie name"`
}

// ToggleMovieInput wraps the toggle request for Huma.
type ToggleMovieInput struct {
	Body ToggleMovieRequest
}

// ToggleMovieResponse reports the movie's new selection state.
type ToggleMovieResponse struct {
	Name     string        `json:"name"`
	Selected bool          `json:"selected"`
	State    service.State `json:"state"`
}

// ToggleMovieOutput wraps the toggle response for Huma.
type ToggleMovieOutput struct {
	Body ToggleMovieResponse
}

// ToggleGenreInput identifies a genre by label or slug.
type ToggleGenreInput struct {
	Genre string `path:"genre" doc:"Genre slug, e.g. sci-fi"`
}

// SetActiveGenresRequest is the request body for replacing the filter.
type SetActiveGenresRequest struct {
	Genres []string `json:"genres" doc:"Genre labels or slugs"`
}

// SetActiveGenresInput wraps the filter request for Huma.
type SetActiveGenresInput struct {
	Body SetActiveGenresRequest
}

// ActiveGenresResponse is the genre filter after a change.
type ActiveGenresResponse struct {
	ActiveGenres []string `json:"active_genres"`
	Active       int      `json:"active" doc:"Movies passing the filter"`
}

// ActiveGenresOutput wraps the filter response for Huma.
type ActiveGenresOutput struct {
	Body ActiveGenresResponse
}

// === Handlers ===

func (s *Server) handleGetSelection(_ context.Context, _ *struct{}) (*SelectionOutput, error) {
	return &SelectionOutput{Body: s.services.Dashboard.State()}, nil
}

func (s *Server) handleToggleMovie(ctx context.Context, input *ToggleMovieInput) (*ToggleMovieOutput, error) {
	selected, err := s.services.Dashboard.ToggleMovie(ctx, input.Body.Name)
	if err != nil {
		return nil, problem(err)
	}

	return &ToggleMovieOutput{Body: ToggleMovieResponse{
		Name:     input.Body.Name,
		Selected: selected,
		State:    s.services.Dashboard.State(),
	}}, nil
}

func (s *Server) handleResetSelection(ctx context.Context, _ *struct{}) (*SelectionOutput, error) {
	if err := s.services.Dashboard.Reset(ctx); err != nil {
		return nil, problem(err)
	}
	return &SelectionOutput{Body: s.services.Dashboard.State()}, nil
}

func (s *Server) handleToggleGenre(ctx context.Context, input *ToggleGenreInput) (*ActiveGenresOutput, error) {
	label, err := s.resolveGenre(input.Genre)
	if err != nil {
		return nil, problem(err)
	}

	active, err := s.services.Dashboard.ToggleGenre(ctx, label)
	if err != nil {
		return nil, problem(err)
	}

	return s.activeGenresOutput(active), nil
}

func (s *Server) handleSetActiveGenres(ctx context.Context, input *SetActiveGenresInput) (*ActiveGenresOutput, error) {
	labels := make([]string, 0, len(input.Body.Genres))
	for _, raw := range input.Body.Genres {
		label, err := s.resolveGenre(raw)
		if err != nil {
			// Let the dashboard report every unknown genre at once.
			label = raw
		}
		labels = append(labels, label)
	}

	active, err := s.services.Dashboard.SetActiveGenres(ctx, labels)
	if err != nil {
		return nil, problem(err)
	}

	return s.activeGenresOutput(active), nil
}

func (s *Server) activeGenresOutput(active []string) *ActiveGenresOutput {
	if active == nil {
		active = []string{}
	}
	return &ActiveGenresOutput{Body: ActiveGenresResponse{
		ActiveGenres: active,
		Active:       s.store.Index().Total,
	}}
}
