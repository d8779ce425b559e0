package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/moviescope/internal/service"
)

func (s *Server) registerDatasetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDataset",
		Method:      http.MethodGet,
		Path:        "/api/v1/dataset",
		Summary:     "Get dataset info",
		Description: "Returns where the dataset comes from and what is loaded",
		Tags:        []string{"Dataset"},
	}, s.handleGetDataset)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "reloadDataset",
		Method:      http.MethodPost,
		Path:        "/api/v1/dataset/reload",
		Summary:     "Reload dataset",
		Description: "Reads the dataset file again. Selection and genre filter are reset and every view redraws.",
		Tags:        []string{"Dataset"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}), s.handleReloadDataset)
}

// DatasetResponse describes the loaded dataset.
type DatasetResponse struct {
	Path     string    `json:"path"`
	Movies   int       `json:"movies"`
	Genres   []string  `json:"genres"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
}

// DatasetOutput wraps dataset info for Huma.
type DatasetOutput struct {
	Body DatasetResponse
}

// ReloadOutput wraps a load report for Huma.
type ReloadOutput struct {
	Body service.LoadReport
}

func (s *Server) handleGetDataset(_ context.Context, _ *struct{}) (*DatasetOutput, error) {
	genres := s.store.Genres()
	if genres == nil {
		genres = []string{}
	}
	return &DatasetOutput{Body: DatasetResponse{
		Path:     s.services.Dataset.Path(),
		Movies:   len(s.store.Base()),
		Genres:   genres,
		LoadedAt: s.store.LoadedAt(),
	}}, nil
}

func (s *Server) handleReloadDataset(ctx context.Context, _ *struct{}) (*ReloadOutput, error) {
	report, err := s.services.Dataset.Reload(ctx)
	if err != nil {
		return nil, problem(err)
	}
	return &ReloadOutput{Body: report}, nil
}
