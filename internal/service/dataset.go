package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/moviescope/internal/dataset"
	"github.com/listenupapp/moviescope/internal/id"
)

// DatasetService reloads the dashboard from the dataset file.
type DatasetService struct {
	path      string
	minYear   int
	dashboard *Dashboard
	logger    *slog.Logger
}

// NewDatasetService creates a loader for the CSV file at path.
func NewDatasetService(path string, minYear int, dashboard *Dashboard, logger *slog.Logger) *DatasetService {
	return &DatasetService{path: path, minYear: minYear, dashboard: dashboard, logger: logger}
}

// Path returns the dataset file path.
func (s *DatasetService) Path() string {
	return s.path
}

// Reload reads the dataset file and installs it.
func (s *DatasetService) Reload(ctx context.Context) (LoadReport, error) {
	logger := s.logger.With(slog.String("load_id", id.MustGenerate(id.PrefixLoad)))

	rows, err := dataset.LoadCSV(s.path)
	if err != nil {
		logger.Error("dataset read failed", slog.String("path", s.path), slog.String("error", err.Error()))
		return LoadReport{}, err
	}

	report, err := s.dashboard.Load(ctx, rows, s.minYear)
	if err != nil {
		return report, err
	}

	logger.Info("dataset loaded",
		slog.String("path", s.path),
		slog.Int("movies", report.Loaded),
		slog.Int("dropped", len(report.Dropped)),
		slog.Int("below_min_year", report.BelowMinYear))
	return report, nil
}
