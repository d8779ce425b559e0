package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component states, ordered from best to worst.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

var statusRank = map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}

func (s *Server) registerHealthRoutes() {
	for _, route := range []struct{ id, path string }{
		{"healthCheck", "/health"},
		{"healthCheckV1", "/api/v1/health"},
	} {
		huma.Register(s.api, huma.Operation{
			OperationID: route.id,
			Method:      http.MethodGet,
			Path:        route.path,
			Summary:     "Health check",
			Description: "Reports dataset, search index, view and stream status",
			Tags:        []string{"Health"},
		}, s.handleHealthCheck)
	}
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" enum:"healthy,degraded,unhealthy" doc:"Component status"`
	Latency string `json:"latency,omitempty" doc:"Time the check took"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse is the worst component status plus the per-component detail.
type HealthResponse struct {
	Status     string                     `json:"status" enum:"healthy,degraded,unhealthy"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"dataset": s.checkDataset(),
		"search":  s.checkSearchIndex(),
		"views":   s.checkViews(),
		"sse":     s.checkSSEManager(),
	}

	overall := statusHealthy
	for _, c := range components {
		if statusRank[c.Status] > statusRank[overall] {
			overall = c.Status
		}
	}

	return &HealthOutput{Body: HealthResponse{Status: overall, Components: components}}, nil
}

func (s *Server) checkDataset() ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "record store not configured"}
	}
	loadedAt := s.store.LoadedAt()
	if loadedAt.IsZero() {
		return ComponentHealth{Status: statusDegraded, Message: "no dataset loaded"}
	}
	age := time.Since(loadedAt).Round(time.Second)
	return ComponentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d movies, %d active, loaded %s ago", len(s.store.Base()), len(s.store.Active()), age),
	}
}

// checkSearchIndex times a document count against the Bleve index.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search service not configured"}
	}

	start := time.Now()
	docs, err := s.services.Search.DocumentCount()
	h := ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String()}
	switch {
	case err != nil:
		h.Status, h.Message = statusUnhealthy, "search index unreachable"
	case docs == 0:
		h.Status, h.Message = statusDegraded, "search index empty"
	default:
		h.Message = fmt.Sprintf("%d documents", docs)
	}
	return h
}

// checkViews flags views that have never produced a frame.
func (s *Server) checkViews() ComponentHealth {
	if s.views == nil {
		return ComponentHealth{Status: statusDegraded, Message: "no views registered"}
	}
	views := s.views.List()
	var stale []string
	for _, c := range views {
		if c.Frame().Seq == 0 {
			stale = append(stale, c.ID())
		}
	}
	if len(stale) > 0 {
		return ComponentHealth{Status: statusDegraded, Message: fmt.Sprintf("not rendered yet: %v", stale)}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d views rendered", len(views))}
}

func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{Status: statusDegraded, Message: "SSE manager not configured"}
	}
	return ComponentHealth{Status: statusHealthy, Message: formatSSEStatus(s.sseManager.ClientCount())}
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return fmt.Sprintf("%d connected clients", count)
	}
}
