package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/view"
)

func (s *Server) registerViewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listViews",
		Method:      http.MethodGet,
		Path:        "/api/v1/views",
		Summary:     "List views",
		Description: "Returns every registered view with its configuration and brush state",
		Tags:        []string{"Views"},
	}, s.handleListViews)

	huma.Register(s.api, huma.Operation{
		OperationID: "getViewFrame",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/{id}",
		Summary:     "Get view frame",
		Description: "Returns the most recent frame the view rendered",
		Tags:        []string{"Views"},
		Errors:      []int{http.StatusNotFound},
	}, s.handleGetViewFrame)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "brushView",
		Method:      http.MethodPost,
		Path:        "/api/v1/views/{id}/brush",
		Summary:     "Brush view",
		Description: "Narrows a scatter view to a pixel interval on one or both axes",
		Tags:        []string{"Views"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}), s.handleBrushView)

	huma.Register(s.api, s.gestureOperation(huma.Operation{
		OperationID: "clearViewBrush",
		Method:      http.MethodDelete,
		Path:        "/api/v1/views/{id}/brush",
		Summary:     "Clear brush",
		Description: "Returns a scatter view to its full domain",
		Tags:        []string{"Views"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}), s.handleClearViewBrush)
}

// === DTOs ===

// ViewSummary describes one view without its frame.
type ViewSummary struct {
	ID        string        `json:"id"`
	Kind      view.Kind     `json:"kind"`
	Title     string        `json:"title"`
	Brushable bool          `json:"brushable"`
	FocusOf   string        `json:"focus_of,omitempty"`
	Focus     string        `json:"focus,omitempty" doc:"Focus view driven by this view's brush"`
	Window    *brush.Window `json:"window,omitempty"`
	Seq       uint64        `json:"seq" doc:"Sequence number of the last frame"`
}

// ViewsResponse lists the registered views.
type ViewsResponse struct {
	Views []ViewSummary `json:"views"`
}

// ListViewsOutput wraps the view list for Huma.
type ListViewsOutput struct {
	Body ViewsResponse
}

// ViewInput identifies a view.
type ViewInput struct {
	ID string `path:"id" doc:"View ID"`
}

// FrameOutput wraps a view frame for Huma.
type FrameOutput struct {
	Body view.Frame
}

// BrushRequest is a brush gesture in pixel coordinates.
type BrushRequest struct {
	X *[2]float64 `json:"x,omitempty" doc:"Pixel interval on the x axis, either order"`
	Y *[2]float64 `json:"y,omitempty" doc:"Pixel interval on the y axis, either order"`
}

// BrushInput wraps the brush request for Huma.
type BrushInput struct {
	ID   string `path:"id" doc:"View ID"`
	Body BrushRequest
}

// === Handlers ===

func (s *Server) handleListViews(_ context.Context, _ *struct{}) (*ListViewsOutput, error) {
	views := s.views.List()
	resp := ViewsResponse{Views: make([]ViewSummary, len(views))}
	for i, v := range views {
		resp.Views[i] = viewSummary(v)
	}
	return &ListViewsOutput{Body: resp}, nil
}

func (s *Server) handleGetViewFrame(_ context.Context, input *ViewInput) (*FrameOutput, error) {
	v, err := s.views.Get(input.ID)
	if err != nil {
		return nil, problem(err)
	}
	return &FrameOutput{Body: v.Frame()}, nil
}

func (s *Server) handleBrushView(ctx context.Context, input *BrushInput) (*FrameOutput, error) {
	req := service.BrushRequest{
		X: pixelRange(input.Body.X),
		Y: pixelRange(input.Body.Y),
	}
	if err := s.services.Dashboard.Brush(ctx, input.ID, req); err != nil {
		return nil, problem(err)
	}
	return s.frameOutput(input.ID)
}

func (s *Server) handleClearViewBrush(ctx context.Context, input *ViewInput) (*FrameOutput, error) {
	if err := s.services.Dashboard.ClearBrush(ctx, input.ID); err != nil {
		return nil, problem(err)
	}
	return s.frameOutput(input.ID)
}

func (s *Server) frameOutput(viewID string) (*FrameOutput, error) {
	v, err := s.views.Get(viewID)
	if err != nil {
		return nil, problem(err)
	}
	return &FrameOutput{Body: v.Frame()}, nil
}

func viewSummary(v *view.Coordinator) ViewSummary {
	cfg := v.Config()
	summary := ViewSummary{
		ID:        cfg.ID,
		Kind:      cfg.Kind,
		Title:     cfg.Title,
		Brushable: v.Brushable(),
		FocusOf:   cfg.FocusOf,
		Seq:       v.Frame().Seq,
	}
	if focus, ok := v.Focus(); ok {
		summary.Focus = focus
	}
	if w, ok := v.Window(); ok {
		summary.Window = &w
	}
	return summary
}

func pixelRange(px *[2]float64) *brush.Range {
	if px == nil {
		return nil
	}
	return &brush.Range{Min: px[0], Max: px[1]}
}
