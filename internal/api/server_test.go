package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/ratelimit"
	"github.com/listenupapp/moviescope/internal/search"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/sse"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/view"
)

// testMovies is a small dataset spanning three genres and one pre-2010 row.
const testMovies = `Name,Genre,Year,Score,Votes,Gross,Director
Inception,Sci-Fi,2010,8.8,2400000,836848102,Christopher Nolan
The Dark Knight Rises,Action,2012,8.4,1700000,1081142612,Christopher Nolan
Her,Drama,2013,8.0,640000,48300000,Spike Jonze
The Grand Budapest Hotel,Comedy,2014,8.1,830000,174800000,Wes Anderson
Superbad,Comedy,2007,7.6,600000,170800000,Greg Mottola
`

// testEnvelope is the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api        humatest.TestAPI
	datasetDir string
	recorder   *view.RecordingRenderer
}

type testOption func(*testDeps)

type testDeps struct {
	gestureRate  float64
	gestureBurst int
}

func withGestureLimit(rps float64, burst int) testOption {
	return func(d *testDeps) {
		d.gestureRate = rps
		d.gestureBurst = burst
	}
}

// setupTestServer wires a server over the test dataset the way the
// application does and loads the dataset once.
func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	deps := testDeps{gestureRate: 1000, gestureBurst: 1000}
	for _, opt := range opts {
		opt(&deps)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(testMovies), 0o600))

	st := store.New(logger)
	sel := selection.New()
	b := bus.New(logger)

	sseManager := sse.NewManager(logger, sse.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go sseManager.Start(ctx)
	t.Cleanup(func() {
		_ = sseManager.Shutdown(context.Background())
		cancel()
	})
	require.NoError(t, sse.Mirror(b, sseManager, logger))

	recorder := view.NewRecordingRenderer()
	views, err := view.Build(view.DefaultConfigs(), view.Deps{
		Store:     st,
		Selection: sel,
		Bus:       b,
		Renderer:  view.Renderers{recorder, sse.NewFrameRenderer(sseManager)},
		Logger:    logger,
	})
	require.NoError(t, err)
	t.Cleanup(views.Close)

	index, err := search.NewIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	dashboard := service.NewDashboard(st, sel, b, views, logger)
	searchService, err := service.NewSearchService(index, st, sel, b, logger)
	require.NoError(t, err)
	datasetService := service.NewDatasetService(path, 2010, dashboard, logger)

	limiter := ratelimit.New(deps.gestureRate, deps.gestureBurst)
	t.Cleanup(limiter.Stop)

	s := NewServer(Deps{
		Store:     st,
		Selection: sel,
		Views:     views,
		Services: &Services{
			Dashboard: dashboard,
			Search:    searchService,
			Dataset:   datasetService,
		},
		SSEManager: sseManager,
		Limiter:    limiter,
		Logger:     logger,
	}, Options{Title: "MovieScope API Test"})

	_, err = datasetService.Reload(context.Background())
	require.NoError(t, err)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.API()),
		datasetDir: dir,
		recorder:   recorder,
	}
}

// decode unmarshals an envelope response body.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	require.Equal(t, EnvelopeVersion, env.Version)
	return env
}
