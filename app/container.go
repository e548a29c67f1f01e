package app

import (
	"log/slog"
	"time"

	"github.com/snapsolve/snapsolve-go/capture"
	"github.com/snapsolve/snapsolve-go/config"
	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/region"
	"github.com/snapsolve/snapsolve-go/domain/session"
	"github.com/snapsolve/snapsolve-go/solver"
	"github.com/snapsolve/snapsolve-go/ui/model"
	"github.com/snapsolve/snapsolve-go/ui/presenter"
	"github.com/snapsolve/snapsolve-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *handle.Registry
	Solver   *solver.Client
	FSM      *session.FSM
	Busy     *model.BusyModel
	Stats    *model.StatsModel
	RootView *view.RootView

	// Presenters
	State  *presenter.StatePresenter
	Submit *presenter.SubmitPresenter
	StatsP *presenter.StatsPresenter
	Loop   *presenter.Loop
}

// BuildContainer constructs all components except the widget tree, which the
// app builds later on the Tk thread. apiKey comes from the environment.
func BuildContainer(cfg *config.Config, cfgPath, apiKey string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Registry = handle.NewRegistry()
	client, err := solver.New(solver.Config{
		APIKey:    apiKey,
		BaseURL:   cfg.SolverBaseURL,
		Model:     cfg.SolverModel,
		CacheSize: cfg.SolveCacheSize,
		Timeout:   time.Duration(cfg.SolverTimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	c.Solver = client
	c.FSM = session.NewFSM(logger, c.Registry, client, session.ExtractOptions{
		Density:   cfg.Density,
		MediaType: cfg.CropMediaType,
	})
	c.Busy = &model.BusyModel{}
	c.Stats = model.NewStatsModel()
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.State = presenter.NewStatePresenter(c.FSM, c.Registry, c.Busy, c.Stats, c.RootView)
	c.Submit = presenter.NewSubmitPresenter(c.FSM, c.Busy, snapSource, logger)
	c.StatsP = presenter.NewStatsPresenter(c.Stats, c.RootView)
	c.FSM.AddListener(c.State.OnState)
	return c, nil
}

// snapSource grabs the primary screen as a problem source image.
func snapSource() (*region.SourceImage, error) {
	raster, err := capture.Snap()
	if err != nil {
		return nil, err
	}
	return region.FromRaster(raster, "image/png")
}
