package app

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/flowerfield/internal/field"
	"github.com/rook-computer/flowerfield/internal/metrics"
	"github.com/rook-computer/flowerfield/internal/render"
	"github.com/rook-computer/flowerfield/internal/state"
	"github.com/rook-computer/flowerfield/internal/system"
)

// Trigger names what asked for a new pass.
type Trigger string

const (
	TriggerLoad   Trigger = "load"
	TriggerRedraw Trigger = "redraw"
	TriggerKey    Trigger = "key"
	TriggerConfig Trigger = "config"
)

type request struct {
	trigger Trigger
	seed    uint64
	hasSeed bool
}

// App owns the render loop. Passes run one at a time on the goroutine that
// called Run; triggers that arrive while a pass is running collapse into a
// single follow-up pass.
type App struct {
	Store    *state.Store
	Display  render.Display
	Logger   Logger
	Metrics  *metrics.Registry
	Defaults field.Config
	Caption  bool
	Width    int
	Height   int
	// FirstSeed fixes the seed of the initial pass when non-zero.
	FirstSeed uint64
	// Console switches the active VT to graphics mode while running.
	Console bool
	// Seeds picks seeds for passes without an explicit one.
	Seeds func() uint64
	// OnFrame is called after every published frame.
	OnFrame func(state.FrameInfo)

	mu      sync.Mutex
	pending *request
	wake    chan struct{}
	// passSlot admits one pass at a time, published or not.
	passSlot chan struct{}

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, display render.Display) *App {
	if display == nil {
		display = render.NoopDisplay{}
	}
	cfg, _ := store.Config()
	return &App{
		Store:    store,
		Display:  display,
		Logger:   NoopLogger{},
		Defaults: cfg,
		Width:    render.CanvasWidth,
		Height:   render.CanvasHeight,
		Seeds:    rand.Uint64,
		wake:     make(chan struct{}, 1),
		passSlot: make(chan struct{}, 1),
		exitCh:   make(chan error, 1),
	}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Request schedules a pass. A nil seed picks a fresh one. If a pass is
// already pending it is replaced.
func (app *App) Request(trigger Trigger, seed *uint64) {
	req := &request{trigger: trigger}
	if seed != nil {
		req.seed, req.hasSeed = *seed, true
	}
	app.mu.Lock()
	app.pending = req
	app.mu.Unlock()
	select {
	case app.wake <- struct{}{}:
	default:
	}
}

func (app *App) takePending() *request {
	app.mu.Lock()
	defer app.mu.Unlock()
	req := app.pending
	app.pending = nil
	return req
}

// Run paints the initial frame and then serves triggers until ctx is done
// or Exit is called.
func (app *App) Run(ctx context.Context) error {
	if err := app.Display.Start(ctx); err != nil {
		app.Logger.Errorf("app", "display start error: %v", err)
		return err
	}
	defer app.Display.Stop()

	if app.Console {
		_ = system.SetGraphicsModeWithLog(app.Logger)
		_ = system.HideCursorWithLog(app.Logger)
		defer func() { _ = system.ShowCursorWithLog(app.Logger); _ = system.RestoreTextModeWithLog(app.Logger) }()
	}

	app.Store.SetPhase(state.IDLE)
	if app.FirstSeed != 0 {
		seed := app.FirstSeed
		app.Request(TriggerLoad, &seed)
	} else {
		app.Request(TriggerLoad, nil)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-app.exitCh:
			return err
		case <-app.wake:
		}
		req := app.takePending()
		if req == nil {
			continue
		}
		seed := req.seed
		if !req.hasSeed {
			seed = app.Seeds()
		}
		if _, err := app.RenderOnce(req.trigger, seed); err != nil {
			app.Logger.Errorf("render", "%s pass failed: %v", req.trigger, err)
		}
	}
}

// RenderOnce runs a single pass with the current configuration snapshot and
// publishes it.
func (app *App) RenderOnce(trigger Trigger, seed uint64) (state.FrameInfo, error) {
	app.passSlot <- struct{}{}
	defer func() { <-app.passSlot }()

	cfg, rev := app.Store.Config()
	app.Store.SetPhase(state.RENDERING)

	frame := render.RenderPass(render.PassOptions{
		Config:  cfg,
		Seed:    seed,
		Width:   app.Width,
		Height:  app.Height,
		Caption: app.Caption,
	})
	png, err := render.EncodePNG(frame.Image, 0)
	if err != nil {
		err = fmt.Errorf("encode frame: %w", err)
		app.Store.SetError(err)
		return state.FrameInfo{}, err
	}
	if err := app.Display.Show(frame.Image); err != nil {
		app.Logger.Errorf("display", "show frame %s: %v", frame.ID, err)
	}

	info := state.FrameInfo{
		ID:         frame.ID,
		Seed:       frame.Seed,
		Flowers:    frame.Flowers,
		Trigger:    string(trigger),
		RenderedAt: frame.RenderedAt,
		Duration:   frame.Duration,
		Width:      frame.Image.Bounds().Dx(),
		Height:     frame.Image.Bounds().Dy(),
	}
	app.Store.PublishFrame(info, png)
	app.Metrics.ObservePass(string(trigger), frame.Flowers, frame.Duration.Seconds())
	app.Logger.Infof("render", "%s pass seed=%d flowers=%d rev=%d took=%s", trigger, seed, frame.Flowers, rev, frame.Duration)
	if app.OnFrame != nil {
		app.OnFrame(info)
	}
	return info, nil
}

// Snapshot returns the current app state.
func (app *App) Snapshot() state.State { return app.Store.Snapshot() }

// FramePNG returns the last published frame.
func (app *App) FramePNG() ([]byte, state.FrameInfo, bool) { return app.Store.FramePNG() }

// UpdateConfig applies ctl and, when it validates, schedules a redraw.
func (app *App) UpdateConfig(ctl field.Controls) (field.Config, error) {
	cfg, err := app.Store.UpdateConfig(ctl)
	app.Metrics.ObserveConfigUpdate(err)
	if err != nil {
		app.Logger.Infof("config", "update rejected: %v", err)
		return cfg, err
	}
	app.Logger.Infof("config", "update applied")
	app.Request(TriggerConfig, nil)
	return cfg, nil
}

// ResetConfig restores the startup configuration and schedules a redraw.
func (app *App) ResetConfig() (field.Config, error) {
	if err := app.Store.ReplaceConfig(app.Defaults); err != nil {
		app.Metrics.ObserveConfigUpdate(err)
		return field.Config{}, err
	}
	app.Metrics.ObserveConfigUpdate(nil)
	app.Request(TriggerConfig, nil)
	cfg, _ := app.Store.Config()
	return cfg, nil
}

// Redraw schedules a new pass. A nil seed picks a fresh one.
func (app *App) Redraw(seed *uint64) { app.Request(TriggerRedraw, seed) }

// RenderSeed renders seed with the current configuration without publishing
// the result. It waits for any running pass to finish first and gives up
// when ctx is done.
func (app *App) RenderSeed(ctx context.Context, seed uint64) (image.Image, error) {
	select {
	case app.passSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-app.passSlot }()

	cfg, _ := app.Store.Config()
	frame := render.RenderPass(render.PassOptions{
		Config:  cfg,
		Seed:    seed,
		Width:   app.Width,
		Height:  app.Height,
		Caption: app.Caption,
	})
	return frame.Image, nil
}
