package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/flowerfield/internal/field"
	"github.com/rook-computer/flowerfield/internal/metrics"
	"github.com/rook-computer/flowerfield/internal/state"
	"github.com/rook-computer/flowerfield/internal/web"
)

type recordingDisplay struct {
	mu      sync.Mutex
	started bool
	stopped bool
	shown   int
}

func (d *recordingDisplay) Start(ctx context.Context) error {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()
	return nil
}

func (d *recordingDisplay) Stop() error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	return nil
}

func (d *recordingDisplay) Show(img image.Image) error {
	d.mu.Lock()
	d.shown++
	d.mu.Unlock()
	return nil
}

func newTestApp(t *testing.T) (*App, *recordingDisplay, chan state.FrameInfo) {
	t.Helper()
	display := &recordingDisplay{}
	a := New(state.NewStore(field.DefaultConfig()), display)
	a.Width, a.Height = 192, 108
	a.Seeds = func() uint64 { return 7 }
	frames := make(chan state.FrameInfo, 16)
	a.OnFrame = func(info state.FrameInfo) { frames <- info }
	return a, display, frames
}

func waitFrame(t *testing.T, frames chan state.FrameInfo) state.FrameInfo {
	t.Helper()
	select {
	case info := <-frames:
		return info
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return state.FrameInfo{}
	}
}

func runApp(t *testing.T, a *App) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel, done
}

func TestRunPaintsInitialFrame(t *testing.T) {
	a, display, frames := newTestApp(t)
	a.FirstSeed = 42
	runApp(t, a)

	info := waitFrame(t, frames)
	require.Equal(t, "load", info.Trigger)
	require.Equal(t, uint64(42), info.Seed)
	require.Equal(t, 192, info.Width)
	require.Equal(t, 108, info.Height)
	require.NotEmpty(t, info.ID)

	png, published, ok := a.FramePNG()
	require.True(t, ok)
	require.Equal(t, info.ID, published.ID)
	require.Equal(t, []byte("\x89PNG"), png[:4])
	require.Equal(t, state.IDLE, a.Snapshot().Phase)

	display.mu.Lock()
	defer display.mu.Unlock()
	require.True(t, display.started)
	require.Equal(t, 1, display.shown)
}

func TestRedrawUsesExplicitSeed(t *testing.T) {
	a, _, frames := newTestApp(t)
	runApp(t, a)
	first := waitFrame(t, frames)
	require.Equal(t, uint64(7), first.Seed)

	seed := uint64(99)
	a.Redraw(&seed)
	next := waitFrame(t, frames)
	require.Equal(t, "redraw", next.Trigger)
	require.Equal(t, uint64(99), next.Seed)
	require.NotEqual(t, first.ID, next.ID)
}

func TestUpdateConfigTriggersPass(t *testing.T) {
	a, _, frames := newTestApp(t)
	reg, err := metrics.New(metrics.Config{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	a.Metrics = reg
	runApp(t, a)
	waitFrame(t, frames)

	maxFlowers := 30.0
	cfg, err := a.UpdateConfig(field.Controls{NumFlowersMax: &maxFlowers})
	require.NoError(t, err)
	require.Equal(t, 30.0, cfg.NumFlowers.Max)

	info := waitFrame(t, frames)
	require.Equal(t, "config", info.Trigger)
	require.LessOrEqual(t, info.Flowers, 30)
	require.Equal(t, 1.0, testutil.ToFloat64(reg.ConfigUpdates.WithLabelValues("ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(reg.RendersTotal.WithLabelValues("load"))+testutil.ToFloat64(reg.RendersTotal.WithLabelValues("config")))
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	a, _, _ := newTestApp(t)
	stemMax := 10.0
	_, err := a.UpdateConfig(field.Controls{StemHeightMax: &stemMax})
	require.Error(t, err)

	cfg, rev := a.Store.Config()
	require.Equal(t, uint64(0), rev)
	require.Equal(t, field.DefaultConfig().StemHeight, cfg.StemHeight)
	require.Nil(t, a.takePending())
}

func TestResetConfig(t *testing.T) {
	a, _, _ := newTestApp(t)
	maxFlowers := 40.0
	_, err := a.UpdateConfig(field.Controls{NumFlowersMax: &maxFlowers})
	require.NoError(t, err)

	cfg, err := a.ResetConfig()
	require.NoError(t, err)
	require.Equal(t, field.DefaultConfig().NumFlowers, cfg.NumFlowers)
}

func TestRequestsCoalesce(t *testing.T) {
	a, _, _ := newTestApp(t)
	one, two := uint64(1), uint64(2)
	a.Request(TriggerRedraw, &one)
	a.Request(TriggerKey, &two)
	a.Request(TriggerRedraw, nil)

	req := a.takePending()
	require.NotNil(t, req)
	require.Equal(t, TriggerRedraw, req.trigger)
	require.False(t, req.hasSeed)
	require.Nil(t, a.takePending())
}

func TestExitStopsRun(t *testing.T) {
	a, display, frames := newTestApp(t)
	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()
	waitFrame(t, frames)

	wantErr := errors.New("bye")
	a.Exit(wantErr)
	a.Exit(errors.New("ignored"))
	select {
	case err := <-done:
		require.ErrorIs(t, err, wantErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	display.mu.Lock()
	require.True(t, display.stopped)
	display.mu.Unlock()
}

func TestRenderSeedIsDeterministic(t *testing.T) {
	a, _, _ := newTestApp(t)
	first, err := a.RenderSeed(context.Background(), 5)
	require.NoError(t, err)
	second, err := a.RenderSeed(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, first.(*image.RGBA).Pix, second.(*image.RGBA).Pix)

	_, _, ok := a.FramePNG()
	require.False(t, ok)
}

func TestRenderSeedWaitsForRunningPass(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.passSlot <- struct{}{}

	done := make(chan error, 1)
	go func() {
		_, err := a.RenderSeed(context.Background(), 5)
		done <- err
	}()
	select {
	case <-done:
		t.Fatal("render ran while another pass held the slot")
	case <-time.After(100 * time.Millisecond):
	}

	<-a.passSlot
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("render never ran")
	}
}

func TestRenderSeedGivesUpWhenCancelled(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.passSlot <- struct{}{}
	defer func() { <-a.passSlot }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.RenderSeed(ctx, 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentRenderRequests(t *testing.T) {
	a, _, frames := newTestApp(t)
	runApp(t, a)
	waitFrame(t, frames)

	srv := httptest.NewServer(web.NewDefaultMux(a, nil, web.Options{Gatherer: prometheus.NewRegistry()}))
	defer srv.Close()

	const clients = 6
	bodies := make([][]byte, clients)
	codes := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				a.Redraw(nil)
			}
			resp, err := http.Get(srv.URL + "/api/v1/render.png?seed=3")
			if err != nil {
				return
			}
			defer resp.Body.Close()
			codes[i] = resp.StatusCode
			bodies[i], _ = io.ReadAll(resp.Body)
		}(i)
	}
	wg.Wait()

	for i := 0; i < clients; i++ {
		require.Equal(t, http.StatusOK, codes[i])
		require.True(t, bytes.Equal(bodies[0], bodies[i]), "response %d differs", i)
	}
	require.Len(t, a.passSlot, 0)
}
