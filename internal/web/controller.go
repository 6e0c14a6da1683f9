package web

import (
	"context"
	"image"

	"github.com/rook-computer/flowerfield/internal/field"
	"github.com/rook-computer/flowerfield/internal/state"
)

// Controller is what the API drives. app.App implements it.
type Controller interface {
	Snapshot() state.State
	FramePNG() ([]byte, state.FrameInfo, bool)
	UpdateConfig(ctl field.Controls) (field.Config, error)
	ResetConfig() (field.Config, error)
	Redraw(seed *uint64)
	RenderSeed(ctx context.Context, seed uint64) (image.Image, error)
}

// Logger matches app.Logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}
