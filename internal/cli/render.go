package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rook-computer/flowerfield/internal/app"
	"github.com/rook-computer/flowerfield/internal/render"
	"github.com/rook-computer/flowerfield/internal/state"
)

func newRenderCommand(opts *rootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render flower fields to PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1 (got %d)", count)
			}
			conf, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			store := state.NewStore(conf.Field)
			a := app.New(store, nil)
			a.Logger = logger
			a.Caption = conf.Render.Caption
			a.Width, a.Height = conf.Render.Width, conf.Render.Height

			seed := conf.Render.Seed
			if seed == 0 {
				seed = rand.Uint64()
			}
			for i := 0; i < count; i++ {
				if _, err := a.RenderOnce(app.TriggerLoad, seed+uint64(i)); err != nil {
					return err
				}
				png, info, _ := store.FramePNG()
				path := outputPath(conf.Render.Output, i, count)
				if err := os.WriteFile(path, png, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				logger.Infof("render", "wrote %s (seed=%d flowers=%d)", path, info.Seed, info.Flowers)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&count, "count", 1, "number of frames to render with consecutive seeds")
	f.Uint64("render.seed", 0, "seed of the first frame; 0 picks one at random")
	f.Bool("render.caption", false, "draw the seed and flower count in the corner")
	f.Int("render.width", render.CanvasWidth, "output width in pixels")
	f.Int("render.height", render.CanvasHeight, "output height in pixels")
	f.StringP("render.output", "o", "flowers.png", "output PNG path")
	f.String("field.variation", "full", "colour variation: full or mono")
	return cmd
}

// outputPath numbers frames when more than one is rendered.
func outputPath(base string, index, count int) string {
	if count <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(base, ext), index+1, ext)
}
