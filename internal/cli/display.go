package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rook-computer/flowerfield/internal/app"
	"github.com/rook-computer/flowerfield/internal/render"
	"github.com/rook-computer/flowerfield/internal/system"
)

func newDisplayCommand(opts *rootOptions) *cobra.Command {
	var withHTTP bool
	cmd := &cobra.Command{
		Use:   "display",
		Short: "Show the field on the Linux framebuffer; R redraws, F4 exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			fbDisplay := render.NewFBDisplay(conf.Display.Device)
			fbDisplay.Logger = logger

			svc, err := newService(conf, logger, fbDisplay)
			if err != nil {
				return err
			}
			svc.app.Console = true

			if conf.Display.Keyboard {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				system.StartKeyboard(ctx, logger, system.KeyHandlers{
					OnRedraw: func() { svc.app.Request(app.TriggerKey, nil) },
					OnExit:   func() { svc.app.Exit(nil) },
				})
			}
			return svc.run(withHTTP)
		},
	}
	addServeFlags(cmd)
	f := cmd.Flags()
	f.BoolVar(&withHTTP, "serve", false, "also serve the HTTP control API")
	f.String("display.device", "/dev/fb0", "framebuffer device")
	f.Bool("display.keyboard", true, "read R and F4 from evdev keyboards")
	return cmd
}
