package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rook-computer/flowerfield/internal/app"
	"github.com/rook-computer/flowerfield/internal/config"
	"github.com/rook-computer/flowerfield/internal/metrics"
	"github.com/rook-computer/flowerfield/internal/render"
	"github.com/rook-computer/flowerfield/internal/state"
	"github.com/rook-computer/flowerfield/internal/web"
)

func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("http.listen", ":8080", "HTTP listen address")
	f.Bool("http.dev", false, "enable permissive CORS for UI development")
	f.String("http.public_url", "", "public base URL used in share codes")
	f.String("http.static_dir", "", "serve the UI from this directory instead of the embedded one")
	f.Uint64("render.seed", 0, "seed of the first frame; 0 picks one at random")
	f.Bool("render.caption", false, "draw the seed and flower count in the corner")
	f.String("field.variation", "full", "colour variation: full or mono")
}

// service is the shared wiring of the long-running commands.
type service struct {
	app    *app.App
	server *web.HTTPServer
}

func newService(conf config.Config, logger app.Logger, display render.Display) (*service, error) {
	reg, err := metrics.New(metrics.Config{})
	if err != nil {
		return nil, err
	}

	store := state.NewStore(conf.Field)
	a := app.New(store, display)
	a.Logger = logger
	a.Metrics = reg
	a.Caption = conf.Render.Caption
	a.Width, a.Height = conf.Render.Width, conf.Render.Height
	a.FirstSeed = conf.Render.Seed

	hub := web.NewHub()
	hub.Logger = logger
	hub.Metrics = reg
	hub.Current = func() (state.FrameInfo, bool) {
		_, info, ok := store.FramePNG()
		return info, ok
	}
	a.OnFrame = hub.Publish

	handler := web.NewDefaultMux(a, hub, web.Options{
		StaticDir: conf.HTTP.StaticDir,
		PublicURL: conf.HTTP.PublicURL,
		Dev:       conf.HTTP.Dev,
		Logger:    logger,
		Metrics:   reg,
	})
	server := web.NewHTTPServer(conf.HTTP.Listen, handler)
	server.Logger = logger
	return &service{app: a, server: server}, nil
}

// run serves HTTP (when withHTTP is set) and blocks in the render loop until
// a signal arrives or the app exits.
func (svc *service) run(withHTTP bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server web.Server = &web.NoopServer{}
	if withHTTP {
		server = svc.server
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()

	err := svc.app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live view and control API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			svc, err := newService(conf, logger, nil)
			if err != nil {
				return err
			}
			return svc.run(true)
		},
	}
	addServeFlags(cmd)
	return cmd
}
