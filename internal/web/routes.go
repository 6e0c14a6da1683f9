package web

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rook-computer/flowerfield/internal/metrics"
)

// Options configures NewDefaultMux.
type Options struct {
	// StaticDir overrides the embedded UI when set.
	StaticDir string
	// PublicURL is the externally visible base URL used in share codes.
	PublicURL string
	// Dev enables permissive CORS and websocket origins.
	Dev bool

	Logger   Logger
	Metrics  *metrics.Registry
	Gatherer prometheus.Gatherer
}

// NewDefaultMux builds the full handler:
// - /api/v1/* for the API
// - /metrics and /healthz
// - / for the web UI
func NewDefaultMux(ctl Controller, hub *Hub, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if hub != nil && opts.Dev {
		hub.OriginPatterns = []string{"*"}
	}

	common := []alice.Constructor{withRequestMetrics(opts.Metrics), withAccessLog(opts.Logger)}
	if opts.Dev {
		common = append(common, WithDevCORS)
	}
	chain := alice.New(common...)

	api := &apiV1{ctl: ctl, hub: hub, publicURL: opts.PublicURL}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", chain.Then(http.StripPrefix("/api/v1", apiV1Router(api))))
	mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	})
	mux.Handle("/", chain.Then(StaticUIHandler(opts.StaticDir)))
	return mux
}
