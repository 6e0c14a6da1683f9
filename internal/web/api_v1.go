package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rook-computer/flowerfield/internal/field"
	"github.com/rook-computer/flowerfield/internal/render"
	"github.com/rook-computer/flowerfield/internal/state"
)

const maxBodyBytes = 64 << 10

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type configResponse struct {
	Config   field.Config `json:"config"`
	Revision uint64       `json:"revision"`
}

type frameResponse struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Seed       uint64    `json:"seed"`
	Flowers    int       `json:"flowers"`
	Trigger    string    `json:"trigger"`
	RenderedAt time.Time `json:"renderedAt"`
	DurationMs float64   `json:"durationMs"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	URL        string    `json:"url"`
}

type stateResponse struct {
	Phase    string         `json:"phase"`
	Revision uint64         `json:"revision"`
	Error    string         `json:"error,omitempty"`
	Frame    *frameResponse `json:"frame,omitempty"`
}

type redrawRequest struct {
	Seed *uint64 `json:"seed,omitempty"`
}

func newFrameResponse(info state.FrameInfo) frameResponse {
	return frameResponse{
		Type:       "frame",
		ID:         info.ID,
		Seed:       info.Seed,
		Flowers:    info.Flowers,
		Trigger:    info.Trigger,
		RenderedAt: info.RenderedAt,
		DurationMs: float64(info.Duration.Microseconds()) / 1000,
		Width:      info.Width,
		Height:     info.Height,
		URL:        "/api/v1/frame.png?v=" + info.ID,
	}
}

type apiV1 struct {
	ctl       Controller
	hub       *Hub
	publicURL string
}

func apiV1Router(a *apiV1) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", a.handleState)
	mux.HandleFunc("/config", a.handleConfig)
	mux.HandleFunc("/config/reset", a.handleConfigReset)
	mux.HandleFunc("/redraw", a.handleRedraw)
	mux.HandleFunc("/frame", a.handleFrame)
	mux.HandleFunc("/frame.png", a.handleFramePNG)
	mux.HandleFunc("/render.png", a.handleRenderPNG)
	mux.HandleFunc("/share.png", a.handleSharePNG)
	if a.hub != nil {
		mux.Handle("/ws", a.hub)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	return false
}

func (a *apiV1) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	snap := a.ctl.Snapshot()
	resp := stateResponse{Phase: snap.Phase.String(), Revision: snap.Revision, Error: snap.Err}
	if snap.Frame.ID != "" {
		frame := newFrameResponse(snap.Frame)
		resp.Frame = &frame
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiV1) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := a.ctl.Snapshot()
		writeJSON(w, http.StatusOK, configResponse{Config: snap.Config, Revision: snap.Revision})
	case http.MethodPatch, http.MethodPost:
		var ctl field.Controls
		if err := decodeBody(r, &ctl, false); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		cfg, err := a.ctl.UpdateConfig(ctl)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_config", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, configResponse{Config: cfg, Revision: a.ctl.Snapshot().Revision})
	default:
		allowMethods(w, r, http.MethodGet, http.MethodPatch, http.MethodPost)
	}
}

func (a *apiV1) handleConfigReset(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	cfg, err := a.ctl.ResetConfig()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Revision: a.ctl.Snapshot().Revision})
}

func (a *apiV1) handleRedraw(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	var req redrawRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_seed", "seed must be an unsigned integer")
			return
		}
		req.Seed = &seed
	}
	a.ctl.Redraw(req.Seed)
	writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

func (a *apiV1) handleFrame(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	_, info, ok := a.ctl.FramePNG()
	if !ok {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no frame rendered yet")
		return
	}
	writeJSON(w, http.StatusOK, newFrameResponse(info))
}

func (a *apiV1) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	width, err := queryInt(r, "width")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_width", err.Error())
		return
	}
	data, info, ok := a.ctl.FramePNG()
	if !ok {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no frame rendered yet")
		return
	}
	if width > 0 && width < info.Width {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "decode_failed", err.Error())
			return
		}
		if data, err = render.EncodePNG(img, width); err != nil {
			writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
	}
	w.Header().Set("X-Frame-Id", info.ID)
	w.Header().Set("X-Frame-Seed", strconv.FormatUint(info.Seed, 10))
	writePNG(w, data)
}

func (a *apiV1) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	raw := r.URL.Query().Get("seed")
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_seed", "seed must be an unsigned integer")
		return
	}
	width, err := queryInt(r, "width")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_width", err.Error())
		return
	}
	img, err := a.ctl.RenderSeed(r.Context(), seed)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeAPIError(w, http.StatusServiceUnavailable, "render_cancelled", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	data, err := render.EncodePNG(img, width)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("X-Frame-Seed", strconv.FormatUint(seed, 10))
	writePNG(w, data)
}

func (a *apiV1) handleSharePNG(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	var seed uint64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_seed", "seed must be an unsigned integer")
			return
		}
		seed = parsed
	} else {
		_, info, ok := a.ctl.FramePNG()
		if !ok {
			writeAPIError(w, http.StatusNotFound, "no_frame", "no frame rendered yet")
			return
		}
		seed = info.Seed
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", err.Error())
		return
	}
	data, err := render.ShareCodePNG(a.permalink(r, seed), size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qrcode_failed", err.Error())
		return
	}
	writePNG(w, data)
}

// permalink points at the stateless render of seed.
func (a *apiV1) permalink(r *http.Request, seed uint64) string {
	base := strings.TrimRight(a.publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
		base = scheme + "://" + r.Host
	}
	return base + "/api/v1/render.png?seed=" + strconv.FormatUint(seed, 10)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 8192 {
		return 0, errors.New(key + " must be an integer between 0 and 8192")
	}
	return n, nil
}

// decodeBody reads a JSON body into v. An empty body is an error unless
// optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
