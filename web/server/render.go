package server

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string
	Options renderer.Options
	Format  string // "png" or "json"
}

// RenderResponse is the JSON form of a finished render
type RenderResponse struct {
	ID        string           `json:"id"`
	ImageData string           `json:"imageData"` // Base64 encoded PNG
	Stats     Stats            `json:"stats"`
	Console   []ConsoleMessage `json:"console"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int              `json:"totalPixels"`
	CompletedPixels  int              `json:"completedPixels"`
	TotalSamples     int64            `json:"totalSamples"`
	AverageBounces   float64          `json:"averageBounces"`
	SamplesPerSecond float64          `json:"samplesPerSecond"`
	Terminations     map[string]int64 `json:"terminations"`
	Workers          int              `json:"workers"`
	ElapsedMs        int64            `json:"elapsedMs"`
}

var errBadRequest = errors.New("bad request")

// parseRenderRequest reads scene, width, height, spp, depth, rr, seed,
// partition, workers and format from the query string
func (s *Server) parseRenderRequest(r *http.Request) (RenderRequest, error) {
	q := r.URL.Query()
	req := RenderRequest{
		Scene:   q.Get("scene"),
		Options: renderer.DefaultOptions(),
		Format:  q.Get("format"),
	}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = "png"
	}
	if req.Format != "png" && req.Format != "json" {
		return req, errors.Wrapf(errBadRequest, "unknown format %q", req.Format)
	}

	opts := &req.Options
	opts.SamplesPerPixel = 16
	fields := []struct {
		name string
		dst  *int
		max  int
	}{
		{"width", &opts.Width, s.limits.MaxWidth},
		{"height", &opts.Height, s.limits.MaxHeight},
		{"spp", &opts.SamplesPerPixel, s.limits.MaxSamples},
		{"depth", &opts.MaxDepth, s.limits.MaxDepth},
		{"rr", &opts.RussianRouletteMinBounces, s.limits.MaxDepth},
		{"workers", &opts.NumWorkers, 256},
	}
	for _, f := range fields {
		if err := intParam(q, f.name, f.dst, f.max); err != nil {
			return req, err
		}
	}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, errors.Wrapf(errBadRequest, "invalid seed %q", v)
		}
		opts.Seed = seed
	}
	if v := q.Get("partition"); v != "" {
		p, err := renderer.ParsePartition(v)
		if err != nil {
			return req, errors.Wrap(errBadRequest, err.Error())
		}
		opts.Partition = p
	}

	if err := opts.Validate(); err != nil {
		return req, errors.Wrap(errBadRequest, err.Error())
	}
	return req, nil
}

func intParam(q url.Values, name string, dst *int, limit int) error {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(errBadRequest, "invalid %s %q", name, v)
	}
	if n > limit {
		return errors.Wrapf(errBadRequest, "%s %d exceeds limit %d", name, n, limit)
	}
	*dst = n
	return nil
}

// handleRender renders a built-in scene and returns it as a PNG, or as JSON
// with stats and the render log. The render is bound to the request
// context, so a client that disconnects cancels it.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sc, err := scene.ByName(req.Scene)
	if err != nil {
		if errors.Cause(err) == scene.ErrUnknownScene {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	renderLogger := NewWebLogger(uuid.NewString(), s.logger, 100)
	rend, err := renderer.New(sc, nil, req.Options, renderLogger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := rend.Render(r.Context())
	if errors.Is(err, renderer.ErrInterrupted) {
		s.logger.Infof("client disconnected, render of %q abandoned", req.Scene)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result.Image()); err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to encode image"))
		return
	}

	w.Header().Set("X-Render-Id", result.ID.String())
	if req.Format == "json" {
		writeJSON(w, http.StatusOK, RenderResponse{
			ID:        result.ID.String(),
			ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
			Stats:     newStats(result.Stats),
			Console:   renderLogger.Messages(),
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func newStats(st renderer.RenderStats) Stats {
	terminations := make(map[string]int64, len(st.Terminations))
	for t, n := range st.Terminations {
		terminations[t.String()] = n
	}
	return Stats{
		TotalPixels:      st.Pixels,
		CompletedPixels:  st.CompletedPixels,
		TotalSamples:     st.Samples,
		AverageBounces:   st.AverageBounces(),
		SamplesPerSecond: st.SamplesPerSecond(),
		Terminations:     terminations,
		Workers:          st.Workers,
		ElapsedMs:        st.Elapsed.Milliseconds(),
	}
}
