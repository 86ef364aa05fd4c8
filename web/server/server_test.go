package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/google/go-cmp/cmp"
)

func newTestServer() *Server {
	return NewServer(0, log.Discard)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestScenes(t *testing.T) {
	rec := get(t, newTestServer(), "/api/scenes")
	var infos []SceneInfo
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	if diff := cmp.Diff(scene.Names(), names); diff != "" {
		t.Errorf("Scene list mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PNG(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=default&width=8&height=6&spp=2&depth=4&seed=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if rec.Header().Get("X-Render-Id") == "" {
		t.Error("Expected a render id header")
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", b)
	}
}

func TestRender_JSON(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=empty&width=4&height=4&spp=1&format=json")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RenderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Stats.TotalPixels != 16 || resp.Stats.CompletedPixels != 16 || resp.Stats.TotalSamples != 16 {
		t.Errorf("Unexpected stats %+v", resp.Stats)
	}
	if resp.Stats.Terminations["miss"] != 16 {
		t.Errorf("Expected every path to miss, got %v", resp.Stats.Terminations)
	}
	if len(resp.Console) == 0 {
		t.Error("Expected render log messages")
	}

	data, err := base64.StdEncoding.DecodeString(resp.ImageData)
	if err != nil {
		t.Fatalf("Failed to decode image data: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(data))); err != nil {
		t.Errorf("Expected a PNG payload: %v", err)
	}
}

func TestRender_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"bad width", "/api/render?width=abc", http.StatusBadRequest},
		{"zero height", "/api/render?height=0", http.StatusBadRequest},
		{"over limit", "/api/render?spp=1000000", http.StatusBadRequest},
		{"bad seed", "/api/render?seed=-1", http.StatusBadRequest},
		{"bad partition", "/api/render?partition=spiral", http.StatusBadRequest},
		{"bad format", "/api/render?format=gif", http.StatusBadRequest},
		{"unknown scene", "/api/render?scene=nowhere&width=4&height=4", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(), tt.target)
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRender_ClientDisconnectCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/render?scene=default&width=64&height=64&spp=64", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)

	if rec.Body.Len() != 0 {
		t.Errorf("Expected no body for an abandoned render, got %d bytes", rec.Body.Len())
	}
}

func TestInspect(t *testing.T) {
	s := newTestServer()

	// The default camera looks straight at the blue diffuse ball
	rec := get(t, s, "/api/inspect?scene=default&width=400&height=225&x=200&y=112")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Hit || resp.GeometryType != "sphere" || resp.Distance <= 0 {
		t.Errorf("Expected a sphere hit, got %+v", resp)
	}

	rec = get(t, s, "/api/inspect?scene=empty&width=10&height=10&x=5&y=5")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Hit {
		t.Error("Expected no hit in the empty scene")
	}

	if rec := get(t, s, "/api/inspect?x=500&y=0"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a pixel outside the frame, got %d", rec.Code)
	}
}

func TestWebLogger_CapturesMessages(t *testing.T) {
	wl := NewWebLogger("render-1", log.Discard, 2)
	wl.Infof("pass %d", 1)
	wl.Warning("slow")
	wl.Error("dropped")

	msgs := wl.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected the limit of 2 messages, got %d", len(msgs))
	}
	if msgs[0].Message != "pass 1" || msgs[0].Level != "info" {
		t.Errorf("Unexpected first message %+v", msgs[0])
	}
	if msgs[1].Level != "warning" {
		t.Errorf("Expected warning level, got %q", msgs[1].Level)
	}
}
