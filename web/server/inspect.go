package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/pkg/errors"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Primitive    int                    `json:"primitive"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

func triple(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material, sampling its textures at the hit
func extractMaterialInfo(mat *material.Material, hit geometry.HitRecord) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.Lambertian, material.Metal:
		albedo := mat.Albedo.Sample(hit.UV, hit.Point)
		properties["albedo"] = triple(albedo)
		properties["color"] = hexColor(albedo)
		properties["texture"] = mat.Albedo.Kind.String()
		if mat.Kind == material.Metal {
			properties["fuzz"] = mat.Fuzz
		}
	case material.Dielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	case material.Emissive:
		emission := mat.Radiance.Sample(hit.UV, hit.Point)
		properties["emission"] = triple(emission)
		properties["color"] = hexColor(emission)
	}
	return mat.Kind.String(), properties
}

// inspectPixel casts a ray through the center of the pixel (no jitter, no
// lens) and describes the first surface hit
func inspectPixel(s *scene.Scene, width, height, pixelX, pixelY int) InspectResponse {
	cfg := s.Camera()
	cfg.AspectRatio = float64(width) / float64(height)
	cfg.Aperture = 0
	camera := geometry.NewCamera(cfg)

	u := (float64(pixelX) + 0.5) / float64(width)
	v := 1 - (float64(pixelY)+0.5)/float64(height)
	hit, ok := s.NearestHit(camera.GenerateRay(u, v, nil))
	if !ok {
		return InspectResponse{Hit: false}
	}

	prim := s.BVH().Primitive(hit.Primitive)
	materialType, properties := extractMaterialInfo(s.Material(hit.Material), hit)
	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: prim.Kind.String(),
		Primitive:    hit.Primitive,
		Point:        triple(hit.Point),
		Normal:       triple(hit.Normal),
		UV:           [2]float64{hit.UV.X, hit.UV.Y},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	}
}

// handleInspect reports what the camera sees through a pixel:
// /api/inspect?scene=&width=&height=&x=&y=
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("scene")
	if name == "" {
		name = "default"
	}

	values := map[string]int{"width": 400, "height": 225, "x": -1, "y": -1}
	for key := range values {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.Wrapf(errBadRequest, "invalid %s %q", key, v))
				return
			}
			values[key] = n
		}
	}
	width, height, x, y := values["width"], values["height"], values["x"], values["y"]
	if width <= 0 || height <= 0 || x < 0 || y < 0 || x >= width || y >= height {
		writeError(w, http.StatusBadRequest, errors.Wrapf(errBadRequest, "pixel (%d,%d) outside %dx%d", x, y, width, height))
		return
	}

	sc, err := scene.ByName(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sc, width, height, x, y))
}
