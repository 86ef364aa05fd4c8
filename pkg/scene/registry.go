package scene

import (
	"sort"

	"github.com/pkg/errors"
)

// Info describes a built-in scene
type Info struct {
	Name        string
	Description string
}

type registration struct {
	info  Info
	build func() (*Scene, error)
}

var registry = map[string]registration{
	"default": {
		Info{"default", "three balls (diffuse, glass, metal) on a large ground sphere under a sky gradient"},
		NewDefaultScene,
	},
	"cornell": {
		Info{"cornell", "Cornell box built from triangles with an emissive ceiling panel"},
		NewCornellScene,
	},
	"spheregrid": {
		Info{"spheregrid", "grid of mixed-material spheres lit by a distant emissive sun"},
		NewSphereGridScene,
	},
	"textures": {
		Info{"textures", "checker, noise, perlin and image textured spheres"},
		NewTextureScene,
	},
	"empty": {
		Info{"empty", "no geometry, constant background"},
		NewEmptyScene,
	},
}

// Names returns the sorted names of the built-in scenes
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the built-in scenes sorted by name
func List() []Info {
	names := Names()
	infos := make([]Info, len(names))
	for i, name := range names {
		infos[i] = registry[name].info
	}
	return infos
}

// ByName builds the named built-in scene
func ByName(name string) (*Scene, error) {
	reg, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScene, "%q", name)
	}
	return reg.build()
}
