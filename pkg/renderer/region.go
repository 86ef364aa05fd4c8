package renderer

import "image"

// Region is a rectangle of pixels rendered by exactly one worker
type Region struct {
	ID     int             // Unique region identifier, also its PRNG stream index
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// Pixels returns the number of pixels in the region
func (r Region) Pixels() int {
	return r.Bounds.Dx() * r.Bounds.Dy()
}

// NewRegions splits a width x height image into disjoint regions that cover
// every pixel exactly once. Ids are assigned in row-major order.
func NewRegions(width, height int, partition Partition, tileSize int) []Region {
	if width <= 0 || height <= 0 {
		return nil
	}

	if partition == PartitionRows {
		regions := make([]Region, height)
		for y := range regions {
			regions[y] = Region{ID: y, Bounds: image.Rect(0, y, width, y+1)}
		}
		return regions
	}

	if tileSize <= 0 {
		tileSize = DefaultOptions().TileSize
	}

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	regions := make([]Region, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			regions = append(regions, Region{ID: len(regions), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return regions
}
