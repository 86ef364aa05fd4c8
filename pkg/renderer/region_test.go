package renderer

import "testing"

func TestNewRegionsCoverImageOnce(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		partition     Partition
		tileSize      int
		expected      int
	}{
		{"exact tiles", 64, 64, PartitionTiles, 32, 4},
		{"ragged tiles", 70, 33, PartitionTiles, 32, 6},
		{"single tile", 10, 10, PartitionTiles, 64, 1},
		{"rows", 17, 9, PartitionRows, 0, 9},
		{"single pixel", 1, 1, PartitionTiles, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := NewRegions(tt.width, tt.height, tt.partition, tt.tileSize)
			if len(regions) != tt.expected {
				t.Fatalf("Expected %d regions, got %d", tt.expected, len(regions))
			}

			covered := make([]int, tt.width*tt.height)
			for i, r := range regions {
				if r.ID != i {
					t.Errorf("Expected region id %d, got %d", i, r.ID)
				}
				for y := r.Bounds.Min.Y; y < r.Bounds.Max.Y; y++ {
					for x := r.Bounds.Min.X; x < r.Bounds.Max.X; x++ {
						if x < 0 || y < 0 || x >= tt.width || y >= tt.height {
							t.Fatalf("Region %d exceeds image: %v", r.ID, r.Bounds)
						}
						covered[y*tt.width+x]++
					}
				}
			}
			for i, n := range covered {
				if n != 1 {
					t.Fatalf("Pixel %d covered %d times", i, n)
				}
			}
		})
	}
}

func TestNewRegionsEmptyImage(t *testing.T) {
	if regions := NewRegions(0, 10, PartitionTiles, 8); len(regions) != 0 {
		t.Errorf("Expected no regions, got %d", len(regions))
	}
}
