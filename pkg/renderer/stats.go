package renderer

import (
	"image"
	"time"

	"github.com/df07/go-pathtracer/pkg/integrator"
)

// RegionStatus records what happened to a single region
type RegionStatus struct {
	Region   Region
	Pixels   int   // Pixels that received all their samples
	Samples  int64 // Primary rays traced
	Bounces  int64 // Surface interactions over all paths
	Complete bool
	Err      error // Non-nil if the region failed
	Elapsed  time.Duration

	terminations [integrator.NumTerminations]int64
}

func (rs *RegionStatus) record(result integrator.TraceResult) {
	rs.Samples++
	rs.Bounces += int64(result.Bounces)
	if int(result.Termination) < len(rs.terminations) {
		rs.terminations[result.Termination]++
	}
}

// RenderStats contains statistics about a finished (or interrupted) render
type RenderStats struct {
	Pixels          int   // Total number of pixels in the frame
	CompletedPixels int   // Pixels that received all their samples
	Samples         int64 // Total primary rays traced
	Bounces         int64 // Total surface interactions
	Terminations    map[integrator.Termination]int64
	Regions         int
	FailedRegions   int
	Workers         int
	Elapsed         time.Duration
}

// AverageBounces returns the mean number of surface interactions per path
func (s RenderStats) AverageBounces() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.Bounces) / float64(s.Samples)
}

// SamplesPerSecond returns the primary ray throughput
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Samples) / s.Elapsed.Seconds()
}

func collectStats(bounds image.Rectangle, statuses []RegionStatus, workers int, elapsed time.Duration) RenderStats {
	stats := RenderStats{
		Pixels:       bounds.Dx() * bounds.Dy(),
		Terminations: make(map[integrator.Termination]int64, integrator.NumTerminations),
		Regions:      len(statuses),
		Workers:      workers,
		Elapsed:      elapsed,
	}
	for _, rs := range statuses {
		stats.CompletedPixels += rs.Pixels
		stats.Samples += rs.Samples
		stats.Bounces += rs.Bounces
		if rs.Err != nil {
			stats.FailedRegions++
		}
		for t, n := range rs.terminations {
			if n > 0 {
				stats.Terminations[integrator.Termination(t)] += n
			}
		}
	}
	return stats
}
