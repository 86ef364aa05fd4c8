package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Termination records why a path stopped
type Termination uint8

const (
	TerminationMaxDepth Termination = iota // Bounce budget exhausted
	TerminationMiss                        // Escaped to the background
	TerminationEmitted                     // Reached an emitter
	TerminationAbsorbed                    // Absorbed by a surface or numerically invalid
	TerminationRoulette                    // Killed by Russian roulette
)

// NumTerminations is the number of Termination values
const NumTerminations = 5

func (t Termination) String() string {
	switch t {
	case TerminationMaxDepth:
		return "max-depth"
	case TerminationMiss:
		return "miss"
	case TerminationEmitted:
		return "emitted"
	case TerminationAbsorbed:
		return "absorbed"
	case TerminationRoulette:
		return "roulette"
	default:
		return "unknown"
	}
}

// TraceResult is the radiance carried back along one camera path
type TraceResult struct {
	Radiance    core.Vec3
	Bounces     int // Surface interactions along the path
	Termination Termination
}

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use; all per-path state
// lives in the sampler and the call's locals.
type Integrator interface {
	Trace(ray core.Ray, sampler core.Sampler) TraceResult
}

// Config contains path tracing parameters
type Config struct {
	MaxDepth                  int     // Maximum scene intersection queries per path
	RussianRouletteMinBounces int     // Bounces before Russian roulette can terminate a path
	MinSurvival               float64 // Lower clamp on the roulette survival probability
	MaxSurvival               float64 // Upper clamp on the roulette survival probability
}

// DefaultConfig returns the default path tracing parameters
func DefaultConfig() Config {
	return Config{
		MaxDepth:                  50,
		RussianRouletteMinBounces: 5,
		MinSurvival:               0.05,
		MaxSurvival:               0.95,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	if c.RussianRouletteMinBounces < 0 {
		c.RussianRouletteMinBounces = 0
	}
	if !(c.MinSurvival > 0 && c.MinSurvival <= 1) {
		c.MinSurvival = d.MinSurvival
	}
	if !(c.MaxSurvival >= c.MinSurvival && c.MaxSurvival <= 1) {
		c.MaxSurvival = max(d.MaxSurvival, c.MinSurvival)
	}
	return c
}
