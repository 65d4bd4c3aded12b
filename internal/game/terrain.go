package game

import "math"

// worldBound is the largest |x| or |z| the simulation accepts; the height
// function is defined on the full square.
const worldBound = 10000.0

// terrainOffset lifts units slightly above the sampled ground height.
const terrainOffset = 0.2

// HeightFunc samples terrain height at a planar coordinate. Implementations
// must be pure and defined for |x|,|z| <= worldBound.
type HeightFunc func(x, z float64) float64

// FlatTerrain is the zero-height function used by tests.
func FlatTerrain(x, z float64) float64 { return 0 }

// RollingTerrain is the default gentle undulating ground.
func RollingTerrain(x, z float64) float64 {
	return 1.5*math.Sin(x*0.013) + 1.2*math.Cos(z*0.017) + 0.4*math.Sin((x+z)*0.05)
}
