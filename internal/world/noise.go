package world

import "math"

// Deterministic 3D value noise. Lattice values come from an integer hash so
// results are stable across runs and platforms.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash3 is a SplitMix64 finalizer over the mixed lattice coordinates.
func hash3(x, y, z, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// lattice maps a lattice point to [0,1].
func lattice(x, y, z, seed int64) float64 {
	return float64(hash3(x, y, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise3D(x, y, z float64, seed int64) float64 {
	fx0, fy0, fz0 := math.Floor(x), math.Floor(y), math.Floor(z)
	x0, y0, z0 := int64(fx0), int64(fy0), int64(fz0)
	tx, ty, tz := fade(x-fx0), fade(y-fy0), fade(z-fz0)

	var corner [2][2][2]float64
	for dx := range 2 {
		for dy := range 2 {
			for dz := range 2 {
				corner[dx][dy][dz] = lattice(x0+int64(dx), y0+int64(dy), z0+int64(dz), seed)
			}
		}
	}

	// collapse x, then y, then z
	c00 := lerp(corner[0][0][0], corner[1][0][0], tx)
	c10 := lerp(corner[0][1][0], corner[1][1][0], tx)
	c01 := lerp(corner[0][0][1], corner[1][0][1], tx)
	c11 := lerp(corner[0][1][1], corner[1][1][1], tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}

// octaveNoise3D sums octaves of value noise and normalizes to [0,1].
func octaveNoise3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := range octaves {
		sum += valueNoise3D(x*frequency, y*frequency, z*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
