package satvis

import (
	"math"

	"github.com/alitto/pond"
)

// KernelConfig carries the tunables of the intersection kernel (§4.8) as
// explicit fields rather than global toggles, so independent calls never
// observe each other's settings.
type KernelConfig struct {
	// MinElevationRad is the minimum horizon elevation angle used by
	// FovHalfAngle. Zero means the tangent-limit (horizon-grazing) FOV.
	MinElevationRad float64
	// HalfEarth, if true, replaces every satellite altitude with +Inf,
	// degenerating FovHalfAngle to pi/2 (§4.8 edge cases).
	HalfEarth bool
}

// SatSeries is the satellite side of the sweep-join input: sat_time must
// be strictly increasing and len(sat_time) >= 2.
type SatSeries struct {
	TimeS  []int64
	LatDeg []float64
	LonDeg []float64
	AltKm  []float64
}

// VesselSeries is the vessel side of the sweep-join input: time must be
// non-decreasing.
type VesselSeries struct {
	TimeS  []int64
	LatDeg []float64
	LonDeg []float64
}

// Intersect runs the single-pass sweep-join described in §4.8 over one
// contiguous chunk of vessel samples and writes into hit[0:len(v.TimeS)].
// It is pure and safe to call concurrently across disjoint (v, hit) slices
// sharing the same read-only sat.
func Intersect(sat SatSeries, v VesselSeries, cfg KernelConfig, hit []bool) {
	m := len(sat.TimeS)
	n := len(v.TimeS)

	k := 1 // bracket: sat.TimeS[k-1] <= v.TimeS[i] < sat.TimeS[k]

	var (
		cachedValid bool
		cachedVTime int64
		interpLat   float64
		interpLon   float64
		thetaMax    float64
	)

	for i := 0; i < n; i++ {
		vt := v.TimeS[i]

		if vt < sat.TimeS[0] {
			hit[i] = false
			continue
		}

		advanced := false
		for k < m && vt >= sat.TimeS[k] {
			k++
			advanced = true
		}
		if k == m {
			// all subsequent vessel points are past the satellite range
			for j := i; j < n; j++ {
				hit[j] = false
			}
			return
		}

		if advanced || !cachedValid || vt != cachedVTime {
			t0, t1 := sat.TimeS[k-1], sat.TimeS[k]
			alpha := float64(vt-t0) / float64(t1-t0)
			beta := 1 - alpha

			interpLat = beta*sat.LatDeg[k-1] + alpha*sat.LatDeg[k]
			interpLon = beta*sat.LonDeg[k-1] + alpha*sat.LonDeg[k]

			var alt float64
			if cfg.HalfEarth {
				alt = math.Inf(1)
			} else {
				alt = beta*sat.AltKm[k-1] + alpha*sat.AltKm[k]
				if alt < EarthRadiusKm {
					alt = EarthRadiusKm
				}
			}

			thetaMax = FovHalfAngle(alt, EarthRadiusKm, cfg.MinElevationRad)

			cachedValid = true
			cachedVTime = vt
		}

		angle := HaversineAngle(interpLon, interpLat, v.LonDeg[i], v.LatDeg[i])
		hit[i] = angle <= thetaMax
	}
}

// chooseWorkers implements the compositor's W selection: caller-fixed W
// if > 0; otherwise start at 4 and double while W < 32 and n is evenly
// divisible by 2W.
func chooseWorkers(n int, want int) int {
	if want > 0 {
		return want
	}
	w := 4
	for w < 32 && n%(2*w) == 0 {
		w *= 2
	}
	return w
}

// ComputeHits partitions v into W contiguous chunks (plus a serial tail
// remainder) and runs Intersect over each chunk concurrently, matching
// the parallelisation strategy of §4.8. The result preserves input order.
func ComputeHits(sat SatSeries, v VesselSeries, cfg KernelConfig, workers int) []bool {
	n := len(v.TimeS)
	hit := make([]bool, n)
	if n == 0 {
		return hit
	}

	w := chooseWorkers(n, workers)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}

	chunk := n / w

	pool := pond.New(w, 0, pond.MinWorkers(w))

	for c := 0; c < w; c++ {
		start := c * chunk
		submitChunk(pool, sat, v, cfg, hit, start, start+chunk)
	}

	pool.StopAndWait()

	// the tail remainder, if any, runs serially in a final sub-chunk
	if tail := w * chunk; tail < n {
		sub := VesselSeries{TimeS: v.TimeS[tail:], LatDeg: v.LatDeg[tail:], LonDeg: v.LonDeg[tail:]}
		Intersect(sat, sub, cfg, hit[tail:])
	}

	return hit
}

// submitChunk submits one [start, end) vessel chunk to pool, binding the
// bounds by value so each worker closure sees its own range.
func submitChunk(pool *pond.WorkerPool, sat SatSeries, v VesselSeries, cfg KernelConfig, hit []bool, start, end int) {
	pool.Submit(func() {
		sub := VesselSeries{
			TimeS:  v.TimeS[start:end],
			LatDeg: v.LatDeg[start:end],
			LonDeg: v.LonDeg[start:end],
		}
		Intersect(sat, sub, cfg, hit[start:end])
	})
}
