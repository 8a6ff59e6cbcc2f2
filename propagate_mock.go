package satvis

import "math"

// CircularOrbitPropagator is a closed-form analytical-orbit Propagator used
// in tests that need a deterministic, dependency-free stand-in for SGP4.
// It ignores line1/line2 and instead traces a circular orbit of the given
// altitude and period: longitude advances linearly with the orbital phase
// and latitude swings as InclDeg*sin(phase), starting over the prime
// meridian at t=0. The track builder tests use it so they need not wire an
// actual TLE pair through SGP4.
type CircularOrbitPropagator struct {
	AltKm   float64
	PeriodS float64
	InclDeg float64
}

func (p CircularOrbitPropagator) Propagate(_, _ string, startS, endS int64, stepS int64) ([]GeodeticPoint, error) {
	if stepS <= 0 {
		return nil, ErrBadTLEPair
	}
	n := int((endS - startS) / stepS)
	if n <= 0 {
		return nil, nil
	}

	out := make([]GeodeticPoint, 0, n)
	for i := 0; i < n; i++ {
		ts := startS + int64(i)*stepS
		phase := 2 * math.Pi * float64(ts) / p.PeriodS

		lon := NormalizeLon(math.Mod(phase*180/math.Pi, 360))
		lat := p.InclDeg * math.Sin(phase)

		out = append(out, GeodeticPoint{
			TimeS:  ts,
			LatDeg: lat,
			LonDeg: lon,
			AltKm:  p.AltKm,
		})
	}
	return out, nil
}
