package satvis

import "math"

// DefaultMaxDtS and DefaultMaxDistKm are the interpolator's default gap
// thresholds, §4.7.
const (
	DefaultMaxDtS    = 300
	DefaultMaxDistKm = 200.0
)

// VesselPing is one AIS position report.
type VesselPing struct {
	MMSI   int64
	TimeS  int64
	LatDeg float64
	LonDeg float64
}

// InterpolateTrack fills temporal gaps in a per-vessel track, §4.7. Input
// must already be sorted by (mmsi_id, time_s). The interpolator is
// strictly additive: every input row appears in the output, in order,
// interspersed with any synthesized points.
func InterpolateTrack(pings []VesselPing, maxDtS int64, maxDistKm float64) []VesselPing {
	if maxDtS <= 0 {
		maxDtS = DefaultMaxDtS
	}
	if maxDistKm <= 0 {
		maxDistKm = DefaultMaxDistKm
	}

	out := make([]VesselPing, 0, len(pings))
	for i, cur := range pings {
		out = append(out, cur)

		if i == len(pings)-1 {
			break
		}
		next := pings[i+1]
		if next.MMSI != cur.MMSI {
			continue
		}

		dt := next.TimeS - cur.TimeS
		if dt <= maxDtS {
			continue
		}

		dist := HaversineDistanceKm(cur.LonDeg, cur.LatDeg, next.LonDeg, next.LatDeg)
		if dist > maxDistKm {
			continue
		}

		k := int(math.Ceil(float64(dt) / float64(maxDtS)))
		for j := 1; j < k; j++ {
			frac := float64(j) / float64(k)
			out = append(out, VesselPing{
				MMSI:   cur.MMSI,
				TimeS:  cur.TimeS + int64(frac*float64(dt)),
				LatDeg: cur.LatDeg + frac*(next.LatDeg-cur.LatDeg),
				LonDeg: cur.LonDeg + frac*(next.LonDeg-cur.LonDeg),
			})
		}
	}

	return out
}
