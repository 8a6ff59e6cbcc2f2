package satvis

import "sort"

// HitQuery bundles the optional parameters of compute_hits, §4.9.
type HitQuery struct {
	StartTimeS      *int64
	EndTimeS        *int64
	Workers         int
	HalfEarth       bool
	MinElevationRad float64
}

// Hit is one materialised row of the hit set: a vessel ping that fell
// inside the satellite's field of view, with its originating mmsi
// preserved.
type Hit struct {
	MMSI   int64
	TimeS  int64
	LatDeg float64
	LonDeg float64
}

// ComputeHitsQuery runs the full hit-compositor pipeline of §4.9 over a
// satellite track and a set of vessel pings, returning the materialised
// hit set.
func ComputeHitsQuery(sat SatSeries, pings []VesselPing, q HitQuery) ([]Hit, error) {
	if len(sat.TimeS) < 2 {
		return nil, ErrShortSatTrack
	}

	startS, endS := timeBounds(pings, q.StartTimeS, q.EndTimeS)

	lo := sort.Search(len(pings), func(i int) bool { return pings[i].TimeS >= startS })
	hi := sort.Search(len(pings), func(i int) bool { return pings[i].TimeS > endS })
	clipped := pings[lo:hi]

	if len(clipped) == 0 {
		return []Hit{}, nil
	}

	v := VesselSeries{
		TimeS:  make([]int64, len(clipped)),
		LatDeg: make([]float64, len(clipped)),
		LonDeg: make([]float64, len(clipped)),
	}
	for i, p := range clipped {
		v.TimeS[i] = p.TimeS
		v.LatDeg[i] = p.LatDeg
		v.LonDeg[i] = p.LonDeg
	}

	cfg := KernelConfig{MinElevationRad: q.MinElevationRad, HalfEarth: q.HalfEarth}
	mask := ComputeHits(sat, v, cfg, q.Workers)

	hits := make([]Hit, 0, len(clipped))
	for i, p := range clipped {
		if mask[i] {
			hits = append(hits, Hit{MMSI: p.MMSI, TimeS: p.TimeS, LatDeg: p.LatDeg, LonDeg: p.LonDeg})
		}
	}

	return hits, nil
}

// timeBounds resolves the optional start/end query parameters against the
// natural range of pings when unset.
func timeBounds(pings []VesselPing, startTimeS, endTimeS *int64) (int64, int64) {
	var lo, hi int64
	if len(pings) > 0 {
		lo, hi = pings[0].TimeS, pings[len(pings)-1].TimeS
	}
	if startTimeS != nil {
		lo = *startTimeS
	}
	if endTimeS != nil {
		hi = *endTimeS
	}
	return lo, hi
}
