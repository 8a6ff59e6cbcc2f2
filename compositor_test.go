package satvis

import "testing"

func mkSat() SatSeries {
	return SatSeries{
		TimeS:  []int64{100, 200},
		LatDeg: []float64{40, 40},
		LonDeg: []float64{-150, -110},
		AltKm:  []float64{6571, 6571},
	}
}

func TestComputeHitsQueryShortTrackRejected(t *testing.T) {
	sat := SatSeries{TimeS: []int64{100}, LatDeg: []float64{0}, LonDeg: []float64{0}, AltKm: []float64{6571}}
	_, err := ComputeHitsQuery(sat, nil, HitQuery{})
	if err != ErrShortSatTrack {
		t.Fatalf("expected ErrShortSatTrack, got %v", err)
	}
}

func TestComputeHitsQueryMatchesKernelScenario(t *testing.T) {
	sat := mkSat()
	pings := []VesselPing{
		{MMSI: 1, TimeS: 110, LatDeg: 10, LonDeg: -145},
		{MMSI: 1, TimeS: 130, LatDeg: 35, LonDeg: -137},
		{MMSI: 1, TimeS: 150, LatDeg: 45, LonDeg: -124},
		{MMSI: 1, TimeS: 170, LatDeg: 70, LonDeg: -115},
	}

	hits, err := ComputeHitsQuery(sat, pings, HitQuery{Workers: 1})
	if err != nil {
		t.Fatalf("ComputeHitsQuery error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %+v", len(hits), hits)
	}
	if hits[0].TimeS != 130 || hits[1].TimeS != 150 {
		t.Errorf("unexpected hit timestamps: %+v", hits)
	}
	if hits[0].MMSI != 1 {
		t.Errorf("expected mmsi_id preserved through materialisation, got %d", hits[0].MMSI)
	}
}

func TestComputeHitsQueryEmptyClipYieldsEmptySet(t *testing.T) {
	sat := mkSat()
	pings := []VesselPing{{MMSI: 1, TimeS: 110, LatDeg: 10, LonDeg: -145}}
	start := int64(9000)
	end := int64(9100)

	hits, err := ComputeHitsQuery(sat, pings, HitQuery{StartTimeS: &start, EndTimeS: &end})
	if err != nil {
		t.Fatalf("ComputeHitsQuery error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty hit set outside the clip window, got %d", len(hits))
	}
}

func TestComputeHitsQueryHalfEarth(t *testing.T) {
	sat := mkSat()
	pings := []VesselPing{
		{MMSI: 7, TimeS: 110, LatDeg: 10, LonDeg: -145},
		{MMSI: 7, TimeS: 170, LatDeg: 70, LonDeg: -115},
	}
	hits, err := ComputeHitsQuery(sat, pings, HitQuery{HalfEarth: true})
	if err != nil {
		t.Fatalf("ComputeHitsQuery error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("half-earth mode should hit every in-range timestamp, got %d", len(hits))
	}
}
