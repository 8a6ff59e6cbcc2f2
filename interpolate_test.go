package satvis

import "testing"

func TestInterpolateTrackFillsGap(t *testing.T) {
	pings := []VesselPing{
		{MMSI: 1, TimeS: 0, LatDeg: 0, LonDeg: 0},
		{MMSI: 1, TimeS: 900, LatDeg: 0, LonDeg: 1},
	}
	out := InterpolateTrack(pings, 300, 200)

	if len(out) != 4 {
		t.Fatalf("expected 2 original + 2 synthesized points, got %d: %+v", len(out), out)
	}
	if out[0].TimeS != 0 || out[3].TimeS != 900 {
		t.Errorf("original endpoints must be preserved, got %+v", out)
	}
	if out[1].TimeS != 300 || out[2].TimeS != 600 {
		t.Errorf("expected synthesized points at +300/+600s, got %+v", out)
	}
}

func TestInterpolateTrackSkipsAcrossMMSI(t *testing.T) {
	pings := []VesselPing{
		{MMSI: 1, TimeS: 0, LatDeg: 0, LonDeg: 0},
		{MMSI: 2, TimeS: 900, LatDeg: 0, LonDeg: 1},
	}
	out := InterpolateTrack(pings, 300, 200)
	if len(out) != 2 {
		t.Fatalf("expected no gap filling across mmsi boundary, got %d: %+v", len(out), out)
	}
}

func TestInterpolateTrackSkipsDiscontinuity(t *testing.T) {
	pings := []VesselPing{
		{MMSI: 1, TimeS: 0, LatDeg: 0, LonDeg: 0},
		{MMSI: 1, TimeS: 900, LatDeg: 40, LonDeg: 100},
	}
	out := InterpolateTrack(pings, 300, 200)
	if len(out) != 2 {
		t.Fatalf("expected no gap filling beyond max distance, got %d: %+v", len(out), out)
	}
}

func TestInterpolateTrackAdditive(t *testing.T) {
	pings := []VesselPing{
		{MMSI: 1, TimeS: 0, LatDeg: 0, LonDeg: 0},
		{MMSI: 1, TimeS: 30, LatDeg: 0, LonDeg: 0.01},
		{MMSI: 1, TimeS: 1000, LatDeg: 0, LonDeg: 0.02},
	}
	out := InterpolateTrack(pings, 300, 200)

	var originalIdx []int
	for i, p := range out {
		for _, in := range pings {
			if p.MMSI == in.MMSI && p.TimeS == in.TimeS && p.LatDeg == in.LatDeg && p.LonDeg == in.LonDeg {
				originalIdx = append(originalIdx, i)
			}
		}
	}
	if len(originalIdx) != len(pings) {
		t.Fatalf("every input row must appear in the output, found %d of %d", len(originalIdx), len(pings))
	}
}
