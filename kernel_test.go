package satvis

import (
	"math"
	"testing"
)

func TestIntersectTwoPointFourPings(t *testing.T) {
	sat := SatSeries{
		TimeS:  []int64{100, 200},
		LatDeg: []float64{40, 40},
		LonDeg: []float64{-150, -110},
		AltKm:  []float64{6571, 6571},
	}
	v := VesselSeries{
		TimeS:  []int64{110, 130, 150, 170},
		LatDeg: []float64{10, 35, 45, 70},
		LonDeg: []float64{-145, -137, -124, -115},
	}

	hit := make([]bool, len(v.TimeS))
	Intersect(sat, v, KernelConfig{}, hit)

	want := []bool{false, true, true, false}
	for i := range want {
		if hit[i] != want[i] {
			t.Errorf("hit[%d] = %v, want %v", i, hit[i], want[i])
		}
	}
}

func TestIntersectBeforeSatRangeAllFalse(t *testing.T) {
	sat := SatSeries{TimeS: []int64{100, 200}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 10}, AltKm: []float64{6571, 6571}}
	v := VesselSeries{TimeS: []int64{50, 60}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 0}}
	hit := make([]bool, 2)
	Intersect(sat, v, KernelConfig{}, hit)
	if hit[0] || hit[1] {
		t.Errorf("vessel timestamps before sat_time[0] must all be false, got %v", hit)
	}
}

func TestIntersectAtOrPastLastSampleAllFalse(t *testing.T) {
	sat := SatSeries{TimeS: []int64{100, 200}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 10}, AltKm: []float64{6571, 6571}}
	v := VesselSeries{TimeS: []int64{200, 250}, LatDeg: []float64{0, 0}, LonDeg: []float64{10, 10}}
	hit := make([]bool, 2)
	Intersect(sat, v, KernelConfig{}, hit)
	if hit[0] || hit[1] {
		t.Errorf("vessel timestamps >= sat_time[m-1] must all be false, got %v", hit)
	}
}

func TestIntersectHalfEarthCoversRange(t *testing.T) {
	sat := SatSeries{TimeS: []int64{0, 100}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 10}, AltKm: []float64{6571, 6571}}
	v := VesselSeries{
		TimeS:  []int64{-10, 0, 50, 99, 100},
		LatDeg: []float64{80, -60, 10, 10, 10},
		LonDeg: []float64{170, -60, 5, 5, 5},
	}
	hit := make([]bool, len(v.TimeS))
	Intersect(sat, v, KernelConfig{HalfEarth: true}, hit)

	want := []bool{false, true, true, true, false}
	for i := range want {
		if hit[i] != want[i] {
			t.Errorf("half-earth hit[%d] = %v, want %v", i, hit[i], want[i])
		}
	}
}

func TestIntersectDuplicateTimestampsShareCache(t *testing.T) {
	sat := SatSeries{TimeS: []int64{0, 100}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 10}, AltKm: []float64{6571, 6571}}
	v := VesselSeries{TimeS: []int64{50, 50, 50}, LatDeg: []float64{5, 5, 5}, LonDeg: []float64{5, 5, 5}}
	hit := make([]bool, 3)
	Intersect(sat, v, KernelConfig{}, hit)
	if hit[0] != hit[1] || hit[1] != hit[2] {
		t.Errorf("duplicate timestamps must resolve identically, got %v", hit)
	}
}

func TestComputeHitsWorkerInvariance(t *testing.T) {
	const m = 4000
	sat := SatSeries{
		TimeS:  make([]int64, m),
		LatDeg: make([]float64, m),
		LonDeg: make([]float64, m),
		AltKm:  make([]float64, m),
	}
	for i := 0; i < m; i++ {
		sat.TimeS[i] = int64(i) * 30
		sat.LatDeg[i] = 30
		sat.LonDeg[i] = NormalizeLon(-110 + 10*float64(i)/float64(m-1))
		sat.AltKm[i] = 6571
	}

	const n = 2048
	v := VesselSeries{
		TimeS:  make([]int64, n),
		LatDeg: make([]float64, n),
		LonDeg: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		v.TimeS[i] = int64(30 + frac*float64(sat.TimeS[m-1]-30-30))
		v.LatDeg[i] = 25 + 15*frac
		v.LonDeg[i] = -108 + 6*frac
	}

	baseline := ComputeHits(sat, v, KernelConfig{}, 1)

	for _, w := range []int{2, 4, 8} {
		got := ComputeHits(sat, v, KernelConfig{}, w)
		if len(got) != len(baseline) {
			t.Fatalf("workers=%d: length %d, want %d", w, len(got), len(baseline))
		}
		for i := range baseline {
			if got[i] != baseline[i] {
				t.Fatalf("workers=%d: hit[%d] = %v, want %v (worker-invariance violated)", w, i, got[i], baseline[i])
			}
		}
	}
}

func TestComputeHitsPreservesLength(t *testing.T) {
	sat := SatSeries{TimeS: []int64{0, 100}, LatDeg: []float64{0, 0}, LonDeg: []float64{0, 10}, AltKm: []float64{6571, 6571}}
	v := VesselSeries{TimeS: []int64{10, 20, 30, 40, 50, 60}, LatDeg: []float64{0, 0, 0, 0, 0, 0}, LonDeg: []float64{1, 2, 3, 4, 5, 6}}
	hit := ComputeHits(sat, v, KernelConfig{}, 2)
	if len(hit) != len(v.TimeS) {
		t.Fatalf("ComputeHits length = %d, want %d", len(hit), len(v.TimeS))
	}
}

func TestChooseWorkersDoubles(t *testing.T) {
	if w := chooseWorkers(1024, 0); w != 32 {
		t.Errorf("chooseWorkers(1024, 0) = %d, want 32 (doubles until n mod 2W != 0 or W==32)", w)
	}
	if w := chooseWorkers(12, 0); w != 4 {
		t.Errorf("chooseWorkers(12, 0) = %d, want 4 (12 mod 8 != 0)", w)
	}
	if w := chooseWorkers(100, 7); w != 7 {
		t.Errorf("chooseWorkers with caller-fixed want should not be overridden, got %d", w)
	}
}

func TestFovHalfAngleMonotonicWithAltitude(t *testing.T) {
	low := FovHalfAngle(6571, EarthRadiusKm, 0)
	high := FovHalfAngle(36000, EarthRadiusKm, 0)
	if !(low < high) {
		t.Errorf("FOV half-angle should grow with altitude: low=%v high=%v", low, high)
	}
	if math.IsNaN(low) || math.IsNaN(high) {
		t.Fatalf("FOV half-angle produced NaN")
	}
}
