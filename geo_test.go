package satvis

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNormalizeLon(t *testing.T) {
	cases := map[float64]float64{
		0:     0,
		180:   180,
		181:   -179,
		-181:  179,
		360:   0,
		-360:  0,
		540:   180,
		-540:  180,
		359.9: -0.1,
	}
	for in, want := range cases {
		got := NormalizeLon(in)
		if !almostEqual(got, want, 1e-9) {
			t.Errorf("NormalizeLon(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestHaversineAngleZero(t *testing.T) {
	got := HaversineAngle(-150, 40, -150, 40)
	if !almostEqual(got, 0, 1e-12) {
		t.Errorf("expected zero angle for identical points, got %v", got)
	}
}

func TestHaversineAngleAntipodal(t *testing.T) {
	got := HaversineAngle(0, 0, 180, 0)
	if !almostEqual(got, math.Pi, 1e-9) {
		t.Errorf("expected pi for antipodal points, got %v", got)
	}
}

func TestFovHalfAngleTangentLimit(t *testing.T) {
	r := EarthRadiusKm + 200 // 200km LEO-ish altitude
	got := FovHalfAngle(r, EarthRadiusKm, 0)
	want := math.Acos(EarthRadiusKm / r)
	if !almostEqual(got, want, 1e-12) {
		t.Errorf("FovHalfAngle tangent limit = %v, want %v", got, want)
	}
}

func TestFovHalfAngleHalfEarth(t *testing.T) {
	got := FovHalfAngle(math.Inf(1), EarthRadiusKm, 0)
	if !almostEqual(got, math.Pi/2, 1e-12) {
		t.Errorf("FovHalfAngle(+Inf) = %v, want pi/2", got)
	}
}

func TestFovHalfAngleMonotonicWithElevation(t *testing.T) {
	r := EarthRadiusKm + 600
	low := FovHalfAngle(r, EarthRadiusKm, 0)
	high := FovHalfAngle(r, EarthRadiusKm, 10*deg2rad)
	if !(high < low) {
		t.Errorf("raising min horizon elevation should shrink the FOV cap: low=%v high=%v", low, high)
	}
}

func TestVisiblePredicate(t *testing.T) {
	thetaMax := FovHalfAngle(EarthRadiusKm+200, EarthRadiusKm, 0)
	if !Visible(-150, 40, -150.01, 40.01, thetaMax) {
		t.Errorf("point near the sub-satellite point should be visible")
	}
	if Visible(-150, 40, 60, -40, thetaMax) {
		t.Errorf("antipodal-ish point should not be visible")
	}
}
