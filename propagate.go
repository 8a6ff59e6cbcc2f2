package satvis

import (
	"errors"
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// GeodeticPoint is a single propagated sample: geodetic latitude/longitude
// in degrees, altitude in kilometres, at TimeS (Unix seconds).
type GeodeticPoint struct {
	TimeS  int64
	LatDeg float64
	LonDeg float64
	AltKm  float64
}

// Propagator turns a validity window's TLE pair into minute-resolution
// geodetic samples covering [startS, endS). Implementations are expected
// to be stateless and safe for concurrent use across windows, matching the
// kernel's data-parallel dispatch.
type Propagator interface {
	Propagate(line1, line2 string, startS, endS int64, stepS int64) ([]GeodeticPoint, error)
}

// ErrBadTLEPair is returned when an SGP4 propagator cannot initialise a
// satellite from the given TLE lines.
var ErrBadTLEPair = errors.New("satvis: invalid TLE pair")

// SGP4Propagator is the production Propagator, backed by a standard SGP4
// implementation. Longitude is normalised into (-180, 180] per the
// project-wide convention; altitude is reported in kilometres above the
// WGS-84 ellipsoid.
type SGP4Propagator struct{}

// Propagate samples the orbit defined by line1/line2 every stepS seconds
// over [startS, endS), inclusive of startS and exclusive of endS, matching
// how ValidityWindow boundaries are defined.
func (SGP4Propagator) Propagate(line1, line2 string, startS, endS int64, stepS int64) ([]GeodeticPoint, error) {
	if stepS <= 0 {
		return nil, fmt.Errorf("%w: non-positive step", ErrBadTLEPair)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: sgp4 init error code %d", ErrBadTLEPair, sat.Error)
	}

	n := int((endS - startS) / stepS)
	if n <= 0 {
		return nil, nil
	}

	out := make([]GeodeticPoint, 0, n)
	for i := 0; i < n; i++ {
		ts := startS + int64(i)*stepS
		t := time.Unix(ts, 0).UTC()

		eci, _ := satellite.Propagate(sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

		gmst := satellite.GSTimeFromDate(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
		altKm, ll, err := eciToLLA(eci, gmst)
		if err != nil {
			return nil, err
		}

		out = append(out, GeodeticPoint{
			TimeS:  ts,
			LatDeg: ll.Latitude,
			LonDeg: NormalizeLon(ll.Longitude),
			AltKm:  altKm,
		})
	}

	return out, nil
}

// eciToLLA adapts satellite.ECIToLLA's (LatLong, altitude) return into the
// (altitude, LatLong) order used locally, and converts its radian output
// to degrees.
func eciToLLA(eci satellite.Vector3, gmst float64) (float64, satellite.LatLong, error) {
	ll, altKm := satellite.ECIToLLA(eci, gmst)
	ll.Latitude = ll.Latitude * satellite.RAD2DEG
	ll.Longitude = ll.Longitude * satellite.RAD2DEG
	return altKm, ll, nil
}
