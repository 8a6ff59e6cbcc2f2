package satvis

import (
	"log"
)

// StepSeconds is the minute-resolution sampling cadence used by the track
// builder and propagator adapter throughout §4.
const StepSeconds = 60

// TrackBuilder turns a satellite's TLE history into a precomputed geodetic
// track, written to a TrackArchive, per §4.5.
type TrackBuilder struct {
	TLEs       TLEStore
	Propagator Propagator
	Archive    *TrackArchive
}

// NewTrackBuilder wires a TLE store, a propagator adapter, and a track
// archive into a single build(norad_id) operation.
func NewTrackBuilder(tles TLEStore, prop Propagator, archive *TrackArchive) *TrackBuilder {
	return &TrackBuilder{TLEs: tles, Propagator: prop, Archive: archive}
}

// Build executes the five steps of §4.5 for one satellite: fetch TLEs,
// plan windows, propagate each window, concatenate into a 4xN matrix, and
// write it to the archive. It reports ok=false with no error when the
// plan produced no usable windows ("no data"), matching the "all windows
// failing is reported as no data" failure mode.
func (b *TrackBuilder) Build(noradID uint32) (ok bool, err error) {
	records, err := b.TLEs.TLEsFor(noradID)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}

	windows := PlanWindows(records)
	if len(windows) == 0 {
		return false, nil
	}

	var timeS, latDeg, lonDeg, altKm []float32

	for _, w := range windows {
		points, propErr := b.Propagator.Propagate(w.Line1, w.Line2, w.StartS, w.EndS, StepSeconds)
		if propErr != nil {
			log.Printf("satvis: track builder: norad_id=%d window [%d,%d) propagation failed, skipping: %v", noradID, w.StartS, w.EndS, propErr)
			continue
		}
		for _, p := range points {
			timeS = append(timeS, float32(p.TimeS))
			latDeg = append(latDeg, float32(p.LatDeg))
			lonDeg = append(lonDeg, float32(p.LonDeg))
			// the archive stores geocentric radius: altitude plus mean Earth radius
			altKm = append(altKm, float32(EarthRadiusKm+p.AltKm))
		}
	}

	if len(timeS) == 0 {
		return false, nil
	}

	if err := b.Archive.Put(noradID, timeS, latDeg, lonDeg, altKm); err != nil {
		return false, err
	}

	return true, nil
}
