package satvis

import "testing"

// fakeTLEStore is an in-memory TLEStore used only by tests that need a
// TLEStore without a tiledb array on disk.
type fakeTLEStore struct {
	byID map[uint32][]TLERecord
}

func (f *fakeTLEStore) ListNoradIDs() ([]uint32, error) {
	ids := make([]uint32, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeTLEStore) TLEsFor(noradID uint32) ([]TLERecord, error) {
	return f.byID[noradID], nil
}

func (f *fakeTLEStore) Clip(startS, endS int64) TLEStore { return f }

// failingPropagator always errors, used to exercise the "all windows
// failing" no-data path.
type failingPropagator struct{}

func (failingPropagator) Propagate(_, _ string, _, _ int64, _ int64) ([]GeodeticPoint, error) {
	return nil, ErrBadTLEPair
}

func TestTrackBuilderNoTLEData(t *testing.T) {
	store := &fakeTLEStore{byID: map[uint32][]TLERecord{}}
	builder := NewTrackBuilder(store, CircularOrbitPropagator{AltKm: 500, PeriodS: 5400, InclDeg: 51.6}, NewTrackArchive(t.TempDir()))

	ok, err := builder.Build(1)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if ok {
		t.Errorf("expected no-data result for a satellite with no TLEs")
	}
}

func TestTrackBuilderHappyPath(t *testing.T) {
	store := &fakeTLEStore{byID: map[uint32][]TLERecord{
		25544: {
			{Epoch: 0, NoradID: 25544, Line1: "L1", Line2: "L2", ElementSetNumber: 1},
			{Epoch: 3600, NoradID: 25544, Line1: "L1b", Line2: "L2b", ElementSetNumber: 2},
		},
	}}
	archive := NewTrackArchive(t.TempDir())
	builder := NewTrackBuilder(store, CircularOrbitPropagator{AltKm: 500, PeriodS: 5400, InclDeg: 51.6}, archive)

	ok, err := builder.Build(25544)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a successful build")
	}

	timeS, _, _, _, err := archive.Get(25544)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(timeS) == 0 {
		t.Errorf("expected a non-empty track")
	}
}

func TestTrackBuilderAllWindowsFail(t *testing.T) {
	store := &fakeTLEStore{byID: map[uint32][]TLERecord{
		25544: {
			{Epoch: 0, NoradID: 25544, Line1: "L1", Line2: "L2", ElementSetNumber: 1},
			{Epoch: 3600, NoradID: 25544, Line1: "L1b", Line2: "L2b", ElementSetNumber: 2},
		},
	}}
	builder := NewTrackBuilder(store, failingPropagator{}, NewTrackArchive(t.TempDir()))

	ok, err := builder.Build(25544)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if ok {
		t.Errorf("expected no-data result when every window's propagation fails")
	}
}
