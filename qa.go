package satvis

import (
	"time"

	"github.com/samber/lo"
)

// TLEQuality summarises the health of one satellite's TLE history before
// it is handed to the window planner: whether epochs repeat, and how many
// distinct element set numbers appear across the whole history.
type TLEQuality struct {
	NumRecords      int
	DuplicateEpochs []time.Time
	UniqueElSets    int
}

// AssessTLEQuality inspects records for a single norad_id and reports
// duplicate epochs. Duplicate epochs are not an error (the tie is broken
// by element set number, §4.2) but are worth surfacing since they usually
// indicate two near-simultaneous publications of the same element set.
func AssessTLEQuality(records []TLERecord) TLEQuality {
	timestamps := make([]time.Time, len(records))
	elsets := make([]uint64, len(records))
	for i, r := range records {
		timestamps[i] = time.Unix(int64(r.Epoch), 0).UTC()
		elsets[i] = uint64(r.ElementSetNumber)
	}

	duplicates := lo.FindDuplicates(timestamps)
	unique := lo.Union(elsets)

	return TLEQuality{
		NumRecords:      len(records),
		DuplicateEpochs: duplicates,
		UniqueElSets:    len(unique),
	}
}
