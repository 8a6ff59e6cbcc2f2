package satvis

import (
	"log"
	"math"
)

// MaxExtrapSeconds bounds how far a single TLE's validity window may be
// extrapolated away from its own epoch, per §4.3.
const MaxExtrapSeconds = 7 * 24 * 3600

// ValidityWindow is a half-open [StartS, EndS) interval over which Line1/
// Line2 are considered valid for propagation. StartS and EndS are floored
// to whole minutes; windows for one satellite never overlap and are
// ordered by StartS.
type ValidityWindow struct {
	StartS, EndS int64
	Line1, Line2 string
}

// floorToMinute floors an epoch, in seconds, to the start of its minute.
func floorToMinute(epochS float64) int64 {
	return int64(math.Floor(epochS/60.0)) * 60
}

// PlanWindows turns a sorted sequence of TLE records for one satellite into
// validity windows, §4.3. Windows shorter than 60 seconds after flooring
// are dropped with a warning. Input must already be sorted by epoch; the
// kernel contract requires sorted input rather than re-sorting it here.
func PlanWindows(records []TLERecord) []ValidityWindow {
	n := len(records)
	if n == 0 {
		return nil
	}

	windows := make([]ValidityWindow, 0, n)

	for i, rec := range records {
		var start, end float64

		if i == 0 {
			start = rec.Epoch
		} else {
			halfway := (records[i-1].Epoch + rec.Epoch) / 2
			backstop := rec.Epoch - MaxExtrapSeconds
			start = math.Max(halfway, backstop)
		}

		if i == n-1 {
			end = rec.Epoch
		} else {
			halfway := (rec.Epoch + records[i+1].Epoch) / 2
			forwardstop := rec.Epoch + MaxExtrapSeconds
			end = math.Min(halfway, forwardstop)
		}

		startS := floorToMinute(start)
		endS := floorToMinute(end)

		if endS-startS <= 60 {
			log.Printf("satvis: window planner: dropping window shorter than 60s for norad_id=%d epoch=%v (start=%d end=%d)", rec.NoradID, rec.Epoch, startS, endS)
			continue
		}

		windows = append(windows, ValidityWindow{
			StartS: startS,
			EndS:   endS,
			Line1:  rec.Line1,
			Line2:  rec.Line2,
		})
	}

	return windows
}
