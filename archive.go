package satvis

import (
	"bufio"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrNoTrackData is returned by TrackArchive.Get/GetRange when no entry
// exists for the requested norad_id.
var ErrNoTrackData = errors.New("satvis: no track data for norad id")

// trackMagic tags the archive's binary file format. A track is a 4xN
// matrix: row 0 is time in seconds since the Unix epoch, rows 1-3 are
// latitude (deg), longitude (deg), and geocentric radius (km), all
// float32, time strictly increasing.
const trackMagic = "SVTRK001"

// TrackArchive is the addressable per-satellite archive described in
// §4.6. It is backed by plain files on disk, sharded two levels deep by
// the hex digest of the decimal norad_id to avoid a flat directory with
// tens of thousands of entries.
type TrackArchive struct {
	root string
}

// NewTrackArchive opens (or targets, if not yet created) a track archive
// rooted at root.
func NewTrackArchive(root string) *TrackArchive {
	return &TrackArchive{root: root}
}

// pathFor returns the sharded path for norad_id, matching the hex-digest
// fanout scheme: <root>/<hh1>/<hh2>/<norad_id>.trk.
func (a *TrackArchive) pathFor(noradID uint32) string {
	sum := md5.Sum([]byte(strconv.FormatUint(uint64(noradID), 10)))
	hexdigest := fmt.Sprintf("%x", sum)
	return filepath.Join(a.root, hexdigest[0:2], hexdigest[2:4], strconv.FormatUint(uint64(noradID), 10)+".trk")
}

// Put writes the entire 4xN block for norad_id, atomically replacing any
// prior entry: the file is written to a temporary sibling then renamed
// into place, so concurrent readers see either the old or the new file
// in full, never a partial write.
func (a *TrackArchive) Put(noradID uint32, timeS, latDeg, lonDeg, altKm []float32) error {
	n := len(timeS)
	if len(latDeg) != n || len(lonDeg) != n || len(altKm) != n {
		return fmt.Errorf("%w: column lengths differ", ErrMismatchedLen)
	}

	path := a.pathFor(noradID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Join(ErrWriteTrackFile, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Join(ErrWriteTrackFile, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(trackMagic); err != nil {
		tmp.Close()
		return errors.Join(ErrWriteTrackFile, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(n)); err != nil {
		tmp.Close()
		return errors.Join(ErrWriteTrackFile, err)
	}
	for _, col := range [][]float32{timeS, latDeg, lonDeg, altKm} {
		if err := binary.Write(w, binary.LittleEndian, col); err != nil {
			tmp.Close()
			return errors.Join(ErrWriteTrackFile, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return errors.Join(ErrWriteTrackFile, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrWriteTrackFile, err)
	}

	return os.Rename(tmpName, path)
}

// readAll loads the full 4xN block for norad_id.
func (a *TrackArchive) readAll(noradID uint32) (timeS, latDeg, lonDeg, altKm []float32, err error) {
	path := a.pathFor(noradID)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, nil, ErrNoTrackData
		}
		return nil, nil, nil, nil, errors.Join(ErrReadTrackFile, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(trackMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != trackMagic {
		return nil, nil, nil, nil, fmt.Errorf("%w: bad magic in %s", ErrReadTrackFile, path)
	}

	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, nil, nil, errors.Join(ErrReadTrackFile, err)
	}

	cols := make([][]float32, 4)
	for i := range cols {
		cols[i] = make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, cols[i]); err != nil {
			return nil, nil, nil, nil, errors.Join(ErrReadTrackFile, err)
		}
	}

	return cols[0], cols[1], cols[2], cols[3], nil
}

// Get returns the full track for norad_id.
func (a *TrackArchive) Get(noradID uint32) (timeS, latDeg, lonDeg, altKm []float32, err error) {
	return a.readAll(noradID)
}

// GetRange returns columns [lo, hi) where lo = lower_bound(start_s) and
// hi = lower_bound(end_s) over the time row, per §4.6. Columns whose
// timestamp duplicates an earlier one are dropped, keeping the first
// occurrence (stable).
func (a *TrackArchive) GetRange(noradID uint32, startS, endS float32) (timeS, latDeg, lonDeg, altKm []float32, err error) {
	t, lat, lon, alt, err := a.readAll(noradID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	lo := lowerBoundF32(t, startS)
	hi := lowerBoundF32(t, endS)
	if hi < lo {
		hi = lo
	}

	t, lat, lon, alt = t[lo:hi], lat[lo:hi], lon[lo:hi], alt[lo:hi]

	seen := make(map[float32]struct{}, len(t))
	keepIdx := make([]int, 0, len(t))
	for i, ts := range t {
		if _, dup := seen[ts]; dup {
			continue
		}
		seen[ts] = struct{}{}
		keepIdx = append(keepIdx, i)
	}
	if len(keepIdx) == len(t) {
		return t, lat, lon, alt, nil
	}

	outT := make([]float32, len(keepIdx))
	outLat := make([]float32, len(keepIdx))
	outLon := make([]float32, len(keepIdx))
	outAlt := make([]float32, len(keepIdx))
	for j, i := range keepIdx {
		outT[j], outLat[j], outLon[j], outAlt[j] = t[i], lat[i], lon[i], alt[i]
	}
	return outT, outLat, outLon, outAlt, nil
}

// Timespan returns the minimum and maximum time_s recorded for norad_id.
func (a *TrackArchive) Timespan(noradID uint32) (minS, maxS float32, err error) {
	t, _, _, _, err := a.readAll(noradID)
	if err != nil {
		return 0, 0, err
	}
	if len(t) == 0 {
		return 0, 0, ErrNoTrackData
	}
	return t[0], t[len(t)-1], nil
}

// ListIDs walks the sharded tree and returns every norad_id present.
func (a *TrackArchive) ListIDs() ([]uint32, error) {
	var ids []uint32
	err := filepath.Walk(a.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".trk" {
			return nil
		}
		base := filepath.Base(path)
		idStr := base[:len(base)-len(".trk")]
		id, convErr := strconv.ParseUint(idStr, 10, 32)
		if convErr != nil {
			return nil
		}
		ids = append(ids, uint32(id))
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrReadTrackFile, err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// lowerBoundF32 returns the index of the first element >= target in a
// sorted slice, matching np.searchsorted's default ("left") behaviour.
func lowerBoundF32(xs []float32, target float32) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mid := (lo + hi) / 2
		if xs[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
