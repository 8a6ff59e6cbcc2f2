package satvis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/soniakeys/meeus/v3/julian"
)

// TLERecord is one ingested Two-Line-Element entry. Epoch is seconds since
// the Unix epoch; Line1 and Line2 are the verbatim 69-byte ASCII TLE lines.
// ElementSetNumber is the SGP4 "element set number" encoded in Line1,
// used only to break epoch ties when ordering records for a satellite.
type TLERecord struct {
	Epoch            float64
	NoradID          uint32
	Line1            string
	Line2            string
	ElementSetNumber int64
}

// tleAttrs is a struct-tag carrier used purely to drive schemaAttrs; it is
// never instantiated with data.
type tleAttrs struct {
	EpochS  []float64 `tiledb:"dtype=float64,ftype=dim"`
	NoradID []int64   `tiledb:"dtype=int64,ftype=dim"`
	Line1   []string  `tiledb:"dtype=string,ftype=attr,fixed=69" filters:"zstd(level=16)"`
	Line2   []string  `tiledb:"dtype=string,ftype=attr,fixed=69" filters:"zstd(level=16)"`
	ElSet   []int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=9)"`
}

// TLEStore is the read-only, queryable archive of TLE records described in
// the data model: a columnar store keyed by (epoch_s, norad_id) with a
// secondary index on norad_id.
type TLEStore interface {
	ListNoradIDs() ([]uint32, error)
	TLEsFor(noradID uint32) ([]TLERecord, error)
	Clip(startS, endS int64) TLEStore
}

// TileDBTLEStore is a TLEStore backed by a single sparse tiledb array. Each
// cell is addressed by (epoch_s, norad_id); unknown ids simply have no
// cells and yield an empty sequence rather than an error.
type TileDBTLEStore struct {
	ctx     *tiledb.Context
	config  *tiledb.Config
	uri     string
	lo, hi  int64 // epoch clip range, inclusive; meaningless unless clipped
	clipped bool
	owned   bool // true only for the store returned by NewTLEStore
}

// NewTLEStore opens an existing TLE archive for reading.
func NewTLEStore(uri, configURI string) (*TileDBTLEStore, error) {
	ctx, config, err := newContext(configURI)
	if err != nil {
		return nil, err
	}
	return &TileDBTLEStore{ctx: ctx, config: config, uri: uri, owned: true}, nil
}

// Close releases the underlying tiledb context and config. Views returned
// by Clip share their parent's context and are not closed independently.
func (s *TileDBTLEStore) Close() {
	if !s.owned {
		return
	}
	if s.ctx != nil {
		s.ctx.Free()
	}
	if s.config != nil {
		s.config.Free()
	}
}

// CreateTLEArray creates an empty sparse TLE array at uri.
func CreateTLEArray(ctx *tiledb.Context, uri string) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateTleTdb, err)
	}
	defer domain.Free()

	epoch_dim, err := CreateDim(ctx, "EpochS", tiledb.TILEDB_FLOAT64, float64(0), float64(1<<62), float64(86400))
	if err != nil {
		return errors.Join(ErrCreateDimTdb, err)
	}
	defer epoch_dim.Free()

	norad_dim, err := CreateDim(ctx, "NoradID", tiledb.TILEDB_INT64, int64(0), int64(999999), int64(1000))
	if err != nil {
		return errors.Join(ErrCreateDimTdb, err)
	}
	defer norad_dim.Free()

	if err = domain.AddDimensions(epoch_dim, norad_dim); err != nil {
		return errors.Join(ErrCreateDimTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}
	defer schema.Free()

	if err = schema.SetDomain(domain); err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}
	if err = schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}
	if err = schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}
	if err = schema.SetCapacity(100000); err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}
	if err = schema.SetAllowsDups(false); err != nil {
		return errors.Join(ErrCreateSchemaTdb, err)
	}

	if err = schemaAttrs(&tleAttrs{}, schema, ctx); err != nil {
		return err
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrCreateArrayTdb, err)
	}
	defer array.Free()

	if err = array.Create(schema); err != nil {
		return errors.Join(ErrCreateArrayTdb, err)
	}

	// Record the units/convention this archive was written with, per
	// Design Notes 9 ("altitude units drift... the archive header records
	// units"): epoch is seconds since the Unix epoch, TLE lines are
	// verbatim ASCII, no altitude column exists in this array (the track
	// archive carries altitude).
	meta := map[string]string{"epoch_units": "seconds_since_unix_epoch", "tle_line_width": "69"}
	if err := WriteArrayMetadata(ctx, uri, "schema", meta); err != nil {
		return errors.Join(ErrCreateArrayTdb, err)
	}

	return nil
}

// IngestTLEs appends a batch of TLE records to the archive at uri, creating
// it first if it does not yet exist. Records are immutable once ingested;
// repeated ingestion simply adds another fragment.
func IngestTLEs(ctx *tiledb.Context, uri string, records []TLERecord) error {
	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		if createErr := CreateTLEArray(ctx, uri); createErr != nil {
			return errors.Join(ErrWriteTleTdb, err, createErr)
		}
		array, err = ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
		if err != nil {
			return errors.Join(ErrWriteTleTdb, err)
		}
	}
	defer array.Free()
	defer array.Close()

	n := len(records)
	epochs := make([]float64, n)
	norads := make([]int64, n)
	l1 := make([]string, n)
	l2 := make([]string, n)
	elset := make([]int64, n)
	for i, r := range records {
		epochs[i] = r.Epoch
		norads[i] = int64(r.NoradID)
		l1[i] = r.Line1
		l2[i] = r.Line2
		elset[i] = r.ElementSetNumber
	}

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}
	defer query.Free()

	if err = query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}

	if _, err = query.SetDataBuffer("EpochS", epochs); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}
	if _, err = query.SetDataBuffer("NoradID", norads); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}
	if _, err = query.SetDataBuffer("Line1", joinFixed(l1, 69)); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}
	if _, err = query.SetDataBuffer("Line2", joinFixed(l2, 69)); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}
	if _, err = query.SetDataBuffer("ElSet", elset); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}

	if err = query.Submit(); err != nil {
		return errors.Join(ErrWriteTleTdb, err)
	}

	return query.Finalize()
}

// IngestTLEArchive opens (creating if necessary) the TLE archive at uri and
// appends records to it, managing its own tiledb context/config from
// configURI. This is the entry point the CLI and other one-shot callers use;
// long-lived readers should instead go through NewTLEStore.
func IngestTLEArchive(uri, configURI string, records []TLERecord) error {
	ctx, config, err := newContext(configURI)
	if err != nil {
		return err
	}
	defer ctx.Free()
	defer config.Free()

	return IngestTLEs(ctx, uri, records)
}

// joinFixed pads or truncates each string to width bytes and concatenates
// them, matching the fixed-cell-width encoding tiledb expects for a
// `fixed=N` string attribute.
func joinFixed(values []string, width int) []byte {
	out := make([]byte, 0, len(values)*width)
	for _, v := range values {
		b := []byte(v)
		if len(b) > width {
			b = b[:width]
		}
		out = append(out, b...)
		for i := len(b); i < width; i++ {
			out = append(out, ' ')
		}
	}
	return out
}

// splitFixed is the inverse of joinFixed.
func splitFixed(data []byte, width int) []string {
	n := len(data) / width
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = string(data[i*width : (i+1)*width])
	}
	return out
}

// ListNoradIDs returns the sorted set of distinct NORAD ids present.
func (s *TileDBTLEStore) ListNoradIDs() ([]uint32, error) {
	array, err := ArrayOpen(s.ctx, s.uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(s.ctx, array)
	if err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	defer query.Free()

	const capacity = 1 << 20
	epochs := make([]float64, capacity)
	norads := make([]int64, capacity)

	if _, err = query.SetDataBuffer("EpochS", epochs); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if _, err = query.SetDataBuffer("NoradID", norads); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if err = query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}

	// A fixed-capacity buffer can legitimately fill before the array is
	// exhausted, in which case tiledb reports TILEDB_INCOMPLETE rather than
	// an error; resubmitting the same query continues where the last
	// submission left off, so the full id set is collected across however
	// many rounds it takes rather than silently truncated at `capacity`.
	seen := make(map[uint32]struct{})
	for {
		if err = query.Submit(); err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}

		elems, err := query.ResultBufferElements()
		if err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}
		n := elems["NoradID"][1]
		for i := uint64(0); i < n; i++ {
			seen[uint32(norads[i])] = struct{}{}
		}

		status, err := query.Status()
		if err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}
		if status != tiledb.TILEDB_INCOMPLETE {
			break
		}
	}

	out := make([]uint32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

// TLEsFor returns every TLE record for noradID, sorted by epoch ascending,
// ties broken by element set number ascending. An unknown id yields an
// empty, non-error result.
func (s *TileDBTLEStore) TLEsFor(noradID uint32) ([]TLERecord, error) {
	array, err := ArrayOpen(s.ctx, s.uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(s.ctx, array)
	if err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	defer query.Free()

	subarr, err := array.NewSubarray()
	if err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	defer subarr.Free()

	epochLo, epochHi := s.loHi()
	if err = subarr.AddRangeByName("EpochS", tiledb.MakeRange(epochLo, epochHi)); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if err = subarr.AddRangeByName("NoradID", tiledb.MakeRange(int64(noradID), int64(noradID))); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if err = query.SetSubarray(subarr); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}

	const capacity = 1 << 16
	epochs := make([]float64, capacity)
	l1buf := make([]byte, capacity*69)
	l2buf := make([]byte, capacity*69)
	elset := make([]int64, capacity)

	if _, err = query.SetDataBuffer("EpochS", epochs); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if _, err = query.SetDataBuffer("Line1", l1buf); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if _, err = query.SetDataBuffer("Line2", l2buf); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if _, err = query.SetDataBuffer("ElSet", elset); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}
	if err = query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return nil, errors.Join(ErrReadTleTdb, err)
	}

	// As in ListNoradIDs, a fixed-capacity buffer can fill before a prolific
	// satellite's full history has been read back; resubmit while tiledb
	// reports TILEDB_INCOMPLETE, each round reading only the `n` buffer
	// elements it actually filled before the next Submit overwrites them.
	var out []TLERecord
	for {
		if err = query.Submit(); err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}

		elems, err := query.ResultBufferElements()
		if err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}
		n := elems["EpochS"][1]

		lines1 := splitFixed(l1buf[:n*69], 69)
		lines2 := splitFixed(l2buf[:n*69], 69)

		for i := uint64(0); i < n; i++ {
			out = append(out, TLERecord{
				Epoch:            epochs[i],
				NoradID:          noradID,
				Line1:            lines1[i],
				Line2:            lines2[i],
				ElementSetNumber: elset[i],
			})
		}

		status, err := query.Status()
		if err != nil {
			return nil, errors.Join(ErrReadTleTdb, err)
		}
		if status != tiledb.TILEDB_INCOMPLETE {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Epoch != out[j].Epoch {
			return out[i].Epoch < out[j].Epoch
		}
		return out[i].ElementSetNumber < out[j].ElementSetNumber
	})

	return out, nil
}

// Clip returns a view of the store restricted to epochs in [startS, endS].
func (s *TileDBTLEStore) Clip(startS, endS int64) TLEStore {
	return &TileDBTLEStore{
		ctx: s.ctx, config: s.config, uri: s.uri,
		lo: startS, hi: endS, clipped: true,
	}
}

func (s *TileDBTLEStore) loHi() (float64, float64) {
	if !s.clipped {
		return 0, float64(1 << 62)
	}
	return float64(s.lo), float64(s.hi)
}

// ParseTLEEpoch extracts the epoch (seconds since Unix epoch) encoded in a
// TLE's Line1, used at ingest time to set each record's epoch from its own
// lines, so the stored epoch equals the one the TLE encodes.
// Columns 19-20 hold the two-digit epoch year; columns 21-32 hold the
// fractional day-of-year.
func ParseTLEEpoch(line1 string) (float64, error) {
	if len(line1) < 32 {
		return 0, fmt.Errorf("%w: line1 too short", ErrMalformedTLE)
	}

	var yy int
	var day float64
	if _, err := fmt.Sscanf(line1[18:20], "%d", &yy); err != nil {
		return 0, fmt.Errorf("%w: parsing epoch year: %v", ErrMalformedTLE, err)
	}
	if _, err := fmt.Sscanf(line1[20:32], "%f", &day); err != nil {
		return 0, fmt.Errorf("%w: parsing epoch day: %v", ErrMalformedTLE, err)
	}

	year := 1900 + yy
	if yy < 57 {
		year = 2000 + yy
	}

	dayOfYear := int(math.Floor(day))
	frac := day - float64(dayOfYear)

	month, dom := julian.DayOfYearToCalendar(dayOfYear, julian.LeapYearGregorian(year))
	cal := time.Date(year, time.Month(month), dom, 0, 0, 0, 0, time.UTC)
	epoch := cal.Add(time.Duration(frac * float64(24*time.Hour)))

	return float64(epoch.UnixNano()) / 1e9, nil
}
