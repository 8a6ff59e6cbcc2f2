package satvis

import (
	"errors"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/samber/lo"
	stgpsr "github.com/yuin/stagparser"
)

// newContext builds a TileDB context from an optional config file path.
// An empty config_uri yields the library defaults, matching the generic
// config fallback used throughout the archive and TLE store.
func newContext(config_uri string) (*tiledb.Context, *tiledb.Config, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if config_uri == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(config_uri)
	}
	if err != nil {
		return nil, nil, err
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, nil, err
	}

	return ctx, config, nil
}

// ArrayOpen is a helper func for opening a tiledb array.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}

	err = array.Open(mode)
	if err != nil {
		array.Free()
		return nil, err
	}

	return array, nil
}

// AddFilters sequentially appends compression filters to the filter pipeline list.
func AddFilters(filter_list *tiledb.FilterList, filter ...*tiledb.Filter) error {
	for _, filt := range filter {
		err := filter_list.AddFilter(filt)
		if err != nil {
			return err
		}
	}

	return nil
}

// ZstdFilter initialises the Zstandard compression filter and sets the compression
// level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}

	err = filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level)
	if err != nil {
		filt.Free()
		return nil, err
	}

	return filt, nil
}

// DoubleDeltaFilter initialises the double-delta filter, well suited to the
// strictly (or mostly) monotonic time columns in both archives.
func DoubleDeltaFilter(ctx *tiledb.Context) (*tiledb.Filter, error) {
	return tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_DOUBLE_DELTA)
}

// AttachFilters acts as a helper for when setting the same pipeline filter list to
// a bunch of attributes.
func AttachFilters(filter_list *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		err := attr.SetFilterList(filter_list)
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateDim creates a single tiledb dimension of the given datatype, domain
// and tile extent, with a zstandard compression filter attached.
func CreateDim(ctx *tiledb.Context, name string, dtype tiledb.Datatype, domain_lo, domain_hi, extent any) (*tiledb.Dimension, error) {
	dim, err := tiledb.NewDimension(ctx, name, dtype, []any{domain_lo, domain_hi}, extent)
	if err != nil {
		return nil, err
	}

	filt_list, err := tiledb.NewFilterList(ctx)
	if err != nil {
		dim.Free()
		return nil, err
	}
	defer filt_list.Free()

	zstd, err := ZstdFilter(ctx, 16)
	if err != nil {
		dim.Free()
		return nil, err
	}
	defer zstd.Free()

	err = AddFilters(filt_list, zstd)
	if err != nil {
		dim.Free()
		return nil, err
	}

	err = dim.SetFilterList(filt_list)
	if err != nil {
		dim.Free()
		return nil, err
	}

	return dim, nil
}

// tiledbDatatype maps the small set of dtype tags used by this project's
// struct-tagged schemas onto tiledb.Datatype constants.
func tiledbDatatype(dtype string) (tiledb.Datatype, bool) {
	switch dtype {
	case "int32":
		return tiledb.TILEDB_INT32, true
	case "uint32":
		return tiledb.TILEDB_UINT32, true
	case "int64":
		return tiledb.TILEDB_INT64, true
	case "uint64":
		return tiledb.TILEDB_UINT64, true
	case "float32":
		return tiledb.TILEDB_FLOAT32, true
	case "float64":
		return tiledb.TILEDB_FLOAT64, true
	case "string":
		return tiledb.TILEDB_STRING_ASCII, true
	}
	return 0, false
}

// CreateAttr creates a tiledb attribute along with its compression filter
// pipeline, as described by the `tiledb` and `filters` struct tags on the
// field named field_name. See schemaAttrs for the tag grammar.
func CreateAttr(
	field_name string,
	filter_defs []stgpsr.Definition,
	tiledb_defs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {
	def, status := tiledb_defs["dtype"]
	if !status {
		return errors.Join(ErrCreateAttributeTdb, errors.New("dtype tag not found"))
	}
	dtype_str, _ := def.Attribute("dtype")
	tdb_dtype, ok := tiledbDatatype(dtype_str.(string))
	if !ok {
		return errors.Join(ErrCreateAttributeTdb, errors.New("unsupported dtype: "+dtype_str.(string)))
	}

	attr_filts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrFiltList, err)
	}
	defer attr_filts.Free()

	for _, filter := range filter_defs {
		switch filter.Name() {
		case "zstd":
			level, _ := filter.Attribute("level")
			filt, err := ZstdFilter(ctx, int32(level.(int64)))
			if err != nil {
				return errors.Join(ErrNewFilt, err)
			}
			defer filt.Free()
			if err = attr_filts.AddFilter(filt); err != nil {
				return errors.Join(ErrAddFilters, err)
			}
		case "ddelta":
			filt, err := DoubleDeltaFilter(ctx)
			if err != nil {
				return errors.Join(ErrNewFilt, err)
			}
			defer filt.Free()
			if err = attr_filts.AddFilter(filt); err != nil {
				return errors.Join(ErrAddFilters, err)
			}
		}
	}

	attr, err := tiledb.NewAttribute(ctx, field_name, tdb_dtype)
	if err != nil {
		return errors.Join(ErrNewAttr, err)
	}
	defer attr.Free()

	if dtype_str.(string) == "string" {
		if _, status := tiledb_defs["fixed"]; !status {
			if err := attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
				return errors.Join(ErrNewAttr, err)
			}
		} else {
			def, _ := tiledb_defs["fixed"]
			n, _ := def.Attribute("fixed")
			if err := attr.SetCellValNum(uint32(n.(int64))); err != nil {
				return errors.Join(ErrNewAttr, err)
			}
		}
	}

	if err = AttachFilters(attr_filts, attr); err != nil {
		return errors.Join(ErrSetFiltList, err)
	}

	if err = schema.AddAttributes(attr); err != nil {
		return errors.Join(ErrAddAttr, err)
	}

	return nil
}

// WriteArrayMetadata is a helper for attaching/writing metadata to a TileDB array.
// The metadata is converted to JSON before writing to TileDB.
func WriteArrayMetadata(ctx *tiledb.Context, array_uri, key string, md any) error {
	array, err := ArrayOpen(ctx, array_uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(err, errors.New("error opening (w) tiledb array: "+array_uri))
	}
	defer array.Free()
	defer array.Close()

	jsn, err := JsonDumps(md)
	if err != nil {
		return errors.Join(err, errors.New("error serialising metadata to json"))
	}

	if err = array.PutMetadata(key, jsn); err != nil {
		return errors.Join(err, errors.New("error writing metadata to array: "+array_uri))
	}

	return nil
}

// uniqueSortedUint32 dedupes and sorts a slice of NORAD ids into ascending
// order.
func uniqueSortedUint32(ids []uint32) []uint32 {
	out := lo.Uniq(ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
