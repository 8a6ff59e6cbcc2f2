package satvis

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// schemaAttrs walks the exported fields of t, a pointer to a struct whose
// fields carry `tiledb:"..."` and `filters:"..."` tags, and adds a tiledb
// attribute to schema for every field tagged ftype=attr. Fields tagged
// ftype=dim are assumed to already be represented as schema dimensions and
// are skipped.
//
// Tags for tiledb include: dtype, ftype, fixed. dtype is one of int32,
// uint32, int64, uint64, float32, float64, string. ftype is dim or attr.
// fixed, only meaningful for string fields, gives the fixed cell width in
// bytes; without it a string field is variable length.
// Tags for filters include: zstd(level=16), ddelta. Filters are applied in
// the order listed.
func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	filt_defs, _ := stgpsr.ParseStruct(t, "filters")
	tdb_defs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		field_tdb_defs := make(map[string]stgpsr.Definition)
		for _, v := range tdb_defs[name] {
			field_tdb_defs[v.Name()] = v
		}

		def, status := field_tdb_defs["ftype"]
		if !status {
			return errors.Join(ErrCreateAttributeTdb, errors.New("ftype tag not found on field "+name))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := CreateAttr(name, filt_defs[name], field_tdb_defs, schema, ctx); err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}
	}

	return nil
}
