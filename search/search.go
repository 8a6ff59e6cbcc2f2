package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively walks uri via the tiledb VFS, appending every file whose
// basename matches pattern to items. Works uniformly over local filesystems
// and object stores such as S3.
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) []string {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		panic(err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			panic(err)
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items = trawl(vfs, pattern, dir, items)
	}

	return items
}

// FindByPattern recursively searches uri for files matching pattern, using
// the TileDB Go VFS bindings so the search works identically against a
// local filesystem or an object store. config_uri, if non-empty, supplies
// credentials/region settings for object-store access.
func FindByPattern(uri, config_uri, pattern string) []string {
	var (
		config *tiledb.Config
		err    error
	)

	if config_uri == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			panic(err)
		}
	} else {
		config, err = tiledb.LoadConfig(config_uri)
		if err != nil {
			panic(err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		panic(err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		panic(err)
	}
	defer vfs.Free()

	return trawl(vfs, pattern, uri, make([]string, 0))
}

// FindAISFiles recursively searches uri for per-year AIS tabular files
// (§6 external interfaces), excluding their derived ".interp" siblings.
func FindAISFiles(uri, config_uri string) []string {
	return FindByPattern(uri, config_uri, "*.ais")
}

// FindAISInterpFiles recursively searches uri for the interpolator's
// derived ".interp" sibling files.
func FindAISInterpFiles(uri, config_uri string) []string {
	return FindByPattern(uri, config_uri, "*.ais.interp")
}

// FindTLEFiles recursively searches uri for raw TLE text files to ingest
// into the TLE store.
func FindTLEFiles(uri, config_uri string) []string {
	return FindByPattern(uri, config_uri, "*.tle")
}
