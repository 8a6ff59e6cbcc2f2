package satvis

import (
	"encoding/json"
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// WriteJson serialises data to a JSON file. The output location can be local
// or an object store such as s3. Every failure is surfaced to the caller as
// ErrWriteJson rather than panicking, matching the rest of the tree's
// errors.Join/sentinel-error idiom so a bad --output path comes back as an
// ordinary error instead of crashing the process.
func WriteJson(file_uri string, config_uri string, data any) (int, error) {
	ctx, config, err := newContext(config_uri)
	if err != nil {
		return 0, errors.Join(ErrWriteJson, err)
	}
	defer ctx.Free()
	defer config.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, errors.Join(ErrWriteJson, err)
	}
	defer vfs.Free()

	// the vfs api auto checks for a file's existence and removes it if we are wanting to write
	stream, err := vfs.Open(file_uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, errors.Join(ErrWriteJson, err)
	}
	defer stream.Close()

	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, errors.Join(ErrWriteJson, err)
	}

	bytes_written, err := stream.Write(jsn)
	if err != nil {
		return 0, errors.Join(ErrWriteJson, err)
	}

	return bytes_written, nil
}

// JsonDumps constructs a JSON string of the supplied data.
func JsonDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return string(jsn), nil
}

// JsonIndentDumps constructs a json string of the supplied data using an
// indentation of four spaces.
func JsonIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}

	return string(jsn), nil
}
