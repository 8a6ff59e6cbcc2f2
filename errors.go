package satvis

import (
	"errors"
)

var ErrShortSatTrack = errors.New("Satellite Track Must Have At Least 2 Samples")
var ErrUnsortedTime = errors.New("Time Column Is Not Sorted")
var ErrMismatchedLen = errors.New("Column Lengths Do Not Match")
var ErrNoTLEData = errors.New("No TLE Data For Norad Id")
var ErrUnknownNoradID = errors.New("Unknown Norad Id")
var ErrEmptyWindowSet = errors.New("Window Plan Produced No Usable Windows")
var ErrMalformedTLE = errors.New("Malformed TLE Pair")

var ErrCreateAttributeTdb = errors.New("Error Creating Attribute for TileDB Array")
var ErrCreateSchemaTdb = errors.New("Error Creating TileDB Schema")
var ErrCreateDimTdb = errors.New("Error Creating TileDB Dimension")
var ErrCreateArrayTdb = errors.New("Error Creating TileDB Array")
var ErrOpenArrayTdb = errors.New("Error Opening TileDB Array")
var ErrCreateTrackTdb = errors.New("Error Creating Track TileDB Array")
var ErrWriteTrackFile = errors.New("Error Writing Track File")
var ErrReadTrackFile = errors.New("Error Reading Track File")
var ErrCreateTleTdb = errors.New("Error Creating TLE TileDB Array")
var ErrWriteTleTdb = errors.New("Error Writing TLE TileDB Array")
var ErrReadTleTdb = errors.New("Error Reading TLE TileDB Array")
var ErrAddFilters = errors.New("Error Adding Filter To FilterList")
var ErrDims = errors.New("Error Dims Is > 2")
var ErrDtype = errors.New("Error Slice Datatype Is Unexpected") // we should not have any slices > 2D
var ErrSetBuff = errors.New("Error Setting TileDB Buffer")
var ErrFiltList = errors.New("Error Creating TileDB Filter List")
var ErrNewAttr = errors.New("Error Creating TileDB Attribute")
var ErrNewFilt = errors.New("Error Creating TileDB Filter")
var ErrSetFiltList = errors.New("Error Setting TileDB Filter List")
var ErrAddAttr = errors.New("Error Adding TileDB Attribute")
var ErrZstdFilt = errors.New("Error Creating TileDB ZStandard Filter")

var ErrWriteJson = errors.New("Error Writing JSON To VFS")
