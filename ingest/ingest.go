// Package ingest reads the two external input formats described in the
// system's external interfaces: raw multi-line TLE text, and tabular
// per-year AIS files, turning each into the in-memory records the rest
// of the system operates on.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/watchkeeper/satvis"
)

// TLELines reads a standard three-line-per-record TLE text stream (an
// optional name line, followed by the two 69-byte element lines) and
// returns the satellite's norad_id alongside each (line1, line2) pair.
// The norad_id is parsed from line1 columns 3-7 rather than the name
// line, which is free text and not always present.
func TLELines(r io.Reader) ([]satvis.TLERecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024), 1024)

	var pending []string
	var records []satvis.TLERecord

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		var line1, line2 string
		switch len(pending) {
		case 2:
			line1, line2 = pending[0], pending[1]
		case 3:
			line1, line2 = pending[1], pending[2]
		default:
			return fmt.Errorf("%w: unexpected record length %d", satvis.ErrMalformedTLE, len(pending))
		}
		pending = pending[:0]

		noradID, err := parseNoradID(line1)
		if err != nil {
			return err
		}
		epoch, err := satvis.ParseTLEEpoch(line1)
		if err != nil {
			return err
		}
		elset, err := parseElementSetNumber(line1)
		if err != nil {
			return err
		}

		records = append(records, satvis.TLERecord{
			Epoch:            epoch,
			NoradID:          noradID,
			Line1:            line1,
			Line2:            line2,
			ElementSetNumber: elset,
		})
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch line[0] {
		case '1':
			if len(pending) == 1 && pending[0][0] != '1' {
				// a name line precedes this record's line1
				pending = append(pending, line)
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			pending = append(pending[:0], line)
		case '2':
			pending = append(pending, line)
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			pending = append(pending[:0], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return records, nil
}

func parseNoradID(line1 string) (uint32, error) {
	if len(line1) < 7 {
		return 0, fmt.Errorf("%w: line1 too short for norad id", satvis.ErrMalformedTLE)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(line1[2:7]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing norad id: %v", satvis.ErrMalformedTLE, err)
	}
	return uint32(id), nil
}

func parseElementSetNumber(line1 string) (int64, error) {
	if len(line1) < 68 {
		return 0, fmt.Errorf("%w: line1 too short for element set number", satvis.ErrMalformedTLE)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line1[64:68]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing element set number: %v", satvis.ErrMalformedTLE, err)
	}
	return n, nil
}

// AISPings reads a headerless CSV stream with columns mmsi_id, date_time
// (seconds since the Unix epoch), lat, lon, matching the per-year AIS
// file schema in §6.
func AISPings(r io.Reader) ([]satvis.VesselPing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	var pings []satvis.VesselPing
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		mmsi, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing mmsi_id: %w", err)
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing date_time: %w", err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing lat: %w", err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing lon: %w", err)
		}

		pings = append(pings, satvis.VesselPing{MMSI: mmsi, TimeS: ts, LatDeg: lat, LonDeg: lon})
	}

	return pings, nil
}
