package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	satvis "github.com/watchkeeper/satvis"
	"github.com/watchkeeper/satvis/ingest"
	"github.com/watchkeeper/satvis/search"
)

// exit codes per §6: 0 success, 2 invalid paths/schema, 1 unexpected failure.
const (
	exitOK          = 0
	exitUnexpected  = 1
	exitInvalidArgs = 2
)

// buildTrack implements `build-track`: (re)builds one satellite's track
// from a TLE archive into a track archive.
func buildTrack(tleArchiveURI string, noradID uint32, archiveDir string) error {
	if tleArchiveURI == "" || archiveDir == "" {
		return fmt.Errorf("%w: --tle-archive and --archive are required", errInvalidArgs)
	}

	store, err := satvis.NewTLEStore(tleArchiveURI, "")
	if err != nil {
		return err
	}
	defer store.Close()

	builder := satvis.NewTrackBuilder(store, satvis.SGP4Propagator{}, satvis.NewTrackArchive(archiveDir))
	ok, err := builder.Build(noradID)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("no data for norad_id=%d", noradID)
		return nil
	}

	log.Printf("built track for norad_id=%d", noradID)
	return nil
}

// listIDs implements `list-ids`: prints every NORAD id present in the
// track archive rooted at archiveDir.
func listIDs(archiveDir string) error {
	if archiveDir == "" {
		return fmt.Errorf("%w: --archive is required", errInvalidArgs)
	}

	ids, err := satvis.NewTrackArchive(archiveDir).ListIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// hits implements `hits`: computes the hit set for one satellite's track
// against a set of vessel pings, optionally writing it to a CSV file.
// aisPath, if empty, is resolved by searching aisDir for per-year AIS
// files, preferring a file's interpolated ".interp" sibling when present.
func hits(archiveDir string, noradID uint32, startT, endT *int64, halfEarth bool, workers int, aisPath, aisDir, outputPath string) error {
	if archiveDir == "" {
		return fmt.Errorf("%w: --archive is required", errInvalidArgs)
	}
	if aisPath == "" {
		if aisDir == "" {
			return fmt.Errorf("%w: one of --ais or --ais-dir is required", errInvalidArgs)
		}
		resolved, err := resolveAISFile(aisDir)
		if err != nil {
			return err
		}
		aisPath = resolved
	}

	archive := satvis.NewTrackArchive(archiveDir)
	timeS, latDeg, lonDeg, altKm, err := archive.Get(noradID)
	if err != nil {
		return err
	}

	sat := satvis.SatSeries{
		TimeS:  toInt64s(timeS),
		LatDeg: toFloat64s(latDeg),
		LonDeg: toFloat64s(lonDeg),
		AltKm:  toFloat64s(altKm),
	}

	f, err := os.Open(aisPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	defer f.Close()

	pings, err := ingest.AISPings(f)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}

	result, err := satvis.ComputeHitsQuery(sat, pings, satvis.HitQuery{
		StartTimeS: startT,
		EndTimeS:   endT,
		Workers:    workers,
		HalfEarth:  halfEarth,
	})
	if err != nil {
		return err
	}

	return writeHitsCSV(outputPath, result)
}

// resolveAISFile picks one AIS file under dir: an interpolated ".interp"
// sibling is preferred over its raw source when both are present, since
// the interpolator's densified track feeds the intersection kernel better.
func resolveAISFile(dir string) (string, error) {
	if interp := search.FindAISInterpFiles(dir, ""); len(interp) > 0 {
		return interp[0], nil
	}
	raw := search.FindAISFiles(dir, "")
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: no *.ais files found under %s", errInvalidArgs, dir)
	}
	return raw[0], nil
}

// ingestTLEs implements `ingest-tles`: recursively discovers raw TLE text
// files under tleDir and appends every record they contain to the TLE
// archive at archiveURI, per section 6's "HTTP/S3 download of raw TLE
// archives" external collaborator and the columnar store it feeds.
func ingestTLEs(tleDir, archiveURI string) error {
	if tleDir == "" || archiveURI == "" {
		return fmt.Errorf("%w: --tle-dir and --archive are required", errInvalidArgs)
	}

	files := search.FindTLEFiles(tleDir, "")
	if len(files) == 0 {
		return fmt.Errorf("%w: no *.tle files found under %s", errInvalidArgs, tleDir)
	}

	var records []satvis.TLERecord
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		recs, err := ingest.TLELines(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", errInvalidArgs, path, err)
		}
		records = append(records, recs...)
	}

	if err := satvis.IngestTLEArchive(archiveURI, "", records); err != nil {
		return err
	}

	log.Printf("ingested %d TLE records from %d file(s) into %s", len(records), len(files), archiveURI)
	return nil
}

// tleQuality implements `tle-quality`: reports duplicate-epoch and
// element-set-number diagnostics for one satellite's TLE history, per the
// qa.go TLE quality assessment.
func tleQuality(tleArchiveURI string, noradID uint32, outputPath string) error {
	if tleArchiveURI == "" {
		return fmt.Errorf("%w: --tle-archive is required", errInvalidArgs)
	}

	store, err := satvis.NewTLEStore(tleArchiveURI, "")
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.TLEsFor(noradID)
	if err != nil {
		return err
	}

	report := satvis.AssessTLEQuality(records)

	if outputPath != "" {
		if _, err := satvis.WriteJson(outputPath, "", report); err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		return nil
	}

	out, err := satvis.JsonIndentDumps(report)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func writeHitsCSV(outputPath string, result []satvis.Hit) error {
	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"mmsi_id", "date_time", "lat", "lon"}); err != nil {
		return err
	}
	for _, h := range result {
		row := []string{
			strconv.FormatInt(h.MMSI, 10),
			strconv.FormatInt(h.TimeS, 10),
			strconv.FormatFloat(h.LatDeg, 'f', -1, 64),
			strconv.FormatFloat(h.LonDeg, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

var errInvalidArgs = errors.New("invalid arguments")

func toInt64s(xs []float32) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func toFloat64s(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "build-track",
				Usage: "(re)builds one satellite's track from a TLE archive.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tle-archive", Usage: "URI or pathname to the TLE archive."},
					&cli.Uint64Flag{Name: "norad-id", Usage: "NORAD catalog id."},
					&cli.StringFlag{Name: "archive", Usage: "URI or pathname to the track archive root."},
				},
				Action: func(cCtx *cli.Context) error {
					return buildTrack(cCtx.String("tle-archive"), uint32(cCtx.Uint64("norad-id")), cCtx.String("archive"))
				},
			},
			{
				Name:  "list-ids",
				Usage: "prints NORAD ids present in a track archive.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "archive", Usage: "URI or pathname to the track archive root."},
				},
				Action: func(cCtx *cli.Context) error {
					return listIDs(cCtx.String("archive"))
				},
			},
			{
				Name:  "ingest-tles",
				Usage: "discovers raw TLE text files under a directory and appends them to a TLE archive.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tle-dir", Usage: "directory or URI to recursively search for *.tle files."},
					&cli.StringFlag{Name: "archive", Usage: "URI or pathname to the TLE archive."},
				},
				Action: func(cCtx *cli.Context) error {
					return ingestTLEs(cCtx.String("tle-dir"), cCtx.String("archive"))
				},
			},
			{
				Name:  "tle-quality",
				Usage: "reports duplicate-epoch diagnostics for one satellite's TLE history.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tle-archive", Usage: "URI or pathname to the TLE archive."},
					&cli.Uint64Flag{Name: "norad-id", Usage: "NORAD catalog id."},
					&cli.StringFlag{Name: "output", Usage: "output JSON path; defaults to stdout."},
				},
				Action: func(cCtx *cli.Context) error {
					return tleQuality(cCtx.String("tle-archive"), uint32(cCtx.Uint64("norad-id")), cCtx.String("output"))
				},
			},
			{
				Name:  "hits",
				Usage: "computes the vessel-overflight hit set for one satellite.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "archive", Usage: "URI or pathname to the track archive root."},
					&cli.Uint64Flag{Name: "norad-id", Usage: "NORAD catalog id."},
					&cli.Int64Flag{Name: "start", Usage: "start time, seconds since the Unix epoch."},
					&cli.Int64Flag{Name: "end", Usage: "end time, seconds since the Unix epoch."},
					&cli.BoolFlag{Name: "half-earth", Usage: "assume a constant half-earth field of view."},
					&cli.IntFlag{Name: "workers", Usage: "worker chunk count; 0 lets the compositor choose."},
					&cli.StringFlag{Name: "ais", Usage: "URI or pathname to a headerless AIS CSV file."},
					&cli.StringFlag{Name: "ais-dir", Usage: "directory or URI to search for an AIS file when --ais is not given; prefers a .interp sibling."},
					&cli.StringFlag{Name: "output", Usage: "output CSV path; defaults to stdout."},
				},
				Action: func(cCtx *cli.Context) error {
					var startT, endT *int64
					if cCtx.IsSet("start") {
						v := cCtx.Int64("start")
						startT = &v
					}
					if cCtx.IsSet("end") {
						v := cCtx.Int64("end")
						endT = &v
					}
					return hits(cCtx.String("archive"), uint32(cCtx.Uint64("norad-id")), startT, endT, cCtx.Bool("half-earth"), cCtx.Int("workers"), cCtx.String("ais"), cCtx.String("ais-dir"), cCtx.String("output"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, errInvalidArgs) {
			log.Println(err)
			os.Exit(exitInvalidArgs)
		}
		log.Println(err)
		os.Exit(exitUnexpected)
	}
	os.Exit(exitOK)
}
