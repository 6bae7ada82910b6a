// Command inspect audits one dataset folder: it runs every extractor
// against the files the locator selects and prints a PASS/FAIL phase table
// followed by the folder's file listing.
//
// Usage:
//
//	go run ./cmd/inspect -datasets-dir data/datasets -folder barber/race1 -car 78
//
// Without -folder the default folder is inspected.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/dustin/go-humanize"

	"github.com/couchcryptid/trackota-etl/internal/config"
	"github.com/couchcryptid/trackota-etl/internal/dataset"
	"github.com/couchcryptid/trackota-etl/internal/domain"
)

// phase tracks the outcome of one extraction.
type phase struct {
	name    string
	file    string
	summary string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	datasetsDir string
	folder      string
	car         string
	tracks      []string
}

func main() {
	datasetsDir := flag.String("datasets-dir", sharedcfg.EnvOrDefault("TRACKOTA_DATASETS_DIR", "data/datasets"), "dataset base directory")
	folder := flag.String("folder", "", "folder relative to the base (default: auto-selected)")
	car := flag.String("car", "", "vehicle identifier to filter by")
	tracks := flag.String("tracks", sharedcfg.EnvOrDefault("DATASET_TRACKS", "barber"), "comma separated preferred tracks")
	flag.Parse()

	opts := options{
		datasetsDir: *datasetsDir,
		folder:      *folder,
		car:         *car,
		tracks:      config.ParseTracks(*tracks),
	}
	os.Exit(run(context.Background(), opts, os.Stdout))
}

func run(ctx context.Context, opts options, out io.Writer) int {
	locator := dataset.NewLocator(opts.datasetsDir, opts.tracks)

	folder := opts.folder
	if folder == "" {
		f, err := locator.DefaultFolder(ctx)
		if err != nil {
			fmt.Fprintf(out, "FATAL: select default folder: %v\n", err)
			return 1
		}
		folder = f
	}
	if _, err := locator.Resolve(folder); err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "=== Dataset Inspection: %s ===\n\n", folder)

	in := inspector{ctx: ctx, locator: locator, folder: folder, car: opts.car}
	phases := []*phase{
		in.lapTimes(),
		in.sections(),
		in.telemetry(),
		in.weather(),
		in.weatherTrend(),
		in.classification(),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-22s %-28s %s  %s\n", p.name, p.file, status, p.summary)
	}

	printListing(ctx, out, locator, folder)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll extractions passed.")
		return 0
	}
	fmt.Fprintln(out, "\nInspection FAILED.")
	return 1
}

// inspector runs the extractors for one folder.
type inspector struct {
	ctx     context.Context
	locator *dataset.Locator
	folder  string
	car     string
}

// load finds and reads the table for purpose. A missing optional file marks
// the phase skipped; any other failure is recorded as an error.
func (in inspector) load(p *phase, purpose dataset.Purpose, limit int) (domain.Table, bool) {
	file, err := in.locator.FindCSV(in.ctx, in.folder, purpose)
	if errors.Is(err, dataset.ErrNotFound) {
		p.skipped = true
		p.summary = "no candidate file"
		return domain.Table{}, false
	}
	if err != nil {
		p.errorf("find file: %v", err)
		return domain.Table{}, false
	}
	p.file = path.Base(in.locator.Rel(file))

	t, err := dataset.ReadTable(file, domain.ReadOptions{Limit: limit})
	if err != nil {
		p.errorf("read %s: %v", p.file, err)
		return domain.Table{}, false
	}
	return t, true
}

func (in inspector) lapTimes() *phase {
	p := &phase{name: "Lap times"}
	t, ok := in.load(p, dataset.PurposeLapTimes, domain.DefaultRowLimit)
	if !ok {
		return p
	}
	series, err := domain.ExtractLapTimes(t, domain.LapOptions{Vehicle: in.car})
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.summary = fmt.Sprintf("%s laps", humanize.Comma(int64(len(series))))
	if w, ok := domain.EstimateLapWindow(series); ok {
		p.summary += fmt.Sprintf(", pit window %d-%d", w.Start, w.End)
	}
	return p
}

func (in inspector) sections() *phase {
	p := &phase{name: "Sections"}
	t, ok := in.load(p, dataset.PurposeSections, domain.DefaultRowLimit)
	if !ok {
		return p
	}
	series, err := domain.ExtractSections(t, domain.SectionOptions{Vehicle: in.car})
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.summary = fmt.Sprintf("%d sections over %d laps", len(series.Names), len(series.Laps))
	return p
}

func (in inspector) telemetry() *phase {
	p := &phase{name: "Telemetry"}
	t, ok := in.load(p, dataset.PurposeTelemetry, domain.TelemetryRowLimit)
	if !ok {
		return p
	}
	frame, err := domain.ExtractTelemetry(t, domain.TelemetryOptions{Vehicle: in.car})
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	present := 0
	for _, ch := range domain.Channels {
		for _, v := range frame[ch] {
			if v != nil {
				present++
				break
			}
		}
	}
	p.summary = fmt.Sprintf("%s samples, %d/%d channels", humanize.Comma(int64(frame.Len())), present, len(domain.Channels))
	return p
}

func (in inspector) weather() *phase {
	p := &phase{name: "Weather snapshot"}
	t, ok := in.load(p, dataset.PurposeWeather, domain.DefaultRowLimit)
	if !ok {
		return p
	}
	snap, err := domain.ExtractWeatherSnapshot(t)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.summary = snap.String()
	return p
}

func (in inspector) weatherTrend() *phase {
	p := &phase{name: "Weather trend"}
	t, ok := in.load(p, dataset.PurposeWeather, domain.WeatherRowLimit)
	if !ok {
		return p
	}
	trend, err := domain.ExtractWeatherTrend(t)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.summary = fmt.Sprintf("%d points", len(trend.Labels))
	return p
}

func (in inspector) classification() *phase {
	p := &phase{name: "Classification"}
	t, ok := in.load(p, dataset.PurposeClassification, domain.DefaultRowLimit)
	if !ok {
		return p
	}
	cars, err := domain.ExtractCars(t)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.summary = fmt.Sprintf("%d cars", len(cars))
	if in.car != "" {
		if _, found := domain.FindCar(cars, in.car); !found {
			p.errorf("car %s not classified", in.car)
		}
	}
	return p
}

// printListing prints the entries below folder with human-readable sizes.
func printListing(ctx context.Context, out io.Writer, locator *dataset.Locator, folder string) {
	listing, err := locator.List(ctx)
	if err != nil {
		fmt.Fprintf(out, "\nlisting unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(out, "\nFiles:")
	prefix := folder + "/"
	for _, e := range listing.Files {
		if !strings.HasPrefix(e.RelativePath, prefix) {
			continue
		}
		rel := strings.TrimPrefix(e.RelativePath, prefix)
		switch {
		case e.Kind == dataset.KindDirectory:
			fmt.Fprintf(out, "  %-48s %d csv\n", rel+"/", e.CSVCount)
		case e.Size != nil:
			fmt.Fprintf(out, "  %-48s %s\n", rel, humanize.Bytes(uint64(*e.Size)))
		default:
			fmt.Fprintf(out, "  %s\n", rel)
		}
	}
}
