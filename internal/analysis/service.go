// Package analysis runs the extractors against dataset folders and applies
// the fail-soft policy: every failure becomes a neutral result, a log line
// and a metric, never an error for the caller.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/couchcryptid/trackota-etl/internal/dataset"
	"github.com/couchcryptid/trackota-etl/internal/domain"
	"github.com/couchcryptid/trackota-etl/internal/observability"
)

// Extraction kinds used in logs, metrics and report failures.
const (
	KindDatasets     = "datasets"
	KindLapTimes     = "laps"
	KindSections     = "sections"
	KindTelemetry    = "telemetry"
	KindWeather      = "weather"
	KindWeatherTrend = "weather_trend"
	KindCars         = "cars"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"

	fastestLapCount = 3
)

// Options bounds table reads. Zero values fall back to the domain defaults.
type Options struct {
	RowLimit          int
	TelemetryRowLimit int
}

// Query selects a dataset folder (relative to the base, empty for the
// default folder) and optionally one car.
type Query struct {
	Folder  string
	Vehicle string
}

// Service is safe for concurrent use; it holds no mutable state.
type Service struct {
	locator *dataset.Locator
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service over locator.
func NewService(locator *dataset.Locator, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if opts.RowLimit <= 0 {
		opts.RowLimit = domain.DefaultRowLimit
	}
	if opts.TelemetryRowLimit <= 0 {
		opts.TelemetryRowLimit = domain.TelemetryRowLimit
	}
	return &Service{locator: locator, opts: opts, logger: logger, metrics: metrics}
}

// CheckReadiness reports whether the dataset base directory is available.
func (s *Service) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.locator.Base())
	if err != nil {
		return fmt.Errorf("dataset base: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dataset base %s is not a directory", s.locator.Base())
	}
	return nil
}

// Datasets lists the dataset base directory.
func (s *Service) Datasets(ctx context.Context) dataset.Listing {
	start := clock.Now()
	listing, err := s.locator.List(ctx)
	s.record(KindDatasets, "", start, err)
	return listing
}

// Folders returns every dataset folder, or nil when the base cannot be read.
func (s *Service) Folders(ctx context.Context) []string {
	folders, err := s.locator.Folders(ctx)
	if err != nil {
		s.logger.Warn("list dataset folders", "error", err)
		return nil
	}
	return folders
}

// LapTimes extracts the lap-time series and pit window.
func (s *Service) LapTimes(ctx context.Context, q Query) LapTimesResult {
	start := clock.Now()
	res, _, err := s.lapTimes(ctx, q)
	s.record(KindLapTimes, q.Folder, start, err)
	return res
}

// FastestLaps ranks the three quickest laps.
func (s *Service) FastestLaps(ctx context.Context, q Query) []domain.RankedLap {
	start := clock.Now()
	_, series, err := s.lapTimes(ctx, q)
	s.record(KindLapTimes, q.Folder, start, err)
	return domain.FastestLaps(series, fastestLapCount)
}

// Recommendations derives pit calls from the lap-time series.
func (s *Service) Recommendations(ctx context.Context, q Query) []domain.Recommendation {
	start := clock.Now()
	res, _, err := s.lapTimes(ctx, q)
	s.record(KindLapTimes, q.Folder, start, err)
	if res.PitWindow == nil {
		return []domain.Recommendation{}
	}
	return domain.Recommendations(*res.PitWindow)
}

// Sections extracts per-section split times.
func (s *Service) Sections(ctx context.Context, q Query) SectionsResult {
	start := clock.Now()
	res, err := s.sections(ctx, q)
	s.record(KindSections, q.Folder, start, err)
	return res
}

// Telemetry extracts the bounded channel series.
func (s *Service) Telemetry(ctx context.Context, q Query) TelemetryResult {
	start := clock.Now()
	res, err := s.telemetry(ctx, q)
	s.record(KindTelemetry, q.Folder, start, err)
	return res
}

// WeatherTrend extracts the air and track temperature trend.
func (s *Service) WeatherTrend(ctx context.Context, q Query) WeatherTrendResult {
	start := clock.Now()
	res, err := s.weatherTrend(ctx, q)
	s.record(KindWeatherTrend, q.Folder, start, err)
	return res
}

// Weather returns the display string of the current conditions, or nil.
func (s *Service) Weather(ctx context.Context, q Query) *string {
	start := clock.Now()
	res, err := s.weather(ctx, q)
	s.record(KindWeather, q.Folder, start, err)
	return res
}

// Cars lists the classified cars.
func (s *Service) Cars(ctx context.Context, q Query) CarsResult {
	start := clock.Now()
	cars, err := s.cars(ctx, q)
	s.record(KindCars, q.Folder, start, err)
	return CarsResult{Cars: carEntries(cars)}
}

// Summary builds the strategy overview. Position and gap are only filled
// when the query names a car present in the classification.
func (s *Service) Summary(ctx context.Context, q Query) Summary {
	sum := Summary{Session: "Race"}

	start := clock.Now()
	res, series, err := s.lapTimes(ctx, q)
	s.record(KindLapTimes, q.Folder, start, err)
	if total := len(series); total > 0 {
		current := series[total-1].Number
		sum.CurrentLap = ptr(current)
		sum.TotalLaps = ptr(total)
		if res.PitWindow != nil {
			sum.LapsOnTyre = ptr(domain.LapsOnTyre(current, *res.PitWindow))
		}
		if wear, ok := domain.TyreWearPercent(res.Times); ok {
			sum.TyreWearPct = ptr(wear)
		}
	}

	sum.Weather = s.Weather(ctx, q)

	if q.Vehicle != "" {
		start := clock.Now()
		cars, err := s.cars(ctx, q)
		s.record(KindCars, q.Folder, start, err)
		if car, ok := domain.FindCar(cars, q.Vehicle); ok {
			sum.Position = car.Position
			sum.GapAhead = car.GapPrevious
		}
	}
	return sum
}

// Report runs every extraction on folder. It fails only when the folder
// itself is invalid or ctx is done; extraction failures are listed in
// Report.Failures.
func (s *Service) Report(ctx context.Context, folder string) (Report, error) {
	if _, err := s.locator.Resolve(folder); err != nil {
		return Report{}, err
	}
	q := Query{Folder: folder}
	rep := Report{Folder: folder, GeneratedAt: clock.Now().UTC(), Failures: map[string]string{}}

	run := func(kind string, fn func() error) {
		start := clock.Now()
		err := fn()
		s.record(kind, folder, start, err)
		if err != nil {
			rep.Failures[kind] = outcomeOf(err)
		}
	}

	var series domain.LapSeries
	run(KindLapTimes, func() (err error) {
		rep.LapTimes, series, err = s.lapTimes(ctx, q)
		return err
	})
	rep.FastestLaps = domain.FastestLaps(series, fastestLapCount)
	run(KindSections, func() (err error) {
		rep.Sections, err = s.sections(ctx, q)
		return err
	})
	run(KindTelemetry, func() (err error) {
		rep.Telemetry, err = s.telemetry(ctx, q)
		return err
	})
	run(KindWeather, func() (err error) {
		rep.Weather, err = s.weather(ctx, q)
		return err
	})
	run(KindWeatherTrend, func() (err error) {
		rep.WeatherTrend, err = s.weatherTrend(ctx, q)
		return err
	})
	run(KindCars, func() error {
		cars, err := s.cars(ctx, q)
		rep.Cars = carEntries(cars)
		return err
	})

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if len(rep.Failures) == 0 {
		rep.Failures = nil
	}
	return rep, nil
}

func (s *Service) lapTimes(ctx context.Context, q Query) (LapTimesResult, domain.LapSeries, error) {
	res := emptyLapTimes()
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return res, nil, err
	}
	res.File = ptr(folder)

	t, err := s.readTable(ctx, folder, dataset.PurposeLapTimes, s.opts.RowLimit)
	if err != nil {
		return res, nil, err
	}
	series, err := domain.ExtractLapTimes(t, domain.LapOptions{Vehicle: q.Vehicle})
	if err != nil {
		return res, nil, err
	}

	res.Laps = series.Numbers()
	res.Times = series.Times()
	if w, ok := domain.EstimateLapWindow(series); ok {
		res.PitWindow = &w
	}
	return res, series, nil
}

func (s *Service) sections(ctx context.Context, q Query) (SectionsResult, error) {
	res := emptySections()
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return res, err
	}
	res.File = ptr(folder)

	t, err := s.readTable(ctx, folder, dataset.PurposeSections, s.opts.RowLimit)
	if err != nil {
		return res, err
	}
	series, err := domain.ExtractSections(t, domain.SectionOptions{Vehicle: q.Vehicle})
	if err != nil {
		return res, err
	}

	res.Sections = series.Names
	res.Laps = series.Laps
	res.TimesBySection = series.Times
	return res, nil
}

func (s *Service) telemetry(ctx context.Context, q Query) (TelemetryResult, error) {
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return emptyTelemetry(), err
	}
	// Vehicle filtering happens after the read, so a filtered query reads
	// past the telemetry bound to leave room for other cars' rows.
	limit := s.opts.TelemetryRowLimit
	if q.Vehicle != "" {
		limit = s.opts.RowLimit
	}
	t, err := s.readTable(ctx, folder, dataset.PurposeTelemetry, limit)
	if err != nil {
		return emptyTelemetry(), err
	}
	frame, err := domain.ExtractTelemetry(t, domain.TelemetryOptions{Limit: s.opts.TelemetryRowLimit, Vehicle: q.Vehicle})
	if err != nil {
		return emptyTelemetry(), err
	}
	return TelemetryResult{Series: frame}, nil
}

func (s *Service) weather(ctx context.Context, q Query) (*string, error) {
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return nil, err
	}
	// The snapshot is the file's last row, so it is read past RowLimit.
	t, err := s.readTable(ctx, folder, dataset.PurposeWeather, math.MaxInt)
	if err != nil {
		return nil, err
	}
	snap, err := domain.ExtractWeatherSnapshot(t)
	if err != nil {
		return nil, err
	}
	return ptr(snap.String()), nil
}

func (s *Service) weatherTrend(ctx context.Context, q Query) (WeatherTrendResult, error) {
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return emptyWeatherTrend(), err
	}
	t, err := s.readTable(ctx, folder, dataset.PurposeWeather, min(s.opts.RowLimit, domain.WeatherRowLimit))
	if err != nil {
		return emptyWeatherTrend(), err
	}
	trend, err := domain.ExtractWeatherTrend(t)
	if err != nil {
		return emptyWeatherTrend(), err
	}
	return WeatherTrendResult{Labels: trend.Labels, Air: trend.Air, Track: trend.Track}, nil
}

func (s *Service) cars(ctx context.Context, q Query) ([]domain.Car, error) {
	folder, err := s.folder(ctx, q.Folder)
	if err != nil {
		return nil, err
	}
	t, err := s.readTable(ctx, folder, dataset.PurposeClassification, s.opts.RowLimit)
	if err != nil {
		return nil, err
	}
	return domain.ExtractCars(t)
}

// folder validates a requested folder or picks the default one.
func (s *Service) folder(ctx context.Context, requested string) (string, error) {
	if requested == "" {
		return s.locator.DefaultFolder(ctx)
	}
	if _, err := s.locator.Resolve(requested); err != nil {
		return "", err
	}
	return requested, nil
}

func (s *Service) readTable(ctx context.Context, folder string, purpose dataset.Purpose, limit int) (domain.Table, error) {
	path, err := s.locator.FindCSV(ctx, folder, purpose)
	if err != nil {
		return domain.Table{}, err
	}
	s.logger.Debug("reading table", "purpose", purpose, "file", s.locator.Rel(path))
	return dataset.ReadTable(path, domain.ReadOptions{Limit: limit})
}

func (s *Service) record(kind, folder string, start time.Time, err error) {
	outcome := outcomeOf(err)
	s.metrics.Extractions.WithLabelValues(kind, outcome).Inc()
	s.metrics.ExtractionDuration.WithLabelValues(kind).Observe(clock.Since(start).Seconds())

	switch outcome {
	case outcomeOK:
	case outcomeNotFound:
		s.logger.Debug("no candidate file, returning empty result", "kind", kind, "folder", folder, "error", err)
	default:
		s.logger.Warn("extraction failed, returning empty result",
			"kind", kind, "folder", folder, "reason", outcome, "error", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, dataset.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, dataset.ErrOutsideBase):
		return outcomeRejected
	default:
		return string(domain.ReasonOf(err))
	}
}

func carEntries(cars []domain.Car) []CarEntry {
	return lo.Map(cars, func(c domain.Car, _ int) CarEntry {
		return CarEntry{Number: c.Number, Position: c.Position, Laps: c.Laps, GapPrevious: c.GapPrevious}
	})
}
