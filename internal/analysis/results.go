package analysis

import (
	"time"

	"github.com/couchcryptid/trackota-etl/internal/domain"
)

// Result types marshal to the JSON shapes served to the dashboard. Slices
// are always non-nil so empty results encode as [] rather than null.

// LapTimesResult is a lap-time series with its estimated pit window.
type LapTimesResult struct {
	Laps      []int             `json:"laps"`
	Times     []float64         `json:"times"`
	PitWindow *domain.PitWindow `json:"pitWindow"`
	File      *string           `json:"file"`
}

// SectionsResult holds per-section split times parallel to Laps.
type SectionsResult struct {
	Sections       []string             `json:"sections"`
	Laps           []int                `json:"laps"`
	TimesBySection map[string][]float64 `json:"timesBySection"`
	File           *string              `json:"file"`
}

// TelemetryResult holds the bounded channel series.
type TelemetryResult struct {
	Series domain.TelemetryFrame `json:"series"`
}

// WeatherTrendResult holds the HH:MM labelled temperature series.
type WeatherTrendResult struct {
	Labels []string   `json:"labels"`
	Air    []*float64 `json:"air"`
	Track  []*float64 `json:"track"`
}

// CarEntry is one car of the race classification.
type CarEntry struct {
	Number      string   `json:"number"`
	Position    *int     `json:"position"`
	Laps        *int     `json:"laps,omitempty"`
	GapPrevious *float64 `json:"gapPrevious,omitempty"`
}

// CarsResult lists the classified cars.
type CarsResult struct {
	Cars []CarEntry `json:"cars"`
}

// Summary is the strategy overview for one folder and optionally one car.
type Summary struct {
	CurrentLap  *int     `json:"currentLap"`
	TotalLaps   *int     `json:"totalLaps"`
	Session     string   `json:"session"`
	Weather     *string  `json:"weather"`
	Position    *int     `json:"position"`
	GapAhead    *float64 `json:"gapAhead"`
	LapsOnTyre  *int     `json:"lapsOnTyre"`
	TyreWearPct *int     `json:"tyreWearPct"`
}

// Report bundles every extraction of one dataset folder. Failures maps an
// extraction kind to the reason it produced a neutral result.
type Report struct {
	Folder       string             `json:"folder"`
	GeneratedAt  time.Time          `json:"generatedAt"`
	LapTimes     LapTimesResult     `json:"lapTimes"`
	FastestLaps  []domain.RankedLap `json:"fastestLaps"`
	Sections     SectionsResult     `json:"sections"`
	Telemetry    TelemetryResult    `json:"telemetry"`
	Weather      *string            `json:"weather"`
	WeatherTrend WeatherTrendResult `json:"weatherTrend"`
	Cars         []CarEntry         `json:"cars"`
	Failures     map[string]string  `json:"failures,omitempty"`
}

func emptyLapTimes() LapTimesResult {
	return LapTimesResult{Laps: []int{}, Times: []float64{}}
}

func emptySections() SectionsResult {
	return SectionsResult{Sections: []string{}, Laps: []int{}, TimesBySection: map[string][]float64{}}
}

func emptyTelemetry() TelemetryResult {
	return TelemetryResult{Series: domain.NewTelemetryFrame()}
}

func emptyWeatherTrend() WeatherTrendResult {
	return WeatherTrendResult{Labels: []string{}, Air: []*float64{}, Track: []*float64{}}
}

func ptr[T any](v T) *T {
	return &v
}
