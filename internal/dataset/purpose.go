package dataset

import "regexp"

// Purpose says what a caller wants to read from a dataset folder.
type Purpose string

const (
	PurposeLapTimes       Purpose = "laps"
	PurposeSections       Purpose = "sections"
	PurposeTelemetry      Purpose = "telemetry"
	PurposeWeather        Purpose = "weather"
	PurposeClassification Purpose = "classification"
)

type rule struct {
	pattern *regexp.Regexp
	score   int
}

var (
	lapTimesName = regexp.MustCompile(`lap[_\s-]?times?`)
	lapEdgeName  = regexp.MustCompile(`lap[_\s-]?(start|end)`)
	enduranceAna = regexp.MustCompile(`analysis.*endurance`)
)

// Scoring rules per purpose, matched against the lowercased file name. The
// first matching rule gives the score. A purpose with a fallback score takes
// any table; the others require a match.
var (
	purposeRules = map[Purpose][]rule{
		PurposeLapTimes: {
			{lapTimesName, 100},
			{lapEdgeName, 50},
			{enduranceAna, 25},
		},
		PurposeSections: {
			{regexp.MustCompile(`analysis.*endurance|sections?`), 100},
			{regexp.MustCompile(`analysis`), 50},
			{lapTimesName, 10},
		},
		PurposeTelemetry: {
			{regexp.MustCompile(`telemetry`), 100},
			{lapTimesName, 10},
		},
		PurposeWeather: {
			{regexp.MustCompile(`weather`), 100},
		},
		PurposeClassification: {
			{regexp.MustCompile(`classification`), 100},
			{regexp.MustCompile(`results`), 50},
		},
	}

	fallbackScore = map[Purpose]int{
		PurposeLapTimes:  1,
		PurposeSections:  1,
		PurposeTelemetry: 1,
	}
)

func (p Purpose) score(lowerName string) int {
	for _, r := range purposeRules[p] {
		if r.pattern.MatchString(lowerName) {
			return r.score
		}
	}
	return fallbackScore[p]
}
