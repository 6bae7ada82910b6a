package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MillisecondThreshold is the lap-time value above which a number is read
	// as milliseconds. No modeled circuit has a lap longer than 1000 s.
	MillisecondThreshold = 1000.0

	// KmhThreshold is the speed above which a sample counts as a km/h vote.
	KmhThreshold = 120.0

	// KmhToMph converts kilometres per hour to miles per hour.
	KmhToMph = 0.621371
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// ToFloat parses a raw cell as a number. Thousands-separator commas are
// stripped first. Empty, unparsable and non-finite values report false.
func ToFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// LapSeconds converts a lap-time value to seconds. The value is taken as
// milliseconds when the column name ends in "_ms" or the value exceeds
// MillisecondThreshold; it is divided at most once.
func LapSeconds(column string, v float64) float64 {
	if strings.HasSuffix(column, "_ms") || v > MillisecondThreshold {
		return v / 1000.0
	}
	return v
}

// SectionSeconds corrects a section split whose magnitude says milliseconds.
func SectionSeconds(v float64) float64 {
	if math.Abs(v) > MillisecondThreshold {
		return v / 1000.0
	}
	return v
}

// DeltaSeconds applies the millisecond heuristic to a timestamp difference.
func DeltaSeconds(dt float64) float64 {
	if dt > MillisecondThreshold {
		return dt / 1000.0
	}
	return dt
}

// NormalizeSpeed converts the whole series from km/h to mph, in place, when
// more than half of the present samples exceed KmhThreshold. Converted values
// are rounded to 2 decimals. It reports whether a conversion happened.
func NormalizeSpeed(series []*float64) bool {
	present, fast := 0, 0
	for _, v := range series {
		if v == nil {
			continue
		}
		present++
		if *v > KmhThreshold {
			fast++
		}
	}
	if present == 0 || fast*2 <= present {
		return false
	}
	for i, v := range series {
		if v == nil {
			continue
		}
		mph := Round(*v*KmhToMph, 2)
		series[i] = &mph
	}
	return true
}

// Round rounds v to the given number of decimal places, half away from zero.
// Non-finite values are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// roundHalfUp rounds to the nearest integer with halves going up, the way a
// dashboard displays whole degrees.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ParseTimestamp reads a timestamp cell as a number, falling back to a
// date-time string converted to epoch seconds.
func ParseTimestamp(raw string) (float64, bool) {
	if v, ok := ToFloat(raw); ok {
		return v, true
	}
	t, ok := ParseDateTime(raw)
	if !ok {
		return 0, false
	}
	return float64(t.UnixNano()) / 1e9, true
}

// ParseDateTime parses the date-time layouts seen in timing exports. Values
// without a zone are taken as UTC.
func ParseDateTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// lapNumber parses a lap cell. Fractional values and values outside the
// int32 range are rejected.
func lapNumber(raw string) (int, bool) {
	v, ok := ToFloat(raw)
	if !ok || v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}
