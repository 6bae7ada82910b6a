package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Condition is the coarse track condition of a weather snapshot.
type Condition string

const (
	ConditionDry  Condition = "Dry"
	ConditionRain Condition = "Rain"
)

var (
	airTempHeader    = regexp.MustCompile(`(?i)AIR[_\s-]?TEMP`)
	trackTempHeader  = regexp.MustCompile(`(?i)TRACK[_\s-]?TEMP`)
	rainHeader       = regexp.MustCompile(`(?i)RAIN`)
	utcSecondsHeader = regexp.MustCompile(`(?i)TIME[_\s-]?UTC[_\s-]?SECONDS`)
	utcStringHeader  = regexp.MustCompile(`(?i)TIME[_\s-]?UTC[_\s-]?STR`)
)

// WeatherSnapshot is the current conditions read from the last weather row.
type WeatherSnapshot struct {
	AirTempC  *float64
	Condition Condition
}

// String renders the snapshot for display, e.g. "21°C, Dry".
func (w WeatherSnapshot) String() string {
	if w.AirTempC == nil {
		return string(w.Condition)
	}
	return fmt.Sprintf("%d°C, %s", roundHalfUp(*w.AirTempC), w.Condition)
}

// ExtractWeatherSnapshot reads conditions from the last data row. At least
// one of the air temperature and rain columns must be present. Rain is
// reported when the rain cell is non-empty and not "0".
func ExtractWeatherSnapshot(t Table) (WeatherSnapshot, error) {
	const op = "extract weather snapshot"

	airCol, hasAir := matchHeader(t.Headers, airTempHeader)
	rainCol, hasRain := matchHeader(t.Headers, rainHeader)
	if !hasAir && !hasRain {
		return WeatherSnapshot{}, extractErr(op, ReasonSchema, ErrNoColumns)
	}
	if len(t.Rows) == 0 {
		return WeatherSnapshot{}, extractErr(op, ReasonNoData, ErrNoRows)
	}

	last := t.Rows[len(t.Rows)-1]
	snap := WeatherSnapshot{Condition: ConditionDry}
	if hasRain {
		if v := last[rainCol]; v != "" && v != "0" {
			snap.Condition = ConditionRain
		}
	}
	if hasAir {
		if v, ok := weatherFloat(last[airCol]); ok {
			snap.AirTempC = &v
		}
	}
	return snap, nil
}

// WeatherTrend holds parallel per-row temperature series labelled HH:MM UTC.
type WeatherTrend struct {
	Labels []string
	Air    []*float64
	Track  []*float64
}

// ExtractWeatherTrend builds the temperature trend. The epoch-seconds column
// is preferred for labels, with the date-time string column as fallback;
// rows without a usable label are skipped. Temperatures are rounded to one
// decimal.
func ExtractWeatherTrend(t Table) (WeatherTrend, error) {
	const op = "extract weather trend"

	secCol, hasSec := matchHeader(t.Headers, utcSecondsHeader)
	strCol, hasStr := matchHeader(t.Headers, utcStringHeader)
	if !hasSec && !hasStr {
		return emptyTrend(), extractErr(op, ReasonSchema, ErrNoColumns)
	}
	airCol, hasAir := matchHeader(t.Headers, airTempHeader)
	trackCol, hasTrack := matchHeader(t.Headers, trackTempHeader)

	trend := emptyTrend()
	for _, row := range t.Rows {
		label, ok := "", false
		if hasSec {
			label, ok = epochLabel(row[secCol])
		}
		if !ok && hasStr {
			label, ok = dateTimeLabel(row[strCol])
		}
		if !ok {
			continue
		}

		trend.Labels = append(trend.Labels, label)
		trend.Air = append(trend.Air, roundedCell(row, airCol, hasAir))
		trend.Track = append(trend.Track, roundedCell(row, trackCol, hasTrack))
	}
	return trend, nil
}

func emptyTrend() WeatherTrend {
	return WeatherTrend{Labels: []string{}, Air: []*float64{}, Track: []*float64{}}
}

func matchHeader(headers []string, re *regexp.Regexp) (string, bool) {
	for _, h := range headers {
		if re.MatchString(h) {
			return h, true
		}
	}
	return "", false
}

func epochLabel(raw string) (string, bool) {
	v, ok := ToFloat(raw)
	if !ok {
		return "", false
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format("15:04"), true
}

func dateTimeLabel(raw string) (string, bool) {
	t, ok := ParseDateTime(raw)
	if !ok {
		return "", false
	}
	return t.Format("15:04"), true
}

func roundedCell(row Row, col string, resolved bool) *float64 {
	if !resolved {
		return nil
	}
	v, ok := weatherFloat(row[col])
	if !ok {
		return nil
	}
	v = Round(v, 1)
	return &v
}

// weatherFloat reads a weather cell. Station exports written with ';' as the
// delimiter use a decimal comma ("21,4"), so a lone comma without a dot is
// taken as the decimal separator.
func weatherFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return ToFloat(s)
}
