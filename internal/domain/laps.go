package domain

import (
	"math"
	"sort"
)

// Lap is one entry of a lap-time series.
type Lap struct {
	Number  int     `json:"lap"`
	Seconds float64 `json:"seconds"`
}

// LapSeries is strictly ascending by lap number with one entry per lap.
type LapSeries []Lap

// Numbers returns the lap numbers in series order.
func (s LapSeries) Numbers() []int {
	out := make([]int, len(s))
	for i, l := range s {
		out[i] = l.Number
	}
	return out
}

// Times returns the lap durations in series order.
func (s LapSeries) Times() []float64 {
	out := make([]float64, len(s))
	for i, l := range s {
		out[i] = l.Seconds
	}
	return out
}

// LapOptions narrows lap extraction to one car when Vehicle is set.
type LapOptions struct {
	Vehicle string
}

// ExtractLapTimes builds a lap-time series from a table.
//
// An explicit lap-time column is tried first. When the table also carries a
// vehicle column, only one car's rows are used: the requested vehicle, or
// else the car with the most positive lap times. Values are converted from
// milliseconds where the column name or magnitude says so, non-positive
// values are dropped, and when a lap number repeats the smaller time wins.
//
// If that yields nothing, durations are derived from the timestamps at which
// the lap column changes value.
func ExtractLapTimes(t Table, opts LapOptions) (LapSeries, error) {
	const op = "extract lap times"

	schema := NewSchema(t.Headers)
	lapCol, hasLap := schema.Resolve(LapColumns)
	ltCol, hasLapTime := schema.Resolve(LapTimeColumns)
	tsCol, hasTimestamp := schema.Resolve(TimestampColumns)
	vehicleCol, hasVehicle := schema.Resolve(VehicleColumns)

	if !hasLapTime && !(hasLap && hasTimestamp) {
		return nil, extractErr(op, ReasonSchema, ErrNoColumns)
	}
	if len(t.Rows) == 0 {
		return nil, extractErr(op, ReasonNoData, ErrNoRows)
	}

	if hasLapTime {
		rows := t.Rows
		if hasVehicle {
			if opts.Vehicle != "" {
				rows = filterVehicle(rows, vehicleCol, opts.Vehicle)
			} else {
				best := mostCompleteVehicle(rows, vehicleCol, ltCol)
				rows = filterExact(rows, vehicleCol, best)
			}
		}
		if series := lapsFromColumn(rows, lapCol, hasLap, ltCol); len(series) > 0 {
			return series, nil
		}
	}

	if hasLap && hasTimestamp {
		rows := t.Rows
		if hasVehicle && opts.Vehicle != "" {
			rows = filterVehicle(rows, vehicleCol, opts.Vehicle)
		}
		if series := lapsFromTimestamps(rows, lapCol, tsCol); len(series) > 0 {
			return series, nil
		}
	}

	return nil, extractErr(op, ReasonNoData, ErrNoData)
}

func lapsFromColumn(rows []Row, lapCol string, hasLap bool, ltCol string) LapSeries {
	byLap := make(map[int]float64)
	for _, row := range rows {
		v, ok := ToFloat(row[ltCol])
		if !ok {
			continue
		}
		v = LapSeconds(ltCol, v)
		if v <= 0 {
			continue
		}

		n, ok := 0, false
		if hasLap {
			n, ok = lapNumber(row[lapCol])
		}
		if !ok {
			n = len(byLap) + 1
		}
		if n <= 0 {
			continue
		}
		keepSmaller(byLap, n, v)
	}
	return sortedSeries(byLap)
}

func lapsFromTimestamps(rows []Row, lapCol, tsCol string) LapSeries {
	byLap := make(map[int]float64)
	started := false
	var prevLap int
	var prevTS float64

	for _, row := range rows {
		lap, ok := lapNumber(row[lapCol])
		if !ok {
			continue
		}
		ts, ok := ParseTimestamp(row[tsCol])
		if !ok {
			continue
		}
		if !started {
			prevLap, prevTS, started = lap, ts, true
			continue
		}
		if lap == prevLap {
			continue
		}
		dt := DeltaSeconds(math.Max(0, ts-prevTS))
		if prevLap > 0 {
			keepSmaller(byLap, prevLap, dt)
		}
		prevLap, prevTS = lap, ts
	}
	return sortedSeries(byLap)
}

// keepSmaller records v for lap n unless a smaller positive value is
// already there. A zero duration never replaces a positive one.
func keepSmaller(byLap map[int]float64, n int, v float64) {
	cur, ok := byLap[n]
	switch {
	case !ok:
		byLap[n] = v
	case v > 0 && (cur <= 0 || v < cur):
		byLap[n] = v
	}
}

func sortedSeries(byLap map[int]float64) LapSeries {
	out := make(LapSeries, 0, len(byLap))
	for n, v := range byLap {
		out = append(out, Lap{Number: n, Seconds: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func filterExact(rows []Row, column, value string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r[column] == value {
			out = append(out, r)
		}
	}
	return out
}
