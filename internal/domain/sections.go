package domain

import (
	"math"
	"sort"
)

// The two mutually exclusive section column sets. Every member of a set must
// be present in the header for it to activate; the sector-split set wins when
// both qualify.
var (
	SectorSplitNames  = []string{"S1.a", "S1.b", "S2.a", "S2.b", "S3.a", "S3.b"}
	IntermediateNames = []string{"IM1a", "IM1", "IM2a", "IM2", "IM3a", "FL"}
)

// SectionSeries holds per-section split times. Times[name] is parallel to
// Laps for every name in Names.
type SectionSeries struct {
	Names []string
	Laps  []int
	Times map[string][]float64
}

// SectionOptions narrows section extraction to one car when Vehicle is set.
type SectionOptions struct {
	Vehicle string
}

// ActiveSectionSet returns the section names the header supports, or false
// when neither set is complete.
func ActiveSectionSet(headers []string) ([]string, bool) {
	schema := NewSchema(headers)
	switch {
	case schema.HasAll(SectorSplitNames):
		return SectorSplitNames, true
	case schema.HasAll(IntermediateNames):
		return IntermediateNames, true
	default:
		return nil, false
	}
}

// ExtractSections sums each active section's values per lap. A lap may span
// several rows (one per timing beacon). Rows without a lap number get the
// next sequential index. Sums are rounded to 3 decimals.
func ExtractSections(t Table, opts SectionOptions) (SectionSeries, error) {
	const op = "extract sections"

	names, ok := ActiveSectionSet(t.Headers)
	if !ok {
		return SectionSeries{}, extractErr(op, ReasonSchema, ErrNoColumns)
	}

	schema := NewSchema(t.Headers)
	lapCol, hasLap := schema.Resolve(LapColumns)

	rows := t.Rows
	if opts.Vehicle != "" {
		if vehicleCol, ok := schema.Resolve(VehicleColumns); ok {
			rows = filterVehicle(rows, vehicleCol, opts.Vehicle)
		}
	}
	if len(rows) == 0 {
		return SectionSeries{}, extractErr(op, ReasonNoData, ErrNoRows)
	}

	perLap := make(map[int]map[string]float64)
	for _, row := range rows {
		n, ok := 0, false
		if hasLap {
			n, ok = lapNumber(row[lapCol])
		}
		if !ok {
			n = len(perLap) + 1
		}

		sums, seen := perLap[n]
		if !seen {
			sums = make(map[string]float64, len(names))
			perLap[n] = sums
		}
		for _, name := range names {
			if v, ok := ToFloat(row[name]); ok {
				// A sum that overflows keeps its last finite value.
				if next := sums[name] + SectionSeconds(v); !math.IsInf(next, 0) {
					sums[name] = next
				}
			}
		}
	}

	laps := make([]int, 0, len(perLap))
	for n := range perLap {
		laps = append(laps, n)
	}
	sort.Ints(laps)

	times := make(map[string][]float64, len(names))
	for _, name := range names {
		series := make([]float64, len(laps))
		for i, n := range laps {
			series[i] = Round(perLap[n][name], 3)
		}
		times[name] = series
	}

	return SectionSeries{Names: names, Laps: laps, Times: times}, nil
}
