package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// RankedLap is one entry of a fastest-laps table.
type RankedLap struct {
	Pos  int    `json:"pos"`
	Name string `json:"name"`
	Gap  string `json:"gap"`
}

// FastestLaps ranks the n quickest laps of a series. Gaps are to the best
// lap, formatted "+x.xs". Equal times keep lap order.
func FastestLaps(series LapSeries, n int) []RankedLap {
	if len(series) == 0 || n <= 0 {
		return []RankedLap{}
	}
	sorted := slices.Clone(series)
	slices.SortStableFunc(sorted, func(a, b Lap) int { return cmp.Compare(a.Seconds, b.Seconds) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	best := decimal.NewFromFloat(sorted[0].Seconds)
	return lo.Map(sorted, func(l Lap, i int) RankedLap {
		gap := decimal.NewFromFloat(l.Seconds).Sub(best)
		return RankedLap{
			Pos:  i + 1,
			Name: fmt.Sprintf("Lap %d", l.Number),
			Gap:  "+" + gap.StringFixed(1) + "s",
		}
	})
}

// Recommendation is a pit call derived from a pit window.
type Recommendation struct {
	Style  string `json:"style"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Recommendations turns a pit window into an immediate stop on its first
// lap and a deferred stop on its last.
func Recommendations(w PitWindow) []Recommendation {
	return []Recommendation{
		{
			Style:  "optimal",
			Text:   fmt.Sprintf("BOX on Lap %d - Tyre: Hard - Risk: Low", w.Start),
			Reason: "Largest time loss detected suggests pit window opening.",
		},
		{
			Style:  "caution",
			Text:   fmt.Sprintf("Defer to Lap %d - Tyre: Medium - Risk: Medium", w.End),
			Reason: "Later stop protects track position; watch for Safety Car.",
		},
	}
}

// tyreWearSample is the number of trailing laps compared against the best.
const tyreWearSample = 3

// TyreWearPercent estimates tyre wear as the slowdown of the last three laps
// over the best lap, in whole percent clamped to 0..100. It needs more than
// three laps.
func TyreWearPercent(times []float64) (int, bool) {
	if len(times) <= tyreWearSample {
		return 0, false
	}
	best := slices.Min(times)
	if best <= 0 {
		return 0, false
	}
	lastMean := lo.Mean(times[len(times)-tyreWearSample:])
	pct := roundHalfUp((lastMean - best) / best * 100)
	return min(100, max(0, pct)), true
}

// LapsOnTyre counts the laps run from the pit window's opening lap up to and
// including currentLap.
func LapsOnTyre(currentLap int, w PitWindow) int {
	return max(0, currentLap-w.Start+1)
}
