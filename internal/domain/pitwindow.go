package domain

import "math"

// PitWindow is an estimated pit-stop lap range. EstimatePitWindow reports
// 1-based positions in a time series; EstimateLapWindow reports lap numbers.
type PitWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// pitWindowWidth is the number of laps the window extends past its start.
const pitWindowWidth = 2

// EstimatePitWindow assumes the largest lap-to-lap time loss is the pit
// stop and starts the window on the lap after it. Without any positive jump
// the window starts at the middle of the series, never before lap 2. Start is
// clamped to the series length. An empty series has no window.
func EstimatePitWindow(times []float64) (PitWindow, bool) {
	n := len(times)
	if n == 0 {
		return PitWindow{}, false
	}

	start, maxJump := 0, 0.0
	for i := 1; i < n; i++ {
		if jump := times[i] - times[i-1]; jump > maxJump {
			maxJump = jump
			start = i + 1
		}
	}
	if start == 0 {
		start = max(2, int(math.Floor(float64(n)*0.5)))
	}
	start = min(start, n)

	return PitWindow{Start: start, End: min(n, start+pitWindowWidth)}, true
}

// EstimateLapWindow estimates the pit window of series and reports it in the
// series' own lap numbers, so a series starting at lap 11 never yields a
// window on lap 4.
func EstimateLapWindow(series LapSeries) (PitWindow, bool) {
	w, ok := EstimatePitWindow(series.Times())
	if !ok {
		return PitWindow{}, false
	}
	return PitWindow{Start: series[w.Start-1].Number, End: series[w.End-1].Number}, true
}
