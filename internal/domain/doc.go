// Package domain normalizes motorsport timing and telemetry exports.
//
// # Data Source
//
// Exports come from several timing and telemetry vendors and are dropped
// into dataset folders as CSV (sometimes XLSX). Header naming, delimiters and
// units vary by vendor and by event, so nothing here assumes a fixed schema.
// Every extractor works on a parsed [Table] and returns a typed series or an
// [*ExtractError] whose [Reason] says why nothing was produced.
//
// # Column Resolution
//
// Each logical field has an ordered candidate list ([LapTimeColumns],
// [LapColumns], [ChannelColumns], ...). The first candidate present in the
// header wins. Matching is exact and case-sensitive; there is no fuzzy
// matching. Weather and classification files use case-insensitive header
// patterns instead, since station exports spell them inconsistently:
//
//	AIR_TEMP, AIR TEMP, Air-Temp   → air temperature
//	TIME_UTC_SECONDS               → epoch seconds label
//	GAP_PREVIOUS, Gap Previous     → gap to the car ahead
//
// # Unit Conventions
//
// Lap times:
//
//	Seconds as a decimal: 93.2 = 93.2 s
//	Milliseconds (columns ending "_ms", some loggers): 93200 = 93.2 s
//	Heuristic: values > 1000 are milliseconds because no modeled circuit
//	has a lap longer than 1000 s. Conversion happens at most once.
//
// Section splits:
//
//	Same heuristic on the absolute value, applied per row before summing.
//
// Speed:
//
//	Heuristic: when more than half of the present samples exceed 120 the
//	series is km/h and is converted to mph (×0.621371, 2 decimals).
//
// Numbers:
//
//	Thousands separators are stripped ("93,200" = 93200). Weather cells
//	with a single comma and no dot use it as a decimal comma ("21,4").
//
// # Lap Times
//
// A lap-time column is preferred. In multi-car files the rows are narrowed
// to one car: the requested vehicle, or else the car with the most positive
// lap times. When a lap number repeats, the smaller time is kept since the
// larger one is usually an in-lap or anomaly. Without a lap-time column,
// durations are derived from the timestamps at which the lap number changes.
//
// # Pit Window
//
// The largest lap-to-lap time loss is taken as the pit stop; see
// [EstimatePitWindow]. [EstimateLapWindow] maps that window onto the
// series' own lap numbers, which is what the API and recommendations report.
// This is a heuristic, not a garage entry detector.
package domain
