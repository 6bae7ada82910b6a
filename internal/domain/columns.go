package domain

// Candidates is an ordered priority list of header names accepted for one
// logical field. Earlier entries win. Matching is exact and case-sensitive.
type Candidates []string

// Candidate tables for the fields shared by several extractors.
var (
	LapTimeColumns = Candidates{
		"lap_time", "laptime", "lapTime", "LapTime",
		"lap_time_seconds", "laptime_s", "laptime_ms", "lap_time_ms",
		"value", "Value",
	}
	LapColumns       = Candidates{"lap", "Lap", "lap_number", "LapNumber", "LAP_NUMBER"}
	TimestampColumns = Candidates{"timestamp", "Timestamp", "time", "meta_time"}
	VehicleColumns   = Candidates{"vehicle_id", "vehicle_number", "car_number", "NUMBER", "Number", "number", "car", "Car"}
)

// Schema indexes a header list for candidate resolution.
type Schema struct {
	index map[string]struct{}
}

// NewSchema builds a Schema over headers.
func NewSchema(headers []string) Schema {
	index := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		index[h] = struct{}{}
	}
	return Schema{index: index}
}

// Has reports whether name is one of the headers.
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// HasAll reports whether every name is present.
func (s Schema) HasAll(names []string) bool {
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// Resolve returns the first candidate present in the schema.
func (s Schema) Resolve(c Candidates) (string, bool) {
	for _, name := range c {
		if s.Has(name) {
			return name, true
		}
	}
	return "", false
}

// Resolve is a convenience for a single lookup against a header list.
func Resolve(headers []string, c Candidates) (string, bool) {
	return NewSchema(headers).Resolve(c)
}
