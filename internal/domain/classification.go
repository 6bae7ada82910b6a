package domain

import (
	"regexp"
	"strings"
)

var (
	numberHeader      = regexp.MustCompile(`(?i)^number$`)
	positionHeader    = regexp.MustCompile(`(?i)^position$`)
	lapsHeader        = regexp.MustCompile(`(?i)^laps$`)
	gapPreviousHeader = regexp.MustCompile(`(?i)^gap[_\s-]?previous$`)
	lapGap            = regexp.MustCompile(`(?i)\blaps?\b`)
)

// Car is one classified entry of a race results file.
type Car struct {
	Number      string
	Position    *int
	Laps        *int
	GapPrevious *float64
}

// ExtractCars reads every classified car in file order. The number column is
// required; rows with an empty number are skipped.
func ExtractCars(t Table) ([]Car, error) {
	const op = "extract cars"

	numCol, ok := matchHeader(t.Headers, numberHeader)
	if !ok {
		return nil, extractErr(op, ReasonSchema, ErrNoColumns)
	}
	posCol, hasPos := matchHeader(t.Headers, positionHeader)
	lapsCol, hasLaps := matchHeader(t.Headers, lapsHeader)
	gapCol, hasGap := matchHeader(t.Headers, gapPreviousHeader)

	cars := make([]Car, 0, len(t.Rows))
	for _, row := range t.Rows {
		number := row[numCol]
		if number == "" {
			continue
		}
		car := Car{Number: number}
		if hasPos {
			car.Position = intCell(row[posCol])
		}
		if hasLaps {
			car.Laps = intCell(row[lapsCol])
		}
		if hasGap {
			if v, ok := ParseGapSeconds(row[gapCol]); ok {
				car.GapPrevious = &v
			}
		}
		cars = append(cars, car)
	}
	if len(cars) == 0 {
		return cars, extractErr(op, ReasonNoData, ErrNoData)
	}
	return cars, nil
}

// FindCar returns the car with the given number.
func FindCar(cars []Car, number string) (Car, bool) {
	number = strings.TrimSpace(number)
	for _, c := range cars {
		if c.Number == number {
			return c, true
		}
	}
	return Car{}, false
}

// ParseGapSeconds reads a classification gap such as "+1.234" or "1:02.345"
// as seconds. Gaps counted in laps ("+1 Lap") have no time value.
func ParseGapSeconds(raw string) (float64, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	if s == "" || s == "-" || lapGap.MatchString(s) {
		return 0, false
	}
	if minutes, seconds, found := strings.Cut(s, ":"); found {
		m, ok := ToFloat(minutes)
		if !ok {
			return 0, false
		}
		sec, ok := ToFloat(seconds)
		if !ok {
			return 0, false
		}
		return Round(m*60+sec, 3), true
	}
	return ToFloat(s)
}

func intCell(raw string) *int {
	v, ok := ToFloat(raw)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
