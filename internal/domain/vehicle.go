package domain

import (
	"strings"

	"github.com/samber/lo"
)

// MatchVehicle reports whether a vehicle cell belongs to the requested car.
// Timing exports mix plain car numbers ("78") with chassis-style identifiers
// ("GR86-004-78"), so a trailing "-<id>" also matches. An empty request
// matches everything.
func MatchVehicle(cell, vehicle string) bool {
	vehicle = strings.TrimSpace(vehicle)
	if vehicle == "" {
		return true
	}
	cell = strings.TrimSpace(cell)
	return cell == vehicle || strings.HasSuffix(cell, "-"+vehicle)
}

func filterVehicle(rows []Row, column, vehicle string) []Row {
	return lo.Filter(rows, func(r Row, _ int) bool {
		return MatchVehicle(r[column], vehicle)
	})
}

// mostCompleteVehicle picks the vehicle whose rows carry the most positive
// lap-time values. Ties keep the vehicle seen first.
func mostCompleteVehicle(rows []Row, vehicleCol, lapTimeCol string) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		id := r[vehicleCol]
		if _, seen := counts[id]; !seen {
			order = append(order, id)
			counts[id] = 0
		}
		if v, ok := ToFloat(r[lapTimeCol]); ok && v > 0 {
			counts[id]++
		}
	}

	best, bestN := "", -1
	for _, id := range order {
		if counts[id] > bestN {
			best, bestN = id, counts[id]
		}
	}
	return best
}
