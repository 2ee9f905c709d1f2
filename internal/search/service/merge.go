package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tripgate_backend/internal/travel"
)

// Merge dedups results across adapters and orders them by ascending price.
// Hotels dedup on normalized name plus coordinates rounded to two decimals;
// the cheaper of two duplicates survives. Other capabilities dedup on
// provider and offer id only.
func Merge(capability travel.Capability, results []travel.CanonicalResult) []travel.CanonicalResult {
	byKey := make(map[string]travel.CanonicalResult, len(results))
	order := make([]string, 0, len(results))

	for _, result := range results {
		key := dedupKey(capability, result)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = result
			order = append(order, key)
			continue
		}
		if result.Price.Amount < existing.Price.Amount {
			byKey[key] = result
		}
	}

	merged := make([]travel.CanonicalResult, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Price.Amount < merged[j].Price.Amount
	})
	return merged
}

func dedupKey(capability travel.Capability, result travel.CanonicalResult) string {
	if capability == travel.CapabilityHotel && result.Hotel != nil {
		return fmt.Sprintf("%s|%.2f|%.2f",
			strings.ToLower(strings.TrimSpace(result.Hotel.Name)),
			roundCoord(result.Hotel.Latitude),
			roundCoord(result.Hotel.Longitude),
		)
	}
	return result.Provider + "|" + result.ID
}

func roundCoord(value float64) float64 {
	return math.Round(value*100) / 100
}
