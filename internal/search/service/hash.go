package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tripgate_backend/internal/travel"
)

// QueryHash computes a stable content hash of a query. The rendering is
// key-sorted, so the hash is independent of field declaration or insertion
// order, and empty fields are omitted so equivalent queries collide.
func QueryHash(query travel.SearchQuery) string {
	fields := map[string]string{
		"capability":    string(query.Capability),
		"origin":        strings.ToUpper(strings.TrimSpace(query.Origin)),
		"destination":   strings.ToUpper(strings.TrimSpace(query.Destination)),
		"departureDate": query.DepartureDate,
		"returnDate":    query.ReturnDate,
		"cabinClass":    strings.ToLower(query.CabinClass),
		"city":          strings.ToUpper(strings.TrimSpace(query.City)),
		"checkIn":       query.CheckIn,
		"checkOut":      query.CheckOut,
		"pickup":        strings.ToUpper(strings.TrimSpace(query.Pickup)),
		"dropoff":       strings.ToUpper(strings.TrimSpace(query.Dropoff)),
		"pickupAt":      query.PickupAt,
		"date":          query.Date,
		"currency":      strings.ToUpper(query.Currency),
	}
	if query.Adults > 0 {
		fields["adults"] = strconv.Itoa(query.Adults)
	}
	if query.Children > 0 {
		fields["children"] = strconv.Itoa(query.Children)
	}
	if query.Rooms > 0 {
		fields["rooms"] = strconv.Itoa(query.Rooms)
	}

	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, key := range keys {
		fmt.Fprintf(h, "%s=%s\n", key, fields[key])
	}
	return hex.EncodeToString(h.Sum(nil))
}
