// Package filter implements the listing matching engine.
package filter

import (
	"slices"

	"estate_bot/internal/model"
)

// Match checks whether a listing satisfies every criterion set on the filter.
// Unset criteria always pass; price and area bounds are inclusive.
// The Enabled flag is not consulted here.
func Match(f model.Filter, l model.Listing) bool {
	if f.Category != nil && l.Category != *f.Category {
		return false
	}
	if f.PropertyType != nil && l.PropertyType != *f.PropertyType {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.MinUsableArea != nil && l.UsableArea < *f.MinUsableArea {
		return false
	}
	if len(f.Layouts) > 0 && !slices.Contains(f.Layouts, l.Layout) {
		return false
	}
	if len(f.Districts) > 0 && !slices.Contains(f.Districts, l.DistrictNumber) {
		return false
	}
	return true
}

// Apply returns the listings that satisfy f, keeping their order.
func Apply(f model.Filter, listings []model.Listing) []model.Listing {
	var matched []model.Listing
	for _, l := range listings {
		if Match(f, l) {
			matched = append(matched, l)
		}
	}
	return matched
}
