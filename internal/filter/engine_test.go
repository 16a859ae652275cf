package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"estate_bot/internal/model"
)

func ptr[T any](v T) *T { return &v }

func sampleListing() model.Listing {
	return model.Listing{
		ID:             5,
		Category:       model.CategorySale,
		PropertyType:   model.PropertyFlat,
		Layout:         model.LayoutTwoKK,
		Address:        "Vinohradská 12, Praha 2",
		Price:          7_500_000,
		UsableArea:     54,
		DistrictNumber: 2,
		EnergyRating:   "c",
		SourceName:     "sreality",
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter model.Filter
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: model.Filter{},
			want:   true,
		},
		{
			name:   "category matches",
			filter: model.Filter{Category: ptr(model.CategorySale)},
			want:   true,
		},
		{
			name:   "category differs",
			filter: model.Filter{Category: ptr(model.CategoryLease)},
			want:   false,
		},
		{
			name:   "property type differs",
			filter: model.Filter{PropertyType: ptr(model.PropertyHouse)},
			want:   false,
		},
		{
			name:   "min price inclusive",
			filter: model.Filter{MinPrice: ptr(int64(7_500_000))},
			want:   true,
		},
		{
			name:   "min price above listing",
			filter: model.Filter{MinPrice: ptr(int64(7_500_001))},
			want:   false,
		},
		{
			name:   "max price inclusive",
			filter: model.Filter{MaxPrice: ptr(int64(7_500_000))},
			want:   true,
		},
		{
			name:   "max price below listing",
			filter: model.Filter{MaxPrice: ptr(int64(7_499_999))},
			want:   false,
		},
		{
			name:   "zero min price is a set constraint that passes",
			filter: model.Filter{MinPrice: ptr(int64(0))},
			want:   true,
		},
		{
			name:   "min usable area inclusive",
			filter: model.Filter{MinUsableArea: ptr(54)},
			want:   true,
		},
		{
			name:   "min usable area too large",
			filter: model.Filter{MinUsableArea: ptr(55)},
			want:   false,
		},
		{
			name:   "layout in set",
			filter: model.Filter{Layouts: []model.Layout{model.LayoutOneKK, model.LayoutTwoKK}},
			want:   true,
		},
		{
			name:   "layout not in set",
			filter: model.Filter{Layouts: []model.Layout{model.LayoutOthers}},
			want:   false,
		},
		{
			name:   "district in set",
			filter: model.Filter{Districts: []int{1, 2, 5}},
			want:   true,
		},
		{
			name:   "district not in set",
			filter: model.Filter{Districts: []int{10}},
			want:   false,
		},
		{
			name:   "empty sets are not constraints",
			filter: model.Filter{Layouts: []model.Layout{}, Districts: []int{}},
			want:   true,
		},
		{
			name: "all criteria satisfied",
			filter: model.Filter{
				Category:      ptr(model.CategorySale),
				PropertyType:  ptr(model.PropertyFlat),
				MinPrice:      ptr(int64(5_000_000)),
				MaxPrice:      ptr(int64(8_000_000)),
				MinUsableArea: ptr(40),
				Layouts:       []model.Layout{model.LayoutTwoKK},
				Districts:     []int{2},
			},
			want: true,
		},
		{
			name:   "disabled filter still evaluates criteria",
			filter: model.Filter{Enabled: false, Category: ptr(model.CategorySale)},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.filter, sampleListing())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Each single violation flips an otherwise matching filter to false.
func TestMatchSingleViolation(t *testing.T) {
	full := model.Filter{
		Category:      ptr(model.CategorySale),
		PropertyType:  ptr(model.PropertyFlat),
		MinPrice:      ptr(int64(5_000_000)),
		MaxPrice:      ptr(int64(8_000_000)),
		MinUsableArea: ptr(40),
		Layouts:       []model.Layout{model.LayoutTwoKK},
		Districts:     []int{2},
	}
	if !Match(full, sampleListing()) {
		t.Fatal("baseline listing should match")
	}

	mutations := map[string]func(*model.Listing){
		"category":      func(l *model.Listing) { l.Category = model.CategoryLease },
		"property type": func(l *model.Listing) { l.PropertyType = model.PropertyHouse },
		"price low":     func(l *model.Listing) { l.Price = 4_999_999 },
		"price high":    func(l *model.Listing) { l.Price = 8_000_001 },
		"area":          func(l *model.Listing) { l.UsableArea = 39 },
		"layout":        func(l *model.Listing) { l.Layout = model.LayoutOthers },
		"district":      func(l *model.Listing) { l.DistrictNumber = 7 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			l := sampleListing()
			mutate(&l)
			if Match(full, l) {
				t.Errorf("expected %s violation to fail the match", name)
			}
		})
	}
}

func TestApply(t *testing.T) {
	a := sampleListing()
	b := sampleListing()
	b.ID = 6
	b.Category = model.CategoryLease
	c := sampleListing()
	c.ID = 7

	got := Apply(model.Filter{Category: ptr(model.CategorySale)}, []model.Listing{a, b, c})

	want := []int64{5, 7}
	var gotIDs []int64
	for _, l := range got {
		gotIDs = append(gotIDs, l.ID)
	}
	if diff := cmp.Diff(want, gotIDs); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
