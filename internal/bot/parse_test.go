package bot

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"estate_bot/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestParseCategoryArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    model.FilterUpdate
		wantErr bool
	}{
		{name: "sale", args: "sale", want: model.FilterUpdate{Category: ptr(model.CategorySale)}},
		{name: "lease", args: " Lease ", want: model.FilterUpdate{Category: ptr(model.CategoryLease)}},
		{name: "rent alias", args: "rent", want: model.FilterUpdate{Category: ptr(model.CategoryLease)}},
		{name: "any clears", args: "any", want: model.FilterUpdate{ClearCategory: true}},
		{name: "off clears", args: "off", want: model.FilterUpdate{ClearCategory: true}},
		{name: "empty", args: "", wantErr: true},
		{name: "unknown", args: "auction", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategoryArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePropertyTypeArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    model.FilterUpdate
		wantErr bool
	}{
		{name: "flat", args: "flat", want: model.FilterUpdate{PropertyType: ptr(model.PropertyFlat)}},
		{name: "house upper case", args: "HOUSE", want: model.FilterUpdate{PropertyType: ptr(model.PropertyHouse)}},
		{name: "any clears", args: "any", want: model.FilterUpdate{ClearPropertyType: true}},
		{name: "unknown", args: "castle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePropertyTypeArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAmountArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    *int64
		wantErr bool
	}{
		{name: "plain", args: "25000", want: ptr[int64](25000)},
		{name: "space separated", args: "7 500 000", want: ptr[int64](7500000)},
		{name: "underscore separated", args: "7_500_000", want: ptr[int64](7500000)},
		{name: "off", args: "off", want: nil},
		{name: "any", args: "ANY", want: nil},
		{name: "empty", args: "", wantErr: true},
		{name: "zero", args: "0", wantErr: true},
		{name: "negative", args: "-5", wantErr: true},
		{name: "not a number", args: "cheap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLayoutsArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    []model.Layout
		wantErr bool
	}{
		{name: "codes", args: "one_kk,two_kk", want: []model.Layout{model.LayoutOneKK, model.LayoutTwoKK}},
		{name: "labels", args: "2+kk, 3+1", want: []model.Layout{model.LayoutTwoKK, model.LayoutThreeOne}},
		{name: "label with spaces", args: "4 & more", want: []model.Layout{model.LayoutFourMore}},
		{name: "duplicates dropped", args: "two_kk,2+kk,two_kk", want: []model.Layout{model.LayoutTwoKK}},
		{name: "trailing comma", args: "others,", want: []model.Layout{model.LayoutOthers}},
		{name: "any clears", args: "any", want: nil},
		{name: "empty", args: "", wantErr: true},
		{name: "only commas", args: ",,", wantErr: true},
		{name: "unknown", args: "two_kk,penthouse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLayoutsArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDistrictsArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    []int
		wantErr bool
	}{
		{name: "single", args: "2", want: []int{2}},
		{name: "sorted and deduplicated", args: "10, 2,5,2", want: []int{2, 5, 10}},
		{name: "bounds", args: "1,22", want: []int{1, 22}},
		{name: "any clears", args: "any", want: nil},
		{name: "zero", args: "0", wantErr: true},
		{name: "too large", args: "23", wantErr: true},
		{name: "not a number", args: "2,vinohrady", wantErr: true},
		{name: "empty", args: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDistrictsArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseToggleArg(t *testing.T) {
	tests := []struct {
		args    string
		want    bool
		wantErr bool
	}{
		{args: "on", want: true},
		{args: "OFF", want: false},
		{args: "", wantErr: true},
		{args: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := ParseToggleArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLanguageArg(t *testing.T) {
	got, err := ParseLanguageArg(" RU ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(model.LangRU, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseLanguageArg("de"); err == nil {
		t.Error("expected error for unsupported language")
	}
}
