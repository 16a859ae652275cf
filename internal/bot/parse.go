package bot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"estate_bot/internal/model"
	"estate_bot/internal/render"
)

const (
	maxDistrict = 22
	argAny      = "any"
	argOff      = "off"
)

func isReset(s string) bool {
	return s == argAny || s == argOff
}

// ParseCategoryArg parses /category arguments: sale, lease or any.
func ParseCategoryArg(args string) (model.FilterUpdate, error) {
	s := strings.ToLower(strings.TrimSpace(args))
	switch {
	case isReset(s):
		return model.FilterUpdate{ClearCategory: true}, nil
	case s == "rent":
		c := model.CategoryLease
		return model.FilterUpdate{Category: &c}, nil
	}
	for _, c := range model.Categories {
		if s == string(c) {
			return model.FilterUpdate{Category: &c}, nil
		}
	}
	return model.FilterUpdate{}, fmt.Errorf("invalid category %q", args)
}

// ParsePropertyTypeArg parses /type arguments: flat, house or any.
func ParsePropertyTypeArg(args string) (model.FilterUpdate, error) {
	s := strings.ToLower(strings.TrimSpace(args))
	var pt model.PropertyType
	switch {
	case isReset(s):
		return model.FilterUpdate{ClearPropertyType: true}, nil
	case s == string(model.PropertyFlat):
		pt = model.PropertyFlat
	case s == string(model.PropertyHouse):
		pt = model.PropertyHouse
	default:
		return model.FilterUpdate{}, fmt.Errorf("invalid property type %q", args)
	}
	return model.FilterUpdate{PropertyType: &pt}, nil
}

// ParseAmountArg parses a positive integer; "off" or "any" return nil.
// Space and underscore digit separators are accepted ("7 500 000").
func ParseAmountArg(args string) (*int64, error) {
	s := strings.ToLower(strings.TrimSpace(args))
	if s == "" {
		return nil, fmt.Errorf("value is required")
	}
	if isReset(s) {
		return nil, nil
	}
	s = strings.NewReplacer(" ", "", "_", "").Replace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid amount %q: want a positive number", args)
	}
	return &n, nil
}

// ParseLayoutsArg parses a comma separated list of layout codes or labels
// ("two_kk,3+kk"). "any" returns nil.
func ParseLayoutsArg(args string) ([]model.Layout, error) {
	s := strings.ToLower(strings.TrimSpace(args))
	if s == "" {
		return nil, fmt.Errorf("at least one layout is required")
	}
	if isReset(s) {
		return nil, nil
	}

	var layouts []model.Layout
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		l, ok := lookupLayout(part)
		if !ok {
			return nil, fmt.Errorf("unknown layout %q", part)
		}
		if !slices.Contains(layouts, l) {
			layouts = append(layouts, l)
		}
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("at least one layout is required")
	}
	return layouts, nil
}

func lookupLayout(s string) (model.Layout, bool) {
	for _, l := range model.Layouts {
		if s == string(l) || s == strings.ToLower(render.LayoutLabel(l, model.LangEN)) {
			return l, true
		}
	}
	return "", false
}

// ParseDistrictsArg parses a comma separated list of Prague district numbers.
// "any" returns nil.
func ParseDistrictsArg(args string) ([]int, error) {
	s := strings.ToLower(strings.TrimSpace(args))
	if s == "" {
		return nil, fmt.Errorf("at least one district is required")
	}
	if isReset(s) {
		return nil, nil
	}

	var districts []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > maxDistrict {
			return nil, fmt.Errorf("district must be between 1 and %d, got %q", maxDistrict, part)
		}
		if !slices.Contains(districts, n) {
			districts = append(districts, n)
		}
	}
	if len(districts) == 0 {
		return nil, fmt.Errorf("at least one district is required")
	}
	slices.Sort(districts)
	return districts, nil
}

// ParseToggleArg parses on/off.
func ParseToggleArg(args string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		return true, nil
	case argOff:
		return false, nil
	}
	return false, fmt.Errorf("invalid toggle %q", args)
}

// ParseLanguageArg parses a supported language code.
func ParseLanguageArg(args string) (model.Language, error) {
	lang := model.Language(strings.ToLower(strings.TrimSpace(args)))
	if !render.SupportedLanguage(lang) {
		return "", fmt.Errorf("unsupported language %q", args)
	}
	return lang, nil
}
