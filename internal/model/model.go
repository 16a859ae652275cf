// Package model defines the domain types used across the application.
package model

import "time"

// Category is the deal type of a listing.
type Category string

// Supported categories.
const (
	CategorySale  Category = "sale"
	CategoryLease Category = "lease"
)

// Categories lists every category in publishing order.
var Categories = []Category{CategorySale, CategoryLease}

// PropertyType is the kind of real estate.
type PropertyType string

// Supported property types.
const (
	PropertyFlat  PropertyType = "flat"
	PropertyHouse PropertyType = "house"
)

// Layout is a room layout code as reported by the estates feed.
type Layout string

// Known layouts.
const (
	LayoutOneKK    Layout = "one_kk"
	LayoutOneOne   Layout = "one_one"
	LayoutTwoKK    Layout = "two_kk"
	LayoutTwoOne   Layout = "two_one"
	LayoutThreeKK  Layout = "three_kk"
	LayoutThreeOne Layout = "three_one"
	LayoutFourKK   Layout = "four_kk"
	LayoutFourMore Layout = "four_more"
	LayoutOthers   Layout = "others"
)

// Layouts lists the layouts users can filter on.
var Layouts = []Layout{
	LayoutOneKK, LayoutOneOne, LayoutTwoKK, LayoutTwoOne,
	LayoutThreeKK, LayoutThreeOne, LayoutFourKK, LayoutFourMore, LayoutOthers,
}

// Language is a UI language code.
type Language string

// Supported languages.
const (
	LangEN Language = "en"
	LangRU Language = "ru"
)

// Listing is a single estate advertisement fetched from the estates API.
type Listing struct {
	ID             int64        `json:"id"`
	Category       Category     `json:"category"`
	PropertyType   PropertyType `json:"property_type"`
	Layout         Layout       `json:"layout"`
	Title          string       `json:"title"`
	Address        string       `json:"address"`
	Price          int64        `json:"price"`
	UsableArea     int          `json:"usable_area"`
	DistrictNumber int          `json:"district_number"`
	EnergyRating   string       `json:"energy_rating"`
	ImageURL       string       `json:"image_url"`
	PageURL        string       `json:"page_url"`
	SourceName     string       `json:"source_name"`
	SourceUID      string       `json:"source_uid"`
	UpdatedAt      string       `json:"updated_at"`
	IsDuplicate    bool         `json:"is_duplicate"`
}

// Filter holds a user's notification criteria.
// A nil pointer or an empty slice means the criterion is not set.
type Filter struct {
	UserID        int64
	Lang          Language
	Enabled       bool
	Category      *Category
	PropertyType  *PropertyType
	MinPrice      *int64
	MaxPrice      *int64
	MinUsableArea *int
	Layouts       []Layout
	Districts     []int
}

// FilterUpdate is a partial update of a Filter. Nil fields are left unchanged;
// the Clear* flags reset the corresponding criterion to "not set".
type FilterUpdate struct {
	Lang          *Language
	Enabled       *bool
	Category      *Category
	PropertyType  *PropertyType
	MinPrice      *int64
	MaxPrice      *int64
	MinUsableArea *int
	Layouts       []Layout
	Districts     []int

	ClearCategory      bool
	ClearPropertyType  bool
	ClearMinPrice      bool
	ClearMaxPrice      bool
	ClearMinUsableArea bool
	ClearLayouts       bool
	ClearDistricts     bool
}

// ExpiringSoonDays is how close to expiry a subscription is considered expiring soon.
const ExpiringSoonDays = 2

// Subscription is a user's paid or trial access window.
type Subscription struct {
	UserID    int64
	ChatID    int64
	ExpiredAt time.Time
}

// IsActive reports whether the subscription has not expired as of now.
func (s Subscription) IsActive(now time.Time) bool {
	return !s.ExpiredAt.Before(Date(now))
}

// IsExpiringSoon reports whether an active subscription ends within ExpiringSoonDays.
func (s Subscription) IsExpiringSoon(now time.Time) bool {
	if !s.IsActive(now) {
		return false
	}
	return DaysBetween(Date(now), s.ExpiredAt) <= ExpiringSoonDays
}

// Invoice links a payment session to the subscription it pays for.
type Invoice struct {
	UserID int64 `json:"user_id"`
	Price  int   `json:"price"`
	Days   int   `json:"days"`
}

// Price is a purchasable subscription plan.
type Price struct {
	Slug       string `yaml:"slug"`
	Title      string `yaml:"title"`
	Cost       int    `yaml:"cost"` // Telegram Stars
	AmountUSDT string `yaml:"amount_usdt"`
	Days       int    `yaml:"days"`
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
