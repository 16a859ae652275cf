// Package render formats listings and filters into Telegram-ready text.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"estate_bot/internal/model"
)

// Post is a listing rendered for one language.
type Post struct {
	Caption    string // Markdown
	PhotoURL   string
	LinkURL    string
	ButtonText string
}

var markdownRisk = regexp.MustCompile("[_*\\[\\]()`>#=|{}!\\\\]")

var sourceDomains = map[string]string{
	"sreality":       "sreality.cz",
	"bezrealitky":    "bezrealitky.cz",
	"svoboda":        "svoboda-williams.com",
	"expats":         "expats.cz",
	"idnes":          "reality.idnes.cz",
	"engelvoelkers":  "engelvoelkers.com",
	"remax":          "remax-czech.cz",
	"ulovdomov":      "ulovdomov.cz",
	"idealninajemce": "idealninajemce.cz",
	"ceskereality":   "ceskereality.cz",
}

// Listing renders l as a photo caption in lang.
func Listing(l model.Listing, lang model.Language) Post {
	var b strings.Builder

	b.WriteString(Text(lang, fmt.Sprintf("ads.title.%s.%s", l.PropertyType, l.Category)))
	b.WriteString("\n\n")

	address := strings.TrimSpace(stripMarkdown(l.Address))
	if address == "" {
		address = strings.TrimSpace(stripMarkdown(l.Title))
	}
	fmt.Fprintf(&b, "📍 [%s](%s)\n", address, l.PageURL)

	if l.Price > 0 {
		fmt.Fprintf(&b, "💰 *%s %s*", PriceHuman(&l.Price, lang), Text(lang, "currency"))
	} else {
		fmt.Fprintf(&b, "💰 *%s*", PriceHuman(nil, lang))
	}
	if l.Category == model.CategorySale && l.Price > 0 && l.UsableArea > 0 {
		perMeter := l.Price / int64(l.UsableArea)
		fmt.Fprintf(&b, " (%s %s/%s)", PriceHuman(&perMeter, lang), Text(lang, "currency"), Text(lang, "area_unit"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "📐 %d %s, %s\n", l.UsableArea, Text(lang, "area_unit"), LayoutLabel(l.Layout, lang))

	if len(l.EnergyRating) == 1 {
		fmt.Fprintf(&b, "⚡ %s\n", fmt.Sprintf(Text(lang, "ads.energy_rate"), strings.ToUpper(l.EnergyRating)))
	}

	domain := SourceDomain(l.SourceName)
	sourceKey := "ads.source.new"
	if l.IsDuplicate {
		sourceKey = "ads.source.duplicate"
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, Text(lang, sourceKey), domain)

	return Post{
		Caption:    b.String(),
		PhotoURL:   l.ImageURL,
		LinkURL:    l.PageURL,
		ButtonText: Text(lang, "ads.open"),
	}
}

// PriceHuman formats a price with space-separated thousands.
// A missing, zero or negative price renders as "not set".
func PriceHuman(price *int64, lang model.Language) string {
	if price == nil || *price <= 0 {
		return Text(lang, "not_set")
	}
	s := strconv.FormatInt(*price, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LayoutLabel returns the display label of a layout code.
func LayoutLabel(layout model.Layout, lang model.Language) string {
	key := "layout." + string(layout)
	label := Text(lang, key)
	if label == key {
		return Text(lang, "layout.others")
	}
	return label
}

// SourceDomain maps a feed source name to the site it was scraped from.
func SourceDomain(name string) string {
	if d, ok := sourceDomains[name]; ok {
		return d
	}
	return "other"
}

// FilterSummary describes a filter in the user's language.
func FilterSummary(f model.Filter) string {
	lang := f.Lang
	notSet := Text(lang, "not_set")

	category := notSet
	if f.Category != nil {
		category = Text(lang, "category."+string(*f.Category))
	}
	propertyType := notSet
	if f.PropertyType != nil {
		propertyType = Text(lang, "type."+string(*f.PropertyType))
	}

	price := func(p *int64) string {
		if p == nil || *p <= 0 {
			return PriceHuman(p, lang)
		}
		return PriceHuman(p, lang) + " " + Text(lang, "currency")
	}

	area := notSet
	if f.MinUsableArea != nil {
		area = fmt.Sprintf("%d %s", *f.MinUsableArea, Text(lang, "area_unit"))
	}

	layouts := notSet
	if len(f.Layouts) > 0 {
		labels := make([]string, 0, len(f.Layouts))
		for _, l := range f.Layouts {
			labels = append(labels, LayoutLabel(l, lang))
		}
		layouts = strings.Join(labels, ", ")
	}

	districts := notSet
	if len(f.Districts) > 0 {
		names := make([]string, 0, len(f.Districts))
		for _, d := range f.Districts {
			names = append(names, fmt.Sprintf(Text(lang, "filters.district_number"), d))
		}
		districts = strings.Join(names, ", ")
	}

	notifications := Text(lang, "filters.off")
	if f.Enabled {
		notifications = Text(lang, "filters.on")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.category"), category)
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.property_type"), propertyType)
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.min_price"), price(f.MinPrice))
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.max_price"), price(f.MaxPrice))
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.min_usable_area"), area)
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.layout"), layouts)
	fmt.Fprintf(&b, "%s: %s\n", Text(lang, "filters.district"), districts)
	fmt.Fprintf(&b, "%s: %s", Text(lang, "filters.notifications"), notifications)
	return b.String()
}

func stripMarkdown(s string) string {
	return markdownRisk.ReplaceAllString(s, "")
}
