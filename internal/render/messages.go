package render

import "estate_bot/internal/model"

var messages = map[model.Language]map[string]string{
	model.LangEN: {
		"currency":  "Kč",
		"area_unit": "m²",
		"not_set":   "not set",
		"any":       "any",

		"ads.title.flat.sale":   "🏢 Flat for sale",
		"ads.title.flat.lease":  "🏢 Flat for rent",
		"ads.title.house.sale":  "🏡 House for sale",
		"ads.title.house.lease": "🏡 House for rent",
		"ads.energy_rate":       "Energy rating: %s",
		"ads.source.new":        "Source: %s",
		"ads.source.duplicate":  "Also listed at: %s",
		"ads.open":              "Go to advertisement",

		"layout.one_kk":    "1+kk",
		"layout.one_one":   "1+1",
		"layout.two_kk":    "2+kk",
		"layout.two_one":   "2+1",
		"layout.three_kk":  "3+kk",
		"layout.three_one": "3+1",
		"layout.four_kk":   "4+kk",
		"layout.four_more": "4 & more",
		"layout.others":    "unique layout",

		"category.sale":  "sale",
		"category.lease": "rent",
		"type.flat":      "flat",
		"type.house":     "house",

		"filters.category":        "Category",
		"filters.property_type":   "Property type",
		"filters.min_price":       "Min price",
		"filters.max_price":       "Max price",
		"filters.min_usable_area": "Min usable area",
		"filters.layout":          "Layout",
		"filters.district":        "District",
		"filters.district_number": "Praha %d",
		"filters.notifications":   "Notifications",
		"filters.on":              "on",
		"filters.off":             "off",
		"filters.updated":         "New settings applied.",

		"welcome": "🏠 Welcome to the Prague estates bot!\n\nSet your filters and receive new rental or sale ads from all over Prague in one place.\n\nUse /help for the full command reference.",
		"help": `Filters:
/filters - show your filters
/category sale|lease|any
/type flat|house|any
/minprice <CZK>|off
/maxprice <CZK>|off
/minarea <m²>|off
/layouts one_kk,two_kk,...|any
/districts 1,2,5|any
/notify on|off
/lang en|ru

Subscription:
/subscription - status and plans
/trial - activate the free trial
/buy <plan> - pay with Telegram Stars
/pay <plan> - pay with crypto`,

		"notify.enabled":            "We'll send you new ads as soon as they're posted, based on your filters:\n\n%s",
		"notify.disabled":           "We'll stop bothering you with notices.\nWe hope you've found your dream home! 🏠",
		"notify.subscribe_first":    "Please subscribe first to receive notifications. See /subscription.",
		"estates.example":           "⬆️ Here's the latest advert for your criteria.",
		"subscription.active":       "Your subscription is active until %s.\nRenew with one of the plans below:",
		"subscription.inactive":     "You have no active subscription yet!\nChoose a payment option below:",
		"subscription.expiring":     "Your subscription expires soon. Renew it with /subscription to keep receiving new ads.",
		"subscription.downgraded":   "Your subscription has expired. Notifications are paused until you renew with /subscription.",
		"trial":                     "🎁 Free trial",
		"trial.already_used":        "You have already used your free trial.",
		"payment.accepted":          "Payment accepted! Your subscription is active until %s.",
		"payment.link":              "Pay for \"%s\" here: %s",
		"invoice.description":       "Access to new estate notifications",
		"invoice.expired":           "This invoice has expired. Please start a new purchase.",
		"invoice.invalid":           "This invoice is not valid.",
		"plan.unknown":              "Unknown plan. See /subscription for available plans.",
		"usage.category":            "Usage: /category sale|lease|any",
		"usage.type":                "Usage: /type flat|house|any",
		"usage.price":               "Usage: /%s <positive number>|off",
		"usage.area":                "Usage: /minarea <positive number>|off",
		"usage.layouts":             "Usage: /layouts one_kk,two_kk,...|any",
		"usage.districts":           "Usage: /districts 1,2,5|any (1-22)",
		"usage.notify":              "Usage: /notify on|off",
		"usage.lang":                "Usage: /lang en|ru",
		"usage.buy":                 "Usage: /%s <plan>",
		"error.try_later":           "Something went wrong. Please try again later.",
		"unknown_command":           "Unknown command. Use /help for a list of commands.",
		"admin.info":                "Active subscriptions: %d\nIndexed subscriptions: %d",
	},
	model.LangRU: {
		"currency":  "Kč",
		"area_unit": "м²",
		"not_set":   "не задано",
		"any":       "любой",

		"ads.title.flat.sale":   "🏢 Продажа квартиры",
		"ads.title.flat.lease":  "🏢 Аренда квартиры",
		"ads.title.house.sale":  "🏡 Продажа дома",
		"ads.title.house.lease": "🏡 Аренда дома",
		"ads.energy_rate":       "Энергокласс: %s",
		"ads.source.new":        "Источник: %s",
		"ads.source.duplicate":  "Также размещено: %s",
		"ads.open":              "Перейти к объявлению",

		"layout.four_more": "4 и больше",
		"layout.others":    "нестандартная планировка",

		"category.sale":  "продажа",
		"category.lease": "аренда",
		"type.flat":      "квартира",
		"type.house":     "дом",

		"filters.category":        "Категория",
		"filters.property_type":   "Тип недвижимости",
		"filters.min_price":       "Мин. цена",
		"filters.max_price":       "Макс. цена",
		"filters.min_usable_area": "Мин. площадь",
		"filters.layout":          "Планировка",
		"filters.district":        "Район",
		"filters.notifications":   "Уведомления",
		"filters.on":              "вкл",
		"filters.off":             "выкл",
		"filters.updated":         "Настройки сохранены.",

		"notify.enabled":          "Мы будем присылать новые объявления по вашим фильтрам:\n\n%s",
		"notify.disabled":         "Больше не будем беспокоить уведомлениями.\nНадеемся, вы нашли дом мечты! 🏠",
		"notify.subscribe_first":  "Чтобы получать уведомления, сначала оформите подписку: /subscription.",
		"estates.example":         "⬆️ Последнее объявление по вашим критериям.",
		"subscription.active":     "Ваша подписка активна до %s.\nПродлить можно ниже:",
		"subscription.inactive":   "У вас пока нет активной подписки!\nВыберите вариант оплаты:",
		"subscription.expiring":   "Подписка скоро закончится. Продлите её через /subscription, чтобы получать новые объявления.",
		"subscription.downgraded": "Подписка закончилась. Уведомления приостановлены до продления.",
		"trial":                   "🎁 Бесплатный период",
		"trial.already_used":      "Бесплатный период уже использован.",
		"payment.accepted":        "Оплата принята! Подписка активна до %s.",
		"error.try_later":         "Что-то пошло не так. Попробуйте позже.",
	},
}

// Text returns the message for key in lang, falling back to English and then to the key itself.
func Text(lang model.Language, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[model.LangEN][key]; ok {
		return s
	}
	return key
}

// SupportedLanguage reports whether lang has a message table.
func SupportedLanguage(lang model.Language) bool {
	_, ok := messages[lang]
	return ok
}
