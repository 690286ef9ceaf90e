package settings

import (
	"strings"
	"unicode"
)

var cityZones = map[string]string{
	"moscow":           "Europe/Moscow",
	"москва":           "Europe/Moscow",
	"spb":              "Europe/Moscow",
	"saintpetersburg":  "Europe/Moscow",
	"stpetersburg":     "Europe/Moscow",
	"санктпетербург":   "Europe/Moscow",
	"петербург":        "Europe/Moscow",
	"novosibirsk":      "Asia/Novosibirsk",
	"новосибирск":      "Asia/Novosibirsk",
	"ekaterinburg":     "Asia/Yekaterinburg",
	"екатеринбург":     "Asia/Yekaterinburg",
	"kazan":            "Europe/Moscow",
	"казань":           "Europe/Moscow",
	"samara":           "Europe/Samara",
	"самара":           "Europe/Samara",
	"nizhniynovgorod":  "Europe/Moscow",
	"нижнийновгород":   "Europe/Moscow",
	"rostovnadonu":     "Europe/Moscow",
	"ростовнадону":     "Europe/Moscow",
	"krasnodar":        "Europe/Moscow",
	"краснодар":        "Europe/Moscow",
	"omsk":             "Asia/Omsk",
	"омск":             "Asia/Omsk",
	"chelyabinsk":      "Asia/Yekaterinburg",
	"челябинск":        "Asia/Yekaterinburg",
	"ufa":              "Asia/Yekaterinburg",
	"уфа":              "Asia/Yekaterinburg",
	"voronezh":         "Europe/Moscow",
	"воронеж":          "Europe/Moscow",
	"perm":             "Asia/Yekaterinburg",
	"пермь":            "Asia/Yekaterinburg",
	"volgograd":        "Europe/Volgograd",
	"волгоград":        "Europe/Volgograd",
	"krasnoyarsk":      "Asia/Krasnoyarsk",
	"красноярск":       "Asia/Krasnoyarsk",
	"irkutsk":          "Asia/Irkutsk",
	"иркутск":          "Asia/Irkutsk",
	"vladivostok":      "Asia/Vladivostok",
	"владивосток":      "Asia/Vladivostok",
	"kaliningrad":      "Europe/Kaliningrad",
	"калининград":      "Europe/Kaliningrad",
	"khabarovsk":       "Asia/Khabarovsk",
	"хабаровск":        "Asia/Khabarovsk",
	"yakutsk":          "Asia/Yakutsk",
	"якутск":           "Asia/Yakutsk",
}

// ResolveCity maps a city name to its zone identifier.
// Case, punctuation, spaces and the ё/е distinction are ignored.
func ResolveCity(city string) (string, bool) {
	zone, ok := cityZones[normalizeCity(city)]
	return zone, ok
}

func normalizeCity(city string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(city) {
		if r == 'ё' {
			r = 'е'
		}
		if (r >= 'a' && r <= 'z') || (r >= 'а' && r <= 'я') || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
