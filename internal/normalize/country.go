package normalize

import (
	"strings"
	"unicode"
)

// countryTable maps lower-cased location text to a canonical country label.
// Two-letter forms are reserved for the US and UK; every other country uses
// its full English name. Each canonical label's own lower-cased form is also
// a key, which keeps Country idempotent.
var countryTable = map[string]string{
	// United States
	"us":                       "US",
	"usa":                      "US",
	"u.s.":                     "US",
	"u.s.a.":                   "US",
	"united states":            "US",
	"united states of america": "US",
	"america":                  "US",
	"estados unidos":           "US",

	// United Kingdom
	"uk":               "UK",
	"u.k.":             "UK",
	"gb":               "UK",
	"united kingdom":   "UK",
	"great britain":    "UK",
	"britain":          "UK",
	"england":          "UK",
	"scotland":         "UK",
	"wales":            "UK",
	"northern ireland": "UK",

	// Europe
	"germany":        "Germany",
	"de":             "Germany",
	"deutschland":    "Germany",
	"france":         "France",
	"fr":             "France",
	"spain":          "Spain",
	"es":             "Spain",
	"españa":         "Spain",
	"italy":          "Italy",
	"it":             "Italy",
	"italia":         "Italy",
	"netherlands":    "Netherlands",
	"nl":             "Netherlands",
	"the netherlands": "Netherlands",
	"holland":        "Netherlands",
	"nederland":      "Netherlands",
	"belgium":        "Belgium",
	"be":             "Belgium",
	"belgië":         "Belgium",
	"belgique":       "Belgium",
	"switzerland":    "Switzerland",
	"ch":             "Switzerland",
	"schweiz":        "Switzerland",
	"suisse":         "Switzerland",
	"austria":        "Austria",
	"at":             "Austria",
	"österreich":     "Austria",
	"sweden":         "Sweden",
	"se":             "Sweden",
	"sverige":        "Sweden",
	"norway":         "Norway",
	"no":             "Norway",
	"norge":          "Norway",
	"denmark":        "Denmark",
	"dk":             "Denmark",
	"danmark":        "Denmark",
	"finland":        "Finland",
	"fi":             "Finland",
	"suomi":          "Finland",
	"iceland":        "Iceland",
	"ireland":        "Ireland",
	"ie":             "Ireland",
	"éire":           "Ireland",
	"portugal":       "Portugal",
	"pt":             "Portugal",
	"greece":         "Greece",
	"gr":             "Greece",
	"ελλάδα":         "Greece",
	"poland":         "Poland",
	"pl":             "Poland",
	"polska":         "Poland",
	"czech republic": "Czech Republic",
	"czechia":        "Czech Republic",
	"cz":             "Czech Republic",
	"česko":          "Czech Republic",
	"slovakia":       "Slovakia",
	"sk":             "Slovakia",
	"slovensko":      "Slovakia",
	"hungary":        "Hungary",
	"hu":             "Hungary",
	"magyarország":   "Hungary",
	"romania":        "Romania",
	"ro":             "Romania",
	"românia":        "Romania",
	"bulgaria":       "Bulgaria",
	"bg":             "Bulgaria",
	"serbia":         "Serbia",
	"rs":             "Serbia",
	"srbija":         "Serbia",
	"croatia":        "Croatia",
	"hr":             "Croatia",
	"hrvatska":       "Croatia",
	"slovenia":       "Slovenia",
	"si":             "Slovenia",
	"slovenija":      "Slovenia",
	"bosnia and herzegovina": "Bosnia and Herzegovina",
	"lithuania":      "Lithuania",
	"lt":             "Lithuania",
	"lietuva":        "Lithuania",
	"latvia":         "Latvia",
	"lv":             "Latvia",
	"latvija":        "Latvia",
	"estonia":        "Estonia",
	"ee":             "Estonia",
	"eesti":          "Estonia",
	"ukraine":        "Ukraine",
	"ua":             "Ukraine",
	"україна":        "Ukraine",
	"belarus":        "Belarus",
	"by":             "Belarus",
	"russia":         "Russia",
	"ru":             "Russia",
	"russian federation": "Russia",
	"россия":         "Russia",
	"moldova":        "Moldova",
	"georgia":        "Georgia",
	"armenia":        "Armenia",
	"azerbaijan":     "Azerbaijan",
	"albania":        "Albania",
	"north macedonia": "North Macedonia",
	"malta":          "Malta",
	"luxembourg":     "Luxembourg",
	"cyprus":         "Cyprus",

	// Americas
	"canada":      "Canada",
	"ca":          "Canada",
	"mexico":      "Mexico",
	"mx":          "Mexico",
	"méxico":      "Mexico",
	"brazil":      "Brazil",
	"br":          "Brazil",
	"brasil":      "Brazil",
	"argentina":   "Argentina",
	"ar":          "Argentina",
	"chile":       "Chile",
	"cl":          "Chile",
	"colombia":    "Colombia",
	"co":          "Colombia",
	"peru":        "Peru",
	"pe":          "Peru",
	"perú":        "Peru",
	"venezuela":   "Venezuela",
	"ve":          "Venezuela",
	"ecuador":     "Ecuador",
	"uruguay":     "Uruguay",
	"uy":          "Uruguay",
	"paraguay":    "Paraguay",
	"bolivia":     "Bolivia",
	"costa rica":  "Costa Rica",
	"cr":          "Costa Rica",
	"panama":      "Panama",
	"panamá":      "Panama",
	"guatemala":   "Guatemala",
	"cuba":        "Cuba",
	"dominican republic": "Dominican Republic",
	"república dominicana": "Dominican Republic",

	// Asia-Pacific
	"china":       "China",
	"cn":          "China",
	"中国":          "China",
	"japan":       "Japan",
	"jp":          "Japan",
	"日本":          "Japan",
	"south korea": "South Korea",
	"korea":       "South Korea",
	"kr":          "South Korea",
	"republic of korea": "South Korea",
	"한국":          "South Korea",
	"대한민국":        "South Korea",
	"india":       "India",
	"in":          "India",
	"भारत":        "India",
	"pakistan":    "Pakistan",
	"pk":          "Pakistan",
	"bangladesh":  "Bangladesh",
	"bd":          "Bangladesh",
	"sri lanka":   "Sri Lanka",
	"lk":          "Sri Lanka",
	"nepal":       "Nepal",
	"np":          "Nepal",
	"indonesia":   "Indonesia",
	"id":          "Indonesia",
	"thailand":    "Thailand",
	"th":          "Thailand",
	"ประเทศไทย":   "Thailand",
	"vietnam":     "Vietnam",
	"viet nam":    "Vietnam",
	"vn":          "Vietnam",
	"việt nam":    "Vietnam",
	"philippines": "Philippines",
	"ph":          "Philippines",
	"malaysia":    "Malaysia",
	"my":          "Malaysia",
	"singapore":   "Singapore",
	"sg":          "Singapore",
	"hong kong":   "Hong Kong",
	"hk":          "Hong Kong",
	"香港":          "Hong Kong",
	"taiwan":      "Taiwan",
	"tw":          "Taiwan",
	"台灣":          "Taiwan",
	"台湾":          "Taiwan",
	"mongolia":    "Mongolia",
	"kazakhstan":  "Kazakhstan",
	"kz":          "Kazakhstan",
	"uzbekistan":  "Uzbekistan",
	"australia":   "Australia",
	"au":          "Australia",
	"new zealand": "New Zealand",
	"nz":          "New Zealand",
	"aotearoa":    "New Zealand",

	// Middle East
	"turkey":               "Turkey",
	"tr":                   "Turkey",
	"türkiye":              "Turkey",
	"israel":               "Israel",
	"il":                   "Israel",
	"ישראל":                "Israel",
	"iran":                 "Iran",
	"ir":                   "Iran",
	"iraq":                 "Iraq",
	"saudi arabia":         "Saudi Arabia",
	"ksa":                  "Saudi Arabia",
	"sa":                   "Saudi Arabia",
	"united arab emirates": "United Arab Emirates",
	"uae":                  "United Arab Emirates",
	"ae":                   "United Arab Emirates",
	"qatar":                "Qatar",
	"kuwait":               "Kuwait",
	"bahrain":              "Bahrain",
	"oman":                 "Oman",
	"jordan":               "Jordan",
	"lebanon":              "Lebanon",
	"syria":                "Syria",
	"yemen":                "Yemen",

	// Africa
	"egypt":        "Egypt",
	"eg":           "Egypt",
	"مصر":          "Egypt",
	"nigeria":      "Nigeria",
	"ng":           "Nigeria",
	"kenya":        "Kenya",
	"ke":           "Kenya",
	"south africa": "South Africa",
	"za":           "South Africa",
	"morocco":      "Morocco",
	"ma":           "Morocco",
	"algeria":      "Algeria",
	"dz":           "Algeria",
	"tunisia":      "Tunisia",
	"tn":           "Tunisia",
	"ghana":        "Ghana",
	"gh":           "Ghana",
	"ethiopia":     "Ethiopia",
	"tanzania":     "Tanzania",
	"uganda":       "Uganda",
	"cameroon":     "Cameroon",
	"senegal":      "Senegal",
	"ivory coast":  "Ivory Coast",
	"côte d'ivoire": "Ivory Coast",
	"zimbabwe":     "Zimbabwe",
	"zambia":       "Zambia",
	"rwanda":       "Rwanda",
}

// Country canonicalizes free-text location input. Empty input stays empty,
// table hits return the canonical label, anything else falls back to
// title-casing each token of the trimmed original. Total and idempotent.
func Country(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := countryTable[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return titleCase(trimmed)
}

// titleCase upper-cases the first rune of each whitespace-separated token,
// leaving the rest of the token untouched
func titleCase(s string) string {
	tokens := strings.Fields(s)
	for i, token := range tokens {
		runes := []rune(token)
		runes[0] = unicode.ToUpper(runes[0])
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}
