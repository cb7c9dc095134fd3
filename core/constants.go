package core

// Country is a supported destination.
type Country struct {
	Code   string
	NameEN string
	NameRU string
	Emoji  string
}

// Countries lists the destinations covered by the rule base.
var Countries = []Country{
	{Code: "IT", NameEN: "Italy", NameRU: "Италия", Emoji: "🇮🇹"},
	{Code: "TR", NameEN: "Turkey", NameRU: "Турция", Emoji: "🇹🇷"},
	{Code: "AE", NameEN: "UAE", NameRU: "ОАЭ", Emoji: "🇦🇪"},
	{Code: "TH", NameEN: "Thailand", NameRU: "Таиланд", Emoji: "🇹🇭"},
	{Code: "ES", NameEN: "Spain", NameRU: "Испания", Emoji: "🇪🇸"},
	{Code: "DE", NameEN: "Germany", NameRU: "Германия", Emoji: "🇩🇪"},
}

// Category is a rule topic.
type Category struct {
	ID     string
	NameEN string
	NameRU string
	Emoji  string
}

// Categories lists the rule topics.
var Categories = []Category{
	{ID: "transport", NameEN: "Transport & Driving", NameRU: "Транспорт и вождение", Emoji: "🚗"},
	{ID: "alcohol_smoking", NameEN: "Alcohol & Smoking", NameRU: "Алкоголь и курение", Emoji: "🍺"},
	{ID: "drones", NameEN: "Drones", NameRU: "Дроны", Emoji: "🚁"},
	{ID: "medications", NameEN: "Medications", NameRU: "Лекарства", Emoji: "💊"},
	{ID: "cultural", NameEN: "Cultural & Religious Norms", NameRU: "Культурные и религиозные нормы", Emoji: "🕌"},
}

// KnownCountry reports whether code is one of the supported destinations.
func KnownCountry(code string) bool {
	for _, c := range Countries {
		if c.Code == code {
			return true
		}
	}
	return false
}

// KnownCategory reports whether id is one of the supported topics.
func KnownCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
