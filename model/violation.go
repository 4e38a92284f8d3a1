package model

// Category identifies a violation type. The value is what gets stored with a warning.
type Category string

const (
	CategoryFamilyInsult         Category = "family-insult"
	CategoryReligiousInsult      Category = "religious-insult"
	CategorySpamFlood            Category = "spam-flood"
	CategoryRacismDiscrimination Category = "racism-discrimination"
	CategoryProfaneLanguage      Category = "profane-language"
	CategoryImpersonation        Category = "impersonation"
	CategoryIncitement           Category = "incitement"
	CategorySexualContent        Category = "sexual-content"
	CategoryMoralViolation       Category = "moral-violation"

	// CategoryAutoTimeout tags log entries for the escalation timeout. It is never a warning category.
	CategoryAutoTimeout Category = "auto-timeout"
)

// CategoryInfo pairs a category with its human-readable label.
type CategoryInfo struct {
	Key   Category
	Label string
}

// Categories lists the selectable violation categories in display order.
var Categories = []CategoryInfo{
	{Key: CategoryFamilyInsult, Label: "Family insult"},
	{Key: CategoryReligiousInsult, Label: "Religious insult"},
	{Key: CategorySpamFlood, Label: "Spam / flood"},
	{Key: CategoryRacismDiscrimination, Label: "Racism / discrimination"},
	{Key: CategoryProfaneLanguage, Label: "Profane language"},
	{Key: CategoryImpersonation, Label: "Impersonation"},
	{Key: CategoryIncitement, Label: "Incitement"},
	{Key: CategorySexualContent, Label: "Sexual content"},
	{Key: CategoryMoralViolation, Label: "Moral violation"},
}

// Label returns the display label, or the raw key for unknown categories.
func (c Category) Label() string {
	if c == CategoryAutoTimeout {
		return "Automatic timeout"
	}
	for _, info := range Categories {
		if info.Key == c {
			return info.Label
		}
	}
	return string(c)
}

// ParseCategory reports whether s names a selectable category.
func ParseCategory(s string) (Category, bool) {
	for _, info := range Categories {
		if string(info.Key) == s {
			return info.Key, true
		}
	}
	return "", false
}
