package core

// Category is the fixed, server-defined set of permissible expense
// categories. The set does not change at runtime; client-visible
// category management rewrites expense rows, never this registry.
type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Home          Category = "home"
	Health        Category = "health"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Other         Category = "other"
)

// CategoryInfo carries the display metadata associated with a category.
type CategoryInfo struct {
	Category Category
	Icon     string
	Color    string
}

// categoryRegistry fixes both the set and the presentation order.
var categoryRegistry = []CategoryInfo{
	{Food, "utensils", "#f471b5"},
	{Transport, "car", "#f59e0b"},
	{Home, "home", "#3b82f6"},
	{Health, "heart", "#10b981"},
	{Shopping, "shopping-bag", "#06b6d4"},
	{Entertainment, "film", "#8b5cf6"},
	{Other, "help-circle", "#6b7280"},
}

// AllCategories returns every category in the fixed registry, in display
// order, regardless of whether any expense uses it.
func AllCategories() []Category {
	out := make([]Category, len(categoryRegistry))
	for i, info := range categoryRegistry {
		out[i] = info.Category
	}
	return out
}

// CategoryMetadata returns the display metadata for a category.
func CategoryMetadata(c Category) (CategoryInfo, bool) {
	for _, info := range categoryRegistry {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

func (c Category) Valid() bool {
	_, ok := CategoryMetadata(c)
	return ok
}
