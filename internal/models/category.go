package models

// Category is the display projection of a category id.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"` // hex, renderable by lipgloss
}

// Categories is the fixed display table, in presentation order.
var Categories = []Category{
	{ID: "work", Label: "Work", Color: "#4F46E5"},
	{ID: "exercise", Label: "Exercise", Color: "#16A34A"},
	{ID: "learning", Label: "Learning", Color: "#9966E0"},
	{ID: "personal", Label: "Personal", Color: "#F59E0B"},
	{ID: "social", Label: "Social", Color: "#E0417A"},
	{ID: "rest", Label: "Rest", Color: "#1AA3E8"},
	{ID: "other", Label: "Other", Color: "#808080"},
}

// DefaultCategoryDisplay is used for ids missing from Categories.
var DefaultCategoryDisplay = Category{ID: "other", Label: "Other", Color: "#808080"}

var categoryIndex = func() map[string]Category {
	idx := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		idx[c.ID] = c
	}
	return idx
}()

// LookupCategory returns the display entry for id. Unknown ids keep their id
// but take the default label and color.
func LookupCategory(id string) Category {
	if c, ok := categoryIndex[id]; ok {
		return c
	}
	return Category{ID: id, Label: DefaultCategoryDisplay.Label, Color: DefaultCategoryDisplay.Color}
}

// IsKnownCategory reports whether id is one of the fixed categories.
func IsKnownCategory(id string) bool {
	_, ok := categoryIndex[id]
	return ok
}

// CategoryIDs lists the fixed category ids in presentation order.
func CategoryIDs() []string {
	ids := make([]string, len(Categories))
	for i, c := range Categories {
		ids[i] = c.ID
	}
	return ids
}
