package catalog

// SubcategoryTree maps a group label (e.g. "Materials") to its options.
type SubcategoryTree map[string][]string

var subcategoryOptions = map[string]SubcategoryTree{
	"Jewelry": {
		"Categories":  {"NECKLACES", "EARRINGS", "BRACELETS", "RINGS"},
		"Collections": {"CRYSTAL COLLECTION", "PEARL COLLECTION", "STATEMENT PIECES", "MINIMALIST"},
		"Materials":   {"GOLD PLATED", "SILVER PLATED", "ROSE GOLD", "GEMSTONES"},
	},
	"Kids": {
		"Categories":  {"TOPS", "BOTTOMS", "DRESSES", "OUTERWEAR"},
		"Age Groups":  {"BABY (0-2 YEARS)", "TODDLER (2-4 YEARS)", "LITTLE KIDS (4-7 YEARS)", "BIG KIDS (8-12 YEARS)"},
		"Collections": {"CASUAL", "FORMAL", "SCHOOL", "SEASONAL"},
	},
	"Coats": {
		"Group":      {"Men's", "Women's"},
		"Categories": {"OVERCOATS", "TRENCH COATS", "PUFFER JACKETS", "PARKAS"},
		"Materials":  {"WOOL", "LEATHER", "COTTON", "SYNTHETIC"},
	},
}

// Subcategories returns the option trees for the requested categories.
// Unknown categories are skipped.
func Subcategories(categories []string) map[string]SubcategoryTree {
	out := make(map[string]SubcategoryTree)
	for _, category := range categories {
		if tree, ok := subcategoryOptions[category]; ok {
			out[category] = tree
		}
	}
	return out
}
