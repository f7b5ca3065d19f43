package preferences

import (
	"slices"
	"strings"

	"dineon-backend/lib/menu"
)

// Included decides whether a menu node survives the user's profile.
// only item nodes are filtered; container nodes always pass through,
// whether a container is worth showing once its children are filtered
// is the caller's call.
//
// dietary filtering evaluates only the first selected preference, in
// sorted order. a vegetarian requirement accepts vegetarian or vegan
// tags, a vegan requirement accepts only vegan, anything else needs an
// exact tag match.
func Included(node menu.Node, snap Snapshot) bool {
	if node.Type != menu.NodeItem {
		return true
	}

	// unverified items are never hidden
	if slices.Contains(node.Allergens, menu.AllergenNotAnalyzed) {
		return true
	}

	name := strings.ToLower(node.Name)
	for keyword := range snap.ExcludedKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(name, keyword) {
			return false
		}
	}

	for _, allergen := range node.Allergens {
		if snap.SelectedAllergens[string(allergen)] {
			return false
		}
	}

	if snap.HasDietaryRestrictions {
		selected := make([]string, 0, len(snap.SelectedDietaryPreferences))
		for pref, on := range snap.SelectedDietaryPreferences {
			if on {
				selected = append(selected, pref)
			}
		}
		if len(selected) > 0 {
			slices.Sort(selected)
			return satisfies(node, menu.DietaryPreference(selected[0]))
		}
	}

	return true
}

func satisfies(node menu.Node, required menu.DietaryPreference) bool {
	switch required {
	case menu.PrefVegetarian:
		return slices.Contains(node.Preferences, menu.PrefVegetarian) ||
			slices.Contains(node.Preferences, menu.PrefVegan)
	default:
		return slices.Contains(node.Preferences, required)
	}
}
