package preferences

import (
	"testing"

	"dineon-backend/lib/menu"

	"github.com/stretchr/testify/require"
)

func item(name string, allergens []menu.Allergen, prefs []menu.DietaryPreference) menu.Node {
	return menu.Node{
		Name:        name,
		Type:        menu.NodeItem,
		Allergens:   allergens,
		Preferences: prefs,
	}
}

func TestIncludedAllergenExclusion(t *testing.T) {
	soup := item("Tomato Soup", []menu.Allergen{menu.AllergenDairy}, nil)

	require.False(t, Included(soup, Snapshot{
		SelectedAllergens: map[string]bool{"dairy": true},
	}))
	require.True(t, Included(soup, Snapshot{
		SelectedAllergens: map[string]bool{"gluten": true},
	}))
	require.True(t, Included(soup, Snapshot{}))
}

func TestIncludedNotAnalyzedAlwaysPasses(t *testing.T) {
	mystery := item("Mystery Casserole", []menu.Allergen{menu.AllergenNotAnalyzed, menu.AllergenDairy}, nil)

	require.True(t, Included(mystery, Snapshot{
		SelectedAllergens: map[string]bool{"dairy": true},
		ExcludedKeywords:  map[string]bool{"casserole": true},
	}))
}

func TestIncludedKeywordCaseInsensitive(t *testing.T) {
	tikka := item("Chicken Tikka Masala", nil, nil)

	require.False(t, Included(tikka, Snapshot{
		ExcludedKeywords: map[string]bool{"tikka": true},
	}))
	require.False(t, Included(tikka, Snapshot{
		ExcludedKeywords: map[string]bool{"TIKKA": true},
	}))
	require.True(t, Included(tikka, Snapshot{
		ExcludedKeywords: map[string]bool{"paneer": true},
	}))
}

func TestIncludedDietaryFirstSelectedOnly(t *testing.T) {
	veganBowl := item("Garden Bowl", nil, []menu.DietaryPreference{menu.PrefVegan})
	halalChicken := item("Halal Chicken", nil, []menu.DietaryPreference{menu.PrefHalalIngredients})

	// with both selected, only the first in sorted order
	// (halal-ingredients) is evaluated
	both := Snapshot{
		HasDietaryRestrictions: true,
		SelectedDietaryPreferences: map[string]bool{
			"vegan":             true,
			"halal-ingredients": true,
		},
	}
	require.True(t, Included(halalChicken, both))
	require.False(t, Included(veganBowl, both))
}

func TestIncludedVegetarianAcceptsVegan(t *testing.T) {
	veganBowl := item("Garden Bowl", nil, []menu.DietaryPreference{menu.PrefVegan})
	cheesePizza := item("Cheese Pizza", nil, []menu.DietaryPreference{menu.PrefVegetarian})
	steak := item("Flank Steak", nil, nil)

	vegetarian := Snapshot{
		HasDietaryRestrictions:     true,
		SelectedDietaryPreferences: map[string]bool{"vegetarian": true},
	}
	require.True(t, Included(veganBowl, vegetarian))
	require.True(t, Included(cheesePizza, vegetarian))
	require.False(t, Included(steak, vegetarian))

	vegan := Snapshot{
		HasDietaryRestrictions:     true,
		SelectedDietaryPreferences: map[string]bool{"vegan": true},
	}
	require.True(t, Included(veganBowl, vegan))
	require.False(t, Included(cheesePizza, vegan))
}

func TestIncludedDietaryInactiveWithoutMasterSwitch(t *testing.T) {
	steak := item("Flank Steak", nil, nil)

	require.True(t, Included(steak, Snapshot{
		HasDietaryRestrictions:     false,
		SelectedDietaryPreferences: map[string]bool{"vegan": true},
	}))
}

func TestIncludedContainersAlwaysPass(t *testing.T) {
	header := menu.Node{Name: "HOT LINE", Type: menu.NodeHeader}

	require.True(t, Included(header, Snapshot{
		ExcludedKeywords: map[string]bool{"hot": true},
	}))
}
