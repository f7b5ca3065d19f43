// Package menu holds the typed hierarchical model for a week of dining
// menus, the read-side query api over it, and the parser that converts
// the raw extraction output into the typed model.
package menu

// NodeType discriminates the menu node tagged union.
type NodeType string

const (
	NodeItem       NodeType = "item"
	NodeHeader     NodeType = "header"
	NodeTimeHeader NodeType = "time-header"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeItem, NodeHeader, NodeTimeHeader:
		return true
	}
	return false
}

// Allergen tags come from the page's `data-allergens` attribute.
type Allergen string

const (
	AllergenDairy       Allergen = "dairy"
	AllergenEggs        Allergen = "eggs"
	AllergenSoy         Allergen = "soy"
	AllergenGluten      Allergen = "gluten"
	AllergenSesame      Allergen = "sesame"
	AllergenFish        Allergen = "fish"
	AllergenShellfish   Allergen = "shellfish"
	AllergenPork        Allergen = "pork"
	AllergenPeanuts     Allergen = "peanuts"
	AllergenTreeNuts    Allergen = "tree-nuts"
	AllergenNotAnalyzed Allergen = "not-analyzed"
	AllergenUnknown     Allergen = "unknown"
)

// Allergens lists every recognized allergen tag, in display order.
var Allergens = []Allergen{
	AllergenDairy,
	AllergenEggs,
	AllergenSoy,
	AllergenGluten,
	AllergenSesame,
	AllergenFish,
	AllergenShellfish,
	AllergenPork,
	AllergenPeanuts,
	AllergenTreeNuts,
	AllergenNotAnalyzed,
}

// ParseAllergen maps a raw page tag onto the enum, defaulting to
// AllergenUnknown rather than failing, so one bad tag never poisons a
// whole parse.
func ParseAllergen(raw string) Allergen {
	a := Allergen(raw)
	switch a {
	case AllergenDairy, AllergenEggs, AllergenSoy, AllergenGluten,
		AllergenSesame, AllergenFish, AllergenShellfish, AllergenPork,
		AllergenPeanuts, AllergenTreeNuts, AllergenNotAnalyzed,
		AllergenUnknown:
		return a
	}
	return AllergenUnknown
}

// DietaryPreference tags come from the page's `data-preferences`
// attribute.
type DietaryPreference string

const (
	PrefVegan            DietaryPreference = "vegan"
	PrefVegetarian       DietaryPreference = "vegetarian"
	PrefHalalIngredients DietaryPreference = "halal-ingredients"
	PrefUnknown          DietaryPreference = "unknown"
)

// DietaryPreferences lists every recognized preference tag, in display
// order.
var DietaryPreferences = []DietaryPreference{
	PrefVegan,
	PrefVegetarian,
	PrefHalalIngredients,
}

// ParseDietaryPreference maps a raw page tag onto the enum, defaulting
// to PrefUnknown rather than failing.
func ParseDietaryPreference(raw string) DietaryPreference {
	p := DietaryPreference(raw)
	switch p {
	case PrefVegan, PrefVegetarian, PrefHalalIngredients, PrefUnknown:
		return p
	}
	return PrefUnknown
}

// Node is one entry in a station's menu tree: either a food item or a
// structural grouping (header/time-header).
//
// item nodes never carry children; header and time-header nodes carry
// zero or more children and never carry allergens/preferences. nesting
// is bounded by station -> header -> time-header -> items, and the tree
// is rebuilt wholesale on every fetch so cycles cannot occur.
type Node struct {
	Name        string              `json:"name"`
	Type        NodeType            `json:"type"`
	Allergens   []Allergen          `json:"allergens,omitempty"`
	Preferences []DietaryPreference `json:"preferences,omitempty"`
	Disclaimers []string            `json:"disclaimers,omitempty"`
	Items       []Node              `json:"items,omitempty"`
}

// WeekData is the four-level keyed hierarchy:
// date (YYYY-MM-DD) -> venue -> meal -> station -> nodes.
// venue/meal/station names are free text sourced from the page.
type WeekData = map[string]map[string]map[string]map[string][]Node

// Week wraps a week's dataset with its query api. the zero value is an
// empty dataset, all queries on it return empty results.
type Week struct {
	Data WeekData `json:"data"`
}
