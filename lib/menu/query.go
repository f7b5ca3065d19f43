package menu

import (
	"slices"
	"strings"
)

// meals sort by serving order, anything unrecognized goes last.
var mealRank = map[string]int{
	"Breakfast": 1,
	"Brunch":    2,
	"Lunch":     3,
	"Dinner":    4,
}

func compareMeals(a, b string) int {
	ra, ok := mealRank[a]
	if !ok {
		ra = len(mealRank) + 1
	}
	rb, ok := mealRank[b]
	if !ok {
		rb = len(mealRank) + 1
	}
	if ra != rb {
		return ra - rb
	}
	return strings.Compare(a, b)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// AvailableDates returns every date in the dataset, ascending.
// lexicographic order is chronological order for YYYY-MM-DD.
func (w Week) AvailableDates() []string {
	return sortedKeys(w.Data)
}

// HasDate reports whether the dataset covers the given date.
func (w Week) HasDate(date string) bool {
	_, ok := w.Data[date]
	return ok
}

// Venues returns all venues serving on a date.
func (w Week) Venues(date string) []string {
	return sortedKeys(w.Data[date])
}

// Meals returns the meals for a venue on a date, in serving order.
func (w Week) Meals(date, venue string) []string {
	meals := sortedKeys(w.Data[date][venue])
	slices.SortStableFunc(meals, compareMeals)
	return meals
}

// Stations returns the stations for a meal.
func (w Week) Stations(date, venue, meal string) []string {
	return sortedKeys(w.Data[date][venue][meal])
}

// Nodes returns the menu tree for a single station.
func (w Week) Nodes(date, venue, meal, station string) []Node {
	return w.Data[date][venue][meal][station]
}

// AllItems flattens every station's node list for a meal, dropping the
// station grouping.
func (w Week) AllItems(date, venue, meal string) []Node {
	stations := w.Data[date][venue][meal]
	var out []Node
	for _, station := range sortedKeys(stations) {
		out = append(out, stations[station]...)
	}
	return out
}
