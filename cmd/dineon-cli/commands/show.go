package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dineon-backend/lib/menu"
	"dineon-backend/lib/serviceutil"
	"dineon-backend/lib/timezone"
	"dineon-backend/services/dining"
	"dineon-backend/services/dining/preferences"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showVenue *string
	showMeal  *string
	showAll   *bool
)

func init() {
	showVenue = showCmd.Flags().String("venue", "", "Only show this venue.")
	showMeal = showCmd.Flags().String("meal", "", "Only show this meal.")
	showAll = showCmd.Flags().Bool("all", false, "Ignore the preference filter.")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(datesCmd)
}

func loadCachedWeek(cmd *cobra.Command) menu.Week {
	cfg := loadConfig()
	week, ok := dining.NewCache(cfg.Dining.CachePath).Load(cmd.Context())
	if !ok {
		serviceutil.Fatal(
			"no usable cached menu, run `dineon-cli fetch` first",
			errors.New("cache miss"),
		)
	}
	return week
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Prints the dates covered by the cached menu.",
	Run: func(cmd *cobra.Command, args []string) {
		week := loadCachedWeek(cmd)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Venues"})

		for _, date := range week.AvailableDates() {
			t.AppendRow(table.Row{date, strings.Join(week.Venues(date), ", ")})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var showCmd = &cobra.Command{
	Use:   "show [date] [--venue <name>] [--meal <name>] [--all]",
	Short: "Prints the menu for a date (today by default), filtered by your preferences.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := timezone.Today()
		if len(args) > 0 {
			date = args[0]
		}

		week := loadCachedWeek(cmd)
		if !week.HasDate(date) {
			serviceutil.Fatal(
				"date not in the cached menu",
				fmt.Errorf("no menus for %s", date),
			)
		}

		snap := preferences.Snapshot{}
		if !*showAll {
			snap = openPreferences(cmd.Context(), loadConfig()).Snapshot()
		}

		for _, venue := range week.Venues(date) {
			if *showVenue != "" && !strings.EqualFold(venue, *showVenue) {
				continue
			}
			for _, meal := range week.Meals(date, venue) {
				if *showMeal != "" && !strings.EqualFold(meal, *showMeal) {
					continue
				}
				renderMeal(week, snap, date, venue, meal)
			}
		}
	},
}

func renderMeal(week menu.Week, snap preferences.Snapshot, date, venue, meal string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s / %s / %s", date, venue, meal))
	t.AppendHeader(table.Row{"Station", "Item", "Allergens", "Preferences"})

	for _, station := range week.Stations(date, venue, meal) {
		for _, node := range week.Nodes(date, venue, meal, station) {
			appendNode(t, snap, station, node, 0)
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Println()
}

// appendNode renders a node and its children, indenting one level per
// depth. filtered items are skipped, and containers whose children all
// got filtered are skipped along with them.
func appendNode(t table.Writer, snap preferences.Snapshot, station string, node menu.Node, depth int) {
	if !preferences.Included(node, snap) {
		return
	}

	name := strings.Repeat("  ", depth) + node.Name
	if snap.IsFavorite(node.Name) {
		name += " ★"
	}

	if node.Type != menu.NodeItem {
		if !hasVisibleItem(node, snap) {
			return
		}
		t.AppendRow(table.Row{station, name, "", ""})
		for _, child := range node.Items {
			appendNode(t, snap, station, child, depth+1)
		}
		return
	}

	t.AppendRow(table.Row{
		station,
		name,
		joinAllergens(node.Allergens),
		joinPreferences(node.Preferences),
	})
}

func hasVisibleItem(node menu.Node, snap preferences.Snapshot) bool {
	for _, child := range node.Items {
		if child.Type == menu.NodeItem {
			if preferences.Included(child, snap) {
				return true
			}
			continue
		}
		if hasVisibleItem(child, snap) {
			return true
		}
	}
	return false
}

func joinAllergens(allergens []menu.Allergen) string {
	parts := make([]string, len(allergens))
	for i, a := range allergens {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func joinPreferences(prefs []menu.DietaryPreference) string {
	parts := make([]string, len(prefs))
	for i, p := range prefs {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
