package commands

import (
	"os"
	"strings"

	"dineon-backend/lib/menu"
	"dineon-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsRestrictionsCmd)
	prefsCmd.AddCommand(prefsAllergenCmd)
	prefsCmd.AddCommand(prefsDietCmd)
	prefsCmd.AddCommand(prefsKeywordCmd)
	prefsCmd.AddCommand(prefsFavoriteCmd)
	rootCmd.AddCommand(prefsCmd)
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manages the dietary profile used to filter menus.",
}

func setNames(set map[string]bool) string {
	names := make([]string, 0, len(set))
	for name, on := range set {
		if on {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the current dietary profile.",
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		snap := store.Snapshot()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRow(table.Row{"dietary restrictions", snap.HasDietaryRestrictions})
		t.AppendRow(table.Row{"excluded allergens", setNames(snap.SelectedAllergens)})
		t.AppendRow(table.Row{"dietary preferences", setNames(snap.SelectedDietaryPreferences)})
		t.AppendRow(table.Row{"excluded keywords", setNames(snap.ExcludedKeywords)})
		t.AppendRow(table.Row{"favorite dishes", setNames(snap.FavoriteDishes)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var prefsRestrictionsCmd = &cobra.Command{
	Use:   "restrictions <on|off>",
	Short: "Turns dietary preference filtering on or off.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		err := store.SetHasDietaryRestrictions(cmd.Context(), args[0] == "on")
		if err != nil {
			serviceutil.Fatal("failed to save preferences", err)
		}
	},
}

var prefsAllergenCmd = &cobra.Command{
	Use:       "allergen <tag>",
	Short:     "Toggles hiding items that carry an allergen tag.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: allergenTags(),
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		err := store.ToggleAllergen(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to save preferences", err)
		}
	},
}

var prefsDietCmd = &cobra.Command{
	Use:       "diet <tag>",
	Short:     "Toggles a dietary preference selection.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: preferenceTags(),
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		err := store.ToggleDietaryPreference(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to save preferences", err)
		}
	},
}

var prefsKeywordCmd = &cobra.Command{
	Use:   "keyword <word>",
	Short: "Toggles hiding items whose name contains a keyword.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		err := store.ToggleExcludedKeyword(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to save preferences", err)
		}
	},
}

var prefsFavoriteCmd = &cobra.Command{
	Use:   "favorite <dish name>",
	Short: "Toggles a favorite dish.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openPreferences(cmd.Context(), loadConfig())
		err := store.ToggleFavoriteDish(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			serviceutil.Fatal("failed to save preferences", err)
		}
	},
}

func allergenTags() []string {
	tags := make([]string, len(menu.Allergens))
	for i, a := range menu.Allergens {
		tags[i] = string(a)
	}
	return tags
}

func preferenceTags() []string {
	tags := make([]string, len(menu.DietaryPreferences))
	for i, p := range menu.DietaryPreferences {
		tags[i] = string(p)
	}
	return tags
}
