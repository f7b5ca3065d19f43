package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const venueFixture = `
<html><body>
  <h2 class="js-venue-title"> Parkside Restaurant </h2>
  <div class="meal-container">
    <div class="h4">Dinner</div>
    <div class="station">
      <div class="title">Grill</div>
      <div class="subtitle">Comfort Food</div>
      <ul>
        <li class="js-menu-item" data-allergens='["gluten","dairy"]' data-preferences='[]'>
          Cheeseburger<span class="badge">popular</span>
        </li>
        <li class="js-menu-item">may contain sesame</li>
        <li class="js-menu-item" data-allergens='["soy"' data-preferences='["vegan"]'>Tofu Skewer</li>
      </ul>
    </div>
    <div class="station">
      <div class="title"></div>
      <ul>
        <li class="js-menu-item">Opens at 5pm</li>
        <li class="js-menu-item" data-allergens='["eggs"]'>Fried Rice</li>
      </ul>
    </div>
  </div>
  <div class="meal-container">
    <div class="h4"></div>
    <div class="station">
      <div class="title">Bakery</div>
      <ul>
        <li class="js-menu-item" data-allergens='["gluten"]'>Sourdough</li>
      </ul>
    </div>
  </div>
</body></html>`

func TestExtractVenue(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(venueFixture))
	require.NoError(t, err)

	venue, menus := extractVenue(doc)
	require.Equal(t, "Parkside Restaurant", venue)
	require.Len(t, menus, 2)

	dinner := menus["Dinner"]
	require.NotNil(t, dinner)

	grill := dinner["Grill"]
	require.Len(t, grill, 1)

	header := grill[0]
	require.Equal(t, typeHeader, header.Type)
	require.Equal(t, "Comfort Food", header.Name)
	require.Equal(t, []string{"may contain sesame"}, header.Disclaimers)
	require.Len(t, header.Items, 2)

	// the badge span is not part of the item name
	burger := header.Items[0]
	require.Equal(t, "Cheeseburger", burger.Name)
	require.Equal(t, []string{"gluten", "dairy"}, burger.Allergens)

	// malformed attribute JSON still yields tags
	tofu := header.Items[1]
	require.Equal(t, []string{"soy"}, tofu.Allergens)
	require.Equal(t, []string{"vegan"}, tofu.Preferences)

	// unnamed station falls back, its time header owns the item
	unnamed := dinner["Unnamed Station"]
	require.Len(t, unnamed, 1)
	require.Equal(t, typeTimeHeader, unnamed[0].Type)
	require.Equal(t, "Opens at 5pm", unnamed[0].Name)
	require.Len(t, unnamed[0].Items, 1)
	require.Equal(t, "Fried Rice", unnamed[0].Items[0].Name)

	// unnamed meal falls back too
	require.NotNil(t, menus["Unknown Meal"]["Bakery"])
}

func TestExtractVenueEmptyDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	venue, menus := extractVenue(doc)
	require.Equal(t, "Unknown Venue", venue)
	require.Empty(t, menus)
}
