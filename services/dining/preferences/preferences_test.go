package preferences

import (
	"context"
	"database/sql"
	"testing"

	"dineon-backend/lib/telemetry"
	"dineon-backend/services/dining/preferences/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setup(t testing.TB) (*Store, *sql.DB, func()) {
	cleanup := telemetry.SetupForTesting("test:services/dining/preferences")

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(context.Background(), sqlite)
	if err != nil {
		t.Fatal(err)
	}
	return store, sqlite, cleanup
}

func TestStoreDefaults(t *testing.T) {
	store, _, cleanup := setup(t)
	defer cleanup()

	snap := store.Snapshot()
	require.False(t, snap.HasDietaryRestrictions)
	require.Empty(t, snap.SelectedAllergens)
	require.Empty(t, snap.SelectedDietaryPreferences)
	require.Empty(t, snap.ExcludedKeywords)
	require.Empty(t, snap.FavoriteDishes)
}

func TestStoreToggles(t *testing.T) {
	store, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.ToggleAllergen(ctx, "dairy"))
	require.NoError(t, store.ToggleAllergen(ctx, "gluten"))
	require.NoError(t, store.ToggleAllergen(ctx, "dairy"))

	snap := store.Snapshot()
	require.False(t, snap.SelectedAllergens["dairy"])
	require.True(t, snap.SelectedAllergens["gluten"])

	// keywords normalize to lowercase on the way in
	require.NoError(t, store.ToggleExcludedKeyword(ctx, "  TIKKA "))
	require.True(t, store.Snapshot().ExcludedKeywords["tikka"])

	// blank keyword is a no-op
	require.NoError(t, store.ToggleExcludedKeyword(ctx, "   "))
	require.Len(t, store.Snapshot().ExcludedKeywords, 1)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	store, sqlite, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SetHasDietaryRestrictions(ctx, true))
	require.NoError(t, store.ToggleDietaryPreference(ctx, "vegan"))
	require.NoError(t, store.ToggleAllergen(ctx, "shellfish"))
	require.NoError(t, store.ToggleFavoriteDish(ctx, "Tomato Soup"))

	// a second store over the same database sees the same profile
	reopened, err := NewStore(ctx, sqlite)
	require.NoError(t, err)

	snap := reopened.Snapshot()
	require.True(t, snap.HasDietaryRestrictions)
	require.True(t, snap.SelectedDietaryPreferences["vegan"])
	require.True(t, snap.SelectedAllergens["shellfish"])
	require.True(t, snap.IsFavorite("tomato soup"))
	require.True(t, snap.IsFavorite("Tomato Soup"))
	require.False(t, snap.IsFavorite("Grilled Chicken"))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.ToggleAllergen(ctx, "soy"))

	snap := store.Snapshot()
	snap.SelectedAllergens["soy"] = false
	require.True(t, store.Snapshot().SelectedAllergens["soy"])
}

func TestStoreSubscribe(t *testing.T) {
	store, _, cleanup := setup(t)
	defer cleanup()

	events := store.Subscribe()
	require.NoError(t, store.SetHasDietaryRestrictions(context.Background(), true))

	select {
	case <-events:
	default:
		t.Fatal("expected a preferences-changed notification")
	}
}
