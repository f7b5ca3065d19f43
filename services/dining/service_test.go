package dining

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"dineon-backend/lib/telemetry"
	"dineon-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

const renderedVenue = `
<html><body>
  <h2 class="js-venue-title">Everybody's Kitchen</h2>
  <div class="meal-container">
    <div class="h4">Dinner</div>
    <div class="station">
      <div class="title">Grill</div>
      <ul>
        <li class="js-menu-item">HOT LINE</li>
        <li class="js-menu-item">may contain nuts</li>
        <li class="js-menu-item" data-allergens='["gluten"]' data-preferences='["halal-ingredients"]'>Grilled Chicken</li>
      </ul>
    </div>
  </div>
</body></html>`

type fakeSession struct {
	navigations int
	evaluations int
	html        string
	evaluateErr error
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigations++
	return nil
}

func (f *fakeSession) Loading(ctx context.Context) (bool, error) {
	return false, nil
}

func (f *fakeSession) Evaluate(ctx context.Context, expr string, out any) error {
	f.evaluations++
	if f.evaluateErr != nil {
		return f.evaluateErr
	}
	if b, ok := out.(*bool); ok {
		*b = true
	}
	return nil
}

func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	return f.html, nil
}

func (f *fakeSession) Close() error {
	return nil
}

func testService(t *testing.T, session *fakeSession) *Service {
	t.Helper()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(origin.Close)

	return NewService(context.Background(), Config{
		SourceURL:   origin.URL,
		CachePath:   filepath.Join(t.TempDir(), "menu.json"),
		DateSettle:  time.Millisecond,
		VenueSettle: time.Millisecond,
	}, session)
}

func TestFetchMenuFreshnessIdempotence(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/dining")
	defer cleanup()

	session := &fakeSession{html: renderedVenue}
	svc := testService(t, session)
	ctx := context.Background()

	require.NoError(t, svc.FetchMenu(ctx, false))
	require.Equal(t, 1, session.navigations)

	week, ok := svc.Week()
	require.True(t, ok)
	require.Contains(t, week.AvailableDates(), timezone.Today())

	items := week.AllItems(timezone.Today(), "Everybody's Kitchen", "Dinner")
	require.Len(t, items, 1)
	require.Equal(t, "HOT LINE", items[0].Name)

	// the dataset covers today, so a second call does no browser work
	scriptCalls := session.evaluations
	require.NoError(t, svc.FetchMenu(ctx, false))
	require.Equal(t, 1, session.navigations)
	require.Equal(t, scriptCalls, session.evaluations)
}

func TestFetchMenuForceRefresh(t *testing.T) {
	session := &fakeSession{html: renderedVenue}
	svc := testService(t, session)
	ctx := context.Background()

	require.NoError(t, svc.FetchMenu(ctx, false))
	require.NoError(t, svc.FetchMenu(ctx, true))
	require.Equal(t, 2, session.navigations)
}

func TestFetchMenuScriptFailureKeepsPreviousDataset(t *testing.T) {
	session := &fakeSession{html: renderedVenue}
	svc := testService(t, session)
	ctx := context.Background()

	require.NoError(t, svc.FetchMenu(ctx, false))
	before, ok := svc.Week()
	require.True(t, ok)

	session.evaluateErr = errors.New("script blew up in the page")
	err := svc.FetchMenu(ctx, true)
	require.Error(t, err)

	var scriptErr *ScriptExecutionError
	require.True(t, errors.As(err, &scriptErr))

	// the failed fetch never touches the in-memory dataset
	after, ok := svc.Week()
	require.True(t, ok)
	require.Equal(t, before.AvailableDates(), after.AvailableDates())
	require.False(t, svc.Loading())
}

func TestFetchMenuNavigationError(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer origin.Close()

	session := &fakeSession{html: renderedVenue}
	svc := NewService(context.Background(), Config{
		SourceURL:   origin.URL,
		CachePath:   filepath.Join(t.TempDir(), "menu.json"),
		DateSettle:  time.Millisecond,
		VenueSettle: time.Millisecond,
	}, session)

	err := svc.FetchMenu(context.Background(), true)
	require.Error(t, err)

	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))

	// the browser was never involved
	require.Zero(t, session.navigations)
	_, ok := svc.Week()
	require.False(t, ok)
}

func TestServiceSeedsFromCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.json")
	ctx := context.Background()

	NewCache(path).Save(ctx, nestedWeek(timezone.Today()))

	svc := NewService(ctx, Config{
		SourceURL: DefaultSourceURL,
		CachePath: path,
	}, &fakeSession{})

	week, ok := svc.Week()
	require.True(t, ok)
	require.True(t, week.HasDate(timezone.Today()))
}

func TestSubscribeSignalsReplacement(t *testing.T) {
	session := &fakeSession{html: renderedVenue}
	svc := testService(t, session)

	events := svc.Subscribe()
	require.NoError(t, svc.FetchMenu(context.Background(), true))

	select {
	case <-events:
	default:
		t.Fatal("expected a dataset-replaced notification")
	}
}
