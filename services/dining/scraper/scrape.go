// Package scraper turns the rendered dining-menu page into the raw
// weekly dataset. it drives the page's date and venue controls through
// a browser session, waits out the page's re-render delays, then
// classifies each station's line items into a menu node tree.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dineon-backend/lib/timezone"
	"dineon-backend/services/dining/browser"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("services/dining/scraper")

// the page re-renders asynchronously after its controls fire; these
// settle delays match the observed render latency of the source page
const (
	defaultDateSettle  = 700 * time.Millisecond
	defaultVenueSettle = 800 * time.Millisecond
)

// the three venue selector keys the page exposes
var venueKeys = []string{"evk", "parkside", "university-village"}

// RawWeek is the full extraction result:
// date -> venue -> meal -> station -> nodes.
type RawWeek = map[string]map[string]map[string]map[string][]*RawNode

type Options struct {
	// overrides for the settle delays, zero means default
	DateSettle  time.Duration
	VenueSettle time.Duration
}

type Scraper struct {
	session     browser.Session
	dateSettle  time.Duration
	venueSettle time.Duration
}

func New(session browser.Session, opts Options) Scraper {
	if opts.DateSettle == 0 {
		opts.DateSettle = defaultDateSettle
	}
	if opts.VenueSettle == 0 {
		opts.VenueSettle = defaultVenueSettle
	}
	return Scraper{
		session:     session,
		dateSettle:  opts.DateSettle,
		venueSettle: opts.VenueSettle,
	}
}

// ScrapeWeek walks every date of the current week (sunday through the
// following sunday) across all known venues and returns the combined
// raw dataset. wall-clock time is dominated by the settle delays, on
// the order of tens of seconds against the real page.
func (s Scraper) ScrapeWeek(ctx context.Context) (RawWeek, error) {
	ctx, span := tracer.Start(ctx, "ScrapeWeek")
	defer span.End()

	week := RawWeek{}
	dates := timezone.WeekDates(timezone.Now())
	span.SetAttributes(attribute.StringSlice("dates", dates))

	for _, date := range dates {
		err := s.selectDate(ctx, date)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to select date")
			return nil, err
		}
		err = s.settle(ctx, s.dateSettle)
		if err != nil {
			return nil, err
		}

		week[date] = map[string]map[string]map[string][]*RawNode{}

		for _, key := range venueKeys {
			selected, err := s.selectVenue(ctx, key)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to select venue")
				return nil, err
			}
			if !selected {
				slog.DebugContext(ctx, "venue button not present, skipping", "venue_key", key)
				continue
			}
			err = s.settle(ctx, s.venueSettle)
			if err != nil {
				return nil, err
			}

			rendered, err := s.session.HTML(ctx)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to snapshot rendered page")
				return nil, err
			}
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to parse rendered html")
				return nil, err
			}

			venue, menus := extractVenue(doc)
			week[date][venue] = menus

			slog.DebugContext(
				ctx, "scraped venue",
				"date", date,
				"venue", venue,
				"meals", len(menus),
			)
		}
	}

	return week, nil
}

// selectDate sets the page's date input and fires the events its
// framework listens for.
func (s Scraper) selectDate(ctx context.Context, date string) error {
	expr := fmt.Sprintf(`(() => {
		const input = document.querySelector('#date');
		if (!input) throw new Error('date input not found');
		input.value = %q;
		input.dispatchEvent(new Event('input', { bubbles: true }));
		input.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, date)

	var ok bool
	err := s.session.Evaluate(ctx, expr, &ok)
	if err != nil {
		return fmt.Errorf("select date %s: %w", date, err)
	}
	return nil
}

// selectVenue clicks a venue selector button. a missing button is not
// an error, the venue is simply absent from the page that day.
func (s Scraper) selectVenue(ctx context.Context, key string) (bool, error) {
	expr := fmt.Sprintf(`(() => {
		const btn = document.querySelector('button[data-value=%q]');
		if (!btn) return false;
		btn.click();
		btn.dispatchEvent(new Event('click', { bubbles: true }));
		btn.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, key)

	var clicked bool
	err := s.session.Evaluate(ctx, expr, &clicked)
	if err != nil {
		return false, fmt.Errorf("select venue %s: %w", key, err)
	}
	return clicked, nil
}

func (s Scraper) settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// extractVenue scans one rendered venue view into its meal/station
// menus.
func extractVenue(doc *goquery.Document) (string, map[string]map[string][]*RawNode) {
	venue := strings.TrimSpace(doc.Find(".js-venue-title").First().Text())
	if venue == "" {
		venue = "Unknown Venue"
	}

	menus := map[string]map[string][]*RawNode{}
	doc.Find(".meal-container").Each(func(_ int, meal *goquery.Selection) {
		mealName := strings.TrimSpace(meal.Find(".h4").First().Text())
		if mealName == "" {
			mealName = "Unknown Meal"
		}

		stations := map[string][]*RawNode{}
		meal.Find(".station").Each(func(_ int, station *goquery.Selection) {
			stationName := strings.TrimSpace(station.Find(".title").First().Text())
			if stationName == "" {
				stationName = "Unnamed Station"
			}
			subtitle := strings.TrimSpace(station.Find(".subtitle").First().Text())

			var lines []Line
			station.Find(".js-menu-item").Each(func(_ int, li *goquery.Selection) {
				lines = append(lines, Line{
					Text:        lineText(li),
					Allergens:   ParseTagList(li.AttrOr("data-allergens", "")),
					Preferences: ParseTagList(li.AttrOr("data-preferences", "")),
				})
			})

			stations[stationName] = ClassifyStation(subtitle, lines)
		})
		menus[mealName] = stations
	})

	return venue, menus
}

// lineText prefers the element's leading text node over its full text,
// so decorated items (tag icons, badges appended by the page) keep a
// clean display name.
func lineText(sel *goquery.Selection) string {
	if len(sel.Nodes) > 0 {
		first := sel.Nodes[0].FirstChild
		if first != nil && first.Type == html.TextNode {
			text := strings.TrimSpace(first.Data)
			if text != "" {
				return text
			}
		}
	}
	return strings.TrimSpace(sel.Text())
}
