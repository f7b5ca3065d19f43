// Package preferences persists the user's dietary profile and filters
// menu items against it.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"dineon-backend/services/dining/preferences/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/dining/preferences")

// storage keys, one row per profile field
const (
	keyHasDietaryRestrictions = "hasDietaryRestrictions"
	keySelectedAllergens      = "selectedAllergens"
	keySelectedPreferences    = "selectedDietaryPreferences"
	keyExcludedKeywords       = "excludedKeywords"
	keyFavoriteDishes         = "favoriteDishes"
)

// Snapshot is one consistent read of the whole profile. the maps are
// sets; never mutate a snapshot, ask the store to toggle instead.
type Snapshot struct {
	HasDietaryRestrictions     bool
	SelectedAllergens          map[string]bool
	SelectedDietaryPreferences map[string]bool
	ExcludedKeywords           map[string]bool
	FavoriteDishes             map[string]bool
}

func (s Snapshot) IsFavorite(name string) bool {
	return s.FavoriteDishes[strings.ToLower(strings.TrimSpace(name))]
}

func cloneSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	s.SelectedAllergens = cloneSet(s.SelectedAllergens)
	s.SelectedDietaryPreferences = cloneSet(s.SelectedDietaryPreferences)
	s.ExcludedKeywords = cloneSet(s.ExcludedKeywords)
	s.FavoriteDishes = cloneSet(s.FavoriteDishes)
	return s
}

// Store keeps the profile in sqlite and mirrors it in memory, writing
// through on every toggle.
type Store struct {
	db  *sql.DB
	qry *db.Queries

	mu   sync.RWMutex
	snap Snapshot

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewStore loads the persisted profile, treating missing rows as empty
// defaults.
func NewStore(ctx context.Context, database *sql.DB) (*Store, error) {
	ctx, span := tracer.Start(ctx, "NewStore")
	defer span.End()

	s := &Store{
		db:  database,
		qry: db.New(database),
	}

	snap := Snapshot{}
	var err error
	snap.HasDietaryRestrictions, err = s.loadBool(ctx, keyHasDietaryRestrictions)
	if err == nil {
		snap.SelectedAllergens, err = s.loadSet(ctx, keySelectedAllergens)
	}
	if err == nil {
		snap.SelectedDietaryPreferences, err = s.loadSet(ctx, keySelectedPreferences)
	}
	if err == nil {
		snap.ExcludedKeywords, err = s.loadSet(ctx, keyExcludedKeywords)
	}
	if err == nil {
		snap.FavoriteDishes, err = s.loadSet(ctx, keyFavoriteDishes)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load preferences")
		return nil, err
	}

	s.snap = snap
	return s, nil
}

func (s *Store) loadBool(ctx context.Context, key string) (bool, error) {
	value, err := s.qry.GetPreference(ctx, key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var out bool
	err = json.Unmarshal([]byte(value), &out)
	if err != nil {
		slog.WarnContext(ctx, "dropping corrupt preference row", "key", key, "err", err)
		return false, nil
	}
	return out, nil
}

func (s *Store) loadSet(ctx context.Context, key string) (map[string]bool, error) {
	value, err := s.qry.GetPreference(ctx, key)
	if err == sql.ErrNoRows {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list []string
	err = json.Unmarshal([]byte(value), &list)
	if err != nil {
		slog.WarnContext(ctx, "dropping corrupt preference row", "key", key, "err", err)
		return map[string]bool{}, nil
	}
	set := make(map[string]bool, len(list))
	for _, entry := range list {
		set[entry] = true
	}
	return set, nil
}

func (s *Store) saveBool(ctx context.Context, key string, value bool) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.qry.SetPreference(ctx, db.SetPreferenceParams{
		Key:   key,
		Value: string(buf),
	})
}

func (s *Store) saveSet(ctx context.Context, key string, set map[string]bool) error {
	list := make([]string, 0, len(set))
	for entry, on := range set {
		if on {
			list = append(list, entry)
		}
	}
	slices.Sort(list)
	buf, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.qry.SetPreference(ctx, db.SetPreferenceParams{
		Key:   key,
		Value: string(buf),
	})
}

// Snapshot returns a copy of the current profile.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe returns a channel that receives a signal after every
// profile change. signals are dropped when the subscriber lags.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SetHasDietaryRestrictions is the master switch for dietary preference
// filtering. allergen and keyword exclusions apply regardless.
func (s *Store) SetHasDietaryRestrictions(ctx context.Context, on bool) error {
	ctx, span := tracer.Start(ctx, "SetHasDietaryRestrictions")
	defer span.End()

	err := s.saveBool(ctx, keyHasDietaryRestrictions, on)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.mu.Lock()
	s.snap.HasDietaryRestrictions = on
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) toggle(ctx context.Context, key string, pick func(*Snapshot) map[string]bool, entry string) error {
	ctx, span := tracer.Start(ctx, "toggle:"+key)
	defer span.End()

	s.mu.Lock()
	set := pick(&s.snap)
	if set[entry] {
		delete(set, entry)
	} else {
		set[entry] = true
	}
	persisted := cloneSet(set)
	s.mu.Unlock()

	err := s.saveSet(ctx, key, persisted)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.notify()
	return nil
}

// ToggleAllergen flips whether items carrying the allergen are hidden.
func (s *Store) ToggleAllergen(ctx context.Context, allergen string) error {
	return s.toggle(ctx, keySelectedAllergens, func(snap *Snapshot) map[string]bool {
		return snap.SelectedAllergens
	}, allergen)
}

// ToggleDietaryPreference flips a dietary preference selection.
func (s *Store) ToggleDietaryPreference(ctx context.Context, pref string) error {
	return s.toggle(ctx, keySelectedPreferences, func(snap *Snapshot) map[string]bool {
		return snap.SelectedDietaryPreferences
	}, pref)
}

// ToggleExcludedKeyword flips a name-substring exclusion. keywords are
// matched case-insensitively, so they are stored lowercased.
func (s *Store) ToggleExcludedKeyword(ctx context.Context, keyword string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}
	return s.toggle(ctx, keyExcludedKeywords, func(snap *Snapshot) map[string]bool {
		return snap.ExcludedKeywords
	}, keyword)
}

// ToggleFavoriteDish flips a favorite. favorites never affect
// filtering, they only surface matches to the user.
func (s *Store) ToggleFavoriteDish(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	return s.toggle(ctx, keyFavoriteDishes, func(snap *Snapshot) map[string]bool {
		return snap.FavoriteDishes
	}, name)
}
