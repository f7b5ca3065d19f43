package dining

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dineon-backend/lib/menu"
	"dineon-backend/lib/timezone"

	"go.opentelemetry.io/otel/codes"
)

// Cache persists one serialized weekly dataset on disk. a snapshot is
// valid only while today's date is among its date keys, so corrupt or
// stale files are deleted on load and never surfaced to callers.
type Cache struct {
	path string
}

func NewCache(path string) Cache {
	return Cache{path: path}
}

// IsValid reports whether the dataset still covers today (LA time).
func (c Cache) IsValid(week menu.Week) bool {
	return week.HasDate(timezone.Today())
}

// Load reads the cached dataset. any read or decode failure, and any
// stale snapshot, counts as a miss and clears the file.
func (c Cache) Load(ctx context.Context) (menu.Week, bool) {
	ctx, span := tracer.Start(ctx, "cache:Load")
	defer span.End()

	buf, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		slog.DebugContext(ctx, "no cached menu found", "path", c.path)
		return menu.Week{}, false
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cache file")
		slog.WarnContext(ctx, "failed to read cached menu", "path", c.path, "err", err)
		c.Clear(ctx)
		return menu.Week{}, false
	}

	var week menu.Week
	err = json.Unmarshal(buf, &week)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode cache file")
		slog.WarnContext(ctx, "cached menu is corrupt, clearing", "path", c.path, "err", err)
		c.Clear(ctx)
		return menu.Week{}, false
	}

	if !c.IsValid(week) {
		slog.InfoContext(ctx, "cached menu expired, clearing", "dates", week.AvailableDates())
		c.Clear(ctx)
		return menu.Week{}, false
	}

	slog.InfoContext(ctx, "loaded cached menu", "dates", week.AvailableDates())
	return week, true
}

// Save atomically replaces the cache file with the given dataset.
// failures are logged and swallowed, a cache write is best-effort.
func (c Cache) Save(ctx context.Context, week menu.Week) {
	ctx, span := tracer.Start(ctx, "cache:Save")
	defer span.End()

	err := c.write(week)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cache file")
		slog.WarnContext(ctx, "failed to cache menu", "path", c.path, "err", err)
		return
	}
	slog.DebugContext(ctx, "menu cached", "path", c.path)
}

func (c Cache) write(week menu.Week) error {
	buf, err := json.MarshalIndent(week, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	// write-then-rename so readers never observe a torn file
	tmp, err := os.CreateTemp(dir, ".menu-cache-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(buf)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), c.path)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Clear removes the cache file if it exists.
func (c Cache) Clear(ctx context.Context) {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "failed to clear menu cache", "path", c.path, "err", err)
	}
}
