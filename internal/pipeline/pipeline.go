package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/config"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/trips"
)

// Stats is the full cleaning-stage summary: validator/cleaner counters plus
// the enrichment filter count and the number of resolved rows persisted to
// the artifact.
type Stats struct {
	CleanStats
	SpeedRemoved int
	Resolved     int
	Elapsed      time.Duration
}

// Run executes the cleaning stage end to end: stream the raw trips CSV,
// validate and de-duplicate, compute derived features, resolve zone names,
// and persist the cleaned artifact. The cleaning log is appended only after
// the whole stage succeeds; fatal input errors (missing file, missing
// column) surface before anything is written.
func Run(ctx context.Context, cfg *config.Config) (Stats, error) {
	start := time.Now()

	lookup, err := LoadZoneLookup(cfg.ZoneCSV)
	if err != nil {
		return Stats{}, err
	}
	log.Printf("pipeline: zone lookup loaded entries=%d", len(lookup))

	cleaner := NewCleaner()
	enricher := &Enricher{}

	// The artifact is created lazily on the first retained row so a fatal
	// header error never leaves a partial artifact behind.
	var w *trips.ArtifactWriter
	defer func() {
		if w != nil {
			_ = w.Close()
		}
	}()

	err = StreamRaw(ctx, cfg.TripsCSV, func(fields []string) error {
		t, ok := cleaner.Clean(fields)
		if ok {
			if enricher.Enrich(t) {
				ResolveZones(t, lookup)
				if w == nil {
					var werr error
					if w, werr = trips.NewArtifactWriter(cfg.CleanedCSV); werr != nil {
						return werr
					}
				}
				if werr := w.Write(t); werr != nil {
					return werr
				}
			}
		}
		if n := cleaner.Stats().Original; n%100_000 == 0 {
			log.Printf("pipeline: rows=%d cleaned=%d removed=%d", n, cleaner.Stats().Cleaned, cleaner.Stats().Removed)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	// An empty result set is not an error; still persist the header-only
	// artifact so the loader contract holds.
	if w == nil {
		if w, err = trips.NewArtifactWriter(cfg.CleanedCSV); err != nil {
			return Stats{}, err
		}
	}
	resolved := w.Rows()
	if err := w.Close(); err != nil {
		return Stats{}, err
	}
	w = nil

	stats := Stats{
		CleanStats:   cleaner.Stats(),
		SpeedRemoved: enricher.Removed,
		Resolved:     resolved,
		Elapsed:      time.Since(start),
	}
	if err := AppendCleanLog(cfg.CleanLog, stats); err != nil {
		return stats, err
	}

	log.Printf("pipeline: done original=%d cleaned=%d removed=%d speed_removed=%d resolved=%d reasons=%v duration=%s",
		stats.Original, stats.Cleaned, stats.Removed, stats.SpeedRemoved, stats.Resolved,
		stats.Reasons, stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}

// Check verifies the run accounting: every raw row is either cleaned or
// removed, and the artifact holds exactly the cleaned rows that also passed
// the speed filter.
func (s Stats) Check() error {
	if s.Cleaned+s.Removed != s.Original {
		return fmt.Errorf("count mismatch: cleaned=%d removed=%d original=%d", s.Cleaned, s.Removed, s.Original)
	}
	if s.Resolved != s.Cleaned-s.SpeedRemoved {
		return fmt.Errorf("resolved mismatch: resolved=%d cleaned=%d speed_removed=%d", s.Resolved, s.Cleaned, s.SpeedRemoved)
	}
	return nil
}
