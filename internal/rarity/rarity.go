// Package rarity ranks pokemon species by how often they were sighted recently.
package rarity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Rarity groups, from most to least common.
const (
	Common    = 1
	Uncommon  = 2
	Rare      = 3
	VeryRare  = 4
	UltraRare = 5
)

// Counter returns sighting counts per species since a unix timestamp.
type Counter interface {
	SpawnCountsSince(ctx context.Context, since int64) (map[int]int, error)
}

// Rarity keeps the rarity group of every recently sighted species.
type Rarity struct {
	counter Counter
	log     *slog.Logger
	window  time.Duration
	tick    time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	groups map[int]int
}

// New creates a Rarity looking at the last 24 hours, refreshed hourly.
func New(counter Counter, log *slog.Logger) *Rarity {
	return &Rarity{
		counter: counter,
		log:     log,
		window:  24 * time.Hour,
		tick:    time.Hour,
		now:     time.Now,
		groups:  make(map[int]int),
	}
}

// SetRefreshInterval overrides the default 1-hour refresh interval.
func (r *Rarity) SetRefreshInterval(d time.Duration) {
	r.tick = d
}

// Run refreshes the groups until ctx is cancelled.
func (r *Rarity) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.log.Error("refresh rarity", "error", err)
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.log.Error("refresh rarity", "error", err)
			}
		}
	}
}

// Refresh recomputes all groups from the counter.
func (r *Rarity) Refresh(ctx context.Context) error {
	since := r.now().Add(-r.window).Unix()
	counts, err := r.counter.SpawnCountsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("count spawns: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	groups := make(map[int]int, len(counts))
	for id, c := range counts {
		groups[id] = Group(total, c)
	}

	r.mu.Lock()
	r.groups = groups
	r.mu.Unlock()

	r.log.Debug("rarity refreshed", "species", len(groups), "sightings", total)
	return nil
}

// RarityByID returns the group of a species, if it was sighted in the window.
func (r *Rarity) RarityByID(pokemonID int) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[pokemonID]
	return g, ok
}

// Group maps a species' share of all sightings to a rarity group.
func Group(total, count int) int {
	if total <= 0 {
		return Common
	}
	percent := math.Round(100*float64(count)/float64(total)*10000) / 10000
	switch {
	case percent < 0.01:
		return UltraRare
	case percent < 0.03:
		return VeryRare
	case percent < 0.5:
		return Rare
	case percent < 1:
		return Uncommon
	default:
		return Common
	}
}
