package rarity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type mockCounter struct {
	counts map[int]int
	err    error
	since  int64
}

func (m *mockCounter) SpawnCountsSince(_ context.Context, since int64) (map[int]int, error) {
	m.since = since
	return m.counts, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGroup(t *testing.T) {
	tests := []struct {
		name         string
		total, count int
		want         int
	}{
		{name: "no sightings at all", total: 0, count: 0, want: Common},
		{name: "ultra rare", total: 100000, count: 5, want: UltraRare},
		{name: "very rare", total: 100000, count: 20, want: VeryRare},
		{name: "rare", total: 1000, count: 4, want: Rare},
		{name: "uncommon", total: 1000, count: 7, want: Uncommon},
		{name: "common boundary", total: 100, count: 1, want: Common},
		{name: "dominant", total: 10, count: 9, want: Common},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Group(tt.total, tt.count)); diff != "" {
				t.Errorf("Group(%d, %d) mismatch (-want +got):\n%s", tt.total, tt.count, diff)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	counter := &mockCounter{counts: map[int]int{16: 995, 147: 5}}
	r := New(counter, discardLogger())
	now := time.Unix(1_700_000_000, 0)
	r.now = func() time.Time { return now }

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if diff := cmp.Diff(now.Add(-24*time.Hour).Unix(), counter.since); diff != "" {
		t.Errorf("window start mismatch (-want +got):\n%s", diff)
	}

	got, ok := r.RarityByID(16)
	if !ok {
		t.Fatal("expected rarity for 16")
	}
	if diff := cmp.Diff(Common, got); diff != "" {
		t.Errorf("rarity of 16 mismatch (-want +got):\n%s", diff)
	}

	got, ok = r.RarityByID(147)
	if !ok {
		t.Fatal("expected rarity for 147")
	}
	if diff := cmp.Diff(Uncommon, got); diff != "" {
		t.Errorf("rarity of 147 mismatch (-want +got):\n%s", diff)
	}

	if _, ok := r.RarityByID(150); ok {
		t.Error("unsighted species should have no rarity")
	}
}

func TestRefreshErrorKeepsPreviousGroups(t *testing.T) {
	counter := &mockCounter{counts: map[int]int{1: 10}}
	r := New(counter, discardLogger())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	counter.err = errors.New("database is locked")
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}

	if _, ok := r.RarityByID(1); !ok {
		t.Error("failed refresh should keep the previous groups")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := New(&mockCounter{counts: map[int]int{}}, discardLogger())
	r.SetRefreshInterval(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
