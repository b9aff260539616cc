package storage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"webhook_feed/internal/model"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// readWith runs fn in a fresh read session. Writes must happen before, since
// the session holds the only connection.
func readWith[T any](t *testing.T, s *SQLite, fn func(ctx context.Context, r Reader) (T, error)) T {
	t.Helper()
	ctx := context.Background()
	r, err := s.BeginRead(ctx)
	if err != nil {
		t.Fatalf("begin read: %v", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			t.Errorf("close reader: %v", err)
		}
	}()
	v, err := fn(ctx, r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return v
}

func intPtr(v int) *int { return &v }
func int64Ptr(v int64) *int64 { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }

func mustSave(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestRaidsChangedSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	mustSave(t, s.SaveGym(ctx, model.GymRow{
		GymID: "gym-1", Latitude: 52.5, Longitude: 13.4, TeamID: 2,
		Name: strPtr("Fountain"), URL: strPtr("http://img/g1.png"), IsExRaidEligible: boolPtr(true),
	}))
	mustSave(t, s.SaveGym(ctx, model.GymRow{GymID: "gym-2", Latitude: 1, Longitude: 2}))

	fresh := model.RaidRow{
		GymID: strPtr("gym-1"), Level: 5, Spawn: 100, Start: 200, End: 300,
		PokemonID: intPtr(150), CP: intPtr(54000), Move1: intPtr(221),
		IsExclusive: intPtr(0), WeatherBoostedCondition: intPtr(3), LastScanned: 150,
	}
	mustSave(t, s.SaveRaid(ctx, fresh))
	mustSave(t, s.SaveRaid(ctx, model.RaidRow{GymID: strPtr("gym-2"), Level: 1, LastScanned: 50}))

	got := readWith(t, s, func(ctx context.Context, r Reader) ([]model.RaidRow, error) {
		return r.RaidsChangedSince(ctx, 100)
	})

	want := []model.RaidRow{{
		GymID: strPtr("gym-1"), Level: 5, Spawn: 100, Start: 200, End: 300,
		PokemonID: intPtr(150), CP: intPtr(54000), Move1: intPtr(221),
		Name: strPtr("Fountain"), URL: strPtr("http://img/g1.png"), Latitude: 52.5, Longitude: 13.4,
		TeamID: intPtr(2), WeatherBoostedCondition: intPtr(3),
		IsExclusive: intPtr(0), IsExRaidEligible: intPtr(1), LastScanned: 150,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RaidsChangedSince mismatch (-want +got):\n%s", diff)
	}
}

func TestRaidWithoutGymID(t *testing.T) {
	s := newTestDB(t)
	if err := s.SaveRaid(context.Background(), model.RaidRow{Level: 1}); err == nil {
		t.Fatal("expected error for raid without gym id")
	}
}

func TestPokemonChangedSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	mustSave(t, s.SavePokestop(ctx, model.PokestopRow{PokestopID: "stop-1", Name: strPtr("Mural"), Latitude: 1, Longitude: 2}))

	encounter := model.PokemonRow{
		EncounterID: 18446744073709551000, PokemonID: 25, SpawnpointID: int64Ptr(77),
		Latitude: 52.5, Longitude: 13.4, DisappearTime: 900, SpawnVerified: true,
		SeenType: model.SeenEncounter, CPMultiplier: floatPtr(0.5974), IndividualAttack: intPtr(15),
		BaseCatch: floatPtr(0.25), LastModified: 200,
	}
	nearby := model.PokemonRow{
		EncounterID: 2, PokemonID: 1, Latitude: 52.5, Longitude: 13.4, DisappearTime: 900,
		SeenType: model.SeenNearbyStop, FortID: strPtr("stop-1"), LastModified: 200,
	}
	cell := model.PokemonRow{
		EncounterID: 3, PokemonID: 4, Latitude: 52.5, Longitude: 13.4, DisappearTime: 900,
		SeenType: model.SeenNearbyCell, CellID: int64Ptr(5), LastModified: 200,
	}
	stale := model.PokemonRow{
		EncounterID: 4, PokemonID: 7, Latitude: 52.5, Longitude: 13.4, DisappearTime: 900,
		SeenType: model.SeenEncounter, LastModified: 10,
	}
	for _, p := range []model.PokemonRow{encounter, nearby, cell, stale} {
		mustSave(t, s.SavePokemon(ctx, p))
	}

	tests := []struct {
		name      string
		seenTypes []model.SeenType
		want      []uint64
	}{
		{name: "no seen types", seenTypes: nil, want: nil},
		{name: "encounter only", seenTypes: []model.SeenType{model.SeenEncounter}, want: []uint64{18446744073709551000}},
		{
			name:      "stop and cell",
			seenTypes: []model.SeenType{model.SeenNearbyStop, model.SeenNearbyCell},
			want:      []uint64{2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := readWith(t, s, func(ctx context.Context, r Reader) ([]model.PokemonRow, error) {
				return r.PokemonChangedSince(ctx, 100, tt.seenTypes)
			})
			var got []uint64
			for _, row := range rows {
				got = append(got, row.EncounterID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("encounter ids mismatch (-want +got):\n%s", diff)
			}
		})
	}

	rows := readWith(t, s, func(ctx context.Context, r Reader) ([]model.PokemonRow, error) {
		return r.PokemonChangedSince(ctx, 100, model.SeenTypes)
	})
	byID := make(map[uint64]model.PokemonRow)
	for _, row := range rows {
		byID[row.EncounterID] = row
	}

	if diff := cmp.Diff(encounter, byID[encounter.EncounterID]); diff != "" {
		t.Errorf("encounter row mismatch (-want +got):\n%s", diff)
	}
	wantNearby := nearby
	wantNearby.StopName = strPtr("Mural")
	if diff := cmp.Diff(wantNearby, byID[2]); diff != "" {
		t.Errorf("nearby stop row mismatch (-want +got):\n%s", diff)
	}
}

func TestPokestopsChangedSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	incidents := []model.Incident{
		{IncidentID: "inc-2", Start: 300, Expiration: 400, DisplayType: 1, Character: 5},
		{IncidentID: "inc-1", Start: 100, Expiration: 200, DisplayType: 1, Character: 4},
	}
	mustSave(t, s.SavePokestop(ctx, model.PokestopRow{
		PokestopID: "stop-1", Name: strPtr("Statue"), Latitude: 1, Longitude: 2,
		LastUpdated: 500, LastModified: 450, ActiveFortModifier: intPtr(501), LureExpiration: int64Ptr(1800),
		Incidents: incidents,
	}))
	mustSave(t, s.SavePokestop(ctx, model.PokestopRow{PokestopID: "stop-2", Latitude: 1, Longitude: 2, LastUpdated: 600}))
	mustSave(t, s.SavePokestop(ctx, model.PokestopRow{PokestopID: "stop-old", Latitude: 1, Longitude: 2, LastUpdated: 5}))

	got := readWith(t, s, func(ctx context.Context, r Reader) ([]model.PokestopRow, error) {
		return r.PokestopsChangedSince(ctx, 100)
	})

	want := []model.PokestopRow{
		{
			PokestopID: "stop-1", Name: strPtr("Statue"), Latitude: 1, Longitude: 2,
			LastUpdated: 500, LastModified: 450, ActiveFortModifier: intPtr(501), LureExpiration: int64Ptr(1800),
			Incidents: []model.Incident{incidents[1], incidents[0]},
		},
		{PokestopID: "stop-2", Latitude: 1, Longitude: 2, LastUpdated: 600},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PokestopsChangedSince mismatch (-want +got):\n%s", diff)
	}
}

func TestQuestsChangedSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	mustSave(t, s.SavePokestop(ctx, model.PokestopRow{
		PokestopID: "stop-1", Name: strPtr("Statue"), Image: strPtr("http://img/1.png"), Latitude: 1, Longitude: 2,
	}))
	arQuest := model.Quest{
		Layer: 1, QuestType: 4, Timestamp: 500, RewardType: 2, ItemID: 701, ItemAmount: 3, Target: 5,
		QuestCondition: "[]", QuestReward: "[{'type': 2}]", QuestTemplate: "T", QuestTitle: "title",
		IsARScanEligible: true,
	}
	oldQuest := model.Quest{Layer: 0, QuestType: 4, Timestamp: 50}
	mustSave(t, s.SaveQuest(ctx, "stop-1", oldQuest))
	mustSave(t, s.SaveQuest(ctx, "stop-1", arQuest))

	got := readWith(t, s, func(ctx context.Context, r Reader) ([]model.QuestRow, error) {
		return r.QuestsChangedSince(ctx, 100)
	})

	want := []model.QuestRow{{
		Stop:  model.Pokestop{ID: "stop-1", Name: strPtr("Statue"), Image: strPtr("http://img/1.png"), Latitude: 1, Longitude: 2},
		Quest: arQuest,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("QuestsChangedSince mismatch (-want +got):\n%s", diff)
	}
}

func TestWeatherAndGymsChangedSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	weather := model.WeatherRow{S2CellID: 5188146770730811392, GameplayWeather: 3, Severity: intPtr(0), LastUpdated: 300}
	mustSave(t, s.SaveWeather(ctx, weather))
	mustSave(t, s.SaveWeather(ctx, model.WeatherRow{S2CellID: 1, LastUpdated: 10}))

	gym := model.GymRow{GymID: "gym-1", Latitude: 1, Longitude: 2, TeamID: 3, SlotsAvailable: 2, IsInBattle: true, LastModified: 300}
	mustSave(t, s.SaveGym(ctx, gym))
	mustSave(t, s.SaveGym(ctx, model.GymRow{GymID: "gym-old", LastModified: 10}))

	gotWeather := readWith(t, s, func(ctx context.Context, r Reader) ([]model.WeatherRow, error) {
		return r.WeatherChangedSince(ctx, 100)
	})
	if diff := cmp.Diff([]model.WeatherRow{weather}, gotWeather); diff != "" {
		t.Errorf("WeatherChangedSince mismatch (-want +got):\n%s", diff)
	}

	gotGyms := readWith(t, s, func(ctx context.Context, r Reader) ([]model.GymRow, error) {
		return r.GymsChangedSince(ctx, 100)
	})
	if diff := cmp.Diff([]model.GymRow{gym}, gotGyms); diff != "" {
		t.Errorf("GymsChangedSince mismatch (-want +got):\n%s", diff)
	}
}

func TestSpawnCountsSince(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	sightings := []struct {
		id        uint64
		pokemonID int
		disappear int64
	}{
		{1, 16, 500}, {2, 16, 600}, {3, 19, 700}, {4, 19, 50},
	}
	for _, sg := range sightings {
		mustSave(t, s.SavePokemon(ctx, model.PokemonRow{
			EncounterID: sg.id, PokemonID: sg.pokemonID, DisappearTime: sg.disappear, SeenType: model.SeenWild,
		}))
	}

	got, err := s.SpawnCountsSince(ctx, 100)
	if err != nil {
		t.Fatalf("spawn counts: %v", err)
	}
	if diff := cmp.Diff(map[int]int{16: 2, 19: 1}, got); diff != "" {
		t.Errorf("SpawnCountsSince mismatch (-want +got):\n%s", diff)
	}
}
