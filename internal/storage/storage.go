// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"webhook_feed/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// BeginRead opens a read session. The caller must Close it.
	BeginRead(ctx context.Context) (Reader, error)

	SaveGym(ctx context.Context, g model.GymRow) error
	SaveRaid(ctx context.Context, r model.RaidRow) error
	SavePokestop(ctx context.Context, p model.PokestopRow) error
	SaveQuest(ctx context.Context, stopID string, q model.Quest) error
	SaveWeather(ctx context.Context, w model.WeatherRow) error
	SavePokemon(ctx context.Context, p model.PokemonRow) error

	SpawnCountsSince(ctx context.Context, since int64) (map[int]int, error)

	Close() error
}

// Reader queries rows changed after a unix timestamp. All queries of one
// Reader see the same snapshot.
type Reader interface {
	RaidsChangedSince(ctx context.Context, since int64) ([]model.RaidRow, error)
	QuestsChangedSince(ctx context.Context, since int64) ([]model.QuestRow, error)
	WeatherChangedSince(ctx context.Context, since int64) ([]model.WeatherRow, error)
	GymsChangedSince(ctx context.Context, since int64) ([]model.GymRow, error)
	PokestopsChangedSince(ctx context.Context, since int64) ([]model.PokestopRow, error)
	// PokemonChangedSince returns only sightings of the given seen types.
	PokemonChangedSince(ctx context.Context, since int64, seenTypes []model.SeenType) ([]model.PokemonRow, error)

	Close() error
}
