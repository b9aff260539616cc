// Package transform maps stored rows to webhook envelopes.
//
// Optional message fields are pointers tagged omitempty, so a NULL column
// leaves the field out of the JSON.
package transform

import (
	"log/slog"

	"webhook_feed/internal/model"
	"webhook_feed/internal/questgen"
)

// Excluder reports whether a coordinate lies in an excluded area.
type Excluder interface {
	Contains(lat, lon float64) bool
}

// RarityLookup returns the rarity group of a species.
type RarityLookup interface {
	RarityByID(pokemonID int) (int, bool)
}

// QuestGenerator builds the intermediate quest record for a stop and quest.
type QuestGenerator interface {
	Generate(stop model.Pokestop, q model.Quest) (questgen.Record, error)
}

// Options configures a Transformer.
type Options struct {
	Excluded      Excluder
	Rarity        RarityLookup
	Quests        QuestGenerator
	Flavor        Flavor
	SubmitExRaids bool
}

// Transformer turns rows of every entity kind into envelopes.
type Transformer struct {
	excluded      Excluder
	rarity        RarityLookup
	quests        QuestGenerator
	flavor        Flavor
	submitExRaids bool
	log           *slog.Logger
}

// New creates a Transformer. A nil Excluded or Rarity disables that feature;
// a nil Quests uses the default generator.
func New(opts Options, log *slog.Logger) *Transformer {
	if opts.Quests == nil {
		opts.Quests = questgen.New()
	}
	return &Transformer{
		excluded:      opts.Excluded,
		rarity:        opts.Rarity,
		quests:        opts.Quests,
		flavor:        opts.Flavor,
		submitExRaids: opts.SubmitExRaids,
		log:           log,
	}
}

func (t *Transformer) isExcluded(lat, lon float64) bool {
	return t.excluded != nil && t.excluded.Contains(lat, lon)
}

func nonZero(v *int) *bool {
	if v == nil {
		return nil
	}
	b := *v != 0
	return &b
}

func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
