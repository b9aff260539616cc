package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"webhook_feed/internal/model"
	"webhook_feed/internal/questgen"
)

// Flavor selects the schema of quest messages.
type Flavor int

// Supported quest flavors.
const (
	// FlavorDefault is a flat record mirroring the quest fields.
	FlavorDefault Flavor = iota
	// FlavorStructured adds parsed conditions and a reward object.
	FlavorStructured
)

// ParseFlavor maps the configured flavor name. Anything but "default" is
// the structured flavor.
func ParseFlavor(name string) Flavor {
	if name == "default" {
		return FlavorDefault
	}
	return FlavorStructured
}

func (f Flavor) String() string {
	if f == FlavorDefault {
		return "default"
	}
	return "structured"
}

// Quests transforms quest rows. Quests at stops in excluded areas are dropped.
// A quest that cannot be generated or rendered is logged and skipped without
// affecting the others.
func (t *Transformer) Quests(rows []model.QuestRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		if t.isExcluded(row.Stop.Latitude, row.Stop.Longitude) {
			continue
		}
		rec, err := t.quests.Generate(row.Stop, row.Quest)
		if err != nil {
			t.log.Error("generate quest", "pokestop_id", row.Stop.ID, "layer", row.Quest.Layer, "error", err)
			continue
		}
		msg, err := RenderQuest(t.flavor, rec)
		if err != nil {
			t.log.Error("render quest", "pokestop_id", row.Stop.ID, "layer", row.Quest.Layer, "error", err)
			continue
		}
		out = append(out, model.Envelope{Type: model.EventQuest, Message: msg})
	}
	return out
}

// RenderQuest renders a quest record in the given flavor.
func RenderQuest(f Flavor, rec questgen.Record) (any, error) {
	if f == FlavorStructured {
		return structuredQuest(rec)
	}
	return flatQuest(rec), nil
}

// normalizeQuotes rewrites the single quotes the scanner stores in condition
// and reward text into double quotes so the text parses as JSON. Text that
// contains a real apostrophe is corrupted by this and is not recovered.
func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

func escapeName(name *string) *string {
	if name == nil || *name == "" {
		return nil
	}
	e := strings.ReplaceAll(*name, `"`, `\"`)
	e = strings.ReplaceAll(e, "\n", `\n`)
	return &e
}

func flatQuest(rec questgen.Record) *model.FlatQuestMessage {
	return &model.FlatQuestMessage{
		PokestopID:         rec.PokestopID,
		Latitude:           rec.Latitude,
		Longitude:          rec.Longitude,
		QuestType:          rec.QuestType,
		QuestTypeRaw:       rec.QuestTypeRaw,
		ItemType:           rec.ItemType,
		Name:               escapeName(rec.Name),
		URL:                rec.URL,
		Timestamp:          rec.Timestamp,
		QuestRewardType:    rec.QuestRewardType,
		QuestRewardTypeRaw: rec.QuestRewardTypeRaw,
		QuestRewardRaw:     strings.ToLower(normalizeQuotes(rec.QuestRewardRaw)),
		QuestTarget:        rec.QuestTarget,
		PokemonID:          rec.PokemonID,
		PokemonForm:        rec.PokemonForm,
		PokemonCostume:     rec.PokemonCostume,
		ItemAmount:         rec.ItemAmount,
		ItemID:             rec.ItemID,
		QuestTask:          rec.QuestTask,
		QuestCondition:     strings.ToLower(normalizeQuotes(rec.QuestCondition)),
		QuestTemplate:      rec.QuestTemplate,
		IsARScanEligible:   rec.IsARScanEligible,
		QuestTitle:         rec.QuestTitle,
		WithAR:             rec.QuestLayer != 0,
	}
}

func structuredQuest(rec questgen.Record) (*model.StructuredQuestMessage, error) {
	conditions, err := parseConditions(rec.QuestCondition)
	if err != nil {
		return nil, err
	}

	var stopName string
	if rec.Name != nil {
		stopName = strings.ReplaceAll(*rec.Name, "\n", `\n`)
	}

	return &model.StructuredQuestMessage{
		FlatQuestMessage: *flatQuest(rec),
		Template:         rec.QuestTemplate,
		PokestopName:     stopName,
		PokestopURL:      rec.URL,
		Conditions:       conditions,
		Type:             rec.QuestTypeRaw,
		Rewards:          []model.QuestReward{questReward(rec)},
		Target:           rec.QuestTarget,
		Updated:          rec.Timestamp,
	}, nil
}

// conditionRule moves a condition's typed payload under "info".
type conditionRule struct {
	key  string
	drop bool   // remove key after moving its payload
	from string // payload field to rename, if any
	to   string
}

var conditionRules = []conditionRule{
	{key: "with_pokemon_type", drop: true, from: "pokemon_type", to: "pokemon_type_ids"},
	{key: "with_pokemon_category", drop: true},
	{key: "with_raid_level", drop: true, from: "raid_level", to: "raid_levels"},
	{key: "with_throw_type", drop: true, from: "throw_type", to: "throw_type_id"},
	{key: "with_item", drop: true, from: "item", to: "item_id"},
	{key: "with_pvp_combat"},
	{key: "with_distance", from: "distance_km", to: "distance"},
	{key: "with_pokemon_alignment"},
	{key: "with_invasion_character", from: "category", to: "character_category_ids"},
	{key: "with_buddy"},
}

func parseConditions(raw string) ([]map[string]any, error) {
	conditions := []map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return conditions, nil
	}

	dec := json.NewDecoder(strings.NewReader(normalizeQuotes(raw)))
	dec.UseNumber()
	if err := dec.Decode(&conditions); err != nil {
		return nil, fmt.Errorf("parse quest condition: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse quest condition: trailing data after list")
	}
	if conditions == nil {
		return nil, fmt.Errorf("parse quest condition: not a list")
	}

	for i, c := range conditions {
		if c == nil {
			return nil, fmt.Errorf("quest condition %d is null", i)
		}
		if err := hoistCondition(c); err != nil {
			return nil, fmt.Errorf("quest condition %d: %w", i, err)
		}
	}
	return conditions, nil
}

func hoistCondition(c map[string]any) error {
	for _, rule := range conditionRules {
		payload, ok := c[rule.key]
		if !ok {
			continue
		}
		if rule.from != "" {
			info, ok := payload.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: expected object, got %T", rule.key, payload)
			}
			if v, ok := info[rule.from]; ok {
				delete(info, rule.from)
				info[rule.to] = v
			}
		}
		if rule.drop {
			delete(c, rule.key)
		}
		c["info"] = payload
	}
	return nil
}

func questReward(rec questgen.Record) model.QuestReward {
	info := map[string]any{}
	switch rec.QuestRewardTypeRaw {
	case questgen.RewardItem:
		info["item_id"] = rec.ItemID
		info["amount"] = rec.ItemAmount
	case questgen.RewardStardust:
		info["amount"] = rec.ItemAmount
	case questgen.RewardCandy:
		info["amount"] = rec.ItemAmount
		info["pokemon_id"] = rec.PokemonID
	case questgen.RewardPokemon:
		info["pokemon_id"] = rec.PokemonID
		info["form_id"] = rec.PokemonForm
		info["costume_id"] = rec.PokemonCostume
		info["shiny"] = 0
		// consumers read either key
		info["form"] = rec.PokemonForm
	case questgen.RewardMegaEnergy:
		info["pokemon_id"] = rec.PokemonID
		info["amount"] = rec.ItemAmount
	}
	return model.QuestReward{Type: rec.QuestRewardTypeRaw, Info: info}
}
