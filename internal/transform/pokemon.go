package transform

import (
	"strconv"

	"webhook_feed/internal/cellgeo"
	"webhook_feed/internal/model"
)

// Pokemon transforms pokemon sightings, attaching rarity, level and the stop
// or cell the sighting was made at.
func (t *Transformer) Pokemon(rows []model.PokemonRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		if t.isExcluded(row.Latitude, row.Longitude) {
			t.log.Debug("excluded area, skipping pokemon",
				"pokemon_id", row.PokemonID, "encounter_id", row.EncounterID)
			continue
		}
		out = append(out, model.Envelope{Type: model.EventPokemon, Message: t.pokemon(row)})
	}
	return out
}

func (t *Transformer) pokemon(row model.PokemonRow) *model.PokemonMessage {
	msg := &model.PokemonMessage{
		EncounterID:       strconv.FormatUint(row.EncounterID, 10),
		PokemonID:         row.PokemonID,
		DisplayPokemonID:  row.DisplayPokemon,
		SpawnpointID:      row.SpawnpointID,
		Latitude:          row.Latitude,
		Longitude:         row.Longitude,
		DisappearTime:     row.DisappearTime,
		Verified:          row.SpawnVerified,
		SeenType:          string(row.SeenType),
		Form:              positive(row.Form),
		DisplayForm:       positive(row.DisplayForm),
		Costume:           row.Costume,
		DisplayCostume:    positive(row.DisplayCostume),
		CP:                row.CP,
		IndividualAttack:  row.IndividualAttack,
		IndividualDefense: row.IndividualDefense,
		IndividualStamina: row.IndividualStamina,
		Move1:             row.Move1,
		Move2:             row.Move2,
		Height:            row.Height,
		Weight:            row.Weight,
		Gender:            row.Gender,
		DisplayGender:     row.DisplayGender,
		Size:              row.Size,
		Weather:           positive(row.WeatherBoostedCondition),
	}

	if row.CPMultiplier != nil {
		level := Level(*row.CPMultiplier)
		msg.CPMultiplier = row.CPMultiplier
		msg.PokemonLevel = &level
	}

	if t.rarity != nil {
		if r, ok := t.rarity.RarityByID(row.PokemonID); ok {
			msg.Rarity = &r
		}
	}

	if row.BaseCatch != nil {
		msg.BaseCatch = row.BaseCatch
		msg.GreatCatch = row.GreatCatch
		msg.UltraCatch = row.UltraCatch
	}

	switch row.SeenType {
	case model.SeenNearbyStop, model.SeenLureWild, model.SeenLureEncounter:
		msg.PokestopID = row.FortID
		msg.PokestopName = &row.StopName
		msg.PokestopURL = &row.StopURL
		msg.Verified = row.SeenType != model.SeenNearbyStop
	case model.SeenNearbyCell:
		if row.CellID != nil {
			msg.CellCoords = cellgeo.CoordsOfCell(*row.CellID)
		}
		msg.CellID = row.CellID
		msg.Verified = false
	}

	return msg
}
