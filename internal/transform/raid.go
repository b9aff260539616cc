package transform

import "webhook_feed/internal/model"

// Raids transforms raid rows. Raids in excluded areas are dropped, and so are
// exclusive raids unless submitting them is enabled.
func (t *Transformer) Raids(rows []model.RaidRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		msg, ok := t.raid(row)
		if !ok {
			continue
		}
		out = append(out, model.Envelope{Type: model.EventRaid, Message: msg})
	}
	return out
}

func (t *Transformer) raid(row model.RaidRow) (*model.RaidMessage, bool) {
	if t.isExcluded(row.Latitude, row.Longitude) {
		return nil, false
	}

	exclusive := row.IsExclusive != nil && *row.IsExclusive != 0
	if exclusive && !t.submitExRaids {
		return nil, false
	}

	msg := &model.RaidMessage{
		Latitude:         row.Latitude,
		Longitude:        row.Longitude,
		Level:            row.Level,
		TeamID:           row.TeamID,
		CP:               row.CP,
		Start:            row.Start,
		End:              row.End,
		Name:             row.Name,
		Evolution:        row.Evolution,
		Spawn:            row.Spawn,
		Move1:            row.Move1,
		Move2:            row.Move2,
		GymID:            row.GymID,
		URL:              nonEmpty(row.URL),
		Weather:          row.WeatherBoostedCondition,
		Form:             row.Form,
		IsExRaidEligible: nonZero(row.IsExRaidEligible),
		IsExclusive:      nonZero(row.IsExclusive),
		Gender:           row.Gender,
		Costume:          row.Costume,
	}
	if row.PokemonID != nil {
		msg.PokemonID = *row.PokemonID
	}
	return msg, true
}
