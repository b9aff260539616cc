package transform

import "webhook_feed/internal/model"

// Pokestops transforms pokestop rows, dropping stops in excluded areas.
func (t *Transformer) Pokestops(rows []model.PokestopRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		if t.isExcluded(row.Latitude, row.Longitude) {
			continue
		}
		out = append(out, model.Envelope{Type: model.EventPokestop, Message: pokestop(row)})
	}
	return out
}

func pokestop(row model.PokestopRow) *model.PokestopMessage {
	msg := &model.PokestopMessage{
		Name:                row.Name,
		PokestopID:          row.PokestopID,
		Latitude:            row.Latitude,
		Longitude:           row.Longitude,
		Updated:             row.LastUpdated,
		LastModified:        row.LastModified,
		URL:                 nonEmpty(row.Image),
		IncidentStart:       positive64(row.IncidentStart),
		IncidentExpiration:  positive64(row.IncidentExpiration),
		IncidentGruntType:   positive(row.IncidentGruntType),
		IncidentDisplayType: positive(row.IncidentDisplayType),
		Incidents:           row.Incidents,
	}
	if row.ActiveFortModifier != nil && *row.ActiveFortModifier != 0 {
		msg.LureExpiration = row.LureExpiration
		msg.LureID = row.ActiveFortModifier
	}
	if msg.Incidents == nil {
		msg.Incidents = []model.Incident{}
	}
	return msg
}

func positive64(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
