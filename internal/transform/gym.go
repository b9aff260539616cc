package transform

import "webhook_feed/internal/model"

// Gyms transforms gym rows, dropping gyms in excluded areas.
func (t *Transformer) Gyms(rows []model.GymRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		if t.isExcluded(row.Latitude, row.Longitude) {
			continue
		}
		out = append(out, model.Envelope{Type: model.EventGym, Message: &model.GymMessage{
			GymID:            row.GymID,
			Latitude:         row.Latitude,
			Longitude:        row.Longitude,
			TeamID:           row.TeamID,
			Name:             row.Name,
			SlotsAvailable:   row.SlotsAvailable,
			IsARScanEligible: row.IsARScanEligible,
			IsInBattle:       row.IsInBattle,
			Description:      row.Description,
			URL:              row.URL,
			IsExRaidEligible: row.IsExRaidEligible,
		}})
	}
	return out
}
