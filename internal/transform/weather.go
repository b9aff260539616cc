package transform

import (
	"webhook_feed/internal/cellgeo"
	"webhook_feed/internal/model"
)

// Weather transforms weather rows. Weather is never excluded by area.
// Missing coordinates are derived from the cell id.
func (t *Transformer) Weather(rows []model.WeatherRow) []model.Envelope {
	out := make([]model.Envelope, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Envelope{Type: model.EventWeather, Message: weather(row)})
	}
	return out
}

func weather(row model.WeatherRow) *model.WeatherMessage {
	msg := &model.WeatherMessage{
		S2CellID:      row.S2CellID,
		Condition:     row.GameplayWeather,
		AlertSeverity: row.Severity,
		Day:           row.WorldTime,
		TimeChanged:   row.LastUpdated,
		Coords:        cellgeo.CoordsOfCell(row.S2CellID),
	}

	lat, lon := cellgeo.MiddleOfCell(row.S2CellID)
	msg.Latitude, msg.Longitude = lat, lon
	if row.Latitude != nil {
		msg.Latitude = *row.Latitude
	}
	if row.Longitude != nil {
		msg.Longitude = *row.Longitude
	}
	return msg
}
