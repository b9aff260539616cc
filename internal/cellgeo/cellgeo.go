// Package cellgeo converts S2 cell ids into coordinates.
package cellgeo

import "github.com/golang/geo/s2"

// WeatherLevel is the S2 level weather is reported at.
const WeatherLevel = 10

// MiddleOfCell returns the centre of the cell in degrees.
func MiddleOfCell(cellID int64) (lat, lon float64) {
	ll := s2.CellID(uint64(cellID)).LatLng()
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// CoordsOfCell returns the four vertices of the cell as [lat, lon] pairs.
func CoordsOfCell(cellID int64) [][2]float64 {
	cell := s2.CellFromCellID(s2.CellID(uint64(cellID)))
	coords := make([][2]float64, 0, 4)
	for k := 0; k < 4; k++ {
		ll := s2.LatLngFromPoint(cell.Vertex(k))
		coords = append(coords, [2]float64{ll.Lat.Degrees(), ll.Lng.Degrees()})
	}
	return coords
}

// CellID returns the id of the cell at level that contains the coordinate.
func CellID(lat, lon float64, level int) int64 {
	return int64(s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(level))
}
