package domain

import "math"

// DefaultGridStep is the angular spacing between grid points in degrees.
const DefaultGridStep = 0.05

// GridCell is the classified risk for one sampled point of an area query.
type GridCell struct {
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	Rainfall24h  float64   `json:"rainfall24h"`
	SoilMoisture float64   `json:"soilMoisture"`
}

// BuildGrid returns the 3x3 sampling grid around center, offset by step
// degrees on each axis. Enumeration order is fixed (latitude offset outer,
// longitude offset inner) so grid indexes are reproducible; the center point
// is always index 4. Results are not clamped to valid coordinate ranges --
// callers near the poles or the antimeridian get out-of-range values
// verbatim unless they run the grid through NormalizeGrid.
func BuildGrid(center Coordinate, step float64) []Coordinate {
	offsets := [3]float64{-step, 0, step}

	points := make([]Coordinate, 0, len(offsets)*len(offsets))
	for _, dLat := range offsets {
		for _, dLon := range offsets {
			points = append(points, Coordinate{
				Lat: center.Lat + dLat,
				Lon: center.Lon + dLon,
			})
		}
	}
	return points
}

// NormalizeGrid clamps latitudes to [-90, 90] and wraps longitudes into
// [-180, 180]. It is a separate post-processing stage rather than part of
// BuildGrid so the offset enumeration stays deterministic and directly
// comparable in tests.
func NormalizeGrid(points []Coordinate) []Coordinate {
	normalized := make([]Coordinate, len(points))
	for i, p := range points {
		normalized[i] = Coordinate{
			Lat: clampLat(p.Lat),
			Lon: wrapLon(p.Lon),
		}
	}
	return normalized
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// wrapLon maps any longitude into [-180, 180) modulo 360.
func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
