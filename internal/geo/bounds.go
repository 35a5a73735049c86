package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// TypePoint is the GeoJSON geometry type of a stored location.
	TypePoint = "Point"
	// TypePolygon is the GeoJSON geometry type of a region query.
	TypePolygon = "Polygon"
)

// ErrInvalidPoint is returned when a "lat,lng" string cannot be parsed.
var ErrInvalidPoint = errors.New("invalid coordinate pair")

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

// ParsePoint parses a "lat,lng" string such as the topRight and bottomLeft
// query parameters.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, ErrInvalidPoint
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.InRange() {
		return Point{}, fmt.Errorf("%w: out of range", ErrInvalidPoint)
	}
	return p, nil
}

// InRange reports whether lat is within [-90, 90] and lng within [-180, 180].
func (p Point) InRange() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Location is a GeoJSON point as stored on a cat. Coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewLocation builds a GeoJSON point for p.
func NewLocation(p Point) *Location {
	return &Location{Type: TypePoint, Coordinates: []float64{p.Lng, p.Lat}}
}

// Point returns the lat/lng pair of a well-formed location.
func (l Location) Point() Point {
	if len(l.Coordinates) != 2 {
		return Point{}
	}
	return Point{Lat: l.Coordinates[1], Lng: l.Coordinates[0]}
}

// Polygon is a GeoJSON polygon with a single closed ring of [lng, lat] pairs.
type Polygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// RectangleBounds turns the top-right and bottom-left corners of an
// axis-aligned box into a closed, counter-clockwise polygon. The corners are
// assumed to be given in the right order; a swapped pair yields the same ring
// traced from the opposite corner and is not rejected here.
func RectangleBounds(topRight, bottomLeft Point) Polygon {
	ring := [][]float64{
		{bottomLeft.Lng, bottomLeft.Lat},
		{topRight.Lng, bottomLeft.Lat},
		{topRight.Lng, topRight.Lat},
		{bottomLeft.Lng, topRight.Lat},
		{bottomLeft.Lng, bottomLeft.Lat},
	}
	return Polygon{Type: TypePolygon, Coordinates: [][][]float64{ring}}
}

// Ring returns the outer ring, or nil for an empty polygon.
func (p Polygon) Ring() [][]float64 {
	if len(p.Coordinates) == 0 {
		return nil
	}
	return p.Coordinates[0]
}

// Contains reports whether pt lies inside the outer ring or on its boundary.
func (p Polygon) Contains(pt Point) bool {
	ring := p.Ring()
	if len(ring) < 4 {
		return false
	}
	x, y := pt.Lng, pt.Lat
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if onSegment(x, y, xi, yi, xj, yj) {
			return true
		}
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func onSegment(x, y, x1, y1, x2, y2 float64) bool {
	cross := (x-x1)*(y2-y1) - (y-y1)*(x2-x1)
	if cross != 0 {
		return false
	}
	return x >= min(x1, x2) && x <= max(x1, x2) && y >= min(y1, y2) && y <= max(y1, y2)
}

// WKT renders the polygon as well-known text, e.g. for ST_GeomFromText.
func (p Polygon) WKT() string {
	ring := p.Ring()
	pairs := make([]string, 0, len(ring))
	for _, c := range ring {
		pairs = append(pairs, strconv.FormatFloat(c[0], 'f', -1, 64)+" "+strconv.FormatFloat(c[1], 'f', -1, 64))
	}
	return "POLYGON((" + strings.Join(pairs, ", ") + "))"
}
