// Package geo maps categorical location strings to approximate
// coordinates and aggregates supply network entities into
// map-displayable nodes.
package geo

import (
	"strings"

	"github.com/opsboard/opsboard/pkg/field"
)

// Coordinate is an approximate WGS84 point for map display.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Resolver turns a (location, region) string pair into an approximate
// coordinate. Implementations are injected into the Bucketer so the
// lookup table can be swapped without touching aggregation.
type Resolver interface {
	Resolve(location, region string) (Coordinate, bool)
}

// Gazetteer resolves locations through a fixed ladder: exact match on
// the lowercased location, then keyword match against the region name,
// then keyword match against the location string itself.
type Gazetteer struct {
	places   map[string]Coordinate
	keywords []regionKeyword
}

type regionKeyword struct {
	keyword  string
	centroid Coordinate
}

// NewGazetteer returns the built-in gazetteer covering the plant,
// supplier, and customer locations present in the source tables, plus
// coarse regional centroids for keyword fallback.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{
		places: map[string]Coordinate{
			"shanghai":    {Lat: 31.23, Lon: 121.47},
			"shenzhen":    {Lat: 22.54, Lon: 114.06},
			"singapore":   {Lat: 1.35, Lon: 103.82},
			"taipei":      {Lat: 25.03, Lon: 121.57},
			"seoul":       {Lat: 37.57, Lon: 126.98},
			"osaka":       {Lat: 34.69, Lon: 135.50},
			"bangalore":   {Lat: 12.97, Lon: 77.59},
			"munich":      {Lat: 48.14, Lon: 11.58},
			"stuttgart":   {Lat: 48.78, Lon: 9.18},
			"hamburg":     {Lat: 53.55, Lon: 9.99},
			"rotterdam":   {Lat: 51.92, Lon: 4.48},
			"milan":       {Lat: 45.46, Lon: 9.19},
			"detroit":     {Lat: 42.33, Lon: -83.05},
			"chicago":     {Lat: 41.88, Lon: -87.63},
			"austin":      {Lat: 30.27, Lon: -97.74},
			"monterrey":   {Lat: 25.69, Lon: -100.32},
			"guadalajara": {Lat: 20.67, Lon: -103.35},
			"sao paulo":   {Lat: -23.55, Lon: -46.63},
		},
		keywords: []regionKeyword{
			{keyword: "north america", centroid: Coordinate{Lat: 43.0, Lon: -98.0}},
			{keyword: "south america", centroid: Coordinate{Lat: -15.0, Lon: -60.0}},
			{keyword: "latin america", centroid: Coordinate{Lat: -8.0, Lon: -70.0}},
			{keyword: "middle east", centroid: Coordinate{Lat: 27.0, Lon: 45.0}},
			{keyword: "europe", centroid: Coordinate{Lat: 50.0, Lon: 10.0}},
			{keyword: "emea", centroid: Coordinate{Lat: 48.0, Lon: 15.0}},
			{keyword: "apac", centroid: Coordinate{Lat: 25.0, Lon: 105.0}},
			{keyword: "asia", centroid: Coordinate{Lat: 30.0, Lon: 100.0}},
			{keyword: "africa", centroid: Coordinate{Lat: 2.0, Lon: 21.0}},
			{keyword: "oceania", centroid: Coordinate{Lat: -25.0, Lon: 135.0}},
		},
	}
}

// Resolve implements Resolver. Nodes that miss every rung of the
// ladder report ok=false and are excluded from map output by the
// caller, never plotted at a default coordinate.
func (g *Gazetteer) Resolve(location, region string) (Coordinate, bool) {
	loc := field.Norm(location)
	if c, ok := g.places[loc]; ok {
		return c, true
	}

	if c, ok := g.matchKeyword(field.Norm(region)); ok {
		return c, true
	}
	return g.matchKeyword(loc)
}

func (g *Gazetteer) matchKeyword(s string) (Coordinate, bool) {
	if s == "" {
		return Coordinate{}, false
	}
	for _, rk := range g.keywords {
		if strings.Contains(s, rk.keyword) {
			return rk.centroid, true
		}
	}
	return Coordinate{}, false
}
