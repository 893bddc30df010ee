package domain

import "github.com/paulmach/orb"

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox - прямоугольный географический фильтр, границы включительно
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BucharestBBox covers the Bucharest metro area.
var BucharestBBox = BoundingBox{
	MinLat: 44.310548,
	MinLon: 25.900933,
	MaxLat: 44.660081,
	MaxLon: 26.283315,
}

// Bound returns the box as an orb.Bound (X is longitude, Y is latitude).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Contains reports whether the point lies inside the box. Edges and corners count as inside.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	c := b.Bound().Center()
	return Point{Lat: c.Lat(), Lon: c.Lon()}
}

// Valid reports whether min corners are not greater than max corners.
func (b BoundingBox) Valid() bool {
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// YearRange - допустимый диапазон лет, включительно
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SupportedYears is the range covered by both source tables.
var SupportedYears = YearRange{Min: 1989, Max: 2017}

// DefaultYear is the year shown before the user moves the selector.
const DefaultYear = 2000

func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Years lists every year of the range in ascending order.
func (r YearRange) Years() []int {
	if r.Max < r.Min {
		return nil
	}
	years := make([]int, 0, r.Max-r.Min+1)
	for y := r.Min; y <= r.Max; y++ {
		years = append(years, y)
	}
	return years
}
