package utils

import (
	"github.com/golang/geo/s2"
	"github.com/residential-history/internal/domain"
)

const earthRadiusKm = 6371.0

// BoundingBoxAreaSqKm вычисляет площадь прямоугольника на сфере в квадратных километрах
func BoundingBoxAreaSqKm(b domain.BoundingBox) float64 {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(b.MinLat, b.MinLon)).
		AddPoint(s2.LatLngFromDegrees(b.MaxLat, b.MaxLon))
	return rect.Area() * earthRadiusKm * earthRadiusKm
}

// Coverage собирает статистику покрытия для bounding box
func Coverage(b domain.BoundingBox) domain.CoverageStats {
	center := b.Center()
	return domain.CoverageStats{
		BBoxMinLat: b.MinLat,
		BBoxMaxLat: b.MaxLat,
		BBoxMinLon: b.MinLon,
		BBoxMaxLon: b.MaxLon,
		CenterLat:  center.Lat,
		CenterLon:  center.Lon,
		AreaSqKm:   BoundingBoxAreaSqKm(b),
	}
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
