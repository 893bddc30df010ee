package usecase

import (
	"fmt"

	"github.com/residential-history/internal/domain"
)

const (
	defaultZoom         = 12
	markerFillOpacity   = 0.7
	defaultMarkerRadius = 3
)

// RenderOptions - параметры отображения, различавшиеся между вариантами карты
type RenderOptions struct {
	MarkerRadius float64
	ShowLegend   bool
}

// Render строит представление карты: центр и границы по bounding box,
// один круглый маркер на точку и, если включено, одну легенду.
// Входные точки не изменяются.
func Render(points []domain.GeoPoint, bbox domain.BoundingBox, year int, opts RenderOptions) *domain.MapView {
	radius := opts.MarkerRadius
	if radius <= 0 {
		radius = defaultMarkerRadius
	}

	view := &domain.MapView{
		Year:    year,
		Center:  bbox.Center(),
		Bounds:  bbox,
		Zoom:    defaultZoom,
		Markers: make([]domain.Marker, 0, len(points)),
	}

	for _, p := range points {
		color := p.Category.Color()
		view.Markers = append(view.Markers, domain.Marker{
			Lat:         p.Lat,
			Lon:         p.Lon,
			Radius:      radius,
			Color:       color,
			FillColor:   color,
			FillOpacity: markerFillOpacity,
			Tooltip:     fmt.Sprintf("ID: %s, Year: %d, Type: %d", p.ID, p.Year, p.Category),
			Category:    p.Category,
		})
	}

	if opts.ShowLegend {
		view.Legend = legend(year)
	}

	return view
}

func legend(year int) *domain.Legend {
	return &domain.Legend{
		Title: fmt.Sprintf("Legend - Year %d", year),
		Entries: []domain.LegendEntry{
			{Color: domain.CategoryHouse.Color(), Label: domain.CategoryHouse.Label(), Icon: "🏡"},
			{Color: domain.CategoryApartment.Color(), Label: domain.CategoryApartment.Label(), Icon: "🏢"},
		},
	}
}
