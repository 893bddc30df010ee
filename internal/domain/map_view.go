package domain

// MapView - готовое к отображению представление карты за один год
type MapView struct {
	Year    int         `json:"year"`
	Center  Point       `json:"center"`
	Bounds  BoundingBox `json:"bounds"`
	Zoom    int         `json:"zoom"`
	Markers []Marker    `json:"markers"`
	Legend  *Legend     `json:"legend,omitempty"`
}

// Marker is a filled circle marker.
type Marker struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Radius      float64  `json:"radius"`
	Color       string   `json:"color"`
	FillColor   string   `json:"fill_color"`
	FillOpacity float64  `json:"fill_opacity"`
	Tooltip     string   `json:"tooltip"`
	Category    Category `json:"category"`
}

// Legend is a single fixed overlay, not attached to any marker.
type Legend struct {
	Title   string        `json:"title"`
	Entries []LegendEntry `json:"entries"`
}

type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}
