package domain

// Category - код типа жилья
type Category int

const (
	CategoryUnknown   Category = 0
	CategoryHouse     Category = 1
	CategoryApartment Category = 2
)

// Valid reports whether the code is one of the displayed categories.
func (c Category) Valid() bool {
	return c == CategoryHouse || c == CategoryApartment
}

// Color is the marker color of the category.
func (c Category) Color() string {
	if c == CategoryHouse {
		return "green"
	}
	return "blue"
}

func (c Category) Label() string {
	switch c {
	case CategoryHouse:
		return "House"
	case CategoryApartment:
		return "Apartment"
	default:
		return "Unknown"
	}
}

// GeoPoint - точка на карте для одного объекта в одном году.
// Пересчитывается при каждом выборе года и никуда не сохраняется.
type GeoPoint struct {
	ID       string   `json:"id"`
	Year     int      `json:"year"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Category Category `json:"category"`
}

// PipelineStats counts rows surviving each pipeline step.
type PipelineStats struct {
	Year               int `json:"year"`
	Candidates         int `json:"candidates"`
	TrajectoryRows     int `json:"trajectory_rows"`
	DroppedYearLabels  int `json:"dropped_year_labels"`
	CoercedCategories  int `json:"coerced_categories"`
	Joined             int `json:"joined"`
	DroppedNullCoords  int `json:"dropped_null_coords"`
	DroppedCategory    int `json:"dropped_category"`
	DroppedOutsideBBox int `json:"dropped_outside_bbox"`
	Points             int `json:"points"`
}

// YearStats - агрегированная статистика по году
type YearStats struct {
	Year       int            `json:"year"`
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	Pipeline   PipelineStats  `json:"pipeline"`
	Coverage   CoverageStats  `json:"coverage"`
	Dataset    DatasetSummary `json:"dataset"`
}

// CoverageStats статистика покрытия территории
type CoverageStats struct {
	BBoxMinLat float64 `json:"bbox_min_lat"`
	BBoxMaxLat float64 `json:"bbox_max_lat"`
	BBoxMinLon float64 `json:"bbox_min_lon"`
	BBoxMaxLon float64 `json:"bbox_max_lon"`
	CenterLat  float64 `json:"center_lat"`
	CenterLon  float64 `json:"center_lon"`
	AreaSqKm   float64 `json:"area_sq_km"`
}
