package dto

import (
	"time"

	"github.com/residential-history/internal/domain"
)

// PointsResponse - точки за год
type PointsResponse struct {
	Year   int               `json:"year"`
	Total  int               `json:"total"`
	Points []domain.GeoPoint `json:"points"`
}

// YearsResponse - параметры слайдера лет
type YearsResponse struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

// ReloadResponse - результат перечитывания источника
type ReloadResponse struct {
	Dataset domain.DatasetSummary `json:"dataset"`
}

// HealthResponse - состояние сервиса и его зависимостей
type HealthResponse struct {
	Status       string            `json:"status"`
	Time         time.Time         `json:"time"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
