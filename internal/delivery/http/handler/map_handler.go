package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/residential-history/internal/pkg/utils"
	"github.com/residential-history/internal/usecase"
	"github.com/residential-history/internal/usecase/dto"
	"go.uber.org/zap"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// MapHandler обрабатывает запросы карты, точек и статистики по годам
type MapHandler struct {
	mapUC  *usecase.MapUseCase
	logger *zap.Logger
}

// NewMapHandler создает новый экземпляр MapHandler
func NewMapHandler(mapUC *usecase.MapUseCase, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		mapUC:  mapUC,
		logger: logger,
	}
}

// GetMap godoc
// @Summary Get the map view for a year
// @Description Строит представление карты за год: центр, границы, маркеры (зелёный - дом, синий - квартира) и легенду
// @Tags Map
// @Produce json
// @Param year query int false "Год 1989-2017" default(2000)
// @Success 200 {object} utils.SuccessResponse{data=domain.MapView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/map [get]
func (h *MapHandler) GetMap(c *fiber.Ctx) error {
	year, err := parseYear(c, h.mapUC.DefaultYear())
	if err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	view, err := h.mapUC.GetMap(c.Context(), year)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, view, &utils.Meta{
		Total:    len(view.Markers),
		Year:     year,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetPoints godoc
// @Summary Get residential points for a year
// @Description Возвращает точки (id, координаты, тип жилья) за год в порядке конвейера. format=csv отдаёт CSV.
// @Tags Map
// @Produce json
// @Produce text/csv
// @Param year query int false "Год 1989-2017" default(2000)
// @Param format query string false "json или csv" default(json)
// @Success 200 {object} utils.SuccessResponse{data=dto.PointsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/points [get]
func (h *MapHandler) GetPoints(c *fiber.Ctx) error {
	req, err := parsePointsRequest(c, h.mapUC.DefaultYear())
	if err != nil {
		return utils.SendError(c, err)
	}

	points, err := h.mapUC.GetPoints(c.Context(), req.Year)
	if err != nil {
		return utils.SendError(c, err)
	}

	if req.Format == formatCSV {
		var buf bytes.Buffer
		if err := utils.WritePointsCSV(&buf, points); err != nil {
			h.logger.Error("Failed to write points CSV", zap.Error(err))
			return utils.SendError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="points_%d.csv"`, req.Year))
		return c.Send(buf.Bytes())
	}

	return utils.SendSuccess(c, dto.PointsResponse{
		Year:   req.Year,
		Total:  len(points),
		Points: points,
	}, &utils.Meta{Total: len(points), Year: req.Year})
}

// GetYears godoc
// @Summary Get the selectable year range
// @Description Параметры слайдера: 1989-2017, шаг 1, год по умолчанию
// @Tags Map
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.YearsResponse}
// @Router /api/v1/years [get]
func (h *MapHandler) GetYears(c *fiber.Ctx) error {
	years := h.mapUC.Years()
	return utils.SendSuccess(c, dto.YearsResponse{
		Min:     years.Min,
		Max:     years.Max,
		Step:    1,
		Default: h.mapUC.DefaultYear(),
	}, nil)
}

// GetStats godoc
// @Summary Get per-year statistics
// @Description Количество точек по типам жилья, счётчики отброшенных строк конвейера и покрытие bounding box
// @Tags Map
// @Produce json
// @Param year query int false "Год 1989-2017" default(2000)
// @Success 200 {object} utils.SuccessResponse{data=domain.YearStats}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *MapHandler) GetStats(c *fiber.Ctx) error {
	year, err := parseYear(c, h.mapUC.DefaultYear())
	if err != nil {
		return utils.SendError(c, err)
	}

	stats, err := h.mapUC.GetStats(c.Context(), year)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, stats, &utils.Meta{Total: stats.Total, Year: year})
}

// Reload godoc
// @Summary Reload source tables
// @Description Перечитывает исходные таблицы и заменяет мемоизированный результат. 409 если мемоизация выключена.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.ReloadResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/admin/reload [post]
func (h *MapHandler) Reload(c *fiber.Ctx) error {
	summary, err := h.mapUC.Reload(c.Context())
	if err != nil {
		h.logger.Warn("Reload failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	h.logger.Info("Source tables reloaded",
		zap.String("source", summary.Source),
		zap.Int("coordinate_rows", summary.CoordinateRows),
		zap.Int("trajectory_rows", summary.TrajectoryRows),
	)

	return utils.SendSuccess(c, dto.ReloadResponse{Dataset: *summary}, nil)
}
