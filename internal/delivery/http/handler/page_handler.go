package handler

import (
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/utils"
	"github.com/residential-history/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageData - данные для шаблона страницы карты
type PageData struct {
	Title      string
	ShowSlider bool
	Years      domain.YearRange
	Year       int
	View       *domain.MapView
}

// PageHandler - хендлер HTML страниц: слайдер с картой и карта одного года
type PageHandler struct {
	mapUC     *usecase.MapUseCase
	templates *template.Template
}

// NewPageHandler - создание хендлера страниц из встроенных шаблонов
func NewPageHandler(mapUC *usecase.MapUseCase) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		mapUC:     mapUC,
		templates: tmpl,
	}, nil
}

// Index - страница со слайдером лет. Смена года перерисовывает карту через /api/v1/map.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	return h.render(c, true)
}

// Map - карта одного года без слайдера, /map?year=N
func (h *PageHandler) Map(c *fiber.Ctx) error {
	return h.render(c, false)
}

func (h *PageHandler) render(c *fiber.Ctx, showSlider bool) error {
	year, err := parseYear(c, h.mapUC.DefaultYear())
	if err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.mapUC.GetMap(c.Context(), year)
	if err != nil {
		return utils.SendError(c, err)
	}

	data := PageData{
		Title:      "Residential History of Bucharest",
		ShowSlider: showSlider,
		Years:      h.mapUC.Years(),
		Year:       year,
		View:       view,
	}

	c.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
	return h.templates.ExecuteTemplate(c.Response().BodyWriter(), "base.html", data)
}
