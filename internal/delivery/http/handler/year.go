package handler

import (
	stderrors "errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/errors"
	"github.com/residential-history/internal/pkg/validator"
	"github.com/residential-history/internal/usecase/dto"
)

// parseYear читает ?year=. Отсутствующий год заменяется defaultYear.
func parseYear(c *fiber.Ctx, defaultYear int) (int, error) {
	var req dto.YearRequest
	if err := c.QueryParser(&req); err != nil {
		return 0, invalidQuery(c, err)
	}
	if err := validateQuery(c, &req, req.Year); err != nil {
		return 0, err
	}
	return withDefault(req.Year, defaultYear), nil
}

func parsePointsRequest(c *fiber.Ctx, defaultYear int) (dto.PointsRequest, error) {
	var req dto.PointsRequest
	if err := c.QueryParser(&req); err != nil {
		return req, invalidQuery(c, err)
	}
	if err := validateQuery(c, &req, req.Year); err != nil {
		return req, err
	}
	req.Year = withDefault(req.Year, defaultYear)
	if req.Format == "" {
		req.Format = formatJSON
	}
	return req, nil
}

// validateQuery maps a failed year rule to YEAR_OUT_OF_RANGE, anything else to INVALID_REQUEST
func validateQuery(c *fiber.Ctx, req interface{}, year int) error {
	err := validator.Validate(req)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "supported_year" {
				return yearOutOfRange(year)
			}
		}
	}
	return invalidQuery(c, err)
}

func withDefault(year, defaultYear int) int {
	if year == 0 {
		return defaultYear
	}
	return year
}

func yearOutOfRange(year int) error {
	return errors.ErrYearOutOfRange.WithDetails(map[string]interface{}{
		"year": year,
		"min":  domain.SupportedYears.Min,
		"max":  domain.SupportedYears.Max,
	})
}

func invalidQuery(c *fiber.Ctx, err error) error {
	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"query":  string(c.Request().URI().QueryString()),
		"reason": err.Error(),
	})
}
