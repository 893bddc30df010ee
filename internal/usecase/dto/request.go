package dto

// YearRequest - выбор года на карте. Year 0 означает год по умолчанию.
type YearRequest struct {
	Year int `query:"year" validate:"omitempty,supported_year"`
}

// PointsRequest - запрос точек за год
type PointsRequest struct {
	Year   int    `query:"year" validate:"omitempty,supported_year"`
	Format string `query:"format" validate:"omitempty,oneof=json csv"`
}
