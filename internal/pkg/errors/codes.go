package errors

import "net/http"

var (
	ErrDataUnavailable = New(
		"DATA_UNAVAILABLE",
		"Source data is missing or unreadable",
		http.StatusServiceUnavailable,
	)

	ErrMalformedInput = New(
		"MALFORMED_INPUT",
		"Source data lacks the required identifier or columns",
		http.StatusInternalServerError,
	)

	ErrYearOutOfRange = New(
		"YEAR_OUT_OF_RANGE",
		"Year is outside the supported range",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrMemoDisabled = New(
		"MEMO_DISABLED",
		"Dataset memoization is disabled",
		http.StatusConflict,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
