package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fulldump/box"

	"etf-watcher/internal/model"
	"etf-watcher/internal/store"
	"etf-watcher/internal/updater"
)

// Sentinel errors the renderer maps to HTTP statuses. Handlers wrap them
// with fmt.Errorf("%w: ...", err) to carry detail.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNoData          = errors.New("no data")
	ErrInvalidInput    = errors.New("invalid input")
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownProvider),
		errors.Is(err, ErrNoData),
		errors.Is(err, updater.ErrTickerNotFound),
		errors.Is(err, box.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, box.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, model.ErrNoYieldData):
		return http.StatusBadRequest
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
