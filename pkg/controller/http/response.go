package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/usecase"
	"github.com/secmon-lab/moirai/pkg/utils/errutil"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Warn("failed to encode response", "error", err.Error())
	}
}

func writeData(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{Success: true, Data: data})
}

func writeMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, envelope{Success: true, Message: message})
}

// statusOf maps use case errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTeamNotFound),
		errors.Is(err, usecase.ErrMemberNotFound),
		errors.Is(err, usecase.ErrQueryNotFound),
		errors.Is(err, usecase.ErrReportNotFound),
		errors.Is(err, usecase.ErrHolidayNotFound),
		errors.Is(err, usecase.ErrLeaveNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrTrackerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}

func badRequest(msg string) error {
	return goerr.Wrap(usecase.ErrInvalidInput, msg)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid request body", goerr.V("reason", err.Error()))
	}
	return nil
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, badRequest(name+" is required")
	}
	t, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, goerr.Wrap(usecase.ErrInvalidInput, "invalid "+name+" date", goerr.V(name, value))
	}
	return t, nil
}

// parseRange reads the required start and end query parameters
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, goerr.Wrap(usecase.ErrInvalidInput, "end date is before start date",
			goerr.V("start", start.Format(model.DateLayout)),
			goerr.V("end", end.Format(model.DateLayout)))
	}
	return start, end, nil
}

func parseDate(name, value string) (time.Time, error) {
	t, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, goerr.Wrap(usecase.ErrInvalidInput, "invalid "+name+" date", goerr.V(name, value))
	}
	return t, nil
}
