package handler

import (
	"errors"

	"github.com/shinyyama/revenue-dashboard/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusError  = "error"
)

// Answer is how every report reaches the client: a value, or a placeholder
// saying why there is none. Query failures are never HTTP errors.
type Answer struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Value   interface{} `json:"value,omitempty"`
}

func newAnswer(value interface{}, err error) Answer {
	switch {
	case err == nil:
		return Answer{Status: StatusOK, Value: value}
	case errors.Is(err, service.ErrNoData):
		return Answer{Status: StatusNoData, Message: "No data available."}
	default:
		return Answer{Status: StatusError, Message: "Error fetching record."}
	}
}
