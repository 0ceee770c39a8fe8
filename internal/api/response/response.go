// Package response writes the JSON envelopes every API endpoint returns.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/holdings/internal/core"
)

// requestIDHeader is set on the response by the logging middleware before
// handlers run.
const requestIDHeader = "X-Request-ID"

// Meta accompanies every successful payload.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Envelope wraps a view result.
type Envelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail is the error body. Code is one of the core error codes, or
// INTERNAL_ERROR for anything else.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorEnvelope wraps an ErrorDetail.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes data inside the success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{
		Data: data,
		Meta: Meta{
			Timestamp: time.Now().UTC(),
			RequestID: w.Header().Get(requestIDHeader),
		},
	})
}

// Error writes err inside the error envelope. Errors outside the core
// taxonomy are reported without their message.
func Error(w http.ResponseWriter, status int, err error) {
	write(w, status, ErrorEnvelope{Error: detailOf(err)})
}

// Fail writes err with the status matching its code.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

// StatusFor maps core error codes to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidQuarter),
		errors.Is(err, core.ErrInvalidWindow),
		errors.Is(err, core.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrMissingData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func detailOf(err error) ErrorDetail {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		return ErrorDetail{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
	}
	d := ErrorDetail{Code: coreErr.Code, Message: coreErr.Message}
	if coreErr.Cause != nil {
		d.Cause = coreErr.Cause.Error()
	}
	return d
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
