// Package api holds the JSON envelope shared by all storelens handlers:
// {"data": ...} on success and {"error": ..., "code": ...} on failure.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the failure envelope. Code carries the domain error code
// when there is one.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("write response: %v", err)
		}
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// CodePayloadTooLarge is sent with every 413 response.
const CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

// TooLarge writes the 413 response for a body over limit bytes.
func TooLarge(w http.ResponseWriter, limit int64) {
	JSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
		Error: fmt.Sprintf("request body exceeds %d bytes", limit),
		Code:  CodePayloadTooLarge,
	})
}

// DecodeJSON decodes the request body into v. On failure it writes the error
// response itself and returns false: 413 when the body limit was hit, 400
// otherwise.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		TooLarge(w, tooLarge.Limit)
		return false
	}
	Error(w, http.StatusBadRequest, "invalid request body")
	return false
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if errors.Is(err, domain.ErrStorageNotConfigured) {
		return http.StatusServiceUnavailable
	}

	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeInvalidOperation:
		// the resource exists but is not in a usable state yet, e.g. an
		// export that is still pending
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the error response for err. Errors that are not domain
// errors are logged and reported as a generic internal error so database and
// storage details never reach the client.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) || status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: domain.ErrCodeInternalError})
		return
	}

	JSON(w, status, ErrorResponse{Error: domainErr.Error(), Code: domainErr.Code})
}
