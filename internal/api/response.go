package api

import (
	"encoding/json"
	"errors"
	"net/http"

	qcerr "github.com/amterp/qrcard/internal/errors"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response, mapping domain errors to HTTP status codes.
func Error(w http.ResponseWriter, err error) {
	JSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var notFound *qcerr.NotFoundError
	var outOfRange *qcerr.IndexOutOfRangeError
	var permutation *qcerr.InvalidPermutationError
	var validation *qcerr.ValidationError

	switch {
	case errors.As(err, &notFound), errors.As(err, &outOfRange):
		return http.StatusNotFound
	case errors.As(err, &permutation):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
