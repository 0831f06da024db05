// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newthinker/tradevision/internal/core"
)

// ErrorBody is the error payload of every JSON endpoint.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// JSON writes data as the response body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RawJSON writes an already encoded JSON document.
func RawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// Error writes an error payload. Messages of *core.Error are user-facing;
// any other error contributes its own message.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorBodyFor(err))
}

// ErrorBodyFor builds the payload for err without writing it.
func ErrorBodyFor(err error) ErrorBody {
	if err == nil {
		return ErrorBody{Error: "an internal error occurred", Code: "INTERNAL_ERROR"}
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		body := ErrorBody{Error: coreErr.Message, Code: coreErr.Code}
		if coreErr.Cause != nil {
			body.Details = coreErr.Cause.Error()
		}
		return body
	}

	return ErrorBody{Error: err.Error(), Code: "INTERNAL_ERROR"}
}
