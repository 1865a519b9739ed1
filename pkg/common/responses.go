package common

import (
	"encoding/json"
	"net/http"

	apperrors "smartproduct-backend/pkg/errors"
)

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondJSON sends a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondAppError maps an application error to the wire error shape. Errors
// that did not come through pkg/errors are reported as a generic BadRequest.
func RespondAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewValidation(apperrors.KindBadRequest, err.Error())
	}
	RespondJSON(w, appErr.HTTPStatus, ErrorBody{
		Code:    appErr.HTTPStatus,
		Error:   string(appErr.Kind),
		Message: appErr.Message,
	})
}

// RespondError sends an error response with an explicit status and kind.
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, ErrorBody{
		Code:    status,
		Error:   kind,
		Message: message,
	})
}

// ParseJSONBody parses a JSON request body with a size limit.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}
