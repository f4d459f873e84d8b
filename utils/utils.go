package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"hrpulse/apperrors"
	"hrpulse/models"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// DecodeAndValidate decodes the request body into v and validates it. On failure the
// response has already been written.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleErrorResponse(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid request body: "+err.Error())
		return err
	}
	if err := Validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			HandleErrorResponse(w, http.StatusBadRequest, apperrors.CodeInvalidInput, err.Error())
			return err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = e.Tag()
		}
		HandleValidationResponse(w, http.StatusBadRequest, errorMessages)
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, response models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleMessageResponse writes a plain message envelope.
func HandleMessageResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, models.NewMessageResponse(statusCode, message))
}

func HandleErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, models.NewErrorResponse(statusCode, code, message))
}

// HandleValidationResponse handles validation errors response for struct validation
func HandleValidationResponse(w http.ResponseWriter, statusCode int, validationErrors map[string]string) {
	writeJSON(w, statusCode, models.NewValidationResponse(statusCode, validationErrors))
}

// HandleDataResponse handles success responses with data
func HandleDataResponse(w http.ResponseWriter, message string, data interface{}, statusCode int) {
	writeJSON(w, statusCode, models.NewDataResponse(statusCode, message, data))
}

// StatusFor maps an application error code to the HTTP status answered for it.
func StatusFor(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeDisposed:
		return http.StatusGone
	case apperrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.CodeBackendFailure, apperrors.CodeFetchFailed, apperrors.CodeReportFailed, apperrors.CodeDatabaseError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// HandleError answers err with the status and code of its AppError. Causes of internal
// failures are not echoed to the client.
func HandleError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := StatusFor(code)

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	HandleErrorResponse(w, status, code, message)
}
