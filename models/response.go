package models

import "hrpulse/apperrors"

// Response is the JSON envelope of every API answer. Code carries the application error
// code on failures; Errors maps field names to failed validation tags.
type Response struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Code       string            `json:"code,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func NewMessageResponse(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewErrorResponse(statusCode int, code, message string) Response {
	return Response{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

func NewValidationResponse(statusCode int, errors map[string]string) Response {
	return Response{
		StatusCode: statusCode,
		Message:    "Validation failed",
		Code:       apperrors.CodeInvalidInput,
		Errors:     errors,
	}
}

func NewDataResponse(statusCode int, message string, data interface{}) Response {
	return Response{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}
