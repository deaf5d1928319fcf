package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidMethod    ErrorCode = "INVALID_METHOD"
	ErrCodeInvalidFrequency ErrorCode = "INVALID_FREQUENCY"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodePastDate         ErrorCode = "PAST_DATE_REJECTED"
	ErrCodeInvalidExpiry    ErrorCode = "INVALID_EXPIRY"
	ErrCodeInvalidCardInput ErrorCode = "INVALID_CARD_INPUT"

	ErrCodeCardTooShort      ErrorCode = "CARD_TOO_SHORT"
	ErrCodeUnknownBin        ErrorCode = "UNKNOWN_BIN"
	ErrCodeInvalidCardLength ErrorCode = "INVALID_CARD_LENGTH"
	ErrCodeChecksumFailed    ErrorCode = "CHECKSUM_FAILED"

	ErrCodePaymentNotFound      ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodeCardNotFound         ErrorCode = "CARD_NOT_FOUND"
	ErrCodeDebtorNotFound       ErrorCode = "DEBTOR_NOT_FOUND"
	ErrCodeInvalidPaymentState  ErrorCode = "INVALID_PAYMENT_STATE"
	ErrCodeStalePaymentState    ErrorCode = "STALE_PAYMENT_STATE"
	ErrCodeGatewayDeclined      ErrorCode = "GATEWAY_DECLINED"
	ErrCodeGatewayUnavailable   ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeInvalidRemittanceArg ErrorCode = "INVALID_REMITTANCE_ARG"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewExternalError covers outcomes owned by the payment gateway: business
// declines map to 422, transport failures to 502.
func NewExternalError(message string, code ErrorCode, statusCode int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

var (
	ErrPaymentNotFound     = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrCardNotFound        = NewNotFoundError("Stored card not found", ErrCodeCardNotFound)
	ErrDebtorNotFound      = NewNotFoundError("Debtor not found", ErrCodeDebtorNotFound)
	ErrInvalidPaymentState = NewConflictError("payment status does not permit this transition", ErrCodeInvalidPaymentState)
	ErrStalePaymentState   = NewConflictError("payment was modified concurrently, transition skipped", ErrCodeStalePaymentState)
	ErrGatewayUnavailable  = NewExternalError("payment gateway unavailable", ErrCodeGatewayUnavailable, http.StatusBadGateway)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
