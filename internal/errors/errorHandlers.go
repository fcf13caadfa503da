package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeBadRequest          ErrorType = "BAD_REQUEST"
	ErrorTypeUnauthenticated     ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden           ErrorType = "FORBIDDEN"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeInvalidPlan         ErrorType = "INVALID_PLAN"
	ErrorTypeQuotaExhausted      ErrorType = "QUOTA_EXHAUSTED"
	ErrorTypeDuplicateName       ErrorType = "DUPLICATE_NAME"
	ErrorTypeUpstreamMalformed   ErrorType = "UPSTREAM_MALFORMED"
	ErrorTypeUpstreamUnavailable ErrorType = "UPSTREAM_UNAVAILABLE"
	ErrorTypeInternalServerError ErrorType = "INTERNAL_SERVER_ERROR"
)

// Sentinels for errors.Is checks. CustomError.Is matches on Type, so any
// error built by the constructors below compares equal to its sentinel.
var (
	ErrUnauthenticated     = &CustomError{Type: ErrorTypeUnauthenticated}
	ErrInvalidPlan         = &CustomError{Type: ErrorTypeInvalidPlan}
	ErrQuotaExhausted      = &CustomError{Type: ErrorTypeQuotaExhausted}
	ErrDuplicateName       = &CustomError{Type: ErrorTypeDuplicateName}
	ErrUpstreamMalformed   = &CustomError{Type: ErrorTypeUpstreamMalformed}
	ErrUpstreamUnavailable = &CustomError{Type: ErrorTypeUpstreamUnavailable}
	ErrNotFound            = &CustomError{Type: ErrorTypeNotFound}
	ErrBadRequest          = &CustomError{Type: ErrorTypeBadRequest}
	ErrForbidden           = &CustomError{Type: ErrorTypeForbidden}
)

// CustomError represents a custom error with associated HTTP status code and type
type CustomError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Internal   error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message == "" {
		return string(e.Type)
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Internal
}

func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Type == e.Type
}

// newError creates a new CustomError
func newError(errType ErrorType, message string, statusCode int, internal error) *CustomError {
	return &CustomError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// New400Error creates a new bad request error
func New400Error(message string) *CustomError {
	return newError(ErrorTypeBadRequest, message, http.StatusBadRequest, nil)
}

// New401Error creates a new unauthenticated error
func New401Error() *CustomError {
	return newError(ErrorTypeUnauthenticated, "Authentication required", http.StatusUnauthorized, nil)
}

// New403Error creates a new forbidden error
func New403Error() *CustomError {
	return newError(ErrorTypeForbidden, "Access forbidden", http.StatusForbidden, nil)
}

// New404Error creates a new not found error
func New404Error(message string) *CustomError {
	return newError(ErrorTypeNotFound, message, http.StatusNotFound, nil)
}

func NewInvalidPlanError(plan string) *CustomError {
	return newError(ErrorTypeInvalidPlan, "Invalid subscription plan: "+plan, http.StatusBadRequest, nil)
}

func NewQuotaExhaustedError() *CustomError {
	return newError(ErrorTypeQuotaExhausted, "No generations left. Please upgrade your plan.", http.StatusPaymentRequired, nil)
}

func NewDuplicateNameError(name string) *CustomError {
	return newError(ErrorTypeDuplicateName, "Flashcard collection with the same name already exists: "+name, http.StatusConflict, nil)
}

func NewUpstreamMalformedError(message string, internal error) *CustomError {
	return newError(ErrorTypeUpstreamMalformed, message, http.StatusBadGateway, internal)
}

func NewUpstreamUnavailableError(message string, internal error) *CustomError {
	return newError(ErrorTypeUpstreamUnavailable, message, http.StatusServiceUnavailable, internal)
}

// New500Error creates a new internal server error
func New500Error(internal error) *CustomError {
	return newError(ErrorTypeInternalServerError, "An unexpected error occurred", http.StatusInternalServerError, internal)
}

// HandleError handles the custom error and sends an appropriate JSON response
func HandleError(c *gin.Context, err error) {
	var customErr *CustomError
	if !stderrors.As(err, &customErr) || customErr.StatusCode == 0 {
		customErr = New500Error(err)
	}

	if customErr.StatusCode >= http.StatusInternalServerError {
		logger := zerolog.Ctx(c.Request.Context())
		if logger.GetLevel() == zerolog.Disabled {
			logger = &log.Logger
		}
		internal := customErr.Internal
		if internal == nil {
			internal = customErr
		}
		logger.Error().
			Err(internal).
			Str("type", string(customErr.Type)).
			Str("url", c.Request.URL.String()).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(customErr.StatusCode, gin.H{
		"error": gin.H{
			"type":    customErr.Type,
			"message": customErr.Message,
		},
	})
}
