package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrorKind is the closed set of failure classes clients can branch on.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInternal     ErrorKind = "internal"
)

// AppError carries a kind and a client-safe message alongside the cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError {
	return newAppError(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return newAppError(KindConflict, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return newAppError(KindForbidden, format, args...)
}

// Internal wraps an unexpected failure; only message reaches the client.
func Internal(err error, format string, args ...any) *AppError {
	e := newAppError(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return KindNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return KindConflict
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// FromMongo maps driver errors for the named entity onto the taxonomy.
func FromMongo(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound("%s %s not found", entity, id)
	case mongo.IsDuplicateKeyError(err):
		return &AppError{Kind: KindConflict, Message: entity + " already exists", Err: err}
	default:
		var appErr *AppError
		if errors.As(err, &appErr) {
			return err
		}
		return Internal(err, "failed to access %s", entity)
	}
}

func statusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse wraps ErrorBody under "error".
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// RespondError writes err using its kind. Internal causes are logged, not returned.
func RespondError(c *gin.Context, err error) {
	kind := KindOf(err)
	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if kind == KindInternal {
		GetLogger().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		if appErr == nil {
			message = "internal server error"
		}
	}
	c.AbortWithStatusJSON(statusFor(kind), ErrorResponse{Error: ErrorBody{Code: kind, Message: message}})
}

// ErrorHandler is a middleware that turns panics into internal error responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", rec))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: ErrorBody{Code: KindInternal, Message: "An unexpected error occurred. Please try again later."},
				})
			}
		}()
		c.Next()
	}
}
