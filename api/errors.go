package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	// Message is a string, or a list of strings for validation failures.
	Message any `json:"message"`
	Status  int `json:"status"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		verrs   validator.ValidationErrors
		syntax  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
		numErr  *strconv.NumError
	)
	switch {
	case db.IsInvalidRequest(err), db.IsDuplicateKey(err), db.IsForeignKeyViolation(err), db.IsCheckViolation(err):
		return http.StatusBadRequest
	case errors.As(err, &verrs), errors.As(err, &syntax), errors.As(err, &typeErr), errors.As(err, &numErr):
		return http.StatusBadRequest
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), isUnknownField(err):
		return http.StatusBadRequest
	case db.IsNotFound(err):
		return http.StatusNotFound
	case db.IsUnauthorized(err), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err. Server errors never
// leak their cause.
func messageFor(err error, status int) any {
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = validationMessage(fe)
		}
		return msgs
	}

	var dbErr *db.DBError
	if errors.As(err, &dbErr) {
		if dbErr.Cause == nil && dbErr.Message != "" {
			return dbErr.Message
		}
		switch {
		case db.IsDuplicateKey(err):
			return "duplicate entry"
		case db.IsForeignKeyViolation(err):
			return "referenced record does not exist"
		case db.IsCheckViolation(err):
			return "value out of range"
		}
		return http.StatusText(status)
	}

	if errors.Is(err, io.EOF) {
		return "request body required"
	}
	return err.Error()
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "email", "url", "lowercase":
		return fmt.Sprintf("%s must be a valid %s", field, fe.Tag())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// isUnknownField matches the decoder error raised for undeclared JSON fields.
func isUnknownField(err error) bool {
	return strings.HasPrefix(err.Error(), "json: unknown field ")
}

// abortWithError renders err and stops the handler chain. Server errors are
// attached to the context so the request logger records them.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{
		Message: messageFor(err, status),
		Status:  status,
	}})
}

// badRequest wraps a request-shape problem so it renders as a 400.
func badRequest(format string, args ...any) error {
	return db.Invalidf(format, args...)
}
