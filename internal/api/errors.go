package api

import (
	"encoding/json" // JSON decode errors
	"errors"        // Error inspection
	"fmt"           // Message formatting
	"io"            // Empty body detection
	"net/http"      // HTTP status codes
	"strings"       // Namespace trimming

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging
)

// Common field messages
const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgNegative = "Ensure this value is greater than or equal to 0."
)

// ValidationError carries field-level messages. It is always raised before any write.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message against a field
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns nil when no field failed
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// fieldError builds a single-field validation error
func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// invalidPK is the message for a reference to a row that does not exist
func invalidPK(id uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// NotFoundError is returned when the addressed row does not exist
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// PermissionError is returned when an authenticated caller may not act
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// respondError maps an error onto its HTTP category
func respondError(c *gin.Context, err error) {
	var verr *ValidationError
	var nf *NotFoundError
	var perr *PermissionError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusForbidden, gin.H{"error": perr.Message})
	default:
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes and validates the body, translating failures into field messages
func bindJSON(c *gin.Context, dest any) error {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return nil
	}
	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			verr.Add(fieldPath(fe), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		verr.Add(typeErr.Field, fmt.Sprintf("Expected a %s.", typeErr.Type.String()))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF):
		verr.Add("non_field_errors", "Malformed JSON body.")
	default:
		verr.Add("non_field_errors", err.Error())
	}
	return verr
}

// fieldPath drops the struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", deref(fe.Value()))
	case "email":
		return "Enter a valid email address."
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	default:
		return "Invalid value."
	}
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p != nil {
			return *p
		}
	}
	return v
}
