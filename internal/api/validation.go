package api

import (
	"encoding/json" // Optional field decoding
	"reflect"       // Struct tag lookup
	"strings"       // Tag parsing

	"github.com/gin-gonic/gin/binding"       // Gin validator engine
	"github.com/go-playground/validator/v10" // Validator
)

func init() {
	// Report JSON names instead of Go field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// optional tells an absent field apart from an explicit null
type optional[T any] struct {
	Set   bool // Present in the body
	Value *T   // nil when the body said null
}

// UnmarshalJSON records presence and decodes non-null values
func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// requireText flags a missing or blank string
func requireText(verr *ValidationError, field string, v *string) {
	if v == nil {
		verr.Add(field, msgRequired)
		return
	}
	if strings.TrimSpace(*v) == "" {
		verr.Add(field, msgBlank)
	}
}

// notBlank flags a present but blank string
func notBlank(verr *ValidationError, field string, v *string) {
	if v != nil && strings.TrimSpace(*v) == "" {
		verr.Add(field, msgBlank)
	}
}
