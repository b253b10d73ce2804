package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/gatehouse/internal/apperr"
)

// validate reports field names by their JSON tag so that messages match the
// request body the client sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v, reading at most limit bytes.
// Failures are returned as structured errors: 413 when the body is too large,
// 400 when it is missing or malformed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperr.BadRequest("Request body is required")
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.PayloadTooLarge(
				fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit),
			).WithCause(err)
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("Request body is required").WithCause(err)
		default:
			return apperr.BadRequest("Invalid request format").WithCause(err)
		}
	}
	return nil
}

// ValidateRequest validates v using struct tags, or its own Validate method when it
// has one. A failure is returned as a 400 whose message names the first invalid field.
func ValidateRequest(v interface{}) error {
	var err error
	if self, ok := v.(interface{ Validate() error }); ok {
		err = self.Validate()
	} else {
		err = validate.Struct(v)
	}
	if err == nil {
		return nil
	}
	if apperr.IsStructured(err) {
		return err
	}
	return apperr.BadRequest(SanitizeValidationError(err)).WithCause(err)
}

// SanitizeValidationError turns a validation failure into a client-safe message.
// Validator internals (struct names, Go types) never appear in the result.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation failed"
	}

	fe := fieldErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), tagMessage(fe))
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "jwt":
		return "must be a valid token"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "invalid value"
	}
}
