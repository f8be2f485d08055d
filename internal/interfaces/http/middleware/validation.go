package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/interfaces/http/dto"
)

// six digits, never starting with zero
var pincodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)

var setupOnce sync.Once

// SetupValidator registers the custom binding tags on gin's validator and reports
// fields by their json or form name. It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return pincodeRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
			return pricing.Audience(strings.ToLower(fl.Field().String())).IsValid()
		})
		_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
			return identity.ValidGSTIN(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return identity.ValidPhone(identity.NormalizePhone(fl.Field().String()))
		})
	})
}

// FormatValidationErrors turns binding errors into the 400 envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Malformed request body", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a binding failure as a 400
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "pincode":
		return "Must be a 6-digit postal code"
	case "audience":
		return "Must be b2c or b2b"
	case "gstin":
		return "Invalid GSTIN format"
	case "phone":
		return "Invalid phone number"
	default:
		return "Invalid value"
	}
}
