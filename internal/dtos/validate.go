package dtos

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/models"
)

var registerOnce sync.Once

// RegisterValidators installs the JobX enum tags on gin's validator engine.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register adds the custom tags to v and reports fields by their json name.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	v.RegisterValidation("jobtype", enumValidator(models.IsJobType))
	v.RegisterValidation("workmode", enumValidator(models.IsWorkMode))
	v.RegisterValidation("tier", enumValidator(models.IsTier))
	v.RegisterValidation("appstatus", enumValidator(models.IsApplicationStatus))
	v.RegisterValidation("notblank", ValidateNotBlank)
}

func enumValidator(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}
}

// ValidateNotBlank rejects strings that are empty after trimming.
func ValidateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// BindError converts a gin binding failure into an apperr.ValidationError.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if apperr.As(err, &verrs) {
		out := &apperr.ValidationError{}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, apperr.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if apperr.As(err, &typeErr) {
		return apperr.Invalid(typeErr.Field, "must be a "+typeErr.Type.String())
	}
	return apperr.Invalid("body", "malformed request body")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "jobtype":
		return "must be one of: " + strings.Join(models.JobTypes, ", ")
	case "workmode":
		return "must be one of: " + strings.Join(models.WorkModes, ", ")
	case "tier":
		return "must be one of: " + strings.Join(models.Tiers, ", ")
	case "appstatus":
		return "must be one of: " + strings.Join(models.ApplicationStatuses, ", ")
	default:
		return "is invalid"
	}
}
