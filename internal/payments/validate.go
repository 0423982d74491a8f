package payments

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var txRefSafe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match what the client sent
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// rideId ends up inside tx_ref, which the gateway restricts to these characters
	validate.RegisterValidation("txrefsafe", func(fl validator.FieldLevel) bool {
		return txRefSafe.MatchString(fl.Field().String())
	})
}

// Validate checks a request the way the relay does before any upstream call.
func Validate(req PaymentRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "amount" {
			return "is required and must be a positive number"
		}
		return "is required"
	case "gt":
		return "must be a positive number"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "txrefsafe":
		return "may only contain letters, digits, '-', '_' and '.'"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
