package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// StudentIDPattern is the campus student number: enrolment year, dash, five digits.
var StudentIDPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{5}$`)

// New returns a validator with the service's custom tags registered:
//
//	studentid  YYYY-NNNNN
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("studentid", func(fl validator.FieldLevel) bool {
		return StudentIDPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register studentid: %v", err))
	}
	return v
}
