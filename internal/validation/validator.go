// Package validation runs the declarative rules attached to request types
// and reports every violated field at once.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"catapi/internal/errors"
	"catapi/internal/geo"
)

// DateLayout is the plain calendar date accepted for birthdates.
const DateLayout = "2006-01-02"

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a validator with the custom rules registered.
func New() *Validator {
	cv := &Validator{validate: validator.New(), now: time.Now}

	cv.validate.RegisterTagNameFunc(wireName)
	_ = cv.validate.RegisterValidation("birthdate", cv.validBirthdate)
	_ = cv.validate.RegisterValidation("latlng", validLatLng)
	cv.validate.RegisterStructValidation(validLocation, geo.Location{})

	return cv
}

// Validate returns nil or a BadInput error listing every violation.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.BadRequest(err.Error())
	}
	violations := make([]errors.FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, errors.FieldViolation{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return errors.BadInput(violations)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (cv *Validator) validBirthdate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	t, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !t.After(cv.now())
}

func validLatLng(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := geo.ParsePoint(fl.Field().String())
	return err == nil
}

func validLocation(sl validator.StructLevel) {
	loc := sl.Current().Interface().(geo.Location)
	if loc.Type != geo.TypePoint {
		sl.ReportError(loc.Type, "type", "Type", "point", "")
	}
	if len(loc.Coordinates) != 2 || !loc.Point().InRange() {
		sl.ReportError(loc.Coordinates, "coordinates", "Coordinates", "lnglat", "")
	}
}

// wireName names fields after the tag clients actually send. A field hidden
// from JSON is still named by its path or query tag.
func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		return name
	}
	return fld.Name
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "email":
		return "Must be a valid email"
	case "uuid":
		return "Must be a valid id"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "birthdate":
		return "Must be a date (YYYY-MM-DD) that is not in the future"
	case "latlng":
		return "Must be a lat,lng pair"
	case "point":
		return "Must be Point"
	case "lnglat":
		return "Must be [lng, lat] within range"
	default:
		return "Invalid value"
	}
}
