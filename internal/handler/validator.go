package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-ticket-booking/internal/apperr"
)

// Validator adapts go-playground/validator to echo.Validator.  Failures
// come back as an apperr Validation error whose fields are keyed by the
// JSON name of the offending field.
type Validator struct {
    v *validator.Validate
}

// NewValidator returns a Validator that reports JSON field names.
func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
    err := cv.v.Struct(i)
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return apperr.Wrap(apperr.Validation, "The given data was invalid.", err)
    }
    fields := map[string][]string{}
    for _, fe := range verrs {
        name := fieldName(fe)
        fields[name] = append(fields[name], message(fe))
    }
    e := apperr.New(apperr.Validation, "The given data was invalid.")
    for k, v := range fields {
        e.WithField(k, v)
    }
    return e
}

// fieldName turns "createBookingReq.seat_id[2]" into "seat_id.2".
func fieldName(fe validator.FieldError) string {
    ns := fe.Namespace()
    if i := strings.Index(ns, "."); i >= 0 {
        ns = ns[i+1:]
    }
    ns = strings.ReplaceAll(ns, "[", ".")
    return strings.ReplaceAll(ns, "]", "")
}

func message(fe validator.FieldError) string {
    name := strings.NewReplacer("_", " ", ".", " ").Replace(fieldName(fe))
    switch fe.Tag() {
    case "required":
        return fmt.Sprintf("The %s field is required.", name)
    case "min":
        if fe.Kind() == reflect.Slice {
            return fmt.Sprintf("The %s field must have at least %s items.", name, fe.Param())
        }
        return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
    case "gt":
        return fmt.Sprintf("The %s field must be greater than %s.", name, fe.Param())
    case "email":
        return fmt.Sprintf("The %s field must be a valid email address.", name)
    case "max":
        return fmt.Sprintf("The %s field may not be greater than %s.", name, fe.Param())
    default:
        return fmt.Sprintf("The %s field is invalid.", name)
    }
}

// bindAndValidate decodes the request body into dst and validates it.
func bindAndValidate(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return apperr.Wrap(apperr.Validation, "Invalid request body", err)
    }
    return c.Validate(dst)
}
