package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"

	"storefront/internal/domain"
)

// Details renders binding and validation failures as field/message pairs.
func Details(err error) []domain.ErrorDetail {
	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		numErr    *strconv.NumError
		domainErr *domain.ValidationError
	)
	switch {
	case errors.As(err, &fieldErrs):
		details := make([]domain.ErrorDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, domain.ErrorDetail{Field: fe.Field(), Message: message(fe)})
		}
		return details
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []domain.ErrorDetail{{Field: field, Message: fmt.Sprintf("must be of type %s", typeErr.Type)}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return []domain.ErrorDetail{{Field: "body", Message: "malformed JSON"}}
	case errors.Is(err, io.EOF):
		return []domain.ErrorDetail{{Field: "body", Message: "request body is required"}}
	case errors.As(err, &numErr):
		return []domain.ErrorDetail{{Field: "query", Message: fmt.Sprintf("invalid number %q", numErr.Num)}}
	case errors.As(err, &domainErr):
		return domainErr.Details
	default:
		return []domain.ErrorDetail{{Field: "request", Message: err.Error()}}
	}
}

// AsValidationError wraps a binding error into the domain error handled by
// the HTTP layer.
func AsValidationError(err error) error {
	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &domain.ValidationError{Message: "Validation failed", Details: Details(err)}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s cannot be empty or whitespace only", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if isNumber(fe) {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if isNumber(fe) {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		if isCollection(fe) {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "username":
		return "Username can only contain letters, numbers, underscores, and hyphens"
	case "zipcode":
		return "zip_code must look like 12345 or 12345-6789"
	case "strongpassword":
		if s, ok := fe.Value().(string); ok {
			return PasswordProblem(s)
		}
		return "password is too weak"
	case "cardnumber":
		return "card_number must be 16 digits"
	case "cardexpiry":
		return "card_expiry must be MM/YY"
	case "cvv":
		return "card_cvv must be 3 or 4 digits"
	case "routingnumber":
		return "routing_number must be a valid 9 digit ABA routing number"
	case "ltprice":
		return "Discount price must be less than regular price"
	case "gtecost":
		if v, ok := fe.Value().(float64); ok {
			return fmt.Sprintf("Price (%.2f) cannot be less than cost (%s)", v, fe.Param())
		}
		return "Price cannot be less than cost"
	case "afterstart":
		return "end_date must be after start_date"
	case "maxrange":
		return "Date range cannot exceed 1 year"
	case "carddetails":
		return "Credit card details required for credit card payment"
	case "paypalemail":
		return "PayPal email required for PayPal payment"
	case "bankdetails":
		return "Bank account details required for bank transfer"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isNumber(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return true
	}
	return false
}

func isCollection(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "slice", "array", "map":
		return true
	}
	return false
}
