package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"storefront/internal/domain"
)

var (
	usernameRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	zipCodeRegex    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardNumberRegex = regexp.MustCompile(`^\d{16}$`)
	cardExpiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRegex        = regexp.MustCompile(`^\d{3,4}$`)
	routingRegex    = regexp.MustCompile(`^\d{9}$`)

	registerOnce sync.Once
	registerErr  error

	sanitizer = bluemonday.StrictPolicy()
)

// Register installs the custom tags and struct rules on gin's validator engine.
// It is safe to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = configure(v)
	})
	return registerErr
}

// New returns a standalone validator configured like the gin engine. Tags are
// read from the "binding" key.
func New() (*validator.Validate, error) {
	v := validator.New()
	v.SetTagName("binding")
	if err := configure(v); err != nil {
		return nil, err
	}
	return v, nil
}

func configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	tags := map[string]validator.Func{
		"notblank":       notBlank,
		"username":       matches(usernameRegex),
		"zipcode":        matches(zipCodeRegex),
		"strongpassword": strongPassword,
		"cardnumber":     matches(cardNumberRegex),
		"cardexpiry":     matches(cardExpiryRegex),
		"cvv":            matches(cvvRegex),
		"routingnumber":  routingNumber,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}

	v.RegisterStructValidation(productCreateRules, domain.ProductCreate{})
	v.RegisterStructValidation(dateRangeRules, domain.DateRange{})
	v.RegisterStructValidation(paymentRules, domain.PaymentCreate{})
	return nil
}

// fieldName reports json names, falling back to form names for query structs.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func strongPassword(fl validator.FieldLevel) bool {
	return PasswordProblem(fl.Field().String()) == ""
}

// PasswordProblem describes the first strength rule the password breaks, or
// returns "" when it satisfies all of them.
func PasswordProblem(password string) string {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !digit:
		return "Password must contain at least one digit"
	}
	return ""
}

// routingNumber checks the format and the ABA checksum.
func routingNumber(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !routingRegex.MatchString(s) {
		return false
	}
	weights := []int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	sum := 0
	for i, r := range s {
		sum += int(r-'0') * weights[i]
	}
	return sum%10 == 0
}

func productCreateRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(domain.ProductCreate)
	if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
		sl.ReportError(*p.DiscountPrice, "discount_price", "DiscountPrice", "ltprice", "")
	}
	if p.Cost > 0 && p.Price < p.Cost {
		sl.ReportError(p.Price, "price", "Price", "gtecost", fmt.Sprintf("%.2f", p.Cost))
	}
}

func dateRangeRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.DateRange)
	start, errStart := time.Parse(domain.DateLayout, r.StartDate)
	end, errEnd := time.Parse(domain.DateLayout, r.EndDate)
	if errStart != nil || errEnd != nil {
		return
	}
	if !end.After(start) {
		sl.ReportError(r.EndDate, "end_date", "EndDate", "afterstart", "")
		return
	}
	if end.Sub(start) > domain.MaxDateRangeDays*24*time.Hour {
		sl.ReportError(r.EndDate, "end_date", "EndDate", "maxrange", "")
	}
}

func paymentRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(domain.PaymentCreate)
	switch p.Method {
	case domain.PaymentCreditCard:
		if p.CardNumber == "" || p.CardExpiry == "" || p.CardCVV == "" {
			sl.ReportError(p.Method, "method", "Method", "carddetails", "")
		}
	case domain.PaymentPayPal:
		if p.PayPalEmail == "" {
			sl.ReportError(p.Method, "method", "Method", "paypalemail", "")
		}
	case domain.PaymentBankTransfer:
		if p.AccountNumber == "" || p.RoutingNumber == "" {
			sl.ReportError(p.Method, "method", "Method", "bankdetails", "")
		}
	}
}

// SanitizeText strips every HTML tag and trims the result.
func SanitizeText(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}

func IsZipCode(s string) bool { return zipCodeRegex.MatchString(s) }
