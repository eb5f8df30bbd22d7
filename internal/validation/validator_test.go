package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func newValidator(t *testing.T) interface{ Struct(any) error } {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func detailFor(details []domain.ErrorDetail, field string) (domain.ErrorDetail, bool) {
	for _, d := range details {
		if d.Field == field {
			return d, true
		}
	}
	return domain.ErrorDetail{}, false
}

func TestUserCreateRules(t *testing.T) {
	v := newValidator(t)

	ok := domain.UserCreate{Username: "john_doe", Email: "john@example.com", FullName: "John Doe", Password: "SecurePass123"}
	require.NoError(t, v.Struct(ok))

	bad := domain.UserCreate{Username: "john doe!", Email: "nope", FullName: "   ", Password: "alllowercase1"}
	details := Details(v.Struct(bad))

	d, found := detailFor(details, "username")
	require.True(t, found)
	assert.Equal(t, "Username can only contain letters, numbers, underscores, and hyphens", d.Message)

	_, found = detailFor(details, "email")
	assert.True(t, found)
	_, found = detailFor(details, "full_name")
	assert.True(t, found)

	d, found = detailFor(details, "password")
	require.True(t, found)
	assert.Equal(t, "Password must contain at least one uppercase letter", d.Message)
}

func TestProductCreateStructRules(t *testing.T) {
	v := newValidator(t)
	discount := 150.0
	in := domain.ProductCreate{Name: "Laptop", Category: "Electronics", Price: 100, Cost: 120, DiscountPrice: &discount}

	details := Details(v.Struct(in))
	d, found := detailFor(details, "discount_price")
	require.True(t, found)
	assert.Equal(t, "Discount price must be less than regular price", d.Message)

	d, found = detailFor(details, "price")
	require.True(t, found)
	assert.Equal(t, "Price (100.00) cannot be less than cost (120.00)", d.Message)
}

func TestDateRangeRules(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Struct(domain.DateRange{StartDate: "2024-01-01", EndDate: "2024-12-31"}))

	d, _ := detailFor(Details(v.Struct(domain.DateRange{StartDate: "2024-02-01", EndDate: "2024-01-01"})), "end_date")
	assert.Equal(t, "end_date must be after start_date", d.Message)

	d, _ = detailFor(Details(v.Struct(domain.DateRange{StartDate: "2023-01-01", EndDate: "2024-06-01"})), "end_date")
	assert.Equal(t, "Date range cannot exceed 1 year", d.Message)

	d, _ = detailFor(Details(v.Struct(domain.DateRange{StartDate: "01/01/2024", EndDate: "2024-06-01"})), "start_date")
	assert.Equal(t, "start_date must be a date in YYYY-MM-DD format", d.Message)
}

func TestPaymentRules(t *testing.T) {
	v := newValidator(t)

	card := domain.PaymentCreate{Amount: 99.99, Method: domain.PaymentCreditCard, CardNumber: "4532015112830366", CardExpiry: "12/25", CardCVV: "123"}
	require.NoError(t, v.Struct(card))

	missing := domain.PaymentCreate{Amount: 10, Method: domain.PaymentPayPal}
	d, found := detailFor(Details(v.Struct(missing)), "method")
	require.True(t, found)
	assert.Equal(t, "PayPal email required for PayPal payment", d.Message)

	bank := domain.PaymentCreate{Amount: 10, Method: domain.PaymentBankTransfer, AccountNumber: "12345678", RoutingNumber: "021000021"}
	require.NoError(t, v.Struct(bank))

	bank.RoutingNumber = "021000022"
	_, found = detailFor(Details(v.Struct(bank)), "routing_number")
	assert.True(t, found)
}

func TestAddressZipCode(t *testing.T) {
	v := newValidator(t)
	addr := domain.AddressCreate{Street: "123 Main St", City: "New York", State: "NY", ZipCode: "10001-1234", Country: "US"}
	require.NoError(t, v.Struct(addr))

	addr.ZipCode = "1000"
	_, found := detailFor(Details(v.Struct(addr)), "zip_code")
	assert.True(t, found)
}

func TestPasswordResetMismatch(t *testing.T) {
	v := newValidator(t)
	in := domain.PasswordReset{CurrentPassword: "x", NewPassword: "NewPass123", ConfirmPassword: "NewPass124"}
	d, found := detailFor(Details(v.Struct(in)), "confirm_password")
	require.True(t, found)
	assert.Equal(t, "Passwords do not match", d.Message)
}

func TestDetailsForDecodeErrors(t *testing.T) {
	var p domain.ProductCreate
	err := json.Unmarshal([]byte(`{"price":"cheap"}`), &p)
	details := Details(err)
	require.Len(t, details, 1)
	assert.Equal(t, "price", details[0].Field)

	err = json.Unmarshal([]byte(`{"price":`), &p)
	assert.Equal(t, "body", Details(err)[0].Field)
}

func TestAsValidationError(t *testing.T) {
	v := newValidator(t)
	err := AsValidationError(v.Struct(domain.QuantityUpdate{Quantity: 0}))
	verr, ok := err.(*domain.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Validation failed", verr.Message)
	assert.Equal(t, "quantity", verr.Details[0].Field)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Hello world", SanitizeText("  <b>Hello</b> world<script>alert(1)</script> "))
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}
