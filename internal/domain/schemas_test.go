package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "etcpasswd", SanitizeFilename("../etc/passwd"))
	assert.Equal(t, "report.pdf", SanitizeFilename("  report.pdf. "))
	assert.Equal(t, "", SanitizeFilename("..."))
}

func TestFileUploadValidate(t *testing.T) {
	f := &FileUpload{Filename: "a<b>.png", ContentType: "image/png", SizeBytes: 10}
	require.NoError(t, f.Validate(100))
	assert.Equal(t, "ab.png", f.Filename)

	f = &FileUpload{Filename: "x.exe", ContentType: "application/x-msdownload", SizeBytes: 10}
	var verr *ValidationError
	require.True(t, errors.As(f.Validate(100), &verr))
	assert.Equal(t, "content_type", verr.Details[0].Field)

	f = &FileUpload{Filename: "big.pdf", ContentType: "application/pdf", SizeBytes: 101}
	assert.Error(t, f.Validate(100))
}

func TestDateRangeBounds(t *testing.T) {
	start, end, err := DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMaskedCard(t *testing.T) {
	assert.Equal(t, "**** 0366", PaymentCreate{CardNumber: "4532015112830366"}.MaskedCard())
	assert.Equal(t, "", PaymentCreate{}.MaskedCard())
}

func TestUserNormalize(t *testing.T) {
	u := &User{Username: " John_Doe ", Email: "John@Example.COM"}
	u.Normalize()
	assert.Equal(t, "john_doe", u.Username)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.IsStaff())
}
