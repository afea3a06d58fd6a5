package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \n"))
	assert.Equal(t, "", SanitizeString(42))
	assert.Equal(t, "", SanitizeString(nil))
	assert.Equal(t, "", SanitizeString([]string{"a"}))
}

func TestIsNonEmptyString(t *testing.T) {
	assert.True(t, IsNonEmptyString("x"))
	assert.False(t, IsNonEmptyString("   "))
	assert.False(t, IsNonEmptyString(true))
}

func TestIsValidEmail(t *testing.T) {
	for _, ok := range []string{"test@example.com", "  test@example.com  ", "first.last+tag@sub.example.co"} {
		assert.True(t, IsValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "notanemail", "test@", "@nodomain.com", "a b@example.com", "a@b"} {
		assert.False(t, IsValidEmail(bad), bad)
	}
}

func TestIsValidPhone(t *testing.T) {
	for _, ok := range []string{"5551234567", "(555) 123-4567", "15551234567", "+1 555 123 4567"} {
		assert.True(t, IsValidPhone(ok), ok)
	}
	for _, bad := range []string{"", "123", "25551234567", "555123456789"} {
		assert.False(t, IsValidPhone(bad), bad)
	}
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; &#34;Jerry&#34; &#39;s&lt;/b&gt;", EscapeHTML(`<b>Tom & "Jerry" 's</b>`))
}

func TestFieldLimits(t *testing.T) {
	limits := FieldLimits()

	assert.Equal(t, 100, limits[FieldName])
	assert.Equal(t, 254, limits[FieldEmail])
	assert.Equal(t, 5000, limits[FieldMessage])
	assert.Equal(t, 200, limits[FieldCompany])
	assert.Equal(t, 20, limits[FieldPhone])
	assert.Equal(t, 100, limits[FieldServiceType])

	limits[FieldName] = 1
	assert.Equal(t, 100, FieldLimits()[FieldName])
}
