package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "", "Name is required.", v)
	Required("email", "  ", "Email is required.", v)
	Required("phone", "555", "Phone is required.", v)
	assert.Len(t, v["name"], 1)
	assert.Len(t, v["email"], 1)
	assert.Empty(t, v["phone"])
}

func TestEmail(t *testing.T) {
	v := Violations{}
	Email("email", "someone@example.com", v)
	assert.True(t, v.Empty())

	Email("email", "not-an-email", v)
	assert.Len(t, v["email"], 1)

	// Empty values are the job of Required, not Email.
	v2 := Violations{}
	Email("email", "", v2)
	assert.True(t, v2.Empty())
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"555-123-4567", "+1 555 123 4567", "5551234567"} {
		v := Violations{}
		Phone("phone", ok, v)
		assert.True(t, v.Empty(), ok)
	}
	for _, bad := range []string{"call me", "555.123.4567", "(555) 123"} {
		v := Violations{}
		Phone("phone", bad, v)
		assert.Len(t, v["phone"], 1, bad)
	}
}

func TestMaxLenBoundary(t *testing.T) {
	exact := strings.Repeat("5", 20)
	v := Violations{}
	MaxLen("phone", exact, 20, v)
	assert.True(t, v.Empty(), "exactly at the limit must pass")

	v = Violations{}
	MaxLen("phone", exact+"5", 20, v)
	assert.Equal(t, []string{"Phone cannot exceed 20 characters."}, v["phone"])
}

func TestState(t *testing.T) {
	v := Violations{}
	State("state", "tx", v)
	assert.True(t, v.Empty(), "lowercase codes are accepted and uppercased later")

	State("state", "Texas", v)
	assert.Len(t, v["state"], 1)
}

func TestZip(t *testing.T) {
	for _, ok := range []string{"12345", "12345-6789", "123456789"} {
		v := Violations{}
		Zip("zip_code", ok, v)
		assert.True(t, v.Empty(), ok)
	}
	v := Violations{}
	Zip("zip_code", "1234", v)
	assert.Len(t, v["zip_code"], 1)
}

func TestMessagesFlattens(t *testing.T) {
	v := Violations{}
	v.Add("a", "first")
	v.Add("a", "second")
	v.Add("b", "third")
	assert.Len(t, v.Messages(), 3)
}
