package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type contactPayload struct {
	Name   string   `json:"customerName" validate:"required,min=2"`
	Mobile string   `json:"mobileNumber" validate:"required,mobile"`
	Email  string   `json:"email,omitempty" validate:"omitempty,email"`
	IDs    []int64  `json:"leadIds" validate:"min=1"`
	Tags   []string `json:"-"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	result := Struct(contactPayload{Name: "A", Mobile: "5123456789", Email: "nope"})

	assert.False(t, result.IsValid)
	assert.Equal(t, map[string]string{
		"customerName": "must be at least 2 characters",
		"mobileNumber": "must be a 10-digit mobile number starting with 6-9",
		"email":        "must be a valid email address",
		"leadIds":      "must contain at least 1 items",
	}, result.Fields())
}

func TestStructAcceptsValidPayload(t *testing.T) {
	result := Struct(contactPayload{Name: "Asha", Mobile: "9876543210", IDs: []int64{1}})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestMobileRule(t *testing.T) {
	for mobile, ok := range map[string]bool{
		"9876543210":  true,
		"6000000000":  true,
		"5876543210":  false,
		"987654321":   false,
		"98765432100": false,
		"98765x3210":  false,
	} {
		result := Struct(contactPayload{Name: "Asha", Mobile: mobile, IDs: []int64{1}})
		assert.Equal(t, ok, result.IsValid, mobile)
	}
}
