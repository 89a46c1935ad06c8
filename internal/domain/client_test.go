package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  error
	}{
		{"+91 98765 43210", nil},
		{"(555) 123-4567", nil},
		{"555.123.4567", nil},
		{"", ErrClientPhoneRequired},
		{"   ", ErrClientPhoneRequired},
		{"12345", ErrInvalidPhone},
		{"98765x43210", ErrInvalidPhone},
		{"98+76543210", ErrInvalidPhone},
		{"1234567890123456", ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.ErrorIs(t, ValidatePhone(tt.phone), tt.want)
		})
	}
}

func TestClient_Validate(t *testing.T) {
	assert.ErrorIs(t, NewClient(" ", "9876543210", "").Validate(), ErrClientNameRequired)
	assert.ErrorIs(t, NewClient("Asha", "", "").Validate(), ErrClientPhoneRequired)
	assert.NoError(t, NewClient("Asha", "9876543210", "").Validate())
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "919876543210", PhoneDigits("+91 (98765) 43-210"))
}
