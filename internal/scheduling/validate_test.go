package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	valid := []string{
		"+92-321-1234567",
		"+923211234567",
		"923211234567",
		"0321-1234567",
		"0321 123 4567",
		"(555) 123-4567",
	}
	for _, phone := range valid {
		assert.True(t, ValidPhone(phone), phone)
	}
	invalid := []string{"", "12345", "call me", "0321-12345", "+92-abc-1234567", "+1234567890", "+44 20 7946 0958"}
	for _, phone := range invalid {
		assert.False(t, ValidPhone(phone), phone)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("patient@example.com"))
	assert.True(t, ValidEmail(" first.last+tag@clinic.co.uk "))
	assert.False(t, ValidEmail("patient@"))
	assert.False(t, ValidEmail("patient.example.com"))
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
		ok           bool
	}{
		{"14:30", 14, 30, true},
		{"9:00", 9, 0, true},
		{"09:15:00", 9, 15, true},
		{"2:30 PM", 14, 30, true},
		{"2:30pm", 14, 30, true},
		{"12:00 AM", 0, 0, true},
		{"12:15 PM", 12, 15, true},
		{"24:00", 0, 0, false},
		{"13:00 PM", 0, 0, false},
		{"10:75", 0, 0, false},
		{"noon", 0, 0, false},
	}
	for _, tc := range cases {
		hour, minute, ok := ParseClock(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.hour, hour, tc.in)
			assert.Equal(t, tc.minute, minute, tc.in)
		}
	}
}

func TestNormalizeAppointmentType(t *testing.T) {
	assert.Equal(t, "root_canal", NormalizeAppointmentType("Root canal"))
	assert.Equal(t, "whitening", NormalizeAppointmentType("teeth whitening"))
	assert.Equal(t, "cleaning", NormalizeAppointmentType("Regular Cleaning"))
	assert.Equal(t, DefaultAppointmentType, NormalizeAppointmentType(""))
	assert.Equal(t, DefaultAppointmentType, NormalizeAppointmentType("haircut"))
	assert.Equal(t, "Dental Checkup", AppointmentTypeLabel("unknown"))
}
