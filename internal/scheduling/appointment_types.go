package scheduling

import (
	"sort"
	"strings"
)

// DefaultAppointmentType is used when a request names no known type.
const DefaultAppointmentType = "checkup"

// AppointmentTypes maps type keys to their display names.
var AppointmentTypes = map[string]string{
	"cleaning":     "Regular Cleaning",
	"checkup":      "Dental Checkup",
	"consultation": "Consultation",
	"emergency":    "Emergency Visit",
	"filling":      "Dental Filling",
	"extraction":   "Tooth Extraction",
	"root_canal":   "Root Canal",
	"crown":        "Crown Placement",
	"whitening":    "Teeth Whitening",
	"orthodontics": "Orthodontic Consultation",
	"cosmetic":     "Cosmetic Dentistry",
	"general":      "General Dentistry",
	"restorative":  "Restorative Dentistry",
}

// NormalizeAppointmentType maps free text ("Root canal", "teeth whitening") to a
// known key, falling back to DefaultAppointmentType.
func NormalizeAppointmentType(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(strings.ReplaceAll(key, "-", "_"), " ", "_")
	if key == "" {
		return DefaultAppointmentType
	}
	if _, ok := AppointmentTypes[key]; ok {
		return key
	}
	for _, k := range AppointmentTypeKeys() {
		if strings.Contains(key, k) {
			return k
		}
		if strings.EqualFold(strings.TrimSpace(s), AppointmentTypes[k]) {
			return k
		}
	}
	return DefaultAppointmentType
}

// AppointmentTypeLabel returns the display name for a type key.
func AppointmentTypeLabel(key string) string {
	if label, ok := AppointmentTypes[NormalizeAppointmentType(key)]; ok {
		return label
	}
	return AppointmentTypes[DefaultAppointmentType]
}

// AppointmentTypeKeys returns the known type keys in sorted order.
func AppointmentTypeKeys() []string {
	keys := make([]string, 0, len(AppointmentTypes))
	for k := range AppointmentTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
