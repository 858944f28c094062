package utils

import "unicode/utf8"

const (
	SINLength   = 9
	PhoneLength = 8

	sinMask   = "*****"
	phoneMask = "****"
)

// MaskSIN hides all but the last four characters of a nine character SIN.
// Values of any other length are returned unchanged.
func MaskSIN(sin string) string {
	return maskPrefix(sin, SINLength, sinMask)
}

// MaskPhone hides all but the last four characters of an eight character phone
// number. Values of any other length are returned unchanged.
func MaskPhone(phone string) string {
	return maskPrefix(phone, PhoneLength, phoneMask)
}

func maskPrefix(value string, length int, mask string) string {
	if utf8.RuneCountInString(value) != length {
		return value
	}

	runes := []rune(value)
	return mask + string(runes[utf8.RuneCountInString(mask):])
}
