package utils

import (
	"strings"
	"unicode/utf8"
)

const MaxFieldLength = 255

func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func HasExactLength(value string, length int) bool {
	return utf8.RuneCountInString(value) == length
}

func ExceedsMaxLength(value string, max int) bool {
	return utf8.RuneCountInString(value) > max
}
