// file: internal/isbn/isbn.go
// version: 1.0.0
// guid: 3f8a1c2d-9b4e-4f6a-8d1c-2e5b7a9c0d3e

package isbn

import (
	"errors"
	"strings"
)

// ErrInvalid is returned when an identifier is not a syntactically valid
// ISBN-10 or ISBN-13.
var ErrInvalid = errors.New("invalid ISBN")

// Clean removes hyphens and spaces from an ISBN string.
func Clean(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// Normalize cleans the identifier and verifies it is a valid ISBN-10 or
// ISBN-13 (length, charset, check digit). Returns the cleaned form.
func Normalize(isbn string) (string, error) {
	cleaned := Clean(isbn)
	switch len(cleaned) {
	case 10:
		if !validISBN10(cleaned) {
			return "", ErrInvalid
		}
	case 13:
		if !validISBN13(cleaned) {
			return "", ErrInvalid
		}
	default:
		return "", ErrInvalid
	}
	return cleaned, nil
}

// ToISBN10 converts a 13-digit ISBN with the 978 prefix to its ISBN-10
// form. A valid ISBN-10 input is returned unchanged. 979-prefixed ISBNs
// have no ISBN-10 equivalent.
func ToISBN10(isbn string) (string, error) {
	cleaned, err := Normalize(isbn)
	if err != nil {
		return "", err
	}
	if len(cleaned) == 10 {
		return cleaned, nil
	}
	if !strings.HasPrefix(cleaned, "978") {
		return "", ErrInvalid
	}
	core := cleaned[3:12]
	return core + isbn10CheckDigit(core), nil
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}

func isbn10CheckDigit(core string) string {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(core[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return "X"
	}
	return string(rune('0' + check))
}
