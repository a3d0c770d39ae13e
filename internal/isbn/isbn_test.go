// file: internal/isbn/isbn_test.go
// version: 1.0.0
// guid: 7c2d4e6f-1a3b-4c5d-9e8f-0a1b2c3d4e5f

package isbn

import "testing"

func TestClean(t *testing.T) {
	if got := Clean("978-2-07-036028-4"); got != "9782070360284" {
		t.Errorf("expected 9782070360284, got %s", got)
	}
	if got := Clean("978 2 07 036028 4"); got != "9782070360284" {
		t.Errorf("expected 9782070360284, got %s", got)
	}
	if got := Clean("9782070360284"); got != "9782070360284" {
		t.Errorf("expected unchanged ISBN, got %s", got)
	}
}

func TestNormalizeISBN13(t *testing.T) {
	got, err := Normalize("978-0-13-468599-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "9780134685991" {
		t.Errorf("expected 9780134685991, got %s", got)
	}
}

func TestNormalizeISBN10(t *testing.T) {
	got, err := Normalize("0-13-468599-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0134685997" {
		t.Errorf("expected 0134685997, got %s", got)
	}
}

func TestNormalizeISBN10WithX(t *testing.T) {
	// 097522980X has an X check digit
	if _, err := Normalize("097522980X"); err != nil {
		t.Errorf("unexpected error for X check digit: %v", err)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"12345",
		"9780134685990",  // bad check digit
		"0134685990",     // bad check digit
		"97801346859911", // too long
		"978013468599X",  // X not allowed in ISBN-13
	}
	for _, c := range cases {
		if _, err := Normalize(c); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}

func TestToISBN10(t *testing.T) {
	got, err := ToISBN10("9780134685991")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0134685997" {
		t.Errorf("expected 0134685997, got %s", got)
	}
}

func TestToISBN10Passthrough(t *testing.T) {
	got, err := ToISBN10("0134685997")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0134685997" {
		t.Errorf("expected 0134685997, got %s", got)
	}
}

func TestToISBN10Rejects979(t *testing.T) {
	// 979-prefixed ISBNs have no ISBN-10 form
	if _, err := ToISBN10("9791234567896"); err == nil {
		t.Error("expected error for 979 prefix")
	}
}
