// Package brdoc validates Brazilian identity documents.
package brdoc

import "strings"

// ValidCPF reports whether cpf is a valid CPF number. Punctuation
// (dots, dashes, spaces) is stripped before validation.
func ValidCPF(cpf string) bool {
	digits := stripNonDigits(cpf)
	if len(digits) != 11 {
		return false
	}
	// CPFs made of a single repeated digit pass the checksum but are invalid.
	if strings.Count(digits, string(digits[0])) == 11 {
		return false
	}
	if checkDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the verification digit over the first n digits.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
