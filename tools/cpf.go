package tools

import "strings"

const cpfLength = 11

// CleanCPF removes the usual mask characters ("123.456.789-09" -> "12345678909").
func CleanCPF(raw string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(raw))
}

// IsValidCPF checks the two CPF check digits.
// The input must be exactly 11 decimal digits, already unmasked; anything else
// is rejected.
func IsValidCPF(cpf string) bool {
	if len(cpf) != cpfLength {
		return false
	}

	digits := make([]int, cpfLength)
	for i := 0; i < cpfLength; i++ {
		c := cpf[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
	}

	if cpfCheckDigit(digits[:9], 10) != digits[9] {
		return false
	}
	return cpfCheckDigit(digits[:10], 11) == digits[10]
}

// cpfCheckDigit weights digits from firstWeight down to 2 and reduces mod 11.
func cpfCheckDigit(digits []int, firstWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (firstWeight - i)
	}
	return (sum * 10 % 11) % 10
}
