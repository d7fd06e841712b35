package tools

import (
	"strings"
)

// DefaultCountryCode is prefixed to stored phones before they are sent to the gateway.
const DefaultCountryCode = "55"

var phoneMask = strings.NewReplacer("(", "", ")", "", "-", "", " ", "")

// CleanPhone strips the mask characters staff usually type ("(85) 99927-5573").
func CleanPhone(raw string) string {
	return phoneMask.Replace(strings.TrimSpace(raw))
}

// BillingRecipient builds the gateway recipient for a stored member phone:
// country code followed by the digits as stored (e.g. 55 + 85999275573).
func BillingRecipient(countryCode, phone string) string {
	countryCode = strings.TrimLeft(strings.TrimSpace(countryCode), "+")
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return countryCode + CleanPhone(phone)
}
