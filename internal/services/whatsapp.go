package services

import (
	"net/url"
	"strings"

	"brotot_gym/internal/models"
)

// RenewalReminderMessage is pre-filled into WhatsApp links on the member list.
const RenewalReminderMessage = "Good day, resident of Brotot Barbell Club!\n" +
	"Please renew your gym membership as soon as possible!\n\n" +
	"Best Regards,\nIdam"

// FormatPhoneNumber normalizes Indonesian phone numbers to international
// dial format without '+'. A leading '0' is replaced with '62', a leading
// '+62' loses the '+', anything else is assumed already canonical. All
// non-digit characters are stripped. Numbers outside 10-15 digits are
// rejected with ErrInvalidPhoneFormat.
func FormatPhoneNumber(raw string) (string, error) {
	number := strings.TrimSpace(raw)

	if strings.HasPrefix(number, "0") {
		number = "62" + strings.TrimPrefix(number, "0")
	} else if strings.HasPrefix(number, "+62") {
		number = strings.TrimPrefix(number, "+")
	}

	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number = digits.String()

	if len(number) < 10 || len(number) > 15 {
		return "", models.ErrInvalidPhoneFormat
	}
	return number, nil
}

// WhatsAppLink builds a wa.me URL with a pre-filled message for a number
// already in international format.
func WhatsAppLink(formattedNumber, message string) string {
	return "https://wa.me/" + formattedNumber + "?text=" + url.QueryEscape(message)
}
