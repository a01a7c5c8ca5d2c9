// Package textutil holds small text normalization helpers shared by the
// parsers and the post-processor.
package textutil

import "strings"

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// NormalizeDigits replaces Arabic-Indic and Extended Arabic-Indic digits
// with ASCII digits.
func NormalizeDigits(s string) string {
	return digitReplacer.Replace(s)
}
