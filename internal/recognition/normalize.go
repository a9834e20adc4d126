// Package recognition turns noisy OCR text into plate and odometer readings.
package recognition

import "strings"

// NormalizePlate canonicalizes a plate string for comparison: uppercase with
// hyphens and spaces removed. Idempotent, no validation of length or charset.
func NormalizePlate(text string) string {
	normalized := strings.ToUpper(text)
	normalized = strings.ReplaceAll(normalized, "-", "")
	return strings.ReplaceAll(normalized, " ", "")
}
