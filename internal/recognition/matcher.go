package recognition

import (
	"regexp"
	"strings"
)

// plateRe covers both the legacy LLLNNNN and the Mercosur LLLNLNN formats:
// three letters, a digit, an alphanumeric, two digits.
var plateRe = regexp.MustCompile(`[A-Z]{3}[0-9][0-9A-Z][0-9]{2}`)

// PlateCandidate extracts the most plausible plate from OCR text. When the
// normalized text contains a substring matching a known plate format that
// substring wins; otherwise the whole normalized text is the candidate.
func PlateCandidate(ocrText string) string {
	normalized := NormalizePlate(ocrText)
	if match := plateRe.FindString(normalized); match != "" {
		return match
	}
	return normalized
}

// FindPlate resolves OCR text against a set of registered plates and returns
// the index of the best match, or -1 when nothing qualifies.
//
// Two passes. First, an exact match of the extracted candidate against each
// normalized plate. Second, a substring fallback for partial or noisy reads
// where extra characters surround the true plate. When several plates are
// substrings of the same text the longest normalized plate wins, with the
// lexicographically smallest breaking any remaining tie.
func FindPlate(ocrText string, plates []string) int {
	candidate := PlateCandidate(ocrText)
	for i, plate := range plates {
		if NormalizePlate(plate) == candidate {
			return i
		}
	}

	normalized := NormalizePlate(ocrText)
	if normalized == "" {
		return -1
	}

	best := -1
	var bestPlate string
	for i, plate := range plates {
		np := NormalizePlate(plate)
		if np == "" || !strings.Contains(normalized, np) {
			continue
		}
		if best == -1 || len(np) > len(bestPlate) || (len(np) == len(bestPlate) && np < bestPlate) {
			best = i
			bestPlate = np
		}
	}
	return best
}
