package recognition

import "strconv"

// ExtractOdometer scans OCR text from a panel photo for maximal digit runs
// and returns the largest value found. Odometer photos usually contain the
// large odometer number plus smaller incidental digits, a trip counter or a
// clock, so the maximum is the best guess for the true reading. The second
// return is false when the text holds no parseable number.
func ExtractOdometer(ocrText string) (int, bool) {
	best := 0
	found := false

	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		value, err := strconv.Atoi(ocrText[runStart:end])
		runStart = -1
		if err != nil {
			// digit run too long to fit an int, ignore it
			return
		}
		if !found || value > best {
			best = value
			found = true
		}
	}

	for i := 0; i < len(ocrText); i++ {
		if ocrText[i] >= '0' && ocrText[i] <= '9' {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(ocrText))

	return best, found
}
