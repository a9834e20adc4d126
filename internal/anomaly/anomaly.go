// Package anomaly builds the structured findings that the evidence validator
// appends to a purchase annotation.
package anomaly

import (
	"fmt"
	"strings"
)

// Severity labels how alarming a finding is.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// ocrPrefixLen bounds how much raw OCR text ends up inside an annotation.
const ocrPrefixLen = 32

// Finding is a single validation outcome. Findings stay structured while a
// validation run is in flight and are flattened to text only when persisted.
type Finding struct {
	Severity Severity
	Message  string
}

// Report is the ordered list of findings produced by one validation run.
type Report struct {
	findings []Finding
}

func (r *Report) Add(f Finding) {
	r.findings = append(r.findings, f)
}

func (r *Report) Empty() bool {
	return len(r.findings) == 0
}

func (r *Report) Findings() []Finding {
	return r.findings
}

// Render flattens the report to the annotation text form, one message after
// another separated by a single space, in the order the findings triggered.
func (r *Report) Render() string {
	messages := make([]string, 0, len(r.findings))
	for _, f := range r.findings {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, " ")
}

// MaxSeverity returns the highest severity present, or "" for an empty report.
func (r *Report) MaxSeverity() Severity {
	var max Severity
	for _, f := range r.findings {
		if f.Severity == SeverityCritical {
			return SeverityCritical
		}
		max = f.Severity
	}
	return max
}

// PlateMismatch flags OCR plate text that does not contain the registered
// plate. Only a bounded prefix of the raw read is quoted back; the cut is
// made on rune boundaries so accented OCR output stays valid UTF-8.
func PlateMismatch(ocrText, registeredPlate string) Finding {
	prefix := ocrText
	if runes := []rune(prefix); len(runes) > ocrPrefixLen {
		prefix = string(runes[:ocrPrefixLen])
	}
	return Finding{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Plate mismatch: read '%s' expected '%s'", prefix, registeredPlate),
	}
}

// OdometerBelowEntered flags a panel reading lower than what the driver typed in.
func OdometerBelowEntered(extracted, entered int) Finding {
	return Finding{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Odometer photo (%d) is less than entered value (%d)", extracted, entered),
	}
}

// OdometerRegression flags a panel reading at or below the vehicle's last
// recorded odometer, the rollback-fraud signal.
func OdometerRegression(extracted, previous int) Finding {
	return Finding{
		Severity: SeverityCritical,
		Message:  fmt.Sprintf("Critical: odometer regressed — photo (%d) <= previous recorded (%d)", extracted, previous),
	}
}

// AppendText joins new annotation text onto existing content with a single
// space. Prior content is always preserved.
func AppendText(existing *string, addition string) *string {
	if addition == "" {
		return existing
	}
	if existing == nil || strings.TrimSpace(*existing) == "" {
		out := addition
		return &out
	}
	out := *existing + " " + addition
	return &out
}
