package enums

import "fmt"

// EvidenceKind says what an uploaded purchase photo shows.
type EvidenceKind string

const (
	EvidenceKindPlate EvidenceKind = "PLATE"
	EvidenceKindPanel EvidenceKind = "PANEL"
)

var validEvidenceKinds = []EvidenceKind{
	EvidenceKindPlate,
	EvidenceKindPanel,
}

// String implements fmt.Stringer.
func (k EvidenceKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known EvidenceKind.
func (k EvidenceKind) IsValid() bool {
	for _, candidate := range validEvidenceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseEvidenceKind converts raw input into an EvidenceKind.
func ParseEvidenceKind(value string) (EvidenceKind, error) {
	for _, candidate := range validEvidenceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid evidence kind %q", value)
}
