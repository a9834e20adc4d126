package enums

import "fmt"

// VehicleStatus tracks where a vehicle sits in its sales lifecycle.
type VehicleStatus string

const (
	VehicleStatusInStock VehicleStatus = "IN_STOCK"
	VehicleStatusSold    VehicleStatus = "SOLD"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusInStock,
	VehicleStatusSold,
}

// String implements fmt.Stringer.
func (s VehicleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VehicleStatus.
func (s VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}
