package domain

// AttendanceConfig is the selection an operator completes before a call:
// attendance type, person type, and product. A session freezes its config
// at start time; it is immutable for the session's lifetime.
type AttendanceConfig struct {
	AttendanceType AttendanceType `json:"attendance_type" yaml:"attendance_type"`
	PersonType     PersonType     `json:"person_type"     yaml:"person_type"`
	ProductID      string         `json:"product_id"      yaml:"product_id"`
}

// Validate checks that all three fields are present and well-formed.
func (c AttendanceConfig) Validate() error {
	if c.AttendanceType == "" || c.PersonType == "" || c.ProductID == "" {
		return &ConfigurationError{Reason: "attendance type, person type and product are all required"}
	}
	if !c.AttendanceType.Valid() {
		return &ConfigurationError{Reason: "unknown attendance type: " + string(c.AttendanceType)}
	}
	if !c.PersonType.Valid() {
		return &ConfigurationError{Reason: "unknown person type: " + string(c.PersonType)}
	}
	return nil
}
