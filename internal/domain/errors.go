package domain

import "fmt"

// DataError reports a well attribute that is required for scoring but
// absent from the input. Missing integrity attributes must be surfaced to
// the caller rather than silently defaulted, since a default would bias
// the score.
type DataError struct {
	WellID    string
	Attribute string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("well %s: missing required attribute %q", e.WellID, e.Attribute)
}

// ConfigurationError reports invalid configuration or input geometry that
// would corrupt every downstream computation (CRS mismatches, bad Monte
// Carlo settings). It is fatal and detected before any scoring begins.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Setting, e.Reason)
}
