package analyzer

import "github.com/logrusorgru/aurora/v3"

// Severity is how badly a finding can hurt a run against some platform.
type Severity int

const (
	// Safe indicates nothing was found.
	Safe Severity = iota
	// Low indicates a minor concern.
	Low
	// Medium indicates the script behaves differently on some platform.
	Medium
	// High indicates the script fails or half-applies on some platform.
	High
	// Critical indicates data loss.
	Critical
)

// String returns the uppercase label for the severity level.
func (s Severity) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets severities appear by label in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Colorize returns the label colored for terminal output.
func (s Severity) Colorize(au aurora.Aurora) aurora.Value {
	switch s {
	case Safe:
		return au.Green(s.String())
	case Low:
		return au.Cyan(s.String())
	case Medium:
		return au.Yellow(s.String())
	case High:
		return au.Red(s.String())
	case Critical:
		return au.BrightRed(s.String()).Bold()
	default:
		return au.Reset(s.String())
	}
}
