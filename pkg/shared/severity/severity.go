// Package severity provides the scanner-neutral severity scale findings are
// normalized to, and the mappings from Nessus severities, risk factors and
// CVSS scores onto it.
package severity

import "strings"

// Level represents a severity level for security findings.
type Level string

const (
	// Critical - Nessus severity 4, CVSS 9.0-10.0.
	Critical Level = "critical"

	// High - Nessus severity 3, CVSS 7.0-8.9.
	High Level = "high"

	// Medium - Nessus severity 2, CVSS 4.0-6.9.
	Medium Level = "medium"

	// Low - Nessus severity 1, CVSS 0.1-3.9.
	Low Level = "low"

	// Info - Nessus severity 0, no security impact.
	Info Level = "info"

	// Unknown - Severity could not be determined.
	Unknown Level = "unknown"
)

// AllLevels returns all severity levels in order of priority (highest first).
func AllLevels() []Level {
	return []Level{Critical, High, Medium, Low, Info, Unknown}
}

// String returns the string representation of the severity level.
func (l Level) String() string {
	return string(l)
}

// Priority returns the numeric priority of the severity level.
// Higher numbers = higher priority.
func (l Level) Priority() int {
	switch l {
	case Critical:
		return 5
	case High:
		return 4
	case Medium:
		return 3
	case Low:
		return 2
	case Info:
		return 1
	default:
		return 0
	}
}

// IsAtLeast returns true if this severity is at least as high as the other.
func (l Level) IsAtLeast(other Level) bool {
	return l.Priority() >= other.Priority()
}

// FromNessus maps the Nessus 0-4 severity attribute. Anything else is Unknown.
func FromNessus(sev int) Level {
	switch sev {
	case 4:
		return Critical
	case 3:
		return High
	case 2:
		return Medium
	case 1:
		return Low
	case 0:
		return Info
	default:
		return Unknown
	}
}

// FromString normalizes severity and risk factor strings.
// Nessus risk_factor values are Critical, High, Medium, Low and None.
func FromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL", "CRIT":
		return Critical
	case "HIGH", "SEVERE":
		return High
	case "MEDIUM", "MODERATE", "MED":
		return Medium
	case "LOW":
		return Low
	case "INFO", "INFORMATIONAL", "NONE":
		return Info
	default:
		return Unknown
	}
}

// FromCVSS converts a CVSS score (0.0-10.0) to a severity level.
// Based on CVSS v3.0 severity ratings:
//   - 9.0-10.0: Critical
//   - 7.0-8.9: High
//   - 4.0-6.9: Medium
//   - 0.1-3.9: Low
//   - 0.0: Info
func FromCVSS(score float64) Level {
	switch {
	case score >= 9.0:
		return Critical
	case score >= 7.0:
		return High
	case score >= 4.0:
		return Medium
	case score > 0:
		return Low
	default:
		return Info
	}
}

// Compare returns:
//
//	-1 if a < b (a is lower severity)
//	 0 if a == b
//	+1 if a > b (a is higher severity)
func Compare(a, b Level) int {
	pa, pb := a.Priority(), b.Priority()
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
