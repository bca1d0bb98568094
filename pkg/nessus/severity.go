package nessus

import "github.com/exploopio/nessus/pkg/shared/severity"

// SeverityLevel is the Nessus 0-4 severity scale.
type SeverityLevel int

const (
	Informational SeverityLevel = 0
	Low           SeverityLevel = 1
	Medium        SeverityLevel = 2
	High          SeverityLevel = 3
	Critical      SeverityLevel = 4

	// Unclassified is any value outside 0-4.
	Unclassified SeverityLevel = -1
)

// LevelOf maps a raw severity to its level. Values outside 0-4 are
// Unclassified, never clamped.
func LevelOf(sev int) SeverityLevel {
	switch SeverityLevel(sev) {
	case Informational, Low, Medium, High, Critical:
		return SeverityLevel(sev)
	default:
		return Unclassified
	}
}

func (l SeverityLevel) String() string {
	switch l {
	case Informational:
		return "informational"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unclassified"
	}
}

// Normalized converts the level to the cross-scanner severity scale.
func (l SeverityLevel) Normalized() severity.Level {
	return severity.FromNessus(int(l))
}
