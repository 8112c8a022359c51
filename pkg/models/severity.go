package models

// Severity grades vulnerabilities and hotspots.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for sorting, highest first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// HotspotType classifies why a file was flagged.
type HotspotType string

const (
	HotspotHighComplexity HotspotType = "high_complexity"
	HotspotHighSize       HotspotType = "high_size"
)

// String methods for custom string types, required for toon serialization
// which uses fmt.Stringer.

func (s Severity) String() string { return string(s) }

func (h HotspotType) String() string { return string(h) }
