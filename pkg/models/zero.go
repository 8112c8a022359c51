package models

// Zero-shape constructors. A section analyzer that fails, or an analysis of
// an empty tree, reports these shapes. Slices and maps are allocated empty
// so serialized output contains [] and {} rather than null.

// ZeroMetrics returns the metrics section for an empty or failed extraction.
func ZeroMetrics() Metrics {
	return Metrics{
		Languages:    map[string]LanguageStats{},
		LargestFiles: []LargestFile{},
	}
}

// ZeroCodeQuality returns the quality section with all scores at zero.
func ZeroCodeQuality() CodeQuality {
	return CodeQuality{
		Issues:          []string{},
		Recommendations: []string{},
		Patterns: PatternGroups{
			DesignPatterns: []PatternMatch{},
			AntiPatterns:   []PatternMatch{},
			CodeSmells:     []PatternMatch{},
		},
		Hotspots: []Hotspot{},
	}
}

// ZeroSecurity returns the security section for a tree with nothing to
// scan. The score is 100: no scanned content means no findings to penalize.
func ZeroSecurity() Security {
	return Security{
		Score:           100,
		Vulnerabilities: []Vulnerability{},
		Recommendations: []string{},
	}
}

// FailedSecurity returns the security section for a failed scan. Unlike
// ZeroSecurity the score is 0, the documented default for "could not
// compute".
func FailedSecurity() Security {
	return Security{
		Vulnerabilities: []Vulnerability{},
		Recommendations: []string{},
	}
}

// ZeroDocumentation returns the documentation section with no signals.
func ZeroDocumentation() Documentation {
	return Documentation{
		Issues:          []string{},
		Recommendations: []string{},
		Details: DocumentationDetails{
			DocFiles: []string{},
		},
	}
}

// ZeroTestCoverage returns the coverage section with no tests detected.
func ZeroTestCoverage() TestCoverage {
	return TestCoverage{
		TestFrameworks:  []string{},
		TestFiles:       []string{},
		TestDirectories: []string{},
		Issues:          []string{},
		Recommendations: []string{},
	}
}

// ZeroResult returns a complete result in its documented empty state.
func ZeroResult() *AnalysisResult {
	return &AnalysisResult{
		Metrics:       ZeroMetrics(),
		CodeQuality:   ZeroCodeQuality(),
		Security:      ZeroSecurity(),
		Documentation: ZeroDocumentation(),
		TestCoverage:  ZeroTestCoverage(),
	}
}
