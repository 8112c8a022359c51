// Package models defines the analysis result types shared by all analyzers.
//
// Field names carry JSON tags matching the wire contract consumed by
// downstream formatters and API clients. Numeric fields are always present in
// serialized output; a section that could not be computed is emitted in its
// documented zero shape rather than as null.
package models

// AnalysisResult is the top-level aggregate produced by one analysis run.
// It is created fresh per invocation and never mutated after being returned.
type AnalysisResult struct {
	Metrics       Metrics       `json:"metrics"`
	CodeQuality   CodeQuality   `json:"code_quality"`
	Security      Security      `json:"security"`
	Documentation Documentation `json:"documentation"`
	TestCoverage  TestCoverage  `json:"test_coverage"`

	// AISummary is populated by an external narrative generator, never by
	// the engine itself.
	AISummary string `json:"ai_summary,omitempty"`

	// Partial marks a result assembled after cooperative cancellation.
	// Sections that did not complete are present in their zero shapes.
	Partial bool `json:"partial,omitempty"`
}

// FileRecord describes one analyzed file. Every file in the input tree
// yields exactly one record, even when reading or decoding fails; in that
// case Language is "unknown" and LineCount is zero.
type FileRecord struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	LineCount int    `json:"line_count"`
	ByteSize  int    `json:"byte_size"`

	// Sample holds the text content used by pattern and security scanners.
	// It may be truncated for very large files and is empty for binary or
	// undecodable content. Excluded from serialization.
	Sample string `json:"-"`
}

// Metrics aggregates size and language statistics for a tree.
type Metrics struct {
	LinesOfCode  int                      `json:"lines_of_code"`
	FilesCount   int                      `json:"files_count"`
	Languages    map[string]LanguageStats `json:"languages"`
	Complexity   ComplexityProfile        `json:"complexity"`
	LargestFiles []LargestFile            `json:"largest_files"`
}

// LanguageStats is one bucket of the per-language breakdown. Percentages
// across all buckets sum to approximately 100.
type LanguageStats struct {
	Files      int     `json:"files"`
	Lines      int     `json:"lines"`
	Percentage float64 `json:"percentage"`
}

// LargestFile is one entry of the top-N largest files list, ordered by
// line count descending with ties broken by path ascending.
type LargestFile struct {
	Path     string `json:"path"`
	Lines    int    `json:"lines"`
	Language string `json:"language"`
}

// ComplexityProfile summarizes per-file cyclomatic complexity estimates.
type ComplexityProfile struct {
	Average      float64                `json:"average"`
	Max          float64                `json:"max"`
	Distribution ComplexityDistribution `json:"distribution"`
}

// ComplexityDistribution buckets files by their complexity score. Values
// are fractions of the files that had at least one countable unit and sum
// to 1.0 when that set is non-empty.
type ComplexityDistribution struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// CodeQuality carries the composite quality assessment.
type CodeQuality struct {
	Score           float64        `json:"score"`
	Issues          []string       `json:"issues"`
	Recommendations []string       `json:"recommendations"`
	Metrics         QualityMetrics `json:"metrics"`
	Patterns        PatternGroups  `json:"patterns"`
	Hotspots        []Hotspot      `json:"hotspots"`
}

// QualityMetrics holds the four sub-scores blended into CodeQuality.Score.
// All values are 0-100.
type QualityMetrics struct {
	MaintainabilityIndex float64 `json:"maintainability_index"`
	TechnicalDebtRatio   float64 `json:"technical_debt_ratio"`
	CodeDuplication      float64 `json:"code_duplication"`
	ArchitectureScore    float64 `json:"architecture_score"`
}

// PatternGroups partitions heuristic matches into the three disjoint
// detector categories.
type PatternGroups struct {
	DesignPatterns []PatternMatch `json:"design_patterns"`
	AntiPatterns   []PatternMatch `json:"anti_patterns"`
	CodeSmells     []PatternMatch `json:"code_smells"`
}

// PatternMatch records one heuristic rule hit. Confidence is advisory
// certainty in [0,1], not a statistical probability.
type PatternMatch struct {
	Pattern    string  `json:"pattern"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Confidence float64 `json:"confidence"`
}

// Hotspot flags a file whose size or complexity makes it a review priority.
type Hotspot struct {
	Type        HotspotType `json:"type"`
	File        string      `json:"file"`
	Lines       int         `json:"lines"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
}

// Security carries the heuristic vulnerability scan outcome.
type Security struct {
	Score           float64         `json:"score"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Recommendations []string        `json:"recommendations"`
}

// Vulnerability records one security rule hit.
type Vulnerability struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
}

// Documentation carries the documentation presence and quality assessment.
type Documentation struct {
	Score           float64              `json:"score"`
	Issues          []string             `json:"issues"`
	Recommendations []string             `json:"recommendations"`
	Details         DocumentationDetails `json:"details"`
}

// DocumentationDetails holds the individual documentation signals.
type DocumentationDetails struct {
	HasReadme       bool     `json:"has_readme"`
	HasContributing bool     `json:"has_contributing"`
	HasLicense      bool     `json:"has_license"`
	HasAPIDocs      bool     `json:"has_api_docs"`
	HasChangelog    bool     `json:"has_changelog"`
	ReadmeQuality   float64  `json:"readme_quality"`
	CommentCoverage float64  `json:"comment_coverage"`
	DocFiles        []string `json:"doc_files"`
}

// TestCoverage carries test detection results and the coverage proxy.
// CoveragePercentage is an estimate derived from test-to-source line
// ratios, not instrumented coverage.
type TestCoverage struct {
	HasTests           bool     `json:"has_tests"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	TestFrameworks     []string `json:"test_frameworks"`
	TestFiles          []string `json:"test_files"`
	TestDirectories    []string `json:"test_directories"`
	Issues             []string `json:"issues"`
	Recommendations    []string `json:"recommendations"`
}
