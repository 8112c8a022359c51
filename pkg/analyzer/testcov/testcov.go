// Package testcov detects test files, frameworks, and a coverage proxy.
// The coverage percentage is an estimate from the ratio of test lines to
// source lines, not instrumented coverage.
package testcov

import (
	"path"
	"sort"
	"strings"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/source"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// coverageScale maps the test-to-source line ratio to a percentage: a tree
// with one test line for every two source lines reads as 100.
const coverageScale = 200

// lowCoverageThreshold marks the point below which an issue is raised.
const lowCoverageThreshold = 30.0

// Assessor computes the test coverage section.
type Assessor struct {
	parseManifests bool
}

// Option is a functional option for configuring Assessor.
type Option func(*Assessor)

// WithoutManifestEvidence disables framework detection from manifests and
// CI configuration. Quick-depth runs use this.
func WithoutManifestEvidence() Option {
	return func(a *Assessor) {
		a.parseManifests = false
	}
}

// NewAssessor creates an assessor with manifest evidence enabled.
func NewAssessor(opts ...Option) *Assessor {
	a := &Assessor{parseManifests: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// testDirSegments mark directories that hold tests by convention.
var testDirSegments = map[string]bool{
	"test": true, "tests": true, "__tests__": true,
	"spec": true, "specs": true, "testing": true,
}

// IsTestPath reports whether a path looks like a test file by directory or
// naming convention.
func IsTestPath(p string) bool {
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if testDirSegments[seg] {
			return true
		}
	}
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	lower := strings.ToLower(stem)
	switch {
	case strings.HasPrefix(lower, "test_"):
		return true
	case strings.HasSuffix(lower, "_test"), strings.HasSuffix(lower, "_spec"):
		return true
	case strings.HasSuffix(lower, ".test"), strings.HasSuffix(lower, ".spec"):
		return true
	case strings.HasSuffix(stem, "Test"), strings.HasSuffix(stem, "Tests"), strings.HasSuffix(stem, "Spec"):
		return true
	case base == "conftest.py":
		return true
	}
	return false
}

// Assess computes the test coverage section from the tree and its per-file
// records.
func (a *Assessor) Assess(tree *source.Tree, records []models.FileRecord) models.TestCoverage {
	tc := models.TestCoverage{
		TestFrameworks:  []string{},
		TestFiles:       []string{},
		TestDirectories: []string{},
		Issues:          []string{},
		Recommendations: []string{},
	}

	frameworks := map[string]bool{}
	dirs := map[string]bool{}
	var testLines, sourceLines int

	for _, r := range records {
		isCode := language.IsCode(language.Language(r.Language))
		if IsTestPath(r.Path) {
			tc.TestFiles = append(tc.TestFiles, r.Path)
			dirs[path.Dir(r.Path)] = true
			if isCode {
				testLines += r.LineCount
				content, err := tree.Read(r.Path)
				if err == nil {
					for _, fw := range frameworksInFile(r.Path, language.Language(r.Language), content) {
						frameworks[fw] = true
					}
				}
			}
			continue
		}
		if isCode {
			sourceLines += r.LineCount
		}
	}

	if a.parseManifests {
		for _, fw := range manifestFrameworks(tree) {
			frameworks[fw] = true
		}
	}

	tc.HasTests = len(tc.TestFiles) > 0
	sort.Strings(tc.TestFiles)
	for d := range dirs {
		tc.TestDirectories = append(tc.TestDirectories, d)
	}
	sort.Strings(tc.TestDirectories)
	for fw := range frameworks {
		tc.TestFrameworks = append(tc.TestFrameworks, fw)
	}
	sort.Strings(tc.TestFrameworks)

	switch {
	case sourceLines > 0:
		ratio := float64(testLines) / float64(sourceLines)
		tc.CoveragePercentage = stats.Round1(stats.Clamp(ratio*coverageScale, 0, 100))
	case testLines > 0:
		tc.CoveragePercentage = 100
	}

	if !tc.HasTests {
		tc.Issues = append(tc.Issues, "No test files detected")
		tc.Recommendations = append(tc.Recommendations, "Add automated tests alongside the code they cover")
	} else if tc.CoveragePercentage < lowCoverageThreshold {
		tc.Issues = append(tc.Issues, "Test coverage appears low relative to source size")
		tc.Recommendations = append(tc.Recommendations, "Increase test coverage for core logic")
	}
	if tc.HasTests && len(tc.TestFrameworks) == 0 {
		tc.Recommendations = append(tc.Recommendations, "Adopt a test framework for structure and CI integration")
	}
	return tc
}
