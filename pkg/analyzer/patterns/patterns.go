// Package patterns detects design patterns, anti-patterns, and code smells
// with regex and layout heuristics over file content. Matches are advisory:
// each carries a confidence in [0,1] and everything at or above the detector
// threshold is reported, so downstream consumers decide how much to trust a
// hit.
package patterns

import (
	"sort"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
)

// DefaultThreshold is the minimum confidence a match needs to be reported.
const DefaultThreshold = 0.3

// Detector runs the three rule sets over individual files. It is safe for
// concurrent use.
type Detector struct {
	threshold float64
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithThreshold sets the minimum reported confidence. Values outside (0,1]
// are ignored.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// NewDetector creates a detector with the default confidence threshold.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FileMatches holds one file's hits, partitioned by rule set.
type FileMatches struct {
	Design []models.PatternMatch
	Anti   []models.PatternMatch
	Smells []models.PatternMatch
}

// DetectFile scans one file. Non-code languages and empty content yield no
// matches.
func (d *Detector) DetectFile(path string, lang language.Language, content []byte) FileMatches {
	var fm FileMatches
	caps := language.Caps(lang)
	if !caps.Code || len(content) == 0 {
		return fm
	}

	src := newScanSource(path, string(content), caps)
	for _, r := range designRules {
		fm.Design = append(fm.Design, d.apply(r, src)...)
	}
	for _, r := range antiRules {
		fm.Anti = append(fm.Anti, d.apply(r, src)...)
	}
	for _, r := range smellRules {
		fm.Smells = append(fm.Smells, d.apply(r, src)...)
	}
	return fm
}

func (d *Detector) apply(r rule, src *scanSource) []models.PatternMatch {
	var out []models.PatternMatch
	for _, hit := range r.match(src) {
		if hit.Confidence > 1 {
			hit.Confidence = 1
		}
		if hit.Confidence < d.threshold {
			continue
		}
		out = append(out, models.PatternMatch{
			Pattern:    r.name,
			File:       src.path,
			Line:       hit.Line,
			Confidence: hit.Confidence,
		})
	}
	return out
}

// Collect merges per-file results into sorted groups. Slices are always
// non-nil so the wire format shows empty arrays rather than null.
func Collect(results []FileMatches) models.PatternGroups {
	groups := models.PatternGroups{
		DesignPatterns: []models.PatternMatch{},
		AntiPatterns:   []models.PatternMatch{},
		CodeSmells:     []models.PatternMatch{},
	}
	for _, fm := range results {
		groups.DesignPatterns = append(groups.DesignPatterns, fm.Design...)
		groups.AntiPatterns = append(groups.AntiPatterns, fm.Anti...)
		groups.CodeSmells = append(groups.CodeSmells, fm.Smells...)
	}
	sortMatches(groups.DesignPatterns)
	sortMatches(groups.AntiPatterns)
	sortMatches(groups.CodeSmells)
	return groups
}

func sortMatches(ms []models.PatternMatch) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].File != ms[j].File {
			return ms[i].File < ms[j].File
		}
		if ms[i].Line != ms[j].Line {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].Pattern < ms[j].Pattern
	})
}
