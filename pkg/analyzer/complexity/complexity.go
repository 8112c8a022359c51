// Package complexity estimates cyclomatic complexity per file and summarizes
// the distribution across a tree.
//
// Files in languages with a tree-sitter grammar are scored structurally from
// the syntax tree. Everything else falls back to keyword counting driven by
// the language capability table. Both paths share the same model: every
// function-like unit starts at 1 and each decision point adds 1. A file's
// score is the mean over its units, so a file with no branching scores
// exactly 1.0 regardless of length.
package complexity

import (
	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// Bucket thresholds for the complexity distribution. Scores below
// lowMax are "low", scores above highMin are "high", the rest "medium".
const (
	lowMax  = 5.0
	highMin = 10.0
)

// FileScore is the per-file complexity result fed into Profile.
type FileScore struct {
	Path  string
	Score float64 // mean complexity per function-like unit
	Units int     // function-like units found; 0 means the file is not scoreable
}

// Estimator scores a single file. It owns a parser instance and is not safe
// for concurrent use; create one per worker.
type Estimator struct {
	structural *structural
}

// NewEstimator returns an estimator ready to score files.
func NewEstimator() *Estimator {
	return &Estimator{structural: newStructural()}
}

// Close releases the parser resources held by the estimator.
func (e *Estimator) Close() {
	e.structural.close()
}

// Score computes the complexity of one file. Files without content, binary
// files, and files in non-code languages return a zero-unit score that
// Profile excludes from the distribution.
func (e *Estimator) Score(path string, lang language.Language, content []byte) FileScore {
	if len(content) == 0 || !language.IsCode(lang) {
		return FileScore{Path: path}
	}
	if fs, ok := e.structural.score(path, lang, content); ok {
		return fs
	}
	return heuristicScore(path, lang, content)
}

// Profile aggregates per-file scores into the tree-level complexity summary.
// Files with zero units are excluded from both the average and the
// distribution; an empty input yields a zero profile with distribution
// fractions of 0.
func Profile(scores []FileScore) models.ComplexityProfile {
	var (
		values []float64
		max    float64
		low    int
		medium int
		high   int
	)
	for _, s := range scores {
		if s.Units == 0 {
			continue
		}
		values = append(values, s.Score)
		if s.Score > max {
			max = s.Score
		}
		switch {
		case s.Score < lowMax:
			low++
		case s.Score > highMin:
			high++
		default:
			medium++
		}
	}
	p := models.ComplexityProfile{}
	n := len(values)
	if n == 0 {
		return p
	}
	p.Average = stats.Round1(stats.Mean(values))
	p.Max = stats.Round1(max)
	p.Distribution = models.ComplexityDistribution{
		Low:    stats.Round1(float64(low) / float64(n)),
		Medium: stats.Round1(float64(medium) / float64(n)),
		High:   stats.Round1(float64(high) / float64(n)),
	}
	return p
}

// HighFraction returns the share of scoreable files above highMin. The
// quality scorer uses it for the maintainability penalty.
func HighFraction(scores []FileScore) float64 {
	var total, high int
	for _, s := range scores {
		if s.Units == 0 {
			continue
		}
		total++
		if s.Score > highMin {
			high++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(high) / float64(total)
}
