package analyzer

import (
	"fmt"

	"github.com/caliper-sh/caliper/internal/fileproc"
)

// Depth selects how much per-file work an analysis performs.
type Depth string

const (
	// DepthQuick skips pattern and complexity scanning for large files and
	// does not parse dependency manifests or CI configuration.
	DepthQuick Depth = "quick"
	// DepthStandard runs every component with default settings.
	DepthStandard Depth = "standard"
	// DepthDeep lowers the pattern confidence threshold and widens the
	// duplication window, trading time for recall.
	DepthDeep Depth = "deep"
)

// ParseDepth converts a configuration string into a Depth.
func ParseDepth(s string) (Depth, error) {
	switch Depth(s) {
	case DepthQuick, DepthStandard, DepthDeep:
		return Depth(s), nil
	case "":
		return DepthStandard, nil
	}
	return "", fmt.Errorf("unknown analysis depth %q (want quick, standard, or deep)", s)
}

// DefaultMaxScanSize is the content-scan ceiling: files larger than this
// are measured but not content-scanned for patterns, vulnerabilities, or
// duplication.
const DefaultMaxScanSize int64 = 1 << 20

// quickScanLimit is the per-file ceiling for pattern and complexity
// scanning at DepthQuick.
const quickScanLimit = 64 << 10

// DegradeFunc receives each recovered per-file or per-section failure.
// scope is a file path or a section name.
type DegradeFunc func(scope string, err error)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDepth sets the analysis depth. Unknown values fall back to standard.
func WithDepth(d Depth) Option {
	return func(a *Analyzer) {
		switch d {
		case DepthQuick, DepthStandard, DepthDeep:
			a.depth = d
		}
	}
}

// WithMaxScanSize overrides the content-scan ceiling in bytes. Values <= 0
// are ignored.
func WithMaxScanSize(n int64) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxScanSize = n
		}
	}
}

// WithWorkers sets the worker count for per-file analysis. Values <= 0
// select the default.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithProgress registers a callback invoked once per analyzed file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// WithOnDegrade registers a callback for recovered failures. The analysis
// itself never fails on these; the callback lets callers surface them as
// warnings.
func WithOnDegrade(fn DegradeFunc) Option {
	return func(a *Analyzer) {
		a.onDegrade = fn
	}
}
