// Package analyzer orchestrates the per-file scanners and the section
// aggregators that together produce an AnalysisResult for a source tree.
//
// Analysis runs in three phases: per-file fact gathering on a worker pool,
// concurrent section aggregation, and the final quality blend that consumes
// the other sections. Output is deterministic for a given tree and
// configuration regardless of scheduling.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/caliper-sh/caliper/internal/fileproc"
	"github.com/caliper-sh/caliper/pkg/analyzer/complexity"
	"github.com/caliper-sh/caliper/pkg/analyzer/docs"
	"github.com/caliper-sh/caliper/pkg/analyzer/metrics"
	"github.com/caliper-sh/caliper/pkg/analyzer/patterns"
	"github.com/caliper-sh/caliper/pkg/analyzer/quality"
	"github.com/caliper-sh/caliper/pkg/analyzer/security"
	"github.com/caliper-sh/caliper/pkg/analyzer/testcov"
	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/source"
)

// ErrNilTree is the precondition failure for a missing input tree.
var ErrNilTree = errors.New("file tree is nil")

// AnalysisError reports a whole-tree failure, the only condition under
// which the engine refuses to produce a result. Per-file and per-section
// problems degrade to documented zero shapes instead.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Deep-mode tuning applied at construction.
const (
	deepPatternThreshold  = 0.2
	deepDuplicationWindow = 7
)

// Analyzer runs the full analysis pipeline. Safe for concurrent use; each
// Analyze call carries its own state.
type Analyzer struct {
	depth       Depth
	maxScanSize int64
	workers     int
	progress    fileproc.ProgressFunc
	onDegrade   DegradeFunc
	degradeMu   sync.Mutex

	patterns    *patterns.Detector
	security    *security.Scanner
	testcov     *testcov.Assessor
	duplication *quality.Estimator
}

// New builds an analyzer. Depth settings are resolved here: quick disables
// manifest and CI evidence gathering, deep lowers the pattern confidence
// threshold and widens the duplication window.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		depth:       DepthStandard,
		maxScanSize: DefaultMaxScanSize,
	}
	for _, opt := range opts {
		opt(a)
	}

	var (
		patternOpts  []patterns.Option
		securityOpts []security.Option
		testcovOpts  []testcov.Option
		dupOpts      []quality.EstimatorOption
	)
	switch a.depth {
	case DepthQuick:
		securityOpts = append(securityOpts, security.WithoutManifestScan())
		testcovOpts = append(testcovOpts, testcov.WithoutManifestEvidence())
	case DepthDeep:
		patternOpts = append(patternOpts, patterns.WithThreshold(deepPatternThreshold))
		dupOpts = append(dupOpts, quality.WithWindow(deepDuplicationWindow))
	}

	a.patterns = patterns.NewDetector(patternOpts...)
	a.security = security.NewScanner(securityOpts...)
	a.testcov = testcov.NewAssessor(testcovOpts...)
	a.duplication = quality.NewEstimator(dupOpts...)
	return a
}

// fileFacts is everything the per-file phase learns about one file. The
// zero value is a fully degraded file: counted, nothing else.
type fileFacts struct {
	record   models.FileRecord
	score    complexity.FileScore
	matches  patterns.FileMatches
	vulns    []models.Vulnerability
	dup      quality.FileLines
	comments int
	scanned  int
}

// Analyze runs the pipeline over tree.
//
// A nil tree is the only hard failure and returns an *AnalysisError. An
// empty tree returns the documented zero result. On context cancellation
// Analyze returns the partial result alongside the wrapped context error:
// sections aggregated before the cutoff are kept, the rest stay in their
// zero shapes, and Partial is set.
func (a *Analyzer) Analyze(ctx context.Context, tree *source.Tree) (*models.AnalysisResult, error) {
	if tree == nil {
		return nil, &AnalysisError{Stage: "input", Err: ErrNilTree}
	}
	if tree.Len() == 0 {
		return models.ZeroResult(), nil
	}

	var degraded fileproc.ProcessingErrors
	facts, err := fileproc.MapTree(ctx, tree.Files(), a.workers, func(_ context.Context, f source.File) fileFacts {
		est := complexity.NewEstimator()
		defer est.Close()
		return a.analyzeFile(est, f)
	}, a.progress, &degraded)
	for _, pe := range degraded.All() {
		a.degrade(pe.Path, pe.Err)
	}

	result := models.ZeroResult()
	if err != nil {
		result.Partial = true
		return result, fmt.Errorf("analysis canceled: %w", err)
	}

	// Per-fact slices stay in tree order so every aggregate below is
	// reproducible.
	records := make([]models.FileRecord, len(facts))
	scores := make([]complexity.FileScore, len(facts))
	matchesList := make([]patterns.FileMatches, len(facts))
	var (
		allVulns     []models.Vulnerability
		dupFiles     []quality.FileLines
		fileStats    []patterns.FileStat
		commentLines int
		scannedLines int
		codeFiles    int
		codeLines    int
	)
	for i, ft := range facts {
		records[i] = ft.record
		scores[i] = ft.score
		matchesList[i] = ft.matches
		allVulns = append(allVulns, ft.vulns...)
		commentLines += ft.comments
		scannedLines += ft.scanned

		if !language.IsCode(language.Language(ft.record.Language)) {
			continue
		}
		codeFiles++
		codeLines += ft.record.LineCount
		fileStats = append(fileStats, patterns.FileStat{
			Path:       ft.record.Path,
			Lines:      ft.record.LineCount,
			Complexity: ft.score.Score,
		})
		if ft.dup.Path != "" {
			dupFiles = append(dupFiles, ft.dup)
		}
	}

	groups := patterns.Collect(nil)
	spots := []models.Hotspot{}
	var dupPct float64

	var wg conc.WaitGroup
	wg.Go(func() {
		a.runSection("metrics", func() {
			m := metrics.Aggregate(records)
			m.Complexity = complexity.Profile(scores)
			result.Metrics = m
		}, nil)
	})
	wg.Go(func() {
		a.runSection("security", func() {
			result.Security = security.Report(allVulns)
		}, func() {
			result.Security = models.FailedSecurity()
		})
	})
	wg.Go(func() {
		a.runSection("documentation", func() {
			result.Documentation = docs.Assess(a.docSignals(tree, commentLines, scannedLines))
		}, nil)
	})
	wg.Go(func() {
		a.runSection("tests", func() {
			result.TestCoverage = a.testcov.Assess(tree, records)
		}, nil)
	})
	wg.Go(func() {
		a.runSection("patterns", func() {
			groups = patterns.Collect(matchesList)
			spots = patterns.Hotspots(fileStats)
		}, nil)
	})
	wg.Go(func() {
		a.runSection("duplication", func() {
			dupPct = a.duplication.Estimate(dupFiles)
		}, nil)
	})
	wg.Wait()

	if err := ctx.Err(); err != nil {
		result.Partial = true
		return result, fmt.Errorf("analysis canceled: %w", err)
	}

	var avgFileLines float64
	if codeFiles > 0 {
		avgFileLines = float64(codeLines) / float64(codeFiles)
	}
	var commentCoverage float64
	if scannedLines > 0 {
		commentCoverage = float64(commentLines) / float64(scannedLines)
	}
	a.runSection("quality", func() {
		result.CodeQuality = quality.Score(quality.Inputs{
			TotalLines:             codeLines,
			AvgFileLines:           avgFileLines,
			HighComplexityFraction: complexity.HighFraction(scores),
			CommentCoverage:        commentCoverage,
			Duplication:            dupPct,
			Patterns:               groups,
			Hotspots:               spots,
		})
	}, nil)

	return result, nil
}

// analyzeFile gathers every per-file fact in one pass over the content.
func (a *Analyzer) analyzeFile(est *complexity.Estimator, f source.File) fileFacts {
	facts := fileFacts{record: metrics.RecordFor(f, a.maxScanSize)}
	if facts.record.LineCount == 0 {
		// Binary, undecodable, or empty: the record is the whole story.
		return facts
	}

	lang := language.Language(facts.record.Language)
	if a.contentScannable(facts.record.ByteSize) {
		sample := []byte(facts.record.Sample)
		if a.depthScannable(facts.record.ByteSize) {
			facts.matches = a.patterns.DetectFile(f.Path, lang, sample)
		}
		facts.vulns = a.security.ScanFile(f.Path, lang, sample)
		facts.comments, facts.scanned = docs.CountCommentLines(lang, sample)
		if language.IsCode(lang) {
			facts.dup = quality.PrepareFile(f.Path, sample)
		}
	}
	if a.depthScannable(facts.record.ByteSize) {
		facts.score = est.Score(f.Path, lang, f.Content)
	}
	return facts
}

// contentScannable bounds pattern, security, and duplication scanning;
// oversized files fall back to metrics only.
func (a *Analyzer) contentScannable(size int) bool {
	return int64(size) <= a.maxScanSize
}

// depthScannable applies the quick-depth ceiling for the two most
// expensive per-file components, pattern matching and complexity scoring.
func (a *Analyzer) depthScannable(size int) bool {
	return a.depth != DepthQuick || size <= quickScanLimit
}

// docSignals assembles the documentation inputs from the tree and the
// comment tallies gathered per file.
func (a *Analyzer) docSignals(tree *source.Tree, commentLines, scannedLines int) docs.Signals {
	sig := docs.Signals{
		Paths:        tree.Paths(),
		CommentLines: commentLines,
		CodeLines:    scannedLines,
	}
	if readme := docs.FindReadme(sig.Paths); readme != "" {
		if content, err := tree.Read(readme); err == nil {
			sig.Readme = content
		}
	}
	return sig
}

// runSection executes one aggregation step, containing any panic so a
// single broken component cannot take down the whole analysis. fallback,
// when non-nil, restores the section's documented failure shape.
func (a *Analyzer) runSection(name string, fn, fallback func()) {
	defer func() {
		if r := recover(); r != nil {
			if fallback != nil {
				fallback()
			}
			a.degrade(name, fmt.Errorf("panic: %v", r))
		}
	}()
	fn()
}

func (a *Analyzer) degrade(scope string, err error) {
	if a.onDegrade == nil {
		return
	}
	a.degradeMu.Lock()
	a.onDegrade(scope, err)
	a.degradeMu.Unlock()
}
