package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/source"
)

func analyze(t *testing.T, files map[string]string, opts ...Option) *models.AnalysisResult {
	t.Helper()
	result, err := New(opts...).Analyze(context.Background(), source.FromMap(files))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestAnalyzeNilTree(t *testing.T) {
	result, err := New().Analyze(context.Background(), nil)
	assert.Nil(t, result)

	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "input", ae.Stage)
	assert.ErrorIs(t, err, ErrNilTree)
}

func TestAnalyzeEmptyTree(t *testing.T) {
	result := analyze(t, nil)

	assert.Equal(t, 0, result.Metrics.FilesCount)
	assert.Equal(t, 0, result.Metrics.LinesOfCode)
	assert.Zero(t, result.CodeQuality.Score)
	assert.Equal(t, float64(100), result.Security.Score)
	assert.Zero(t, result.Documentation.Score)
	assert.False(t, result.TestCoverage.HasTests)
	assert.False(t, result.Partial)

	// The zero result still honors the wire contract: arrays, not nulls.
	assert.NotNil(t, result.Security.Vulnerabilities)
	assert.NotNil(t, result.CodeQuality.Patterns.DesignPatterns)
	assert.NotNil(t, result.TestCoverage.TestFiles)
	assert.NotNil(t, result.Metrics.LargestFiles)
}

// mixedTree is a tree with enough variety to touch every section.
func mixedTree() map[string]string {
	files := map[string]string{
		"README.md":         "# Demo\n\n## Install\n\npip install demo\n\n## Usage\n\nRun it.\n",
		"LICENSE":           "MIT License\n",
		"package.json":      "{\n  \"name\": \"demo\",\n  \"devDependencies\": {\"jest\": \"^29.0.0\"}\n}\n",
		"src/app.py":        "import os\n\n\ndef main():\n    # entry point\n    if os.name:\n        return 1\n    return 0\n",
		"src/secrets.py":    "API_KEY = \"sk-abcdef123456\"\n",
		"src/handler.js":    "function handle(req) {\n  if (req && req.body) {\n    return req.body;\n  }\n  return null;\n}\n",
		"tests/test_app.py": "import pytest\n\n\ndef test_main():\n    assert main() == 0\n",
	}
	for i := range 20 {
		var sb strings.Builder
		for j := range 12 {
			fmt.Fprintf(&sb, "field_%d_%d = load(%d, %d)\n", i, j, i, j)
		}
		files[fmt.Sprintf("src/gen/mod_%02d.py", i)] = sb.String()
	}
	return files
}

func TestAnalyzeDeterministic(t *testing.T) {
	files := mixedTree()

	first := analyze(t, files, WithWorkers(8))
	second := analyze(t, files, WithWorkers(8))
	serial := analyze(t, files, WithWorkers(1))

	require.Equal(t, first, second)
	require.Equal(t, first, serial)
}

func TestLanguagePercentagesSumToHundred(t *testing.T) {
	result := analyze(t, mixedTree())

	require.NotEmpty(t, result.Metrics.Languages)
	sum := 0.0
	for _, bucket := range result.Metrics.Languages {
		sum += bucket.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.5)
}

func TestScoresStayInBounds(t *testing.T) {
	files := mixedTree()
	files["src/big.py"] = duplicatedFile()
	files["src/mess.py"] = "eval(raw)\nTOKEN = \"sk-zzzzyyyyxxxx\"\n# TODO: a\n# TODO: b\n# TODO: c\n# TODO: d\n# TODO: e\n"

	result := analyze(t, files)

	bounded := map[string]float64{
		"code_quality.score":    result.CodeQuality.Score,
		"maintainability_index": result.CodeQuality.Metrics.MaintainabilityIndex,
		"technical_debt_ratio":  result.CodeQuality.Metrics.TechnicalDebtRatio,
		"code_duplication":      result.CodeQuality.Metrics.CodeDuplication,
		"architecture_score":    result.CodeQuality.Metrics.ArchitectureScore,
		"security.score":        result.Security.Score,
		"documentation.score":   result.Documentation.Score,
		"coverage_percentage":   result.TestCoverage.CoveragePercentage,
	}
	for name, v := range bounded {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
}

func TestLargestFilesOrdering(t *testing.T) {
	lines := func(n int) string {
		var sb strings.Builder
		for i := range n {
			fmt.Fprintf(&sb, "v_%d = %d\n", i, i)
		}
		return sb.String()
	}
	result := analyze(t, map[string]string{
		"a.py": lines(30),
		"b.py": lines(25),
		"c.py": lines(25),
		"d.py": lines(20),
		"e.py": lines(10),
		"f.py": lines(5),
		"g.py": lines(1),
	})

	largest := result.Metrics.LargestFiles
	require.Len(t, largest, 5)
	wantPaths := []string{"a.py", "b.py", "c.py", "d.py", "e.py"}
	wantLines := []int{30, 25, 25, 20, 10}
	for i, lf := range largest {
		assert.Equal(t, wantPaths[i], lf.Path)
		assert.Equal(t, wantLines[i], lf.Lines)
	}
}

func TestSecurityPenaltyMonotonic(t *testing.T) {
	base := map[string]string{
		"app.py": "PASSWORD = \"hunter2secret\"\n",
	}
	before := analyze(t, base)

	base["evil.py"] = "eval(user_input)\n"
	after := analyze(t, base)

	assert.Less(t, after.Security.Score, before.Security.Score)
}

func TestScenarioReadmeAndPython(t *testing.T) {
	result := analyze(t, map[string]string{
		"README.md": "# Title\n## Install\n```sh\n...\n```",
		"main.py":   "def f():\n    if True:\n        pass\n",
	})

	assert.True(t, result.Documentation.Details.HasReadme)
	assert.Equal(t, 1, result.Metrics.Languages["python"].Files)
	assert.Greater(t, result.CodeQuality.Score, 0.0)
	assert.LessOrEqual(t, result.CodeQuality.Score, 100.0)
}

func TestScenarioHardcodedSecret(t *testing.T) {
	result := analyze(t, map[string]string{
		"secrets.py": "API_KEY = \"sk-abcdef123456\"",
	})

	require.NotEmpty(t, result.Security.Vulnerabilities)
	v := result.Security.Vulnerabilities[0]
	assert.Equal(t, "hardcoded_secret", v.Type)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.Equal(t, float64(90), result.Security.Score)
}

func TestScenarioTrivialFilesScoreOne(t *testing.T) {
	files := make(map[string]string, 100)
	for i := range 100 {
		var sb strings.Builder
		for j := range 10 {
			fmt.Fprintf(&sb, "m%d_line%d = %d\n", i, j, j)
		}
		files[fmt.Sprintf("mod_%03d.py", i)] = sb.String()
	}
	result := analyze(t, files)

	assert.InDelta(t, 1.0, result.Metrics.Complexity.Average, 0.001)
	assert.InDelta(t, 1.0, result.Metrics.Complexity.Distribution.Low, 0.001)
}

func TestScenarioPytestDetected(t *testing.T) {
	result := analyze(t, map[string]string{
		"foo.py":            "def foo():\n    return 3\n",
		"tests/test_foo.py": "import pytest\n\n\ndef test_foo():\n    assert foo() == 3\n",
	})

	assert.True(t, result.TestCoverage.HasTests)
	assert.Contains(t, result.TestCoverage.TestFrameworks, "pytest")
}

// duplicatedFile builds a ~5000-line file with a 50-line block repeated
// four times between runs of unique filler.
func duplicatedFile() string {
	block := make([]string, 0, 50)
	for i := range 50 {
		block = append(block, fmt.Sprintf("    value_%d = source[%d] + offset", i, i))
	}
	var lines []string
	for rep := range 4 {
		lines = append(lines, block...)
		for i := range 1200 {
			lines = append(lines, fmt.Sprintf("unique_%d_%d = seed", rep, i))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestScenarioRepeatedBlockRaisesDuplication(t *testing.T) {
	result := analyze(t, map[string]string{
		"big.py": duplicatedFile(),
	})

	assert.Greater(t, result.CodeQuality.Metrics.CodeDuplication, 0.0)
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Analyze(ctx, source.FromMap(map[string]string{
		"main.py": "def f():\n    return 1\n",
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.True(t, result.Partial)
	assert.Zero(t, result.CodeQuality.Score)
}

// quickTree pairs a file past the quick-depth ceiling with manifest-only
// framework evidence, the two things quick mode skips.
func quickTree() map[string]string {
	var sb strings.Builder
	for i := 0; sb.Len() <= quickScanLimit; i++ {
		fmt.Fprintf(&sb, "if cond_%d:\n    total_%d = fetch(%d)\n", i, i, i)
	}
	return map[string]string{
		"big.py":            sb.String(),
		"package.json":      "{\"devDependencies\": {\"jest\": \"^29.0.0\"}}\n",
		"tests/app.test.js": "exports.square = (n) => n * n;\n",
	}
}

func TestQuickDepthSkipsLargeFilesAndManifests(t *testing.T) {
	standard := analyze(t, quickTree())
	quick := analyze(t, quickTree(), WithDepth(DepthQuick))

	// Standard scores the branch-heavy file; quick only sees the tiny test
	// helper, whose single unit scores the base complexity.
	assert.Greater(t, standard.Metrics.Complexity.Average, 1.0)
	assert.Equal(t, 1.0, quick.Metrics.Complexity.Average)

	assert.Contains(t, standard.TestCoverage.TestFrameworks, "jest")
	assert.NotContains(t, quick.TestCoverage.TestFrameworks, "jest")
}

func TestDeepDepthWidensDuplicationWindow(t *testing.T) {
	block := []string{
		"acc = acc + delta",
		"delta = delta * 2",
		"limit = limit - 1",
		"total = total + acc",
		"steps = steps + 1",
	}
	files := map[string]string{
		"x.py": "alpha = 1\nbeta = 2\n" + strings.Join(block, "\n") + "\n",
		"y.py": "gamma = 3\ntheta = 4\n" + strings.Join(block, "\n") + "\n",
	}

	standard := analyze(t, files)
	deep := analyze(t, files, WithDepth(DepthDeep))

	// The shared run is five lines: visible at the default window, below
	// the deep window.
	assert.Greater(t, standard.CodeQuality.Metrics.CodeDuplication, 0.0)
	assert.Zero(t, deep.CodeQuality.Metrics.CodeDuplication)
}

func TestOversizedFileFallsBackToMetricsOnly(t *testing.T) {
	files := map[string]string{
		"huge.py":  "SECRET_KEY = \"sk-abcdef123456\"\n" + strings.Repeat("filler = 1\n", 200),
		"small.py": "x = 1\n",
	}

	full := analyze(t, files)
	capped := analyze(t, files, WithMaxScanSize(64))

	assert.NotEmpty(t, full.Security.Vulnerabilities)
	assert.Empty(t, capped.Security.Vulnerabilities)

	// Metrics still count the oversized file.
	assert.Equal(t, full.Metrics.LinesOfCode, capped.Metrics.LinesOfCode)
}

func TestParseDepth(t *testing.T) {
	for in, want := range map[string]Depth{
		"":         DepthStandard,
		"quick":    DepthQuick,
		"standard": DepthStandard,
		"deep":     DepthDeep,
	} {
		got, err := ParseDepth(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDepth("exhaustive")
	assert.Error(t, err)
}
