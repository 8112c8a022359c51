package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/caliper-sh/caliper/internal/cache"
	"github.com/caliper-sh/caliper/internal/output"
	"github.com/caliper-sh/caliper/internal/progress"
	"github.com/caliper-sh/caliper/internal/remote"
	"github.com/caliper-sh/caliper/internal/scanner"
	"github.com/caliper-sh/caliper/pkg/analyzer"
	"github.com/caliper-sh/caliper/pkg/config"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/source"
	"github.com/caliper-sh/caliper/pkg/watch"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "caliper",
		Usage:    "Multi-language code quality analysis CLI",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Caliper analyzes codebases for size and language metrics, complexity,
design patterns and code smells, duplication, security issues, documentation,
and test signals, blending them into a single scored report.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, C#, Ruby, PHP, and more`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CALIPER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "depth",
				Usage: "Analysis depth: quick, standard, deep",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel workers (0 = twice the CPU count)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the result cache",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC() // Get up-to-date statistics
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			metricsCmd(),
			qualityCmd(),
			securityCmd(),
			docsCmd(),
			testsCmd(),
			languagesCmd(),
			watchCmd(),
			cacheCmd(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	colored := cfg.Output.Color && !c.Bool("no-color")
	return output.NewFormatter(output.ParseFormat(name), c.String("output"), colored)
}

// analysisRun bundles one engine run with what commands need to render it.
type analysisRun struct {
	result   *models.AnalysisResult
	cfg      *config.Config
	degraded []string
	elapsed  time.Duration
	cached   bool
}

// openCache builds the result cache from config and flags. Cache trouble
// never fails a run; a broken cache dir just degrades to a disabled one.
func openCache(c *cli.Context, cfg *config.Config) *cache.Cache {
	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	dir := cfg.Cache.Dir
	if dir == "" {
		dir = cache.DefaultDir()
	}
	store, err := cache.New(dir, cfg.Cache.TTLHours, enabled)
	if err != nil {
		store, _ = cache.New("", 0, false)
	}
	return store
}

// runAnalysis scans the positional paths, runs the engine over the merged
// tree, and returns the result. Remote references are cloned to temp
// directories first. A nil run with nil error means no source files were
// found; the user has already been told.
func runAnalysis(c *cli.Context) (*analysisRun, error) {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	quiet := c.Bool("quiet") || cfg.Output.Quiet

	depthName := cfg.Analysis.Depth
	if s := c.String("depth"); s != "" {
		depthName = s
	}
	depth, err := analyzer.ParseDepth(depthName)
	if err != nil {
		return nil, err
	}

	workers := cfg.Analysis.Workers
	if n := c.Int("workers"); n > 0 {
		workers = n
	}

	// Resolve remote references before scanning. Labels keep the path the
	// user typed, so report paths and multi-root prefixes stay readable.
	type root struct{ label, dir string }
	roots := make([]root, 0, len(paths))
	for _, path := range paths {
		if src := remote.Parse(path); src != nil {
			cloneSpinner := progress.NewSpinner(fmt.Sprintf("Cloning %s...", src.URL), quiet)
			if err := src.Clone(c.Context, io.Discard, src.Ref == ""); err != nil {
				cloneSpinner.FinishError(err)
				return nil, fmt.Errorf("clone %s: %w", src.URL, err)
			}
			defer src.Cleanup()
			cloneSpinner.FinishSuccess()
			roots = append(roots, root{label: path, dir: src.CloneDir})
			continue
		}
		roots = append(roots, root{label: path, dir: path})
	}

	scan := scanner.New(cfg)
	spinner := progress.NewSpinner("Scanning files...", quiet)
	var files []source.File
	for _, r := range roots {
		tree, scanErr := scan.Scan(r.dir)
		if scanErr != nil {
			spinner.FinishError(scanErr)
			return nil, scanErr
		}

		// With several roots, prefix paths so files from different roots
		// cannot collide in the merged tree.
		prefix := ""
		if len(roots) > 1 {
			prefix = filepath.ToSlash(filepath.Clean(r.label)) + "/"
		}
		for _, f := range tree.Files() {
			files = append(files, source.File{Path: prefix + f.Path, Content: f.Content})
		}
	}
	spinner.FinishSuccess()

	tree := source.NewTree(files)
	if tree.Len() == 0 {
		color.Yellow("No source files found")
		return nil, nil
	}

	run := &analysisRun{cfg: cfg}

	store := openCache(c, cfg)
	key := cache.Key(tree,
		string(depth),
		strconv.FormatInt(cfg.Analysis.MaxFileSizeForContentScan, 10),
		version,
	)
	if data, ok := store.Get(key); ok {
		var cachedResult models.AnalysisResult
		if jsonErr := json.Unmarshal(data, &cachedResult); jsonErr == nil {
			run.result = &cachedResult
			run.cached = true
			return run, nil
		}
	}

	tracker := progress.NewTracker("Analyzing...", tree.Len(), quiet)
	eng := analyzer.New(
		analyzer.WithDepth(depth),
		analyzer.WithWorkers(workers),
		analyzer.WithMaxScanSize(cfg.Analysis.MaxFileSizeForContentScan),
		analyzer.WithProgress(tracker.Tick),
		analyzer.WithOnDegrade(func(scope string, err error) {
			run.degraded = append(run.degraded, fmt.Sprintf("%s: %v", scope, err))
		}),
	)

	started := time.Now()
	result, err := eng.Analyze(context.Background(), tree)
	if err != nil {
		tracker.FinishError(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()
	run.elapsed = time.Since(started)
	run.result = result

	// Partial results are not worth replaying from cache.
	if !result.Partial {
		if data, jsonErr := json.Marshal(result); jsonErr == nil {
			_ = store.Set(key, data)
		}
	}

	if len(run.degraded) > 0 && !quiet {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Degraded sections (%d):\n", len(run.degraded))
		for _, d := range run.degraded {
			fmt.Fprintf(os.Stderr, "  - %s\n", d)
		}
	}
	return run, nil
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run the full analysis and render the scored report",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "fail-under",
				Usage: "Exit nonzero when the code quality score is below this value",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	res := run.result

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := &output.Report{
		Title: "Code Analysis Report",
		Sections: []output.Renderable{
			overviewTable(res, formatter.Colored()),
			qualityMetricsTable(res.CodeQuality, formatter.Colored()),
			securityTable(res.Security, formatter.Colored()),
			docsDetailsTable(res.Documentation),
			testsTable(res.TestCoverage),
		},
		Data: res,
	}
	if err := formatter.Output(report); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		if res.Partial {
			formatter.Warning("Analysis was interrupted; some sections may be incomplete")
		}
		if c.String("output") == "" && !c.Bool("quiet") {
			if run.cached {
				fmt.Printf("\nAnalyzed %d files (cached)\n", res.Metrics.FilesCount)
			} else {
				fmt.Printf("\nAnalyzed %d files in %s\n", res.Metrics.FilesCount, run.elapsed.Round(time.Millisecond))
			}
		}
	}

	if threshold := c.Float64("fail-under"); threshold > 0 && res.CodeQuality.Score < threshold {
		return cli.Exit(fmt.Sprintf("code quality score %.1f is below threshold %.1f", res.CodeQuality.Score, threshold), 1)
	}
	return nil
}

func metricsCmd() *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Aliases:   []string{"m"},
		Usage:     "Show size, language, and complexity metrics",
		ArgsUsage: "[path...]",
		Action:    runMetricsCmd,
	}
}

func runMetricsCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	res := run.result

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	sections := []output.Renderable{
		languagesTable(res.Metrics),
		complexityTable(res.Metrics.Complexity),
	}
	if len(res.Metrics.LargestFiles) > 0 {
		sections = append(sections, largestFilesTable(res.Metrics.LargestFiles))
	}

	report := &output.Report{
		Title:    "Code Metrics",
		Sections: sections,
		Data:     res.Metrics,
	}
	return formatter.Output(report)
}

func qualityCmd() *cli.Command {
	return &cli.Command{
		Name:      "quality",
		Aliases:   []string{"score"},
		Usage:     "Show the code quality score and its components",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Show top N hotspots",
			},
		},
		Action: runQualityCmd,
	}
}

func runQualityCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	res := run.result

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	sections := []output.Renderable{
		qualityMetricsTable(res.CodeQuality, formatter.Colored()),
		patternsSummaryTable(res.CodeQuality.Patterns),
	}
	if len(res.CodeQuality.Hotspots) > 0 {
		sections = append(sections, hotspotsTable(res.CodeQuality.Hotspots, c.Int("top"), formatter.Colored()))
	}

	report := &output.Report{
		Title:    "Code Quality",
		Sections: sections,
		Data:     res.CodeQuality,
	}
	if err := formatter.Output(report); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printAdvice(formatter, res.CodeQuality.Issues, res.CodeQuality.Recommendations)
	}
	return nil
}

func securityCmd() *cli.Command {
	return &cli.Command{
		Name:      "security",
		Aliases:   []string{"sec"},
		Usage:     "Scan for hardcoded secrets, injection risks, and weak crypto",
		ArgsUsage: "[path...]",
		Action:    runSecurityCmd,
	}
}

func runSecurityCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	sec := run.result.Security

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatText && len(sec.Vulnerabilities) == 0 {
		formatter.Success("No security issues detected (score %.1f)", sec.Score)
		return nil
	}

	if err := formatter.Output(securityTable(sec, formatter.Colored())); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printAdvice(formatter, nil, sec.Recommendations)
	}
	return nil
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Aliases:   []string{"doc"},
		Usage:     "Assess documentation presence and quality",
		ArgsUsage: "[path...]",
		Action:    runDocsCmd,
	}
}

func runDocsCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	doc := run.result.Documentation

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(docsDetailsTable(doc)); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printAdvice(formatter, doc.Issues, doc.Recommendations)
	}
	return nil
}

func testsCmd() *cli.Command {
	return &cli.Command{
		Name:      "tests",
		Aliases:   []string{"cov"},
		Usage:     "Detect test files, frameworks, and estimate coverage",
		ArgsUsage: "[path...]",
		Action:    runTestsCmd,
	}
}

func runTestsCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	cov := run.result.TestCoverage

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(testsTable(cov)); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printAdvice(formatter, cov.Issues, cov.Recommendations)
	}
	return nil
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Re-run analysis whenever source files change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Quiet period before re-analysis after a change",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	paths := getPaths(c)
	if len(paths) > 1 {
		return fmt.Errorf("watch accepts a single path, got %d", len(paths))
	}
	root := paths[0]
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("watch needs a local directory, got %q", root)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var prev *models.AnalysisResult
	run, err := runAnalysis(c)
	if err != nil {
		return err
	}
	if run != nil {
		printWatchSummary(formatter, run.result, nil)
		prev = run.result
	}

	watcher, err := watch.New(root, cfg, c.Duration("debounce"))
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.OnChange(func(changed []string) {
		for _, p := range changed {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				rel = p
			}
			color.Yellow("Changed: %s", rel)
		}
		next, runErr := runAnalysis(c)
		if runErr != nil {
			color.Red("Re-analysis failed: %v", runErr)
			return
		}
		if next == nil {
			return
		}
		printWatchSummary(formatter, next.result, prev)
		prev = next.result
	})

	color.Cyan("Watching %s for changes. Press Ctrl+C to stop.", root)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); errors.Is(err, context.Canceled) {
		fmt.Println()
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

// printWatchSummary writes one line per run: the headline numbers, each
// score followed by its delta against the previous run.
func printWatchSummary(f *output.Formatter, res, prev *models.AnalysisResult) {
	var prevQuality, prevSecurity, prevDocs float64
	hasPrev := prev != nil
	if hasPrev {
		prevQuality = prev.CodeQuality.Score
		prevSecurity = prev.Security.Score
		prevDocs = prev.Documentation.Score
	}

	fmt.Fprintf(f.Writer(), "[%s] %d files, %d lines | quality %s | security %s | docs %s\n",
		time.Now().Format("15:04:05"),
		res.Metrics.FilesCount,
		res.Metrics.LinesOfCode,
		deltaCell(res.CodeQuality.Score, prevQuality, hasPrev, f.Colored()),
		deltaCell(res.Security.Score, prevSecurity, hasPrev, f.Colored()),
		deltaCell(res.Documentation.Score, prevDocs, hasPrev, f.Colored()),
	)
}

func deltaCell(score, prev float64, hasPrev, colored bool) string {
	cell := scoreCell(score, colored)
	if !hasPrev {
		return cell
	}
	diff := score - prev
	switch {
	case diff > 0.05:
		return fmt.Sprintf("%s (+%.1f)", cell, diff)
	case diff < -0.05:
		return fmt.Sprintf("%s (%.1f)", cell, diff)
	default:
		return cell
	}
}

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Show result cache statistics or clear it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Remove all cached results",
			},
		},
		Action: runCacheCmd,
	}
}

func runCacheCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		dir = cache.DefaultDir()
	}
	store, err := cache.New(dir, cfg.Cache.TTLHours, cfg.Cache.Enabled)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("clear") {
		if err := store.Clear(); err != nil {
			return err
		}
		formatter.Success("Cache cleared (%s)", dir)
		return nil
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Enabled", yesNo(store.Enabled())},
		{"Location", dir},
		{"Entries", fmt.Sprintf("%d", stats.Entries)},
		{"Total size", formatBytes(stats.TotalSize)},
	}
	if stats.Entries > 0 {
		rows = append(rows,
			[]string{"Oldest entry", stats.OldestAge.Round(time.Second).String()},
			[]string{"Newest entry", stats.NewestAge.Round(time.Second).String()},
		)
	}
	return formatter.Output(output.NewTable("Result Cache", []string{"Field", "Value"}, rows, nil, stats))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:      "languages",
		Aliases:   []string{"langs"},
		Usage:     "Show the per-language breakdown",
		ArgsUsage: "[path...]",
		Action:    runLanguagesCmd,
	}
}

func runLanguagesCmd(c *cli.Context) error {
	run, err := runAnalysis(c)
	if err != nil || run == nil {
		return err
	}
	res := run.result

	formatter, err := newFormatter(c, run.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	table := languagesTable(res.Metrics)
	table.Data = res.Metrics.Languages
	return formatter.Output(table)
}

// Table builders shared by analyze and the per-section commands.

func scoreCell(score float64, colored bool) string {
	if colored {
		return output.ScoreColor(score)
	}
	return fmt.Sprintf("%.1f", score)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func overviewTable(res *models.AnalysisResult, colored bool) *output.Table {
	rows := [][]string{
		{"Lines of code", fmt.Sprintf("%d", res.Metrics.LinesOfCode)},
		{"Files", fmt.Sprintf("%d", res.Metrics.FilesCount)},
		{"Languages", fmt.Sprintf("%d", len(res.Metrics.Languages))},
		{"Avg complexity", fmt.Sprintf("%.1f", res.Metrics.Complexity.Average)},
		{"Code quality", scoreCell(res.CodeQuality.Score, colored)},
		{"Security", scoreCell(res.Security.Score, colored)},
		{"Documentation", scoreCell(res.Documentation.Score, colored)},
		{"Test coverage", fmt.Sprintf("%.1f%%", res.TestCoverage.CoveragePercentage)},
	}
	return output.NewTable("Overview", []string{"Metric", "Value"}, rows, nil, nil)
}

func languagesTable(m models.Metrics) *output.Table {
	names := make([]string, 0, len(m.Languages))
	for name := range m.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := m.Languages[names[i]], m.Languages[names[j]]
		if a.Lines != b.Lines {
			return a.Lines > b.Lines
		}
		return names[i] < names[j]
	})

	var rows [][]string
	for _, name := range names {
		stats := m.Languages[name]
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", stats.Files),
			fmt.Sprintf("%d", stats.Lines),
			fmt.Sprintf("%.1f%%", stats.Percentage),
		})
	}

	return output.NewTable(
		"Languages",
		[]string{"Language", "Files", "Lines", "Share"},
		rows,
		[]string{"Total", fmt.Sprintf("%d", m.FilesCount), fmt.Sprintf("%d", m.LinesOfCode), ""},
		nil,
	)
}

func complexityTable(p models.ComplexityProfile) *output.Table {
	rows := [][]string{
		{"low (<5)", fmt.Sprintf("%.0f%%", p.Distribution.Low*100)},
		{"medium (5-10)", fmt.Sprintf("%.0f%%", p.Distribution.Medium*100)},
		{"high (>10)", fmt.Sprintf("%.0f%%", p.Distribution.High*100)},
	}
	return output.NewTable(
		"Complexity",
		[]string{"Bucket", "Files"},
		rows,
		[]string{fmt.Sprintf("Avg: %.1f", p.Average), fmt.Sprintf("Max: %.1f", p.Max)},
		nil,
	)
}

func largestFilesTable(files []models.LargestFile) *output.Table {
	var rows [][]string
	for _, f := range files {
		rows = append(rows, []string{f.Path, fmt.Sprintf("%d", f.Lines), f.Language})
	}
	return output.NewTable("Largest Files", []string{"File", "Lines", "Language"}, rows, nil, nil)
}

func qualityMetricsTable(q models.CodeQuality, colored bool) *output.Table {
	rows := [][]string{
		{"Overall score", scoreCell(q.Score, colored)},
		{"Maintainability index", scoreCell(q.Metrics.MaintainabilityIndex, colored)},
		{"Technical debt ratio", fmt.Sprintf("%.1f%%", q.Metrics.TechnicalDebtRatio)},
		{"Code duplication", fmt.Sprintf("%.1f%%", q.Metrics.CodeDuplication)},
		{"Architecture score", scoreCell(q.Metrics.ArchitectureScore, colored)},
	}
	return output.NewTable("Quality", []string{"Metric", "Value"}, rows, nil, nil)
}

func patternsSummaryTable(p models.PatternGroups) *output.Table {
	rows := [][]string{
		{"Design patterns", fmt.Sprintf("%d", len(p.DesignPatterns))},
		{"Anti-patterns", fmt.Sprintf("%d", len(p.AntiPatterns))},
		{"Code smells", fmt.Sprintf("%d", len(p.CodeSmells))},
	}
	return output.NewTable("Patterns", []string{"Category", "Matches"}, rows, nil, nil)
}

func hotspotsTable(hotspots []models.Hotspot, topN int, colored bool) *output.Table {
	if topN > 0 && len(hotspots) > topN {
		hotspots = hotspots[:topN]
	}

	var rows [][]string
	for _, h := range hotspots {
		sev := string(h.Severity)
		if colored {
			sev = output.SeverityColor(string(h.Severity), sev)
		}
		rows = append(rows, []string{
			h.File,
			string(h.Type),
			fmt.Sprintf("%d", h.Lines),
			sev,
			truncate(h.Description, 50),
		})
	}
	return output.NewTable(
		"Hotspots",
		[]string{"File", "Type", "Lines", "Severity", "Description"},
		rows,
		nil,
		nil,
	)
}

func securityTable(sec models.Security, colored bool) *output.Table {
	vulns := append([]models.Vulnerability(nil), sec.Vulnerabilities...)
	sort.SliceStable(vulns, func(i, j int) bool {
		return vulns[i].Severity.Rank() < vulns[j].Severity.Rank()
	})

	var rows [][]string
	for _, v := range vulns {
		sev := string(v.Severity)
		if colored {
			sev = output.SeverityColor(string(v.Severity), sev)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", v.File, v.Line),
			v.Type,
			sev,
			truncate(v.Description, 60),
		})
	}

	return output.NewTable(
		"Security",
		[]string{"Location", "Type", "Severity", "Description"},
		rows,
		[]string{fmt.Sprintf("Score: %.1f", sec.Score), "", fmt.Sprintf("Total: %d", len(vulns)), ""},
		sec,
	)
}

func docsDetailsTable(doc models.Documentation) *output.Table {
	d := doc.Details
	rows := [][]string{
		{"README", yesNo(d.HasReadme)},
		{"LICENSE", yesNo(d.HasLicense)},
		{"CONTRIBUTING", yesNo(d.HasContributing)},
		{"CHANGELOG", yesNo(d.HasChangelog)},
		{"API docs", yesNo(d.HasAPIDocs)},
		{"README quality", fmt.Sprintf("%.1f/10", d.ReadmeQuality)},
		{"Comment coverage", fmt.Sprintf("%.1f%%", d.CommentCoverage*100)},
	}
	return output.NewTable(
		"Documentation",
		[]string{"Signal", "Value"},
		rows,
		[]string{"Score", fmt.Sprintf("%.1f", doc.Score)},
		doc,
	)
}

func testsTable(cov models.TestCoverage) *output.Table {
	frameworks := "none detected"
	if len(cov.TestFrameworks) > 0 {
		frameworks = strings.Join(cov.TestFrameworks, ", ")
	}
	dirs := "-"
	if len(cov.TestDirectories) > 0 {
		dirs = strings.Join(cov.TestDirectories, ", ")
	}

	rows := [][]string{
		{"Has tests", yesNo(cov.HasTests)},
		{"Frameworks", frameworks},
		{"Test files", fmt.Sprintf("%d", len(cov.TestFiles))},
		{"Test directories", dirs},
		{"Coverage estimate", fmt.Sprintf("%.1f%%", cov.CoveragePercentage)},
	}
	return output.NewTable("Test Coverage", []string{"Signal", "Value"}, rows, nil, cov)
}

func printAdvice(f *output.Formatter, issues, recommendations []string) {
	w := f.Writer()
	if len(issues) > 0 {
		fmt.Fprintln(w)
		if f.Colored() {
			color.New(color.FgYellow).Fprintf(w, "Issues (%d):\n", len(issues))
		} else {
			fmt.Fprintf(w, "Issues (%d):\n", len(issues))
		}
		for _, s := range issues {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(recommendations) > 0 {
		fmt.Fprintln(w)
		if f.Colored() {
			color.New(color.FgCyan).Fprintln(w, "Recommendations:")
		} else {
			fmt.Fprintln(w, "Recommendations:")
		}
		for _, s := range recommendations {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}
