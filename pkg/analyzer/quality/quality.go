// Package quality blends complexity, pattern, duplication, and
// documentation signals into the code quality section. All weights are
// fixed constants so identical inputs always produce identical scores.
package quality

import (
	"fmt"

	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// Blend weights for the overall score. Debt and duplication enter
// inverted, so higher is always better on every axis.
const (
	weightMaintainability = 0.40
	weightDebt            = 0.25
	weightDuplication     = 0.15
	weightArchitecture    = 0.20
)

// Maintainability penalties. Comment coverage below targetCommentRatio
// accrues a deficit penalty scaled to commentPenalty.
const (
	complexityPenalty  = 45.0
	commentPenalty     = 20.0
	targetCommentRatio = 0.15
	findingsPenaltyCap = 30.0
	antiPenaltyWeight  = 2.5
	smellPenaltyWeight = 1.0
)

// Technical debt density weights, in points per finding per KLOC.
const (
	debtAntiPerKLOC  = 8.0
	debtSmellPerKLOC = 4.0
)

// Architecture scoring: a base of 50 moves up with modular file sizes and
// detected design patterns, down with anti-patterns and smells. Files
// averaging modularIdealLines or fewer count as fully modular; the credit
// fades to zero over modularFadeLines.
const (
	archBase          = 50.0
	archModularWeight = 25.0
	archDesignWeight  = 1.5
	archDesignCap     = 15.0
	modularIdealLines = 150.0
	modularFadeLines  = 350.0
)

// elevatedDuplication is the percentage above which duplication becomes an
// issue.
const elevatedDuplication = 10.0

// Inputs carries the cross-section signals the scorer consumes.
type Inputs struct {
	TotalLines             int
	AvgFileLines           float64 // mean line count over code files
	HighComplexityFraction float64 // share of scoreable files in the high bucket
	CommentCoverage        float64 // comment-to-line ratio in [0, 1]
	Duplication            float64 // percentage in [0, 100]
	Patterns               models.PatternGroups
	Hotspots               []models.Hotspot
}

// Score computes the code quality section. A tree with no countable lines
// yields the zero section.
func Score(in Inputs) models.CodeQuality {
	if in.TotalLines == 0 {
		return models.ZeroCodeQuality()
	}
	if in.Hotspots == nil {
		in.Hotspots = []models.Hotspot{}
	}

	anti := len(in.Patterns.AntiPatterns)
	smells := len(in.Patterns.CodeSmells)
	design := len(in.Patterns.DesignPatterns)

	findingsPenalty := antiPenaltyWeight*float64(anti) + smellPenaltyWeight*float64(smells)
	if findingsPenalty > findingsPenaltyCap {
		findingsPenalty = findingsPenaltyCap
	}
	commentDeficit := stats.Clamp01((targetCommentRatio - in.CommentCoverage) / targetCommentRatio)
	mi := stats.Clamp(100-complexityPenalty*in.HighComplexityFraction-commentPenalty*commentDeficit-findingsPenalty, 0, 100)

	kloc := float64(in.TotalLines) / 1000
	debt := stats.Clamp(debtAntiPerKLOC*float64(anti)/kloc+debtSmellPerKLOC*float64(smells)/kloc, 0, 100)

	modularity := 1 - stats.Clamp01((in.AvgFileLines-modularIdealLines)/modularFadeLines)
	designCredit := archDesignWeight * float64(design)
	if designCredit > archDesignCap {
		designCredit = archDesignCap
	}
	arch := stats.Clamp(archBase+archModularWeight*modularity+designCredit-findingsPenalty, 0, 100)

	dup := stats.Clamp(in.Duplication, 0, 100)
	score := weightMaintainability*mi +
		weightDebt*(100-debt) +
		weightDuplication*(100-dup) +
		weightArchitecture*arch

	cq := models.CodeQuality{
		Score: stats.Round1(score),
		Metrics: models.QualityMetrics{
			MaintainabilityIndex: stats.Round1(mi),
			TechnicalDebtRatio:   stats.Round1(debt),
			CodeDuplication:      stats.Round1(dup),
			ArchitectureScore:    stats.Round1(arch),
		},
		Patterns: in.Patterns,
		Hotspots: in.Hotspots,
	}
	cq.Issues, cq.Recommendations = buildIssues(in, dup)
	return cq
}

// buildIssues derives one issue and one recommendation per finding
// category, in fixed order.
func buildIssues(in Inputs, dup float64) ([]string, []string) {
	issues := []string{}
	recs := []string{}
	add := func(issue, rec string) {
		issues = append(issues, issue)
		recs = append(recs, rec)
	}

	if n := len(in.Hotspots); n > 0 {
		high := 0
		for _, h := range in.Hotspots {
			if h.Severity == models.SeverityHigh {
				high++
			}
		}
		if high > 0 {
			add(fmt.Sprintf("%d high-priority hotspots need review", high),
				"Address the flagged hotspots before extending them")
		} else {
			add(fmt.Sprintf("%d files flagged as review hotspots", n),
				"Schedule refactoring time for the flagged hotspots")
		}
	}

	counts := map[string]int{}
	for _, m := range in.Patterns.AntiPatterns {
		counts[m.Pattern]++
	}
	for _, m := range in.Patterns.CodeSmells {
		counts[m.Pattern]++
	}
	if counts["god_class"] > 0 {
		add("God classes detected", "Split god classes by responsibility")
	}
	if counts["long_method"] > 0 {
		add("Long functions detected", "Refactor long functions into smaller units")
	}
	if counts["long_parameter_list"] > 0 {
		add("Functions with long parameter lists detected", "Group related parameters into cohesive types")
	}
	if counts["deep_nesting"] > 0 {
		add("Deeply nested control flow detected", "Flatten nested branches with early returns")
	}
	if counts["commented_out_code"] > 0 {
		add("Commented-out code left in the tree", "Delete commented-out code; version control keeps the history")
	}
	if counts["magic_numbers"] > 0 {
		add("Magic numbers detected", "Name magic numbers as constants")
	}
	if counts["duplicate_string_literals"] > 0 {
		add("Repeated string literals detected", "Extract repeated literals into named constants")
	}
	if n := counts["todo_comments"]; n >= 5 {
		add(fmt.Sprintf("%d unresolved TODO markers", n), "Triage TODO markers into tracked issues")
	}
	if dup > elevatedDuplication {
		add(fmt.Sprintf("Code duplication is elevated (%.1f%%)", dup),
			"Extract shared logic into common functions")
	}
	return issues, recs
}
