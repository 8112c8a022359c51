// Package docs assesses project documentation: canonical file presence,
// README quality, and comment coverage across source files.
package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// Presence weights sum to 100 and form 60% of the documentation score. The
// remaining 40% blends README quality with comment coverage, where coverage
// saturates at fullCoverageRatio.
const (
	weightReadme       = 30
	weightLicense      = 20
	weightContributing = 15
	weightChangelog    = 15
	weightAPIDocs      = 20

	fullCoverageRatio = 0.2
)

// Signals is the input to Assess, gathered during the per-file pass.
type Signals struct {
	Paths        []string // every path in the tree
	Readme       []byte   // content of the canonical README, nil when absent
	CommentLines int      // comment-looking lines across code files
	CodeLines    int      // total lines across code files
}

// FindReadme returns the tree's canonical README path: the shallowest
// README* match, ties broken by path order. Empty when none exists.
func FindReadme(paths []string) string {
	best := ""
	bestDepth := 0
	for _, p := range paths {
		base := strings.ToLower(path.Base(p))
		if !strings.HasPrefix(base, "readme") {
			continue
		}
		depth := strings.Count(p, "/")
		if best == "" || depth < bestDepth || (depth == bestDepth && p < best) {
			best = p
			bestDepth = depth
		}
	}
	return best
}

// Assess computes the documentation section.
func Assess(sig Signals) models.Documentation {
	details := presence(sig.Paths)
	details.ReadmeQuality = ReadmeQuality(sig.Readme)
	if sig.CodeLines > 0 {
		details.CommentCoverage = stats.Round1(float64(sig.CommentLines)/float64(sig.CodeLines)*100) / 100
	}

	presenceScore := 0.0
	if details.HasReadme {
		presenceScore += weightReadme
	}
	if details.HasLicense {
		presenceScore += weightLicense
	}
	if details.HasContributing {
		presenceScore += weightContributing
	}
	if details.HasChangelog {
		presenceScore += weightChangelog
	}
	if details.HasAPIDocs {
		presenceScore += weightAPIDocs
	}

	coverageTerm := details.CommentCoverage / fullCoverageRatio
	if coverageTerm > 1 {
		coverageTerm = 1
	}
	qualityScore := 50*(details.ReadmeQuality/10) + 50*coverageTerm

	doc := models.Documentation{
		Score:           stats.Round1(0.6*presenceScore + 0.4*qualityScore),
		Issues:          []string{},
		Recommendations: []string{},
		Details:         details,
	}

	if !details.HasReadme {
		doc.Issues = append(doc.Issues, "No README found")
		doc.Recommendations = append(doc.Recommendations, "Add a README describing what the project does and how to run it")
	} else if details.ReadmeQuality < 5 {
		doc.Issues = append(doc.Issues, "README lacks installation or usage guidance")
		doc.Recommendations = append(doc.Recommendations, "Expand the README with installation steps, usage examples, and code blocks")
	}
	if !details.HasLicense {
		doc.Issues = append(doc.Issues, "No LICENSE file found")
		doc.Recommendations = append(doc.Recommendations, "Add a LICENSE to clarify usage terms")
	}
	if sig.CodeLines > 0 && details.CommentCoverage < 0.05 {
		doc.Issues = append(doc.Issues, fmt.Sprintf("Comment coverage is very low (%.1f%%)", details.CommentCoverage*100))
		doc.Recommendations = append(doc.Recommendations, "Document non-obvious logic and public interfaces with comments")
	}
	return doc
}

// docsDirs are path segments treated as documentation directories.
var docsDirs = map[string]bool{"docs": true, "doc": true, "documentation": true}

func presence(paths []string) models.DocumentationDetails {
	details := models.DocumentationDetails{DocFiles: []string{}}
	seen := map[string]bool{}
	record := func(p string) {
		if !seen[p] {
			seen[p] = true
			details.DocFiles = append(details.DocFiles, p)
		}
	}

	for _, p := range paths {
		base := strings.ToLower(path.Base(p))
		inDocsDir := false
		for _, seg := range strings.Split(path.Dir(p), "/") {
			if docsDirs[seg] {
				inDocsDir = true
				break
			}
		}

		switch {
		case strings.HasPrefix(base, "readme"):
			details.HasReadme = true
			record(p)
		case strings.HasPrefix(base, "license") || strings.HasPrefix(base, "licence") || base == "copying":
			details.HasLicense = true
			record(p)
		case strings.HasPrefix(base, "contributing"):
			details.HasContributing = true
			record(p)
		case strings.HasPrefix(base, "changelog"):
			details.HasChangelog = true
			record(p)
		}
		if inDocsDir {
			record(p)
			if strings.Contains(base, "api") {
				details.HasAPIDocs = true
			}
		}
		if strings.HasPrefix(base, "openapi.") || strings.HasPrefix(base, "swagger.") {
			details.HasAPIDocs = true
			record(p)
		}
	}
	sort.Strings(details.DocFiles)
	return details
}

var (
	usageHeadingRe   = regexp.MustCompile(`(?im)^#{1,6}\s.*\b(?:usage|getting started|quick ?start|examples?)\b`)
	installHeadingRe = regexp.MustCompile(`(?im)^#{1,6}\s.*\b(?:install(?:ation)?|setup)\b`)
)

// ReadmeQuality scores a README 0-10: up to four points for length, two
// each for usage guidance, install guidance, and code blocks.
func ReadmeQuality(readme []byte) float64 {
	if len(readme) == 0 {
		return 0
	}
	score := 0.0
	if len(readme) >= 300 {
		score += 2
	}
	if len(readme) >= 1500 {
		score += 2
	}
	if usageHeadingRe.Match(readme) {
		score += 2
	}
	if installHeadingRe.Match(readme) {
		score += 2
	}
	if bytes.Contains(readme, []byte("```")) {
		score += 2
	}
	return score
}

// CountCommentLines returns the comment-looking and total line counts for
// one file, using the language's comment prefixes. Non-code files count
// zero on both sides.
func CountCommentLines(lang language.Language, content []byte) (comments, total int) {
	caps := language.Caps(lang)
	if !caps.Code || len(content) == 0 {
		return 0, 0
	}
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		total++
		trimmed := strings.TrimSpace(sc.Text())
		for _, p := range caps.CommentPrefixes {
			if strings.HasPrefix(trimmed, p) {
				comments++
				break
			}
		}
	}
	return comments, total
}
