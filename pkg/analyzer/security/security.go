// Package security flags likely vulnerabilities with rule-based regex scans:
// hardcoded secrets, unsafe calls, weak cryptography, and known-risky
// dependencies named in package manifests. Findings are heuristic leads for
// review, not confirmed exploits.
package security

import (
	"bufio"
	"bytes"
	"sort"
	"strconv"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
)

// Severity weights for the aggregate score. score = 100 - sum(weight per
// finding), floored at 0.
const (
	weightCritical = 20
	weightHigh     = 10
	weightMedium   = 5
	weightLow      = 2
)

// maxScanLine skips pathological lines, typically minified bundles.
const maxScanLine = 2000

// Scanner runs the vulnerability rules over individual files. It is safe
// for concurrent use.
type Scanner struct {
	scanManifests bool
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithoutManifestScan disables risky-dependency detection in package
// manifests. Quick-depth runs use this to avoid manifest parsing.
func WithoutManifestScan() Option {
	return func(s *Scanner) {
		s.scanManifests = false
	}
}

// NewScanner creates a scanner with all rule sets enabled.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{scanManifests: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFile returns the findings for one file. Prose and binary content is
// skipped; data and configuration formats are scanned for secrets only.
func (s *Scanner) ScanFile(path string, lang language.Language, content []byte) []models.Vulnerability {
	if len(content) == 0 || skipLanguage(lang) {
		return nil
	}

	var (
		out  []models.Vulnerability
		seen map[string]bool
	)
	if s.scanManifests {
		if deps, ok := riskyDeps(path); ok {
			out = scanManifest(path, content, deps)
		}
	}

	code := language.IsCode(lang)
	lineNo := 0
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if len(line) > maxScanLine {
			continue
		}
		for i := range secRules {
			r := &secRules[i]
			if r.codeOnly && !code {
				continue
			}
			if !r.re.MatchString(line) {
				continue
			}
			if r.unless != nil && r.unless.MatchString(line) {
				continue
			}
			key := r.vulnType + ":" + strconv.Itoa(lineNo)
			if seen[key] {
				continue
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			seen[key] = true
			out = append(out, models.Vulnerability{
				Type:        r.vulnType,
				Severity:    r.severity,
				Description: r.description,
				File:        path,
				Line:        lineNo,
			})
		}
	}
	return out
}

// skipLanguage reports content we never scan: prose formats where flagged
// strings are documentation, not live credentials.
func skipLanguage(lang language.Language) bool {
	switch lang {
	case language.Markdown, language.Text, language.HTML, language.CSS:
		return true
	}
	return false
}

// Report assembles the security section from all findings. Vulnerabilities
// sort by severity, then file, line, and type; recommendations carry the
// fixed advice per finding type, deduplicated in that order.
func Report(vulns []models.Vulnerability) models.Security {
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}
	sort.Slice(vulns, func(i, j int) bool {
		if r1, r2 := vulns[i].Severity.Rank(), vulns[j].Severity.Rank(); r1 != r2 {
			return r1 < r2
		}
		if vulns[i].File != vulns[j].File {
			return vulns[i].File < vulns[j].File
		}
		if vulns[i].Line != vulns[j].Line {
			return vulns[i].Line < vulns[j].Line
		}
		return vulns[i].Type < vulns[j].Type
	})

	score := 100.0
	recs := []string{}
	seen := map[string]bool{}
	for _, v := range vulns {
		switch v.Severity {
		case models.SeverityCritical:
			score -= weightCritical
		case models.SeverityHigh:
			score -= weightHigh
		case models.SeverityMedium:
			score -= weightMedium
		default:
			score -= weightLow
		}
		if !seen[v.Type] {
			seen[v.Type] = true
			if a, ok := advice[v.Type]; ok {
				recs = append(recs, a)
			}
		}
	}
	if score < 0 {
		score = 0
	}
	return models.Security{
		Score:           score,
		Vulnerabilities: vulns,
		Recommendations: recs,
	}
}
