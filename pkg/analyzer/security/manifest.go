package security

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/caliper-sh/caliper/pkg/models"
)

// riskyDep names a dependency with a known advisory or supply-chain
// incident. The expression matches the dependency's declaration line in its
// manifest format.
type riskyDep struct {
	name     string
	severity models.Severity
	reason   string
	re       *regexp.Regexp
}

// riskyByManifest keys the dependency tables by lowercased manifest
// basename.
var riskyByManifest = map[string][]riskyDep{
	"package.json": {
		{
			name:     "flatmap-stream",
			severity: models.SeverityHigh,
			reason:   "published with malicious code in 2018",
			re:       regexp.MustCompile(`"flatmap-stream"\s*:`),
		},
		{
			name:     "event-stream",
			severity: models.SeverityMedium,
			reason:   "compromised release history",
			re:       regexp.MustCompile(`"event-stream"\s*:`),
		},
		{
			name:     "request",
			severity: models.SeverityLow,
			reason:   "deprecated and unmaintained",
			re:       regexp.MustCompile(`"request"\s*:`),
		},
		{
			name:     "node-uuid",
			severity: models.SeverityLow,
			reason:   "deprecated, superseded by uuid",
			re:       regexp.MustCompile(`"node-uuid"\s*:`),
		},
	},
	"requirements.txt": {
		{
			name:     "pycrypto",
			severity: models.SeverityMedium,
			reason:   "abandoned since 2013, superseded by pycryptodome",
			re:       regexp.MustCompile(`(?i)^\s*pycrypto(?:\s*[=<>!~\[]|\s*$)`),
		},
	},
	"pipfile": {
		{
			name:     "pycrypto",
			severity: models.SeverityMedium,
			reason:   "abandoned since 2013, superseded by pycryptodome",
			re:       regexp.MustCompile(`(?i)^\s*"?pycrypto"?\s*=`),
		},
	},
	"go.mod": {
		{
			name:     "github.com/dgrijalva/jwt-go",
			severity: models.SeverityMedium,
			reason:   "unpatched claim-validation advisory, superseded by golang-jwt",
			re:       regexp.MustCompile(`github\.com/dgrijalva/jwt-go\b`),
		},
	},
	"gemfile": {
		{
			name:     "rest-client",
			severity: models.SeverityMedium,
			reason:   "had compromised releases pulled from rubygems",
			re:       regexp.MustCompile(`gem\s+['"]rest-client['"]`),
		},
	},
}

// riskyDeps returns the dependency table for a manifest path.
func riskyDeps(p string) ([]riskyDep, bool) {
	deps, ok := riskyByManifest[strings.ToLower(path.Base(p))]
	return deps, ok
}

// scanManifest reports the first declaration line of each risky dependency
// present in the manifest.
func scanManifest(p string, content []byte, deps []riskyDep) []models.Vulnerability {
	var out []models.Vulnerability
	for _, dep := range deps {
		lineNo := 0
		sc := bufio.NewScanner(bytes.NewReader(content))
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lineNo++
			if dep.re.MatchString(sc.Text()) {
				out = append(out, models.Vulnerability{
					Type:        TypeRiskyDependency,
					Severity:    dep.severity,
					Description: fmt.Sprintf("Dependency %s: %s", dep.name, dep.reason),
					File:        p,
					Line:        lineNo,
				})
				break
			}
		}
	}
	return out
}
