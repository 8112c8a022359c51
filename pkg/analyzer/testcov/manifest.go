package testcov

import (
	"encoding/json"
	"path"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/caliper-sh/caliper/pkg/source"
)

// npmTestPackages maps package.json dependency names to framework names.
var npmTestPackages = map[string]string{
	"jest":    "jest",
	"mocha":   "mocha",
	"vitest":  "vitest",
	"jasmine": "jasmine",
	"ava":     "ava",
	"tape":    "tape",
}

// ciCommands maps command substrings in CI configuration to frameworks.
var ciCommands = []struct {
	needle string
	name   string
}{
	{"pytest", "pytest"},
	{"go test", "go test"},
	{"cargo test", "cargo test"},
	{"rspec", "rspec"},
	{"phpunit", "phpunit"},
	{"vitest", "vitest"},
	{"jest", "jest"},
	{"mocha", "mocha"},
}

var requirementsPytestRe = regexp.MustCompile(`(?m)^\s*pytest\b`)

// manifestFrameworks extracts framework evidence from package manifests and
// CI configuration. Unparseable manifests are skipped.
func manifestFrameworks(tree *source.Tree) []string {
	var out []string
	for _, f := range tree.Files() {
		if f.Content == nil {
			continue
		}
		base := strings.ToLower(path.Base(f.Path))
		switch {
		case base == "package.json":
			out = append(out, npmFrameworks(f.Content)...)
		case base == "pyproject.toml":
			if t, err := toml.LoadBytes(f.Content); err == nil && t.Has("tool.pytest") {
				out = append(out, "pytest")
			}
		case strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt"):
			if requirementsPytestRe.Match(f.Content) {
				out = append(out, "pytest")
			}
		case base == "go.mod":
			if strings.Contains(string(f.Content), "github.com/stretchr/testify") {
				out = append(out, "testify")
			}
		case base == "gemfile":
			s := string(f.Content)
			if strings.Contains(s, `gem "rspec`) || strings.Contains(s, `gem 'rspec`) {
				out = append(out, "rspec")
			}
			if strings.Contains(s, `gem "minitest`) || strings.Contains(s, `gem 'minitest`) {
				out = append(out, "minitest")
			}
		case base == "composer.json":
			if strings.Contains(string(f.Content), "phpunit/phpunit") {
				out = append(out, "phpunit")
			}
		case isCIConfig(f.Path):
			out = append(out, ciFrameworks(f.Content)...)
		}
	}
	return out
}

func npmFrameworks(content []byte) []string {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return nil
	}
	var out []string
	for dep := range manifest.Dependencies {
		if name, ok := npmTestPackages[dep]; ok {
			out = append(out, name)
		}
	}
	for dep := range manifest.DevDependencies {
		if name, ok := npmTestPackages[dep]; ok {
			out = append(out, name)
		}
	}
	return out
}

func isCIConfig(p string) bool {
	lower := strings.ToLower(p)
	switch {
	case strings.HasPrefix(lower, ".github/workflows/") && (strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")):
		return true
	case lower == ".gitlab-ci.yml", lower == ".travis.yml", lower == ".circleci/config.yml":
		return true
	}
	return false
}

// ciFrameworks parses a CI config and looks for test commands in its string
// values.
func ciFrameworks(content []byte) []string {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil
	}
	seen := map[string]bool{}
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			for _, c := range ciCommands {
				if strings.Contains(t, c.needle) {
					seen[c.name] = true
				}
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(doc)
	var out []string
	for name := range seen {
		out = append(out, name)
	}
	return out
}
