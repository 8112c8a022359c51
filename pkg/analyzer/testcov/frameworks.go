package testcov

import (
	"path"
	"regexp"

	"github.com/caliper-sh/caliper/pkg/language"
)

// fwRule detects one framework from import-style statements in test file
// content. An empty langs list applies to any language.
type fwRule struct {
	name  string
	re    *regexp.Regexp
	langs []language.Language
}

var fwRules = []fwRule{
	{name: "pytest", re: regexp.MustCompile(`(?m)^\s*(?:import\s+pytest\b|from\s+pytest\b)`), langs: []language.Language{language.Python}},
	{name: "unittest", re: regexp.MustCompile(`(?m)^\s*(?:import\s+unittest\b|from\s+unittest\b)`), langs: []language.Language{language.Python}},
	{name: "go test", re: regexp.MustCompile(`"testing"`), langs: []language.Language{language.Go}},
	{name: "testify", re: regexp.MustCompile(`github\.com/stretchr/testify`), langs: []language.Language{language.Go}},
	{name: "cargo test", re: regexp.MustCompile(`#\[(?:cfg\()?test`), langs: []language.Language{language.Rust}},
	{name: "jest", re: regexp.MustCompile(`\bjest\.(?:mock|fn|spyOn)\s*\(|['"]@jest/globals['"]`)},
	{name: "vitest", re: regexp.MustCompile(`['"]vitest['"]`)},
	{name: "mocha", re: regexp.MustCompile(`['"]mocha['"]`)},
	{name: "jasmine", re: regexp.MustCompile(`['"]jasmine['"]`)},
	{name: "junit", re: regexp.MustCompile(`\borg\.junit\b`), langs: []language.Language{language.Java, language.Kotlin}},
	{name: "testng", re: regexp.MustCompile(`\borg\.testng\b`), langs: []language.Language{language.Java}},
	{name: "rspec", re: regexp.MustCompile(`\brequire\s+['"]rspec|RSpec\.describe`), langs: []language.Language{language.Ruby}},
	{name: "minitest", re: regexp.MustCompile(`\brequire\s+['"]minitest`), langs: []language.Language{language.Ruby}},
	{name: "phpunit", re: regexp.MustCompile(`PHPUnit\\|\bextends\s+TestCase\b`), langs: []language.Language{language.PHP}},
	{name: "nunit", re: regexp.MustCompile(`\busing\s+NUnit\b`), langs: []language.Language{language.CSharp}},
	{name: "xunit", re: regexp.MustCompile(`\busing\s+Xunit\b`), langs: []language.Language{language.CSharp}},
	{name: "exunit", re: regexp.MustCompile(`\buse\s+ExUnit\.Case\b`), langs: []language.Language{language.Elixir}},
}

// frameworksInFile returns the frameworks evidenced by one test file.
func frameworksInFile(p string, lang language.Language, content []byte) []string {
	var out []string
	if path.Base(p) == "conftest.py" {
		out = append(out, "pytest")
	}
	for _, r := range fwRules {
		if len(r.langs) > 0 && !langIn(lang, r.langs) {
			continue
		}
		if r.re.Match(content) {
			out = append(out, r.name)
		}
	}
	return out
}

func langIn(lang language.Language, set []language.Language) bool {
	for _, l := range set {
		if l == lang {
			return true
		}
	}
	return false
}
