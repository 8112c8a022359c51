// Package language classifies files into language tags and exposes a
// per-language capability table that the analyzers are driven by. Adding a
// language means adding table rows here, not branching elsewhere.
package language

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
)

// Language is a classification tag. The zero value is not meaningful; use
// Unknown for files that cannot be classified.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Rust       Language = "rust"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	Scala      Language = "scala"
	R          Language = "r"
	MATLAB     Language = "matlab"
	Perl       Language = "perl"
	Lua        Language = "lua"
	Vim        Language = "vim"
	Elisp      Language = "elisp"
	Shell      Language = "shell"
	PowerShell Language = "powershell"
	SQL        Language = "sql"
	HTML       Language = "html"
	CSS        Language = "css"
	Vue        Language = "vue"
	Svelte     Language = "svelte"
	Dart       Language = "dart"
	Elixir     Language = "elixir"
	Erlang     Language = "erlang"
	Haskell    Language = "haskell"
	Clojure    Language = "clojure"
	Groovy     Language = "groovy"
	Dockerfile Language = "dockerfile"
	Makefile   Language = "makefile"
	CMake      Language = "cmake"
	XML        Language = "xml"
	JSON       Language = "json"
	YAML       Language = "yaml"
	TOML       Language = "toml"
	Markdown   Language = "markdown"
	Text       Language = "text"
	Unknown    Language = "unknown"
)

func (l Language) String() string { return string(l) }

// specialNames maps exact (lowercased) filenames that carry no useful
// extension.
var specialNames = map[string]Language{
	"dockerfile":     Dockerfile,
	"containerfile":  Dockerfile,
	"makefile":       Makefile,
	"gnumakefile":    Makefile,
	"cmakelists.txt": CMake,
	"rakefile":       Ruby,
	"gemfile":        Ruby,
	"vagrantfile":    Ruby,
	"jenkinsfile":    Groovy,
	"build.gradle":   Groovy,
}

// byExtension maps file extensions (lowercased, with dot) to languages.
var byExtension = map[string]Language{
	".py":     Python,
	".pyw":    Python,
	".pyi":    Python,
	".js":     JavaScript,
	".jsx":    JavaScript,
	".mjs":    JavaScript,
	".cjs":    JavaScript,
	".ts":     TypeScript,
	".tsx":    TypeScript,
	".java":   Java,
	".c":      C,
	".h":      C,
	".cpp":    CPP,
	".cc":     CPP,
	".cxx":    CPP,
	".hpp":    CPP,
	".hh":     CPP,
	".cs":     CSharp,
	".go":     Go,
	".rs":     Rust,
	".rb":     Ruby,
	".rake":   Ruby,
	".php":    PHP,
	".swift":  Swift,
	".kt":     Kotlin,
	".kts":    Kotlin,
	".scala":  Scala,
	".r":      R,
	".m":      MATLAB,
	".pl":     Perl,
	".pm":     Perl,
	".lua":    Lua,
	".vim":    Vim,
	".el":     Elisp,
	".sh":     Shell,
	".bash":   Shell,
	".zsh":    Shell,
	".fish":   Shell,
	".ps1":    PowerShell,
	".psm1":   PowerShell,
	".sql":    SQL,
	".html":   HTML,
	".htm":    HTML,
	".css":    CSS,
	".scss":   CSS,
	".sass":   CSS,
	".less":   CSS,
	".vue":    Vue,
	".svelte": Svelte,
	".dart":   Dart,
	".ex":     Elixir,
	".exs":    Elixir,
	".erl":    Erlang,
	".hrl":    Erlang,
	".hs":     Haskell,
	".clj":    Clojure,
	".cljs":   Clojure,
	".groovy": Groovy,
	".gradle": Groovy,
	".cmake":  CMake,
	".xml":    XML,
	".json":   JSON,
	".yaml":   YAML,
	".yml":    YAML,
	".toml":   TOML,
	".md":     Markdown,
	".rst":    Markdown,
	".txt":    Text,
}

// shebangs maps interpreter names found on a #! line to languages.
var shebangs = map[string]Language{
	"python":  Python,
	"python3": Python,
	"node":    JavaScript,
	"deno":    JavaScript,
	"bash":    Shell,
	"sh":      Shell,
	"zsh":     Shell,
	"ruby":    Ruby,
	"perl":    Perl,
	"php":     PHP,
}

// Classify maps a file path and optional content sample to a language tag.
// Precedence: special filename, extension, content heuristics. It never
// fails; anything unresolvable is Unknown.
func Classify(path string, sample []byte) Language {
	name := strings.ToLower(filepath.Base(path))
	if lang, ok := specialNames[name]; ok {
		return lang
	}
	if lang, ok := byExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return lang
	}
	if len(sample) == 0 || IsBinary(sample) {
		return Unknown
	}
	if lang := fromShebang(sample); lang != Unknown {
		return lang
	}
	return fromKeywords(sample)
}

// ClassifyPath is Classify without a content sample.
func ClassifyPath(path string) Language {
	return Classify(path, nil)
}

// fromShebang inspects a leading #! line.
func fromShebang(sample []byte) Language {
	if !bytes.HasPrefix(sample, []byte("#!")) {
		return Unknown
	}
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	fields := strings.Fields(string(line[2:]))
	if len(fields) == 0 {
		return Unknown
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	// Strip trailing version digits: python3.12 -> python3 -> python.
	interp = strings.TrimRight(interp, "0123456789.")
	if lang, ok := shebangs[interp]; ok {
		return lang
	}
	if lang, ok := shebangs[interp+"3"]; ok {
		return lang
	}
	return Unknown
}

// keywordProbes is checked in order; first language whose every marker
// appears in the sample wins. Markers are deliberately specific so that
// extensionless files do not misclassify on common words.
var keywordProbes = []struct {
	lang    Language
	markers []string
}{
	{Go, []string{"package ", "func "}},
	{Python, []string{"def ", ":"}},
	{Java, []string{"public class ", ";"}},
	{Ruby, []string{"def ", "end"}},
	{PHP, []string{"<?php"}},
	{Shell, []string{"fi", "if ["}},
	{JavaScript, []string{"function ", "{"}},
}

func fromKeywords(sample []byte) Language {
	text := string(sample)
	for _, probe := range keywordProbes {
		all := true
		for _, m := range probe.markers {
			if !strings.Contains(text, m) {
				all = false
				break
			}
		}
		if all {
			return probe.lang
		}
	}
	return Unknown
}

// IsBinary reports whether content looks like binary data, using the git
// heuristic of a NUL byte within the first 8000 bytes.
func IsBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// All returns every known tag except Unknown, sorted.
func All() []Language {
	seen := map[Language]bool{}
	for _, l := range specialNames {
		seen[l] = true
	}
	for _, l := range byExtension {
		seen[l] = true
	}
	out := make([]Language, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
