package language

// Capabilities describes how a language is analyzed heuristically. The
// analyzers consume these records instead of branching on language names.
type Capabilities struct {
	// CommentPrefixes mark comment-looking lines after trimming leading
	// whitespace. Block-comment delimiters are included so javadoc-style
	// continuation lines count as comments.
	CommentPrefixes []string

	// Keywords are control-flow words counted toward cyclomatic
	// complexity, matched on word boundaries.
	Keywords []string

	// Operators are control-flow operators counted toward cyclomatic
	// complexity, matched literally.
	Operators []string

	// ImportHints are line prefixes that introduce imports, used to
	// restrict framework detection to import-like lines.
	ImportHints []string

	// FuncPatterns are regular expressions (anchored per line) that mark
	// the start of a function-like unit.
	FuncPatterns []string

	// Indented is true for languages that delimit blocks by indentation
	// rather than braces.
	Indented bool

	// Code is false for data, markup, and prose formats, which are
	// counted in metrics but skipped by complexity and pattern scans.
	Code bool
}

var (
	cKeywords      = []string{"if", "else if", "for", "while", "case", "catch", "switch"}
	cOperators     = []string{"&&", "||", "?"}
	cComments      = []string{"//", "/*", "*"}
	pyKeywords     = []string{"if", "elif", "for", "while", "except", "case", "and", "or"}
	shellKeywords  = []string{"if", "elif", "for", "while", "case", "until"}
	shellOperators = []string{"&&", "||"}
)

var capabilities = map[Language]Capabilities{
	Python: {
		CommentPrefixes: []string{"#", `"""`, "'''"},
		Keywords:        pyKeywords,
		ImportHints:     []string{"import ", "from "},
		FuncPatterns:    []string{`^\s*(?:async\s+)?def\s+\w`},
		Indented:        true,
		Code:            true,
	},
	JavaScript: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import ", "require(", "const ", "var ", "let "},
		FuncPatterns:    []string{`\bfunction\b`, `=>`},
		Code:            true,
	},
	TypeScript: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import ", "require("},
		FuncPatterns:    []string{`\bfunction\b`, `=>`},
		Code:            true,
	},
	Java: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`^\s*(?:public|private|protected|static|final|synchronized)[\w\s<>\[\],]*\([^;{]*\)\s*\{`},
		Code:            true,
	},
	C: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"#include"},
		FuncPatterns:    []string{`^[A-Za-z_][\w\s\*]*\([^;{]*\)\s*\{?\s*$`},
		Code:            true,
	},
	CPP: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"#include"},
		FuncPatterns:    []string{`^[A-Za-z_][\w\s\*&<>:,~]*\([^;{]*\)\s*\{?\s*$`},
		Code:            true,
	},
	CSharp: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"using "},
		FuncPatterns:    []string{`^\s*(?:public|private|protected|internal|static|async|override)[\w\s<>\[\],]*\([^;{]*\)`},
		Code:            true,
	},
	Go: {
		CommentPrefixes: cComments,
		Keywords:        []string{"if", "for", "case", "select", "go", "switch"},
		Operators:       []string{"&&", "||"},
		ImportHints:     []string{"import"},
		FuncPatterns:    []string{`^func\s`},
		Code:            true,
	},
	Rust: {
		CommentPrefixes: cComments,
		Keywords:        []string{"if", "else if", "for", "while", "match", "loop"},
		Operators:       []string{"&&", "||"},
		ImportHints:     []string{"use "},
		FuncPatterns:    []string{`\bfn\s+\w`},
		Code:            true,
	},
	Ruby: {
		CommentPrefixes: []string{"#", "=begin"},
		Keywords:        []string{"if", "elsif", "unless", "for", "while", "when", "rescue", "until", "and", "or"},
		Operators:       []string{"&&", "||"},
		ImportHints:     []string{"require", "require_relative"},
		FuncPatterns:    []string{`^\s*def\s+\w`},
		Code:            true,
	},
	PHP: {
		CommentPrefixes: []string{"//", "#", "/*", "*"},
		Keywords:        []string{"if", "elseif", "for", "foreach", "while", "case", "catch"},
		Operators:       cOperators,
		ImportHints:     []string{"use ", "require", "include"},
		FuncPatterns:    []string{`\bfunction\s+\w`},
		Code:            true,
	},
	Swift: {
		CommentPrefixes: cComments,
		Keywords:        []string{"if", "else if", "for", "while", "case", "catch", "guard"},
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`\bfunc\s+\w`},
		Code:            true,
	},
	Kotlin: {
		CommentPrefixes: cComments,
		Keywords:        []string{"if", "else if", "for", "while", "when", "catch"},
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`\bfun\s+\w`},
		Code:            true,
	},
	Scala: {
		CommentPrefixes: cComments,
		Keywords:        []string{"if", "else if", "for", "while", "case", "catch", "match"},
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`\bdef\s+\w`},
		Code:            true,
	},
	R: {
		CommentPrefixes: []string{"#"},
		Keywords:        []string{"if", "else if", "for", "while", "repeat"},
		Operators:       []string{"&&", "||"},
		ImportHints:     []string{"library(", "require("},
		FuncPatterns:    []string{`\w+\s*(?:<-|=)\s*function\s*\(`},
		Code:            true,
	},
	MATLAB: {
		CommentPrefixes: []string{"%"},
		Keywords:        []string{"if", "elseif", "for", "while", "case", "catch"},
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`^\s*function\b`},
		Code:            true,
	},
	Perl: {
		CommentPrefixes: []string{"#"},
		Keywords:        []string{"if", "elsif", "unless", "for", "foreach", "while", "until", "and", "or"},
		Operators:       []string{"&&", "||", "?"},
		ImportHints:     []string{"use ", "require "},
		FuncPatterns:    []string{`^\s*sub\s+\w`},
		Code:            true,
	},
	Lua: {
		CommentPrefixes: []string{"--"},
		Keywords:        []string{"if", "elseif", "for", "while", "repeat", "and", "or"},
		ImportHints:     []string{"require("},
		FuncPatterns:    []string{`\bfunction\b`},
		Code:            true,
	},
	Vim: {
		CommentPrefixes: []string{"\""},
		Keywords:        []string{"if", "elseif", "for", "while"},
		FuncPatterns:    []string{`^\s*function!?\s`},
		Code:            true,
	},
	Elisp: {
		CommentPrefixes: []string{";"},
		Keywords:        []string{"if", "when", "unless", "while", "cond", "case"},
		ImportHints:     []string{"(require "},
		FuncPatterns:    []string{`\(defun\s`},
		Code:            true,
	},
	Shell: {
		CommentPrefixes: []string{"#"},
		Keywords:        shellKeywords,
		Operators:       shellOperators,
		ImportHints:     []string{"source ", ". "},
		FuncPatterns:    []string{`^\s*\w+\s*\(\)\s*\{?`, `^\s*function\s+\w`},
		Code:            true,
	},
	PowerShell: {
		CommentPrefixes: []string{"#", "<#"},
		Keywords:        []string{"if", "elseif", "for", "foreach", "while", "switch", "catch"},
		Operators:       []string{"-and", "-or"},
		ImportHints:     []string{"Import-Module", "using "},
		FuncPatterns:    []string{`^\s*function\s+[\w-]+`},
		Code:            true,
	},
	SQL: {
		CommentPrefixes: []string{"--", "/*", "*"},
		Keywords:        []string{"CASE", "WHEN", "AND", "OR"},
		Code:            true,
	},
	Dart: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`^\s*[\w<>\[\]]+\s+\w+\([^;{]*\)\s*(?:async\s*)?\{`},
		Code:            true,
	},
	Elixir: {
		CommentPrefixes: []string{"#"},
		Keywords:        []string{"if", "unless", "case", "cond", "with", "for"},
		Operators:       []string{"&&", "||"},
		ImportHints:     []string{"import ", "alias ", "use "},
		FuncPatterns:    []string{`^\s*defp?\s+\w`},
		Indented:        true,
		Code:            true,
	},
	Erlang: {
		CommentPrefixes: []string{"%"},
		Keywords:        []string{"if", "case", "receive", "when"},
		ImportHints:     []string{"-import", "-include"},
		FuncPatterns:    []string{`^[a-z]\w*\(.*\)\s*->`},
		Code:            true,
	},
	Haskell: {
		CommentPrefixes: []string{"--", "{-"},
		Keywords:        []string{"if", "case", "of", "where", "let"},
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`^\w+\s+::`},
		Indented:        true,
		Code:            true,
	},
	Clojure: {
		CommentPrefixes: []string{";"},
		Keywords:        []string{"if", "when", "cond", "case", "loop"},
		ImportHints:     []string{"(require ", "(:require"},
		FuncPatterns:    []string{`\(defn-?\s`},
		Code:            true,
	},
	Groovy: {
		CommentPrefixes: cComments,
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`^\s*(?:def|void|\w+)\s+\w+\([^;{]*\)\s*\{`},
		Code:            true,
	},
	Vue: {
		CommentPrefixes: []string{"//", "/*", "*", "<!--"},
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`\bfunction\b`, `=>`},
		Code:            true,
	},
	Svelte: {
		CommentPrefixes: []string{"//", "/*", "*", "<!--"},
		Keywords:        cKeywords,
		Operators:       cOperators,
		ImportHints:     []string{"import "},
		FuncPatterns:    []string{`\bfunction\b`, `=>`},
		Code:            true,
	},
	Dockerfile: {
		CommentPrefixes: []string{"#"},
		Code:            true,
	},
	Makefile: {
		CommentPrefixes: []string{"#"},
		Keywords:        []string{"ifeq", "ifneq", "ifdef", "ifndef"},
		Code:            true,
	},
	CMake: {
		CommentPrefixes: []string{"#"},
		Keywords:        []string{"if", "elseif", "foreach", "while"},
		Code:            true,
	},
	HTML:     {CommentPrefixes: []string{"<!--"}},
	CSS:      {CommentPrefixes: []string{"/*", "*"}},
	XML:      {CommentPrefixes: []string{"<!--"}},
	JSON:     {},
	YAML:     {CommentPrefixes: []string{"#"}},
	TOML:     {CommentPrefixes: []string{"#"}},
	Markdown: {},
	Text:     {},
}

// Caps returns the capability record for a language. Unregistered
// languages, including Unknown, get an empty non-code record.
func Caps(l Language) Capabilities {
	if c, ok := capabilities[l]; ok {
		return c
	}
	return Capabilities{}
}

// IsCode reports whether the language participates in complexity and
// pattern analysis.
func IsCode(l Language) bool {
	return Caps(l).Code
}
