package complexity

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// heuristicProfile holds the compiled matchers for one language.
type heuristicProfile struct {
	keywords  *regexp.Regexp // nil when the language declares no keywords
	operators []string
	funcRes   []*regexp.Regexp
	comments  []string
}

var (
	profileMu sync.Mutex
	profiles  = map[language.Language]*heuristicProfile{}
)

func profileFor(lang language.Language) *heuristicProfile {
	profileMu.Lock()
	defer profileMu.Unlock()
	if p, ok := profiles[lang]; ok {
		return p
	}
	caps := language.Caps(lang)
	p := &heuristicProfile{
		operators: caps.Operators,
		comments:  caps.CommentPrefixes,
	}
	if kws := dedupePhrases(caps.Keywords); len(kws) > 0 {
		quoted := make([]string, len(kws))
		for i, kw := range kws {
			quoted[i] = regexp.QuoteMeta(kw)
		}
		p.keywords = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	for _, pat := range caps.FuncPatterns {
		if re, err := regexp.Compile(pat); err == nil {
			p.funcRes = append(p.funcRes, re)
		}
	}
	profiles[lang] = p
	return p
}

// dedupePhrases drops multi-word keywords whose final word is itself listed,
// so "else if" does not count on top of the "if" it contains.
func dedupePhrases(keywords []string) []string {
	set := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		set[kw] = true
	}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if i := strings.LastIndexByte(kw, ' '); i >= 0 && set[kw[i+1:]] {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// heuristicScore estimates complexity by counting branching keywords and
// operators on non-comment lines. Function-like units come from the
// language's function patterns; a file with code but no recognizable
// function headers is treated as one top-level unit.
func heuristicScore(path string, lang language.Language, content []byte) FileScore {
	p := profileFor(lang)

	var (
		decisions int
		units     int
		codeLines int
	)
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed, p.comments) {
			continue
		}
		codeLines++
		if p.keywords != nil {
			decisions += len(p.keywords.FindAllStringIndex(trimmed, -1))
		}
		for _, op := range p.operators {
			if op == "?" {
				// Bare question marks are too common in strings and
				// regexes; require ternary spacing.
				decisions += strings.Count(line, " ? ")
				continue
			}
			decisions += strings.Count(line, op)
		}
		for _, re := range p.funcRes {
			units += len(re.FindAllStringIndex(line, -1))
		}
	}

	if units == 0 {
		if codeLines == 0 {
			return FileScore{Path: path}
		}
		units = 1
	}
	score := 1 + float64(decisions)/float64(units)
	return FileScore{Path: path, Score: stats.Round1(score), Units: units}
}

func isCommentLine(trimmed string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
