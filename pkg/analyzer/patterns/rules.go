package patterns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/caliper-sh/caliper/pkg/language"
)

// hit is a raw rule result before thresholding.
type hit struct {
	Line       int
	Confidence float64
}

// rule pairs a wire-visible pattern name with its matcher.
type rule struct {
	name  string
	match func(*scanSource) []hit
}

// scanSource is one file prepared for rule matching. Derived views (line
// table, function starts) are computed once and shared across rules.
type scanSource struct {
	path    string
	content string
	lines   []string
	starts  []int // byte offset of each line start
	caps    language.Capabilities

	funcLines     []int
	funcLinesInit bool
}

func newScanSource(path, content string, caps language.Capabilities) *scanSource {
	lines := strings.Split(content, "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	return &scanSource{path: path, content: content, lines: lines, starts: starts, caps: caps}
}

// lineOf converts a byte offset into a 1-based line number.
func (s *scanSource) lineOf(off int) int {
	lo, hi := 0, len(s.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.starts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// firstMatchLine returns the 1-based line of the first match, or 0.
func (s *scanSource) firstMatchLine(re *regexp.Regexp) int {
	loc := re.FindStringIndex(s.content)
	if loc == nil {
		return 0
	}
	return s.lineOf(loc[0])
}

func (s *scanSource) has(re *regexp.Regexp) bool {
	return re.MatchString(s.content)
}

// commentStart returns the index where a comment begins on the line, or -1.
func (s *scanSource) commentStart(line string) int {
	best := -1
	for _, p := range s.caps.CommentPrefixes {
		if i := strings.Index(line, p); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func (s *scanSource) isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range s.caps.CommentPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// functionStartLines returns 0-based indexes of lines that start a
// function-like unit, per the language capability patterns.
func (s *scanSource) functionStartLines() []int {
	if s.funcLinesInit {
		return s.funcLines
	}
	s.funcLinesInit = true
	var res []*regexp.Regexp
	for _, pat := range s.caps.FuncPatterns {
		if re, err := regexp.Compile(pat); err == nil {
			res = append(res, re)
		}
	}
	for i, line := range s.lines {
		if s.isCommentLine(line) {
			continue
		}
		for _, re := range res {
			if re.MatchString(line) {
				s.funcLines = append(s.funcLines, i)
				break
			}
		}
	}
	return s.funcLines
}

// simpleRule reports one hit at the first primary match, boosted when the
// corroborating expression also matches.
func simpleRule(name string, base, boost float64, primary, corroborating *regexp.Regexp) rule {
	return rule{name: name, match: func(s *scanSource) []hit {
		line := s.firstMatchLine(primary)
		if line == 0 {
			return nil
		}
		conf := base
		if corroborating != nil && s.has(corroborating) {
			conf += boost
		}
		return []hit{{Line: line, Confidence: conf}}
	}}
}

var (
	singletonAccessorRe = regexp.MustCompile(`(?i)\b(?:getInstance|get_instance|sharedInstance|shared_instance)\b`)
	singletonStateRe    = regexp.MustCompile(`(?i)(?:\b_{1,2}instance\b|\binstance\s*=\s*(?:none|null|nil)\b|private\s+static|\bsync\.Once\b|\bonce\.Do\b)`)

	factoryTypeRe   = regexp.MustCompile(`(?m)^.*\b(?:class|struct|trait|interface|type)\s+\w*Factory\b`)
	factoryCreateRe = regexp.MustCompile(`(?i)\b(?:def\s+create|func\s+(?:\(\w+\s+\*?\w*Factory\)\s*)?(?:Create|New)\w*|create[A-Z_]\w*\s*\(|make[A-Z_]\w*\s*\()`)

	observerNotifyRe = regexp.MustCompile(`(?i)\b(?:subscribe|unsubscribe|addListener|removeListener|addEventListener|add_observer|remove_observer|notify_?(?:all|observers|listeners))\w*\s*\(`)
	observerStateRe  = regexp.MustCompile(`(?i)\b(?:observers?|listeners?|subscribers?|callbacks?)\b\s*[:=.\[]`)

	builderTypeRe  = regexp.MustCompile(`(?m)^.*\b(?:class|struct|type|trait)\s+\w*Builder\b`)
	builderChainRe = regexp.MustCompile(`(?i)\.build\s*\(\s*\)|\bdef\s+build\b|func\s+\(\w+\s+\*?\w*Builder\)`)

	decoratorRe = regexp.MustCompile(`(?m)^.*\b(?:class|struct|type)\s+\w*(?:Decorator|Wrapper|Middleware)\b|functools\.wraps|@wraps\b`)

	strategyTypeRe = regexp.MustCompile(`(?m)^.*\b(?:class|interface|trait|type|struct)\s+\w*Strategy\b`)
	strategyUseRe  = regexp.MustCompile(`(?i)\bset_?strategy\b|\bstrategy\s*[:=]`)
)

var designRules = []rule{
	simpleRule("singleton", 0.6, 0.1, singletonAccessorRe, singletonStateRe),
	simpleRule("factory", 0.6, 0.2, factoryTypeRe, factoryCreateRe),
	simpleRule("observer", 0.6, 0.1, observerNotifyRe, observerStateRe),
	simpleRule("builder", 0.6, 0.2, builderTypeRe, builderChainRe),
	simpleRule("decorator", 0.6, 0, decoratorRe, nil),
	simpleRule("strategy", 0.5, 0.2, strategyTypeRe, strategyUseRe),
}

// God-class and long-method thresholds, in methods and non-blank lines.
const (
	godClassMethods     = 20
	godClassSevere      = 35
	longMethodLines     = 80
	longMethodSevere    = 150
	longParamCount      = 6
	deepNestingColumns  = 20
	magicNumberMinCount = 5
	dupLiteralMinCount  = 4
	commentedCodeRun    = 3
)

var classDeclRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:public\s+|private\s+|final\s+|abstract\s+|sealed\s+|data\s+)*(?:class|trait)\s+\w+|^type\s+\w+\s+struct\b`)

var antiRules = []rule{
	{name: "god_class", match: matchGodClass},
	{name: "long_method", match: matchLongMethod},
	{name: "long_parameter_list", match: matchLongParams},
	{name: "deep_nesting", match: matchDeepNesting},
}

func matchGodClass(s *scanSource) []hit {
	loc := classDeclRe.FindStringIndex(s.content)
	if loc == nil {
		return nil
	}
	methods := len(s.functionStartLines())
	if methods < godClassMethods {
		return nil
	}
	conf := 0.7
	if methods >= godClassSevere {
		conf = 0.8
	}
	return []hit{{Line: s.lineOf(loc[0]), Confidence: conf}}
}

// matchLongMethod approximates function extent as the span between
// consecutive function starts.
func matchLongMethod(s *scanSource) []hit {
	starts := s.functionStartLines()
	var hits []hit
	for i, start := range starts {
		end := len(s.lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		body := 0
		for _, line := range s.lines[start:end] {
			if strings.TrimSpace(line) != "" {
				body++
			}
		}
		if body <= longMethodLines {
			continue
		}
		conf := 0.7
		if body > longMethodSevere {
			conf = 0.8
		}
		hits = append(hits, hit{Line: start + 1, Confidence: conf})
	}
	return hits
}

func matchLongParams(s *scanSource) []hit {
	var hits []hit
	for _, start := range s.functionStartLines() {
		line := s.lines[start]
		open := strings.IndexByte(line, '(')
		if open < 0 {
			continue
		}
		if countParams(line[open:]) >= longParamCount {
			hits = append(hits, hit{Line: start + 1, Confidence: 0.6})
		}
	}
	return hits
}

// countParams counts comma-separated entries in the first balanced paren
// group, ignoring nested brackets. Signatures spanning lines are skipped.
func countParams(s string) int {
	depth := 0
	commas := 0
	content := false
	for _, r := range s {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
			if depth == 0 {
				if !content {
					return 0
				}
				return commas + 1
			}
		case ',':
			if depth == 1 {
				commas++
			}
		default:
			if depth >= 1 && !isSpace(r) {
				content = true
			}
		}
	}
	return 0
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

// matchDeepNesting flags the first line indented past deepNestingColumns
// columns, with tabs expanded to four columns.
func matchDeepNesting(s *scanSource) []hit {
	for i, line := range s.lines {
		if strings.TrimSpace(line) == "" || s.isCommentLine(line) {
			continue
		}
		cols := 0
		for _, r := range line {
			if r == '\t' {
				cols += 4
			} else if r == ' ' {
				cols++
			} else {
				break
			}
		}
		if cols >= deepNestingColumns {
			return []hit{{Line: i + 1, Confidence: 0.6}}
		}
	}
	return nil
}

var smellRules = []rule{
	{name: "commented_out_code", match: matchCommentedCode},
	{name: "magic_numbers", match: matchMagicNumbers},
	{name: "duplicate_string_literals", match: matchDupLiterals},
	{name: "todo_comments", match: matchTodos},
}

var (
	codeLikeRe    = regexp.MustCompile(`[\w\)\]]\s*;\s*$|=\s*["'\w\[]|\breturn\b|\w+\s*\([^)]*\)`)
	todoMarkerRe  = regexp.MustCompile(`\b(?:TODO|FIXME|HACK|XXX)\b`)
	numberRe      = regexp.MustCompile(`(?:^|[^\w.])(\d{2,}(?:\.\d+)?)`)
	constDeclRe   = regexp.MustCompile(`(?i)\b(?:const|final|static|readonly)\b`)
	stringLitRe   = regexp.MustCompile(`"([^"\\\n]{4,})"|'([^'\\\n]{4,})'`)
	benignNumbers = map[string]bool{"10": true, "100": true, "1000": true, "1024": true, "255": true}
)

// matchCommentedCode flags runs of commentedCodeRun or more consecutive
// comment lines whose bodies look like statements.
func matchCommentedCode(s *scanSource) []hit {
	var hits []hit
	run := 0
	runStart := 0
	flush := func() {
		if run >= commentedCodeRun {
			hits = append(hits, hit{Line: runStart + 1, Confidence: 0.6})
		}
		run = 0
	}
	for i, line := range s.lines {
		if !s.isCommentLine(line) {
			flush()
			continue
		}
		body := strings.TrimSpace(line)
		for _, p := range s.caps.CommentPrefixes {
			body = strings.TrimPrefix(body, p)
		}
		if todoMarkerRe.MatchString(body) || !codeLikeRe.MatchString(body) {
			flush()
			continue
		}
		if run == 0 {
			runStart = i
		}
		run++
	}
	flush()
	return hits
}

// matchMagicNumbers flags files with magicNumberMinCount or more unexplained
// multi-digit literals outside constant declarations.
func matchMagicNumbers(s *scanSource) []hit {
	count := 0
	firstLine := 0
	for i, line := range s.lines {
		if s.isCommentLine(line) || constDeclRe.MatchString(line) {
			continue
		}
		if c := s.commentStart(line); c >= 0 {
			line = line[:c]
		}
		for _, m := range numberRe.FindAllStringSubmatch(line, -1) {
			if benignNumbers[m[1]] {
				continue
			}
			if count == 0 {
				firstLine = i + 1
			}
			count++
		}
	}
	if count < magicNumberMinCount {
		return nil
	}
	return []hit{{Line: firstLine, Confidence: 0.5}}
}

// matchDupLiterals flags string literals repeated dupLiteralMinCount or more
// times in one file.
func matchDupLiterals(s *scanSource) []hit {
	type occurrence struct {
		line  int
		count int
	}
	seen := map[string]*occurrence{}
	for i, line := range s.lines {
		if s.isCommentLine(line) {
			continue
		}
		for _, m := range stringLitRe.FindAllStringSubmatch(line, -1) {
			lit := m[1]
			if lit == "" {
				lit = m[2]
			}
			if o, ok := seen[lit]; ok {
				o.count++
			} else {
				seen[lit] = &occurrence{line: i + 1, count: 1}
			}
		}
	}
	var hits []hit
	for _, o := range seen {
		if o.count >= dupLiteralMinCount {
			hits = append(hits, hit{Line: o.line, Confidence: 0.5})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Line < hits[j].Line })
	return hits
}

// matchTodos reports every TODO-family marker found in a comment.
func matchTodos(s *scanSource) []hit {
	var hits []hit
	for i, line := range s.lines {
		c := s.commentStart(line)
		if c < 0 {
			continue
		}
		if todoMarkerRe.MatchString(line[c:]) {
			hits = append(hits, hit{Line: i + 1, Confidence: 0.4})
		}
	}
	return hits
}
