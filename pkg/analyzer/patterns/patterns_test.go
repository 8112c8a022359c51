package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
)

func findPattern(ms []models.PatternMatch, name string) *models.PatternMatch {
	for i := range ms {
		if ms[i].Pattern == name {
			return &ms[i]
		}
	}
	return nil
}

func TestDetectSingleton(t *testing.T) {
	src := []byte(`class Config:
    _instance = None

    @classmethod
    def get_instance(cls):
        if cls._instance is None:
            cls._instance = Config()
        return cls._instance
`)
	d := NewDetector()
	fm := d.DetectFile("config.py", language.Python, src)

	m := findPattern(fm.Design, "singleton")
	require.NotNil(t, m, "singleton should be detected")
	assert.Equal(t, 5, m.Line)
	assert.InDelta(t, 0.7, m.Confidence, 1e-9, "state corroboration should boost confidence")
}

func TestDetectFactory(t *testing.T) {
	src := []byte(`package widgets

type WidgetFactory struct{}

func (f *WidgetFactory) Create(kind string) *Widget {
	return &Widget{kind: kind}
}
`)
	d := NewDetector()
	fm := d.DetectFile("factory.go", language.Go, src)

	m := findPattern(fm.Design, "factory")
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Line)
	assert.InDelta(t, 0.8, m.Confidence, 1e-9)
}

func TestDetectBuilder(t *testing.T) {
	src := []byte(`class QueryBuilder {
    where(c) { this.parts.push(c); return this; }
    build() { return this.parts.join(" "); }
}
const q = new QueryBuilder().build();
`)
	d := NewDetector()
	fm := d.DetectFile("query.js", language.JavaScript, src)

	m := findPattern(fm.Design, "builder")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
	assert.InDelta(t, 0.8, m.Confidence, 1e-9)
}

func TestDetectGodClass(t *testing.T) {
	src := "class Everything:\n"
	for i := 0; i < 25; i++ {
		src += "    def method_" + string(rune('a'+i)) + "(self):\n        pass\n"
	}
	d := NewDetector()
	fm := d.DetectFile("everything.py", language.Python, []byte(src))

	m := findPattern(fm.Anti, "god_class")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
	assert.InDelta(t, 0.7, m.Confidence, 1e-9)
}

func TestDetectLongParameterList(t *testing.T) {
	src := []byte(`function connect(host, port, user, pass, timeout, retries, log) {
    return null;
}
`)
	d := NewDetector()
	fm := d.DetectFile("conn.js", language.JavaScript, src)

	m := findPattern(fm.Anti, "long_parameter_list")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
}

func TestDetectDeepNesting(t *testing.T) {
	src := []byte("def f(x):\n" +
		"    if a:\n" +
		"        if b:\n" +
		"            if c:\n" +
		"                if d:\n" +
		"                    if e:\n" +
		"                        return x\n")
	d := NewDetector()
	fm := d.DetectFile("nested.py", language.Python, src)

	m := findPattern(fm.Anti, "deep_nesting")
	require.NotNil(t, m)
	assert.Equal(t, 6, m.Line, "first line at or past the column threshold")
}

func TestDetectTodoComments(t *testing.T) {
	src := []byte(`# TODO: rotate keys
x = 1
# FIXME handle unicode
`)
	d := NewDetector()
	fm := d.DetectFile("keys.py", language.Python, src)

	var todos []models.PatternMatch
	for _, m := range fm.Smells {
		if m.Pattern == "todo_comments" {
			todos = append(todos, m)
		}
	}
	require.Len(t, todos, 2)
	assert.Equal(t, 1, todos[0].Line)
	assert.Equal(t, 3, todos[1].Line)
	assert.InDelta(t, 0.4, todos[0].Confidence, 1e-9)
}

func TestDetectMagicNumbers(t *testing.T) {
	src := []byte(`t = 86400
u = 3600
v = 9999
w = 42 * 17
`)
	d := NewDetector()
	fm := d.DetectFile("times.py", language.Python, src)

	m := findPattern(fm.Smells, "magic_numbers")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
}

func TestMagicNumbersIgnoresConstants(t *testing.T) {
	src := []byte(`const SECONDS_PER_DAY = 86400;
const CACHE_TTL = 3600;
const MAX_RETRIES = 17;
const BACKOFF_MS = 250;
const LIMIT = 9999;
`)
	d := NewDetector()
	fm := d.DetectFile("consts.js", language.JavaScript, src)

	assert.Nil(t, findPattern(fm.Smells, "magic_numbers"))
}

func TestDetectDuplicateStringLiterals(t *testing.T) {
	src := []byte(`a = send("payment.failed")
b = send("payment.failed")
c = send("payment.failed")
d = send("payment.failed")
`)
	d := NewDetector()
	fm := d.DetectFile("events.py", language.Python, src)

	m := findPattern(fm.Smells, "duplicate_string_literals")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
}

func TestDetectCommentedOutCode(t *testing.T) {
	src := []byte(`# result = compute(x)
# cache[key] = result
# return result
print("done")
`)
	d := NewDetector()
	fm := d.DetectFile("cache.py", language.Python, src)

	m := findPattern(fm.Smells, "commented_out_code")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Line)
}

func TestThresholdFiltersWeakMatches(t *testing.T) {
	src := []byte("# TODO: later\nx = 1\n")
	d := NewDetector(WithThreshold(0.5))
	fm := d.DetectFile("later.py", language.Python, src)

	assert.Nil(t, findPattern(fm.Smells, "todo_comments"))
}

func TestDetectSkipsNonCode(t *testing.T) {
	d := NewDetector()
	fm := d.DetectFile("NOTES.md", language.Markdown, []byte("TODO: write docs\n"))
	assert.Empty(t, fm.Design)
	assert.Empty(t, fm.Anti)
	assert.Empty(t, fm.Smells)
}

func TestCollectSortsMatches(t *testing.T) {
	groups := Collect([]FileMatches{
		{Smells: []models.PatternMatch{{Pattern: "todo_comments", File: "b.py", Line: 3, Confidence: 0.4}}},
		{Smells: []models.PatternMatch{
			{Pattern: "todo_comments", File: "a.py", Line: 9, Confidence: 0.4},
			{Pattern: "todo_comments", File: "a.py", Line: 2, Confidence: 0.4},
		}},
	})
	require.Len(t, groups.CodeSmells, 3)
	assert.Equal(t, "a.py", groups.CodeSmells[0].File)
	assert.Equal(t, 2, groups.CodeSmells[0].Line)
	assert.Equal(t, 9, groups.CodeSmells[1].Line)
	assert.Equal(t, "b.py", groups.CodeSmells[2].File)

	assert.NotNil(t, groups.DesignPatterns)
	assert.NotNil(t, groups.AntiPatterns)
}

func TestHotspots(t *testing.T) {
	files := []FileStat{
		{Path: "a.py", Lines: 1200, Complexity: 14},
		{Path: "b.py", Lines: 50, Complexity: 12},
		{Path: "c.py", Lines: 300, Complexity: 2},
	}
	hs := Hotspots(files)
	require.Len(t, hs, 3)

	assert.Equal(t, models.HotspotHighComplexity, hs[0].Type)
	assert.Equal(t, "a.py", hs[0].File)
	assert.Equal(t, models.SeverityHigh, hs[0].Severity, "both criteria met")

	assert.Equal(t, models.HotspotHighSize, hs[1].Type)
	assert.Equal(t, "a.py", hs[1].File)
	assert.Equal(t, models.SeverityHigh, hs[1].Severity)

	assert.Equal(t, "b.py", hs[2].File)
	assert.Equal(t, models.HotspotHighComplexity, hs[2].Type)
	assert.Equal(t, models.SeverityMedium, hs[2].Severity)
}

func TestHotspotSizeFloor(t *testing.T) {
	files := make([]FileStat, 10)
	for i := range files {
		files[i] = FileStat{Path: "f", Lines: 30, Complexity: 1}
	}
	assert.Empty(t, Hotspots(files), "short files never qualify as size hotspots")
}
