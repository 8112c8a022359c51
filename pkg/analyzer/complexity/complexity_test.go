package complexity

import (
	"math"
	"testing"

	"github.com/caliper-sh/caliper/pkg/language"
)

func TestScoreTrivialGoFunction(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte(`package main

func add(a, b int) int {
	return a + b
}
`)
	fs := e.Score("main.go", language.Go, src)
	if fs.Units != 1 {
		t.Fatalf("units = %d, want 1", fs.Units)
	}
	if fs.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", fs.Score)
	}
}

func TestScoreBranchyGoFunction(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte(`package main

func clamp(a, b int) int {
	if a > 0 && b > 0 {
		return a
	}
	for i := 0; i < b; i++ {
		a++
	}
	return a
}
`)
	fs := e.Score("clamp.go", language.Go, src)
	if fs.Units != 1 {
		t.Fatalf("units = %d, want 1", fs.Units)
	}
	// if + && + for
	if fs.Score != 4.0 {
		t.Errorf("score = %v, want 4.0", fs.Score)
	}
}

func TestScoreAveragesAcrossFunctions(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte(`package main

func simple() int { return 1 }

func branchy(x int) int {
	if x > 0 {
		return x
	}
	if x < -10 {
		return -x
	}
	return 0
}
`)
	fs := e.Score("two.go", language.Go, src)
	if fs.Units != 2 {
		t.Fatalf("units = %d, want 2", fs.Units)
	}
	// (1 + 3) / 2
	if fs.Score != 2.0 {
		t.Errorf("score = %v, want 2.0", fs.Score)
	}
}

func TestScoreFileWithoutFunctions(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte("package main\n\nvar Version = \"1.0\"\n")
	fs := e.Score("version.go", language.Go, src)
	if fs.Units != 1 {
		t.Fatalf("units = %d, want 1", fs.Units)
	}
	if fs.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", fs.Score)
	}
}

func TestScoreHeuristicLanguage(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte(`fun describe(x: Int): String {
    return if (x > 0 && x < 10) "small" else "other"
}
`)
	fs := e.Score("describe.kt", language.Kotlin, src)
	if fs.Units != 1 {
		t.Fatalf("units = %d, want 1", fs.Units)
	}
	// if + &&
	if fs.Score != 3.0 {
		t.Errorf("score = %v, want 3.0", fs.Score)
	}
}

func TestScoreHeuristicTrivialFile(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	fs := e.Score("conf.lua", language.Lua, []byte("x = 1\n"))
	if fs.Units != 1 {
		t.Fatalf("units = %d, want 1", fs.Units)
	}
	if fs.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", fs.Score)
	}
}

func TestScoreHeuristicSkipsComments(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	src := []byte(`-- if this were code it would count
-- while commented out it must not
print("hi")
`)
	fs := e.Score("note.lua", language.Lua, src)
	if fs.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", fs.Score)
	}
}

func TestScoreNonCodeAndEmpty(t *testing.T) {
	e := NewEstimator()
	defer e.Close()

	if fs := e.Score("README.md", language.Markdown, []byte("# hi\n")); fs.Units != 0 {
		t.Errorf("markdown units = %d, want 0", fs.Units)
	}
	if fs := e.Score("empty.go", language.Go, nil); fs.Units != 0 {
		t.Errorf("empty units = %d, want 0", fs.Units)
	}
}

func TestProfileDistribution(t *testing.T) {
	scores := []FileScore{
		{Path: "a", Score: 1, Units: 1},
		{Path: "b", Score: 2, Units: 3},
		{Path: "c", Score: 3, Units: 2},
		{Path: "d", Score: 6, Units: 1},
		{Path: "e", Score: 12, Units: 4},
		{Path: "skip", Score: 0, Units: 0},
	}
	p := Profile(scores)
	if p.Average != 4.8 {
		t.Errorf("average = %v, want 4.8", p.Average)
	}
	if p.Max != 12.0 {
		t.Errorf("max = %v, want 12.0", p.Max)
	}
	if p.Distribution.Low != 0.6 {
		t.Errorf("low = %v, want 0.6", p.Distribution.Low)
	}
	if p.Distribution.Medium != 0.2 {
		t.Errorf("medium = %v, want 0.2", p.Distribution.Medium)
	}
	if p.Distribution.High != 0.2 {
		t.Errorf("high = %v, want 0.2", p.Distribution.High)
	}
}

func TestProfileBucketBoundaries(t *testing.T) {
	p := Profile([]FileScore{
		{Path: "a", Score: 5, Units: 1},
		{Path: "b", Score: 10, Units: 1},
	})
	if p.Distribution.Medium != 1.0 {
		t.Errorf("medium = %v, want 1.0 (5 and 10 are both medium)", p.Distribution.Medium)
	}
	if p.Distribution.Low != 0 || p.Distribution.High != 0 {
		t.Errorf("low/high = %v/%v, want 0/0", p.Distribution.Low, p.Distribution.High)
	}
}

func TestProfileEmpty(t *testing.T) {
	p := Profile(nil)
	if p.Average != 0 || p.Max != 0 {
		t.Errorf("empty profile = %+v, want zeros", p)
	}
}

func TestHighFraction(t *testing.T) {
	scores := []FileScore{
		{Path: "a", Score: 12, Units: 1},
		{Path: "b", Score: 1, Units: 1},
		{Path: "c", Score: 2, Units: 1},
		{Path: "d", Score: 3, Units: 1},
		{Path: "skip", Units: 0},
	}
	got := HighFraction(scores)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("high fraction = %v, want 0.25", got)
	}
}
