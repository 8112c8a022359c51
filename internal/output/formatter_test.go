package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"bogus", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterStdout(t *testing.T) {
	f, err := NewFormatter(FormatText, "", true)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	defer f.Close()

	if f.Writer() != os.Stdout {
		t.Error("expected stdout writer")
	}
	if f.Format() != FormatText {
		t.Errorf("Format() = %q, want %q", f.Format(), FormatText)
	}
	if !f.Colored() {
		t.Error("expected colored output")
	}
}

func TestNewFormatterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	if f.Colored() {
		t.Error("file output should disable coloring")
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file not created: %v", err)
	}
}

func TestNewFormatterBadPath(t *testing.T) {
	_, err := NewFormatter(FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"), false)
	if err == nil {
		t.Fatal("expected error for uncreatable output file")
	}
}

func TestOutputRawJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, false)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	if err := f.Output(map[string]int{"files": 3}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["files"] != 3 {
		t.Errorf("files = %d, want 3", decoded["files"])
	}
}

func TestOutputRawTOON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toon")
	f, err := NewFormatter(FormatTOON, path, false)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	if err := f.Output(map[string]string{"language": "python"}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "language") {
		t.Errorf("TOON output missing key, got: %s", data)
	}
}

func TestOutputRawMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	f, err := NewFormatter(FormatMarkdown, path, false)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	if err := f.Output(map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "```json\n") {
		t.Errorf("markdown raw output should open a json fence, got: %s", out)
	}
	if !strings.Contains(out, "```\n") {
		t.Error("markdown raw output should close the fence")
	}
}

func TestTableRenderData(t *testing.T) {
	tbl := NewTable("Files", []string{"Path", "Lines"}, [][]string{
		{"main.go", "120"},
		{"util.go", "40"},
	}, nil, nil)

	data, ok := tbl.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData returned %T, want []map[string]string", tbl.RenderData())
	}
	if len(data) != 2 {
		t.Fatalf("got %d rows, want 2", len(data))
	}
	if data[0]["Path"] != "main.go" || data[0]["Lines"] != "120" {
		t.Errorf("unexpected first row: %v", data[0])
	}
}

func TestTableRenderDataPrefersStructured(t *testing.T) {
	type payload struct {
		Total int `json:"total"`
	}
	tbl := NewTable("Files", []string{"Path"}, [][]string{{"main.go"}}, nil, payload{Total: 1})

	got, ok := tbl.RenderData().(payload)
	if !ok {
		t.Fatalf("RenderData returned %T, want payload", tbl.RenderData())
	}
	if got.Total != 1 {
		t.Errorf("total = %d, want 1", got.Total)
	}
}

func TestTableRenderText(t *testing.T) {
	tbl := NewTable("Summary", []string{"Name", "Value"}, [][]string{
		{"files", "12"},
		{"lines", "3400"},
	}, []string{"total", "2"}, nil)

	var buf bytes.Buffer
	if err := tbl.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Summary") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "=======") {
		t.Error("missing title underline")
	}
	if !strings.Contains(out, "NAME") {
		t.Error("missing auto-formatted header")
	}
	if !strings.Contains(out, "3400") {
		t.Error("missing row value")
	}
	if !strings.Contains(out, "total") {
		t.Error("missing footer")
	}
}

func TestTableRenderTextNoTitle(t *testing.T) {
	tbl := NewTable("", []string{"A"}, [][]string{{"1"}}, nil, nil)

	var buf bytes.Buffer
	if err := tbl.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if strings.Contains(buf.String(), "=") {
		t.Error("untitled table should not print an underline")
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	tbl := NewTable("Languages", []string{"Language", "Files"}, [][]string{
		{"python", "4"},
		{"go", "2"},
	}, []string{"total", "6"}, nil)

	var buf bytes.Buffer
	if err := tbl.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## Languages") {
		t.Error("missing markdown title")
	}
	if !strings.Contains(out, "| Language | Files |") {
		t.Error("missing header row")
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Error("missing separator row")
	}
	if !strings.Contains(out, "| python | 4 |") {
		t.Error("missing data row")
	}
	if !strings.Contains(out, "| total | 6 |") {
		t.Error("missing footer row")
	}
}

func TestFormatterOutputTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, false)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	tbl := NewTable("T", []string{"K"}, [][]string{{"v"}}, nil, map[string]string{"k": "v"})
	if err := f.Output(tbl); err != nil {
		t.Fatalf("Output: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["k"] != "v" {
		t.Errorf("structured data not serialized, got %v", decoded)
	}
}

func TestSectionRenderText(t *testing.T) {
	s := Section{
		Title:   "Overview",
		Content: "12 files analyzed",
		Sections: []Section{
			{Title: "Details", Content: "mostly python"},
		},
	}

	var buf bytes.Buffer
	if err := s.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Overview\n========") {
		t.Error("top section should underline with =")
	}
	if !strings.Contains(out, "Details\n-------") {
		t.Error("nested section should underline with -")
	}
	if !strings.Contains(out, "mostly python") {
		t.Error("missing nested content")
	}
}

func TestSectionRenderMarkdown(t *testing.T) {
	s := Section{
		Title:   "Overview",
		Content: "body",
		Sections: []Section{
			{Title: "Inner", Content: "nested"},
		},
	}

	var buf bytes.Buffer
	if err := s.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## Overview") {
		t.Error("missing level-2 heading")
	}
	if !strings.Contains(out, "### Inner") {
		t.Error("missing level-3 heading")
	}
}

func TestSectionRenderData(t *testing.T) {
	s := Section{Title: "T", Data: map[string]int{"n": 1}}
	data, ok := s.RenderData().(map[string]int)
	if !ok {
		t.Fatalf("RenderData returned %T, want map", s.RenderData())
	}
	if data["n"] != 1 {
		t.Errorf("n = %d, want 1", data["n"])
	}

	plain := Section{Title: "T", Content: "c"}
	if _, ok := plain.RenderData().(*Section); !ok {
		t.Errorf("RenderData without Data should return the section itself, got %T", plain.RenderData())
	}
}

func TestReportRenderText(t *testing.T) {
	r := Report{
		Title: "Analysis",
		Sections: []Renderable{
			&Section{Title: "First", Content: "one"},
			NewTable("Second", []string{"A"}, [][]string{{"x"}}, nil, nil),
		},
	}

	var buf bytes.Buffer
	if err := r.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Analysis\n========") {
		t.Error("missing report title")
	}
	if !strings.Contains(out, "First") || !strings.Contains(out, "Second") {
		t.Error("missing section titles")
	}
}

func TestReportRenderMarkdown(t *testing.T) {
	r := Report{
		Title: "Analysis",
		Sections: []Renderable{
			&Section{Title: "Part", Content: "text"},
		},
	}

	var buf bytes.Buffer
	if err := r.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "# Analysis") {
		t.Error("missing level-1 title")
	}
	if !strings.Contains(out, "## Part") {
		t.Error("missing section heading")
	}
}

func TestReportRenderData(t *testing.T) {
	r := Report{
		Title: "Analysis",
		Sections: []Renderable{
			&Section{Title: "S", Data: map[string]int{"n": 2}},
		},
	}

	data, ok := r.RenderData().(map[string]any)
	if !ok {
		t.Fatalf("RenderData returned %T, want map", r.RenderData())
	}
	if data["title"] != "Analysis" {
		t.Errorf("title = %v, want Analysis", data["title"])
	}
	parts, ok := data["sections"].([]any)
	if !ok || len(parts) != 1 {
		t.Fatalf("sections = %v, want one entry", data["sections"])
	}
}

func TestReportRenderDataPrefersStructured(t *testing.T) {
	r := Report{Title: "A", Data: map[string]bool{"ok": true}}
	data, ok := r.RenderData().(map[string]bool)
	if !ok {
		t.Fatalf("RenderData returned %T, want map", r.RenderData())
	}
	if !data["ok"] {
		t.Error("Data override not honored")
	}
}

func TestMessageHelpersUncolored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msgs.txt")
	f, err := NewFormatter(FormatText, path, true)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	f.Success("done %d", 1)
	f.Warning("careful")
	f.Error("broken")
	f.Info("note")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "done 1") {
		t.Error("missing success message")
	}
	if !strings.Contains(out, "WARNING: careful") {
		t.Error("missing warning prefix")
	}
	if !strings.Contains(out, "ERROR: broken") {
		t.Error("missing error prefix")
	}
	if !strings.Contains(out, "note") {
		t.Error("missing info message")
	}
}

func TestSeverityColor(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = old }()

	tests := []struct {
		severity string
		colored  bool
	}{
		{"critical", true},
		{"high", true},
		{"medium", true},
		{"low", true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			got := SeverityColor(tt.severity, "text")
			hasEscape := strings.Contains(got, "\x1b[")
			if hasEscape != tt.colored {
				t.Errorf("SeverityColor(%q) colored = %v, want %v", tt.severity, hasEscape, tt.colored)
			}
			if !strings.Contains(got, "text") {
				t.Errorf("SeverityColor(%q) lost the text: %q", tt.severity, got)
			}
		})
	}
}

func TestScoreColor(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	if got := ScoreColor(92.35); got != "92.3" {
		t.Errorf("ScoreColor(92.35) = %q, want 92.3", got)
	}
	if got := ScoreColor(0); got != "0.0" {
		t.Errorf("ScoreColor(0) = %q, want 0.0", got)
	}
}
