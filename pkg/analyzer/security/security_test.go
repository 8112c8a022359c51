package security

import (
	"strings"
	"testing"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
)

func TestScanHardcodedAPIKey(t *testing.T) {
	s := NewScanner()
	vulns := s.ScanFile("handler.py", language.Python, []byte(`API_KEY = "sk-abcdef123456"
def handle(req):
    return req
`))
	if len(vulns) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(vulns), vulns)
	}
	v := vulns[0]
	if v.Type != TypeHardcodedSecret {
		t.Errorf("type = %q, want %q", v.Type, TypeHardcodedSecret)
	}
	if v.Severity != models.SeverityHigh {
		t.Errorf("severity = %q, want high", v.Severity)
	}
	if v.Line != 1 {
		t.Errorf("line = %d, want 1", v.Line)
	}
}

func TestScanEvalIsCritical(t *testing.T) {
	s := NewScanner()
	vulns := s.ScanFile("calc.py", language.Python, []byte("result = eval(payload)\n"))
	if len(vulns) != 1 {
		t.Fatalf("got %d findings, want 1", len(vulns))
	}
	if vulns[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %q, want critical", vulns[0].Severity)
	}
}

func TestScanMethodEvalNotFlagged(t *testing.T) {
	s := NewScanner()
	vulns := s.ScanFile("train.py", language.Python, []byte("model.eval()\n"))
	if len(vulns) != 0 {
		t.Fatalf("got %d findings, want 0: %+v", len(vulns), vulns)
	}
}

func TestScanRuleSpread(t *testing.T) {
	src := []byte(`query = "SELECT name FROM users WHERE id = " + user_id
os.system("convert " + upload)
digest = hashlib.md5(blob)
data = pickle.loads(raw)
`)
	s := NewScanner()
	vulns := s.ScanFile("app.py", language.Python, src)

	types := map[string]models.Severity{}
	for _, v := range vulns {
		types[v.Type] = v.Severity
	}
	want := map[string]models.Severity{
		TypeSQLInjection:          models.SeverityHigh,
		TypeCommandInjection:      models.SeverityHigh,
		TypeWeakCrypto:            models.SeverityMedium,
		TypeUnsafeDeserialization: models.SeverityMedium,
	}
	for typ, sev := range want {
		if types[typ] != sev {
			t.Errorf("%s severity = %q, want %q", typ, types[typ], sev)
		}
	}
}

func TestScanSafeYAMLLoadNotFlagged(t *testing.T) {
	s := NewScanner()
	src := []byte(`cfg = yaml.load(f, Loader=yaml.SafeLoader)
other = yaml.safe_load(g)
`)
	if vulns := s.ScanFile("cfg.py", language.Python, src); len(vulns) != 0 {
		t.Fatalf("got %d findings, want 0: %+v", len(vulns), vulns)
	}
}

func TestScanSecretsInDataFiles(t *testing.T) {
	s := NewScanner()
	src := []byte("{\n  \"api_key\": \"sk-live_abcdef123456\"\n}\n")
	vulns := s.ScanFile("config.json", language.JSON, src)
	if len(vulns) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(vulns), vulns)
	}
	if vulns[0].Type != TypeHardcodedSecret {
		t.Errorf("type = %q, want %q", vulns[0].Type, TypeHardcodedSecret)
	}
}

func TestScanUnsafeCallsSkippedInDataFiles(t *testing.T) {
	s := NewScanner()
	vulns := s.ScanFile("notes.yaml", language.YAML, []byte("cmd: eval(x)\n"))
	if len(vulns) != 0 {
		t.Fatalf("code-only rules ran on a data file: %+v", vulns)
	}
}

func TestScanMarkdownSkipped(t *testing.T) {
	s := NewScanner()
	vulns := s.ScanFile("README.md", language.Markdown, []byte(`password = "example123"`))
	if len(vulns) != 0 {
		t.Fatalf("got %d findings, want 0", len(vulns))
	}
}

func TestScanManifestRiskyDependency(t *testing.T) {
	src := []byte(`{
  "dependencies": {
    "event-stream": "3.3.6"
  }
}
`)
	s := NewScanner()
	vulns := s.ScanFile("package.json", language.JSON, src)
	if len(vulns) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(vulns), vulns)
	}
	v := vulns[0]
	if v.Type != TypeRiskyDependency {
		t.Errorf("type = %q, want %q", v.Type, TypeRiskyDependency)
	}
	if v.Line != 3 {
		t.Errorf("line = %d, want 3", v.Line)
	}
	if !strings.Contains(v.Description, "event-stream") {
		t.Errorf("description %q should name the dependency", v.Description)
	}

	quick := NewScanner(WithoutManifestScan())
	if vulns := quick.ScanFile("package.json", language.JSON, src); len(vulns) != 0 {
		t.Errorf("manifest scan should be disabled, got %+v", vulns)
	}
}

func TestReportScoreAndRecommendations(t *testing.T) {
	vulns := []models.Vulnerability{
		{Type: TypeWeakCrypto, Severity: models.SeverityMedium, File: "b.py", Line: 3},
		{Type: TypeUnsafeEval, Severity: models.SeverityCritical, File: "a.py", Line: 1},
		{Type: TypeHardcodedSecret, Severity: models.SeverityHigh, File: "c.py", Line: 2},
		{Type: TypeInsecureRandom, Severity: models.SeverityLow, File: "a.py", Line: 9},
	}
	sec := Report(vulns)

	// 100 - 20 - 10 - 5 - 2
	if sec.Score != 63 {
		t.Errorf("score = %v, want 63", sec.Score)
	}
	if got := sec.Vulnerabilities[0].Type; got != TypeUnsafeEval {
		t.Errorf("first vulnerability = %q, want critical eval first", got)
	}
	if len(sec.Recommendations) != 4 {
		t.Fatalf("got %d recommendations, want 4", len(sec.Recommendations))
	}
	if sec.Recommendations[0] != advice[TypeUnsafeEval] {
		t.Errorf("first recommendation = %q, want eval advice", sec.Recommendations[0])
	}
}

func TestReportDeduplicatesRecommendations(t *testing.T) {
	vulns := []models.Vulnerability{
		{Type: TypeHardcodedSecret, Severity: models.SeverityHigh, File: "a.py", Line: 1},
		{Type: TypeHardcodedSecret, Severity: models.SeverityHigh, File: "a.py", Line: 7},
	}
	sec := Report(vulns)
	if len(sec.Recommendations) != 1 {
		t.Errorf("got %d recommendations, want 1", len(sec.Recommendations))
	}
	if sec.Score != 80 {
		t.Errorf("score = %v, want 80", sec.Score)
	}
}

func TestReportScoreFloor(t *testing.T) {
	var vulns []models.Vulnerability
	for i := 0; i < 10; i++ {
		vulns = append(vulns, models.Vulnerability{Type: TypeUnsafeEval, Severity: models.SeverityCritical, File: "a.py", Line: i + 1})
	}
	if sec := Report(vulns); sec.Score != 0 {
		t.Errorf("score = %v, want floor 0", sec.Score)
	}
}

func TestReportEmpty(t *testing.T) {
	sec := Report(nil)
	if sec.Score != 100 {
		t.Errorf("score = %v, want 100", sec.Score)
	}
	if sec.Vulnerabilities == nil || sec.Recommendations == nil {
		t.Error("slices must be non-nil for stable serialization")
	}
}
