package security

import (
	"regexp"

	"github.com/caliper-sh/caliper/pkg/models"
)

// Vulnerability type names on the wire.
const (
	TypeHardcodedSecret       = "hardcoded_secret"
	TypeUnsafeEval            = "unsafe_eval"
	TypeCommandInjection      = "command_injection"
	TypeSQLInjection          = "sql_injection"
	TypeWeakCrypto            = "weak_crypto"
	TypeInsecureRandom        = "insecure_random"
	TypeUnsafeDeserialization = "unsafe_deserialization"
	TypeRiskyDependency       = "risky_dependency"
)

// secRule is one line-oriented detection rule. codeOnly rules are skipped
// for configuration and data files, which are still scanned for secrets.
type secRule struct {
	vulnType    string
	severity    models.Severity
	re          *regexp.Regexp
	unless      *regexp.Regexp // suppresses a match on the same line
	description string
	codeOnly    bool
}

var secRules = []secRule{
	// Credential assignments: quoted values of six or more characters keyed
	// by a secret-looking identifier.
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\b(?:api[_-]?key|apikey|access[_-]?key|secret[_-]?key|auth[_-]?token|access[_-]?token|client[_-]?secret|private[_-]?key|secret|token|passwd|password|pwd)\b["']?\s*(?:[:=]|=>|:=)\s*["'][^"']{6,}["']`),
		description: "Hardcoded credential assigned to a secret-named variable",
	},
	// Provider-shaped key literals. The value length floor is 12 so short
	// test-style keys still match.
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`["'](?:sk|pk|rk)[-_](?:live[-_]|test[-_])?[A-Za-z0-9_-]{12,}["']`),
		description: "API-key-shaped string literal",
	},
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		description: "AWS access key ID literal",
	},
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`),
		description: "GitHub token literal",
	},
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
		description: "Slack token literal",
	},
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`),
		description: "Private key material embedded in source",
	},
	{
		vulnType:    TypeHardcodedSecret,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\b(?:mysql|postgres(?:ql)?|mongodb(?:\+srv)?|redis|amqp)://[^\s/:@"']+:[^\s@"']+@`),
		description: "Connection string with embedded credentials",
	},

	// Dynamic evaluation. The leading character class keeps method calls
	// like model.eval() from matching.
	{
		vulnType:    TypeUnsafeEval,
		severity:    models.SeverityCritical,
		re:          regexp.MustCompile(`(?:^|[^.\w])(?:eval|exec)\s*\(`),
		description: "Dynamic code evaluation",
		codeOnly:    true,
	},
	{
		vulnType:    TypeUnsafeEval,
		severity:    models.SeverityCritical,
		re:          regexp.MustCompile(`\bnew\s+Function\s*\(`),
		description: "Dynamic function construction from strings",
		codeOnly:    true,
	},

	{
		vulnType:    TypeCommandInjection,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\bos\.system\s*\(|subprocess\.(?:call|run|Popen)\s*\([^)]*shell\s*=\s*True`),
		description: "Shell invocation vulnerable to command injection",
		codeOnly:    true,
	},
	{
		vulnType:    TypeCommandInjection,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`\bexecSync\s*\(|\bshell_exec\s*\(|(?:^|[^.\w])system\s*\(\s*["$\x60]`),
		description: "Shell command built from program strings",
		codeOnly:    true,
	},

	{
		vulnType:    TypeSQLInjection,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)["']\s*(?:select\s+|insert\s+into\s+|update\s+\w+\s+set\s+|delete\s+from\s+)[^"']*["']\s*(?:\+|\|\|)`),
		description: "SQL statement assembled by string concatenation",
		codeOnly:    true,
	},
	{
		vulnType:    TypeSQLInjection,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)f["']\s*(?:select|insert|update|delete)\b[^"']*\{`),
		description: "SQL statement assembled by string interpolation",
		codeOnly:    true,
	},
	{
		vulnType:    TypeSQLInjection,
		severity:    models.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\bexecute\s*\(\s*["'][^"']*%s[^"']*["']\s*%`),
		description: "SQL statement assembled with printf-style formatting",
		codeOnly:    true,
	},

	{
		vulnType:    TypeWeakCrypto,
		severity:    models.SeverityMedium,
		re:          regexp.MustCompile(`(?i)\bhashlib\.(?:md5|sha1)\b|\bcreateHash\(\s*["'](?:md5|sha1)["']|\bMessageDigest\.getInstance\(\s*["'](?:MD5|SHA-?1)["']|"crypto/(?:md5|sha1|des|rc4)"|(?:^|[^.\w])(?:md5|sha1)\s*\(`),
		description: "Weak cryptographic hash or cipher",
		codeOnly:    true,
	},

	{
		vulnType:    TypeInsecureRandom,
		severity:    models.SeverityLow,
		re:          regexp.MustCompile(`(?i)(?:token|secret|password|nonce|salt|otp)\w*\s*=.{0,40}(?:math\.random|random\.(?:random|randint|choice)|rand\.(?:intn|int63|float64))`),
		description: "Security-sensitive value from a non-cryptographic random source",
		codeOnly:    true,
	},

	{
		vulnType:    TypeUnsafeDeserialization,
		severity:    models.SeverityMedium,
		re:          regexp.MustCompile(`\bpickle\.loads?\s*\(|\bMarshal\.load\s*\(|\byaml\.load\s*\(`),
		unless:      regexp.MustCompile(`SafeLoader|safe_load`),
		description: "Deserialization of untrusted data",
		codeOnly:    true,
	},
}

// advice maps vulnerability types to fixed remediation text.
var advice = map[string]string{
	TypeHardcodedSecret:       "Move secrets to environment variables or a secret manager; never commit credentials",
	TypeUnsafeEval:            "Avoid eval/exec on dynamic input; use safe parsers or explicit dispatch instead",
	TypeCommandInjection:      "Build subprocess calls from argument lists and validate inputs instead of interpolating shell strings",
	TypeSQLInjection:          "Use parameterized queries or prepared statements instead of assembling SQL from strings",
	TypeWeakCrypto:            "Replace MD5, SHA-1, DES, and RC4 with modern primitives such as SHA-256 or AES-GCM",
	TypeInsecureRandom:        "Use a cryptographically secure random source for tokens, salts, and other sensitive values",
	TypeUnsafeDeserialization: "Deserialize only trusted data, or switch to a safe loader",
	TypeRiskyDependency:       "Review flagged dependencies and upgrade or replace known-risky packages",
}
