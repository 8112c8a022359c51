package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/parser"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// structural scores files by walking their syntax tree. Each decision node
// and each short-circuit boolean operator adds one to the enclosing
// function's complexity.
type structural struct {
	parser *parser.Parser
}

func newStructural() *structural {
	return &structural{parser: parser.New()}
}

func (s *structural) close() {
	s.parser.Close()
}

// score returns (result, true) when the language has a grammar and the file
// parses. A false return means the caller should fall back to the heuristic
// path.
func (s *structural) score(path string, lang language.Language, content []byte) (FileScore, bool) {
	if !parser.Supported(lang) {
		return FileScore{}, false
	}
	result, err := s.parser.Parse(content, lang, path)
	if err != nil {
		return FileScore{}, false
	}
	defer result.Tree.Close()

	decisions := decisionNodeTypes(lang)
	fns := parser.Functions(result)
	if len(fns) == 0 {
		// Top-level scripts and declaration-only files count as a
		// single unit covering the whole tree.
		score := 1 + float64(countDecisions(result.Tree.RootNode(), content, decisions))
		return FileScore{Path: path, Score: stats.Round1(score), Units: 1}, true
	}

	values := make([]float64, 0, len(fns))
	for _, fn := range fns {
		node := fn.Body
		if node == nil {
			node = fn.Node
		}
		values = append(values, 1+float64(countDecisions(node, content, decisions)))
	}
	return FileScore{
		Path:  path,
		Score: stats.Round1(stats.Mean(values)),
		Units: len(fns),
	}, true
}

// countDecisions walks the subtree rooted at node and counts decision points:
// branch/loop/case/catch nodes plus && and || (and their word forms).
func countDecisions(node *sitter.Node, source []byte, decisions map[string]bool) int {
	count := 0
	parser.Walk(node, func(n *sitter.Node) bool {
		t := n.Type()
		if decisions[t] {
			count++
			return true
		}
		switch t {
		case "binary_expression", "logical_expression", "boolean_operator", "binary":
			if isShortCircuit(n, source) {
				count++
			}
		}
		return true
	})
	return count
}

func isShortCircuit(n *sitter.Node, source []byte) bool {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return false
	}
	switch parser.NodeText(op, source) {
	case "&&", "||", "and", "or":
		return true
	}
	return false
}

// commonDecisionTypes appear across most grammars in the supported set.
var commonDecisionTypes = []string{
	"if_statement",
	"if_expression",
	"while_statement",
	"while_expression",
	"for_statement",
	"for_expression",
	"case_statement",
	"catch_clause",
	"ternary_expression",
	"conditional_expression",
}

// languageDecisionTypes holds grammar-specific node types on top of the
// common set.
var languageDecisionTypes = map[language.Language][]string{
	language.Go: {
		"expression_switch_statement",
		"type_switch_statement",
		"select_statement",
		"expression_case",
		"type_case",
		"communication_case",
	},
	language.Rust: {
		"match_expression",
		"match_arm",
		"loop_expression",
		"if_let_expression",
		"while_let_expression",
	},
	language.Python: {
		"elif_clause",
		"except_clause",
		"with_statement",
		"list_comprehension",
		"set_comprehension",
		"dictionary_comprehension",
		"generator_expression",
	},
	language.JavaScript: {
		"switch_statement",
		"switch_case",
		"do_statement",
	},
	language.TypeScript: {
		"switch_statement",
		"switch_case",
		"do_statement",
	},
	language.Java: {
		"switch_statement",
		"switch_expression",
		"enhanced_for_statement",
		"do_statement",
	},
	language.CSharp: {
		"switch_statement",
		"switch_expression",
		"foreach_statement",
		"do_statement",
	},
	language.C: {
		"switch_statement",
		"do_statement",
	},
	language.CPP: {
		"switch_statement",
		"do_statement",
	},
	language.Ruby: {
		"if",
		"elsif",
		"unless",
		"while",
		"until",
		"for",
		"case",
		"when",
		"rescue",
		"conditional",
	},
	language.PHP: {
		"switch_statement",
		"elseif_clause",
		"do_statement",
		"match_expression",
	},
	language.Shell: {
		"elif_clause",
		"until_statement",
		"case_item",
	},
}

func decisionNodeTypes(lang language.Language) map[string]bool {
	set := make(map[string]bool, len(commonDecisionTypes)+8)
	for _, t := range commonDecisionTypes {
		set[t] = true
	}
	for _, t := range languageDecisionTypes[lang] {
		set[t] = true
	}
	return set
}
