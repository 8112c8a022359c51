// Package parser wraps tree-sitter for the languages caliper ships
// grammars for. Analyzers that can work from a syntax tree use it through
// the structural path; everything else falls back to line heuristics, so
// parser availability never decides whether a file gets analyzed at all.
package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/caliper-sh/caliper/pkg/language"
)

// Parser wraps a tree-sitter parser. Not safe for concurrent use; create
// one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult holds a parsed syntax tree and the source it came from.
type ParseResult struct {
	Tree     *sitter.Tree
	Language language.Language
	Source   []byte
}

// New creates a parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Supported reports whether a grammar exists for the language.
func Supported(lang language.Language) bool {
	return grammarFor(lang, "") != nil
}

// grammarFor selects the tree-sitter grammar. The path disambiguates JSX
// dialects: .tsx and .jsx need the tsx grammar even though they classify
// as typescript and javascript.
func grammarFor(lang language.Language, path string) *sitter.Language {
	lower := strings.ToLower(path)
	switch lang {
	case language.Go:
		return golang.GetLanguage()
	case language.Rust:
		return rust.GetLanguage()
	case language.Python:
		return python.GetLanguage()
	case language.TypeScript:
		if strings.HasSuffix(lower, ".tsx") {
			return tsx.GetLanguage()
		}
		return typescript.GetLanguage()
	case language.JavaScript:
		if strings.HasSuffix(lower, ".jsx") {
			return tsx.GetLanguage()
		}
		return javascript.GetLanguage()
	case language.Java:
		return java.GetLanguage()
	case language.C:
		return c.GetLanguage()
	case language.CPP:
		return cpp.GetLanguage()
	case language.CSharp:
		return csharp.GetLanguage()
	case language.Ruby:
		return ruby.GetLanguage()
	case language.PHP:
		return php.GetLanguage()
	case language.Shell:
		return bash.GetLanguage()
	default:
		return nil
	}
}

// Parse parses source for the given language. The path is only used to
// pick JSX dialect grammars and may be empty.
func (p *Parser) Parse(source []byte, lang language.Language, path string) (*ParseResult, error) {
	grammar := grammarFor(lang, path)
	if grammar == nil {
		return nil, fmt.Errorf("no grammar for language %s", lang)
	}

	p.parser.SetLanguage(grammar)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return &ParseResult{Tree: tree, Language: lang, Source: source}, nil
}

// Walk traverses the tree depth-first, calling visitor for each node. The
// visitor returns false to skip a node's children.
func Walk(node *sitter.Node, visitor func(node *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visitor)
	}
}

// NodeText extracts the source text for a node, tolerating out-of-bounds
// offsets from partially errored trees.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNode is one function-like unit found in a parse tree.
type FunctionNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Body      *sitter.Node
	Node      *sitter.Node
}

// functionNodeTypes maps a language to the node types that introduce
// function-like units.
func functionNodeTypes(lang language.Language) []string {
	switch lang {
	case language.Go:
		return []string{"function_declaration", "method_declaration", "func_literal"}
	case language.Rust:
		return []string{"function_item"}
	case language.Python:
		return []string{"function_definition"}
	case language.TypeScript, language.JavaScript:
		return []string{"function_declaration", "function", "arrow_function", "method_definition"}
	case language.Java:
		return []string{"method_declaration", "constructor_declaration"}
	case language.C, language.CPP:
		return []string{"function_definition"}
	case language.CSharp:
		return []string{"method_declaration", "constructor_declaration", "local_function_statement"}
	case language.Ruby:
		return []string{"method", "singleton_method"}
	case language.PHP:
		return []string{"function_definition", "method_declaration"}
	case language.Shell:
		return []string{"function_definition"}
	default:
		return nil
	}
}

// Functions extracts the function-like units from a parse result.
func Functions(result *ParseResult) []FunctionNode {
	types := functionNodeTypes(result.Language)
	if len(types) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var functions []FunctionNode
	Walk(result.Tree.RootNode(), func(node *sitter.Node) bool {
		if !wanted[node.Type()] {
			return true
		}
		fn := FunctionNode{
			StartLine: node.StartPoint().Row + 1,
			EndLine:   node.EndPoint().Row + 1,
			Node:      node,
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			fn.Name = NodeText(nameNode, result.Source)
		} else if decl := node.ChildByFieldName("declarator"); decl != nil {
			// C and C++ put the name inside the declarator chain.
			if nameNode := decl.ChildByFieldName("declarator"); nameNode != nil {
				fn.Name = NodeText(nameNode, result.Source)
			}
		}
		fn.Body = node.ChildByFieldName("body")
		if fn.Body == nil {
			fn.Body = node.ChildByFieldName("block")
		}
		if fn.Body == nil {
			fn.Body = node.ChildByFieldName("body_statement")
		}
		functions = append(functions, fn)
		return true
	})

	return functions
}
