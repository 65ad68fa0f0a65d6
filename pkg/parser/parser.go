// Package parser lowers JavaScript source into the canonical AST using the
// tree-sitter-javascript grammar.
package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/parser/language"
)

// Parser wraps a tree-sitter parser configured for JavaScript.
type Parser struct {
	parser *sitter.Parser
}

// New constructs a parser with the JavaScript language loaded.
func New() (*Parser, error) {
	lang := language.JavaScript()
	if lang == nil {
		return nil, fmt.Errorf("parser: javascript language not available")
	}

	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	return &Parser{parser: p}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p == nil || p.parser == nil {
		return
	}
	p.parser.Close()
}

// ParseProgram parses JavaScript source into a Program node.
func (p *Parser) ParseProgram(source []byte) (*ast.Program, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}

	tree := p.parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, fmt.Errorf("parser: unexpected root node")
	}
	if root.HasError() {
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPosition()
			return nil, fmt.Errorf("parser: syntax error at line %d, column %d", pos.Row+1, pos.Column+1)
		}
		return nil, fmt.Errorf("parser: syntax errors present")
	}

	body := make([]ast.Statement, 0, root.NamedChildCount())
	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if isIgnorableNode(node) {
			continue
		}
		stmt, err := parseStatement(node, source)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	program := ast.Prog(body...)
	program.Source = string(source)
	annotateSpan(program, root)
	return program, nil
}

// ParseProgram is a convenience for one-shot parses.
func ParseProgram(source []byte) (*ast.Program, error) {
	p, err := New()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ParseProgram(source)
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
