package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"tinyjs/interpreter-go/pkg/ast"
)

func sliceContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

func spanFromNode(node *sitter.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	pos := node.StartPosition()
	return ast.Span{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

func annotateSpan(node ast.Node, tsNode *sitter.Node) {
	if node == nil || tsNode == nil {
		return
	}
	ast.WithSpan(node, spanFromNode(tsNode))
}

func annotateStatement(stmt ast.Statement, tsNode *sitter.Node) ast.Statement {
	annotateSpan(stmt, tsNode)
	return stmt
}

func annotateExpression(expr ast.Expression, tsNode *sitter.Node) ast.Expression {
	annotateSpan(expr, tsNode)
	return expr
}

func isIgnorableNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "comment", "hash_bang_line":
		return true
	default:
		return false
	}
}

func parseIdentifierNode(node *sitter.Node, source []byte) (*ast.Identifier, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: expected identifier")
	}
	switch node.Kind() {
	case "identifier", "property_identifier", "shorthand_property_identifier", "statement_identifier":
		id := ast.ID(sliceContent(node, source))
		annotateSpan(id, node)
		return id, nil
	}
	return nil, fmt.Errorf("parser: expected identifier, got %s", node.Kind())
}

// parseNumberText decodes JavaScript numeric literal syntax: decimal with
// optional exponent, 0x/0o/0b radix forms, and underscore separators.
func parseNumberText(text string) (float64, error) {
	text = strings.ReplaceAll(text, "_", "")
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			n, err := strconv.ParseUint(text[2:], 16, 64)
			return float64(n), err
		case 'o', 'O':
			n, err := strconv.ParseUint(text[2:], 8, 64)
			return float64(n), err
		case 'b', 'B':
			n, err := strconv.ParseUint(text[2:], 2, 64)
			return float64(n), err
		}
	}
	return strconv.ParseFloat(text, 64)
}

// decodeStringText decodes the body of a quoted JavaScript string literal,
// quotes already stripped.
func decodeStringText(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	var sb strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' || i+1 >= len(runes) {
			sb.WriteRune(r)
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case 'r':
			sb.WriteRune('\r')
		case 'b':
			sb.WriteRune('\b')
		case 'f':
			sb.WriteRune('\f')
		case 'v':
			sb.WriteRune('\v')
		case '0':
			sb.WriteRune(0)
		case 'x':
			if i+2 < len(runes) {
				if n, err := strconv.ParseUint(string(runes[i+1:i+3]), 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			sb.WriteRune('x')
		case 'u':
			if i+1 < len(runes) && runes[i+1] == '{' {
				end := i + 2
				for end < len(runes) && runes[end] != '}' {
					end++
				}
				if end < len(runes) {
					if n, err := strconv.ParseUint(string(runes[i+2:end]), 16, 32); err == nil {
						sb.WriteRune(rune(n))
						i = end
						continue
					}
				}
			} else if i+4 < len(runes) {
				if n, err := strconv.ParseUint(string(runes[i+1:i+5]), 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			sb.WriteRune('u')
		case '\n':
			// line continuation
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

func stripQuotes(text string) string {
	if len(text) >= 2 {
		first := text[0]
		last := text[len(text)-1]
		if (first == '"' || first == '\'' || first == '`') && last == first {
			return text[1 : len(text)-1]
		}
	}
	return text
}
