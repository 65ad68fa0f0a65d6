package language

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tsjs "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// JavaScript returns the tree-sitter language for JavaScript.
func JavaScript() *sitter.Language {
	return sitter.NewLanguage(tsjs.Language())
}
