package ast

// Span locates a node in the original source. Line and Column are 1-based;
// the zero Span means the position is unknown and reads as 0,0.
type Span struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (s Span) Known() bool {
	return s.Line > 0
}

// WithSpan stamps a position onto a freshly built node. The parser calls
// this on every node it produces; the DSL constructors leave spans zero.
func WithSpan[N Node](node N, span Span) N {
	if setter, ok := any(node).(spanSetter); ok {
		setter.setSpan(span)
	}
	return node
}

type spanSetter interface {
	setSpan(Span)
}

func (n *nodeImpl) setSpan(span Span) {
	n.At = span
}
