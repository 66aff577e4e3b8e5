// Package expr parses the declarative graph language: nested function calls
// over string, number and list literals, such as
//
//	validator(pattern("^[a-z]+$", field("user")), enable("submit"))
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a line:column position in the parsed source, both starting at 1.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is an element of the expression tree.
type Node interface {
	Pos() Pos
	node()
}

// Call is name(args...).
type Call struct {
	At   Pos
	Name string
	Args []Node
}

// Ident is a bare identifier, such as null.
type Ident struct {
	At   Pos
	Name string
}

// String is a quoted string literal, Value is unquoted.
type String struct {
	At    Pos
	Value string
}

// Number is a numeric literal. Raw is the text as written.
type Number struct {
	At    Pos
	Raw   string
	Value float64
}

// List is [items...].
type List struct {
	At    Pos
	Items []Node
}

func (n *Call) Pos() Pos   { return n.At }
func (n *Ident) Pos() Pos  { return n.At }
func (n *String) Pos() Pos { return n.At }
func (n *Number) Pos() Pos { return n.At }
func (n *List) Pos() Pos   { return n.At }

func (*Call) node()   {}
func (*Ident) node()  {}
func (*String) node() {}
func (*Number) node() {}
func (*List) node()   {}

// Format renders n back to source, in canonical form.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Call:
		b.WriteString(n.Name)
		b.WriteByte('(')
		formatList(b, n.Args)
		b.WriteByte(')')
	case *Ident:
		b.WriteString(n.Name)
	case *String:
		b.WriteString(strconv.Quote(n.Value))
	case *Number:
		b.WriteString(n.Raw)
	case *List:
		b.WriteByte('[')
		formatList(b, n.Items)
		b.WriteByte(']')
	}
}

func formatList(b *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		format(b, n)
	}
}

// Dump renders n as an indented tree, one node per line.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))

	switch n := n.(type) {
	case *Call:
		fmt.Fprintf(b, "call %s\n", n.Name)
		for _, arg := range n.Args {
			dump(b, arg, depth+1)
		}
	case *Ident:
		fmt.Fprintf(b, "ident %s\n", n.Name)
	case *String:
		fmt.Fprintf(b, "string %s\n", strconv.Quote(n.Value))
	case *Number:
		fmt.Fprintf(b, "number %s\n", n.Raw)
	case *List:
		b.WriteString("list\n")
		for _, item := range n.Items {
			dump(b, item, depth+1)
		}
	}
}
