package kast

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Print renders a node tree as deterministic JSON, mirroring the
// teacher's golden-snapshot AST printer: useful for tooling that needs
// to diff the shape the compiler handed the engine against a fixture.
func Print(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Walk visits node and the children that children() lists for its
// type, depth-first pre-order; node kinds and fields children() does
// not list are not descended into. visit returning false stops descent
// into that node's children.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for _, child := range children(node) {
		Walk(child, visit)
	}
}

func children(node Node) []Node {
	switch n := node.(type) {
	case *Module:
		return n.Body
	case *SchemaStmt:
		out := append([]Node(nil), n.Body...)
		out = append(out, n.Checks...)
		return out
	case *RuleStmt:
		return n.Checks
	case *AssignStmt:
		return []Node{n.Target, n.Value}
	case *UnificationStmt:
		return []Node{n.Target, n.Value}
	case *AssertStmt:
		out := []Node{n.Test}
		if n.If != nil {
			out = append(out, n.If)
		}
		if n.Message != nil {
			out = append(out, n.Message)
		}
		return out
	case *IfStmt:
		out := append([]Node{n.Cond}, n.Body...)
		return append(out, n.ElseIf...)
	case *UnaryExpr:
		return []Node{n.X}
	case *BinaryExpr:
		return []Node{n.Left, n.Right}
	case *CallExpr:
		out := append([]Node{n.Func}, n.Args...)
		for _, v := range n.Kwargs {
			out = append(out, v)
		}
		return out
	case *SubscriptExpr:
		return []Node{n.X, n.Index}
	case *SelectorExpr:
		return []Node{n.X}
	case *ConfigExpr:
		out := make([]Node, 0, len(n.Entries))
		for _, e := range n.Entries {
			out = append(out, e)
		}
		return out
	case *ConfigEntry:
		out := []Node{}
		if n.Key != nil {
			out = append(out, n.Key)
		}
		return append(out, n.Value)
	case *SchemaExpr:
		out := append([]Node(nil), n.Args...)
		if n.Config != nil {
			out = append(out, n.Config)
		}
		return out
	case *ListExpr:
		return n.Elements
	case *LambdaExpr:
		return []Node{n.Body}
	case *QuantifierExpr:
		return []Node{n.Iter, n.Test}
	default:
		return nil
	}
}
