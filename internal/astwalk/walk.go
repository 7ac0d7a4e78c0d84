// Package astwalk provides the recursive descent used to visit every node
// reachable from a function body: statements, expressions, and their
// nested children. It underlies both the call graph builder and the CFG
// builder's call-site discovery.
package astwalk

import "github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"

// Visit calls fn for every node reachable from root (root included), along
// with the immediate parent of each node (nil for root). Traversal order is
// the declaration order of each node's children, matching AST source order.
func Visit(root *astmodel.Node, fn func(node, parent *astmodel.Node)) {
	visit(root, nil, fn)
}

func visit(n, parent *astmodel.Node, fn func(node, parent *astmodel.Node)) {
	if n == nil {
		return
	}
	fn(n, parent)

	visit(n.Body, n, fn)
	visit(n.Expression, n, fn)
	visit(n.Condition, n, fn)
	visit(n.TrueBody, n, fn)
	visit(n.FalseBody, n, fn)
	visit(n.InitialValue, n, fn)
	visit(n.LeftHandSide, n, fn)
	visit(n.RightHandSide, n, fn)
	visit(n.LeftExpression, n, fn)
	visit(n.RightExpression, n, fn)

	for i := range n.Nodes {
		visit(&n.Nodes[i], n, fn)
	}
	for i := range n.Statements {
		visit(&n.Statements[i], n, fn)
	}
	for i := range n.Declarations {
		visit(&n.Declarations[i], n, fn)
	}
	for i := range n.Arguments {
		visit(&n.Arguments[i], n, fn)
	}
	for i := range n.Modifiers {
		visit(&n.Modifiers[i], n, fn)
	}
}

// IsSelectorEncodeCall reports whether call is
// abi.encodeWithSelector(this.F.selector, ...) (or .encode/.encodePacked
// with the same first-argument shape), returning the name of F when it is.
// This is the syntactic pattern used to detect an indirect self-call made
// through a low-level call built from a function selector.
func IsSelectorEncodeCall(call *astmodel.Node) (calleeName string, ok bool) {
	if call == nil || call.NodeType != "FunctionCall" {
		return "", false
	}
	callee := call.Expression
	if callee == nil || callee.NodeType != "MemberAccess" {
		return "", false
	}
	switch callee.MemberName {
	case "encodeWithSelector", "encode", "encodePacked":
	default:
		return "", false
	}
	if len(call.Arguments) == 0 {
		return "", false
	}
	selectorArg := call.Arguments[0]
	if selectorArg.NodeType != "MemberAccess" || selectorArg.MemberName != "selector" {
		return "", false
	}
	target := selectorArg.Expression
	if target == nil || target.NodeType != "MemberAccess" {
		return "", false
	}
	base := target.Expression
	if base == nil || base.NodeType != "Identifier" || base.Name != "this" {
		return "", false
	}
	return target.MemberName, true
}
