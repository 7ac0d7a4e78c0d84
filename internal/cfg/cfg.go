// Package cfg builds a per-function control-flow graph: one Entry, one
// Exit, and typed nodes for conditions, calls of various trust levels,
// state changes, returns, and reverts. It is intentionally intra-procedural
// only; inter-procedural reachability is the call graph's job.
package cfg

import (
	"fmt"
	"strings"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/astwalk"
	"github.com/vesla0x1/reentrancy-analyzer/internal/callgraph"
	"github.com/vesla0x1/reentrancy-analyzer/internal/classifier"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// NodeType is the kind of a single CFG node.
type NodeType string

const (
	Entry             NodeType = "Entry"
	Exit              NodeType = "Exit"
	Condition         NodeType = "Condition"
	FunctionCall      NodeType = "FunctionCall"
	ExternalCall      NodeType = "ExternalCall"
	KnownExternalCall NodeType = "KnownExternalCall"
	InheritedCall     NodeType = "InheritedCall"
	IndirectCall      NodeType = "IndirectCall"
	StateChange       NodeType = "StateChange"
	Return            NodeType = "Return"
	Revert            NodeType = "Revert"
	ModifierNode      NodeType = "Modifier"
)

// Node is one CFG node. Its id is unique across every CFG built in a single
// analysis run.
type Node struct {
	ID             string
	Type           NodeType
	FunctionKey    string
	CalledFunction string
	IsExternal     bool
	IsInherited    bool
	ModifiesState  bool
	AST            *astmodel.Node
}

// Successor is one outgoing edge, optionally labeled ("true"/"false" for
// branches out of a Condition node).
type Successor struct {
	Target string
	Label  string
}

// CFG is the control-flow graph of a single function.
type CFG struct {
	FunctionKey string
	EntryID     string
	ExitID      string
	Nodes       map[string]*Node
	succ        map[string][]Successor
	// order preserves node-creation (source) order; Go map iteration over
	// Nodes is unordered, and callers that need reproducible output (the
	// reentrancy detector, the report projection) rely on this instead.
	order []*Node
}

// Successors returns the outgoing edges of a node in discovery order.
func (g *CFG) Successors(id string) []Successor { return g.succ[id] }

// NodesByType returns every node of the given type, in source order.
func (g *CFG) NodesByType(t NodeType) []*Node {
	var out []*Node
	for _, n := range g.order {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// OrderedNodes returns every node of this CFG in source (creation) order.
func (g *CFG) OrderedNodes() []*Node {
	return g.order
}

type builder struct {
	table   *symboltable.Table
	counter int
	graphs  map[string]*CFG
}

// Build constructs one CFG per implemented function in table.
func Build(table *symboltable.Table) map[string]*CFG {
	b := &builder{table: table, graphs: make(map[string]*CFG)}

	for _, cname := range table.ContractNamesSorted() {
		contract := table.Contracts[cname]
		if contract.Kind == symboltable.KindInterface {
			continue
		}
		for _, fname := range contract.FunctionShortNamesSorted() {
			fn := contract.Functions[fname]
			if fn.AST.Body == nil {
				continue
			}
			b.buildFunction(contract, fn)
		}
	}

	return b.graphs
}

func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, ".", "_")
}

func (b *builder) nextID(prefix string) string {
	b.counter++
	return fmt.Sprintf("%s_%d", prefix, b.counter)
}

func (b *builder) buildFunction(contract *symboltable.Contract, fn *symboltable.Function) {
	key := fn.Key()
	prefix := sanitizeKey(key)

	g := &CFG{
		FunctionKey: key,
		Nodes:       make(map[string]*Node),
		succ:        make(map[string][]Successor),
	}

	newNode := func(t NodeType, ast *astmodel.Node) *Node {
		n := &Node{ID: b.nextID(prefix), Type: t, FunctionKey: key, AST: ast}
		g.Nodes[n.ID] = n
		g.order = append(g.order, n)
		return n
	}
	link := func(from, to, label string) {
		if from == "" || to == "" {
			return
		}
		g.succ[from] = append(g.succ[from], Successor{Target: to, Label: label})
	}

	entry := newNode(Entry, fn.AST)
	exit := newNode(Exit, fn.AST)
	g.EntryID = entry.ID
	g.ExitID = exit.ID

	fb := &functionBuilder{
		b: b, table: b.table, contract: contract, fn: fn,
		g: g, newNode: newNode, link: link, exitID: exit.ID,
	}

	if len(fn.AST.Body.Statements) == 0 {
		link(entry.ID, exit.ID, "")
	} else {
		first, last := fb.sequence(fn.AST.Body.Statements)
		link(entry.ID, first, "")
		if last != "" {
			link(last, exit.ID, "")
		}
	}

	b.graphs[key] = g
}

type functionBuilder struct {
	b        *builder
	table    *symboltable.Table
	contract *symboltable.Contract
	fn       *symboltable.Function
	g        *CFG
	newNode  func(NodeType, *astmodel.Node) *Node
	link     func(from, to, label string)
	exitID   string
}

// sequence wires a list of statements one after another and returns the
// first node id and the tail node id (the node later statements, or the
// function exit, should link from). A tail of "" means control does not
// fall through (e.g. the last statement was a Return).
func (fb *functionBuilder) sequence(stmts []astmodel.Node) (first, last string) {
	for i := range stmts {
		f, l := fb.statement(&stmts[i])
		if f == "" {
			continue
		}
		if first == "" {
			first = f
		} else if last != "" {
			fb.link(last, f, "")
		}
		last = l
	}
	return first, last
}

func (fb *functionBuilder) statement(s *astmodel.Node) (first, last string) {
	switch s.NodeType {
	case "ExpressionStatement":
		n := fb.exprNode(s.Expression)
		return n.ID, n.ID

	case "VariableDeclarationStatement":
		if s.InitialValue != nil && s.InitialValue.NodeType == "FunctionCall" {
			n := fb.exprNode(s.InitialValue)
			return n.ID, n.ID
		}
		n := fb.newNode(Condition, s)
		return n.ID, n.ID

	case "Return":
		n := fb.newNode(Return, s)
		fb.link(n.ID, fb.exitID, "")
		return n.ID, ""

	case "EmitStatement":
		n := fb.newNode(Condition, s)
		return n.ID, n.ID

	case "Block":
		return fb.sequence(s.Statements)

	case "IfStatement":
		return fb.ifStatement(s)

	default:
		n := fb.newNode(Condition, s)
		return n.ID, n.ID
	}
}

func (fb *functionBuilder) ifStatement(s *astmodel.Node) (first, last string) {
	cond := fb.newNode(Condition, s)
	merge := fb.newNode(Condition, nil)

	if s.TrueBody != nil {
		tf, tl := fb.statement(s.TrueBody)
		fb.link(cond.ID, tf, "true")
		if tl != "" {
			fb.link(tl, merge.ID, "")
		}
	} else {
		fb.link(cond.ID, merge.ID, "true")
	}

	if s.FalseBody != nil {
		ff, fl := fb.statement(s.FalseBody)
		fb.link(cond.ID, ff, "false")
		if fl != "" {
			fb.link(fl, merge.ID, "")
		}
	} else {
		fb.link(cond.ID, merge.ID, "false")
	}

	return cond.ID, merge.ID
}

func (fb *functionBuilder) exprNode(e *astmodel.Node) *Node {
	if e == nil {
		return fb.newNode(Condition, nil)
	}

	switch e.NodeType {
	case "FunctionCall":
		return fb.callNode(e)

	case "Assignment":
		lhs := e.LeftHandSide
		if lhs == nil {
			lhs = e.LeftExpression
		}
		n := fb.newNode(StateChange, e)
		n.ModifiesState = isStateAccess(fb.contract, lhs)
		return n

	case "BinaryOperation":
		if e.LeftExpression != nil && e.LeftExpression.NodeType == "FunctionCall" {
			return fb.callNode(e.LeftExpression)
		}
		if e.RightExpression != nil && e.RightExpression.NodeType == "FunctionCall" {
			return fb.callNode(e.RightExpression)
		}
		return fb.newNode(Condition, e)

	default:
		return fb.newNode(Condition, e)
	}
}

func (fb *functionBuilder) callNode(call *astmodel.Node) *Node {
	if calleeName, ok := astwalk.IsSelectorEncodeCall(call); ok {
		n := fb.newNode(IndirectCall, call)
		n.CalledFunction = fb.contract.Name + "." + calleeName
		return n
	}

	site := classifier.Classify(call, fb.contract.Name, fb.table)

	switch site.Kind {
	case classifier.CrossContract:
		target := site.ImplementationContract
		if target == "" {
			target = site.TargetContract
		}
		if target != "" && fb.table.FunctionIn(target, site.CalledName) != nil {
			n := fb.newNode(KnownExternalCall, call)
			n.IsExternal = true
			n.CalledFunction = target + "." + site.CalledName
			return n
		}
		n := fb.newNode(ExternalCall, call)
		n.IsExternal = true
		n.CalledFunction = site.CalledName
		return n

	case classifier.Inherited:
		if impl, via := callgraph.ResolveInherited(fb.table, fb.contract, site.CalledName); impl != nil {
			n := fb.newNode(InheritedCall, call)
			n.IsInherited = true
			n.CalledFunction = via + "." + site.CalledName
			return n
		}
		n := fb.newNode(ExternalCall, call)
		n.IsExternal = true
		n.CalledFunction = site.CalledName
		return n

	case classifier.ExternalUnknown:
		n := fb.newNode(ExternalCall, call)
		n.IsExternal = true
		n.CalledFunction = site.CalledName
		return n

	default: // Internal
		n := fb.newNode(FunctionCall, call)
		n.CalledFunction = fb.contract.Name + "." + site.CalledName
		return n
	}
}

// isStateAccess reports whether target (an assignment's LHS) reads or
// writes a contract state variable. It is conservative: a MemberAccess
// whose base recursively satisfies the test also counts, but the test
// never reports a false negative for a first-level state-variable write.
func isStateAccess(contract *symboltable.Contract, target *astmodel.Node) bool {
	if target == nil {
		return false
	}
	switch target.NodeType {
	case "Identifier":
		if contract.HasStateVar(target.Name) {
			return true
		}
		return typeStringContains(target, "storage")
	case "MemberAccess":
		if typeStringContains(target, "storage") {
			return true
		}
		return isStateAccess(contract, target.Expression)
	default:
		return false
	}
}

func typeStringContains(n *astmodel.Node, substr string) bool {
	if n == nil || n.TypeDescriptions == nil {
		return false
	}
	return strings.Contains(n.TypeDescriptions.TypeString, substr)
}
