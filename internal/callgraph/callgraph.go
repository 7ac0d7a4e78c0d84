// Package callgraph builds the global inter-procedural call graph: one
// directed multigraph whose nodes are functions (keyed "{contract}.{name}")
// plus synthetic external nodes (keyed "EXTERNAL:{name}") for calls this
// analyzer cannot resolve to a known function.
//
// The representation is a plain adjacency map of attributed edges, the same
// shape this codebase's own AST tooling already used for its (unattributed,
// integer-keyed) call graph — generalized here to string keys and edge
// attributes rather than adopting an external graph library, since nothing
// beyond map/slice semantics is needed.
package callgraph

import (
	"strings"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/astwalk"
	"github.com/vesla0x1/reentrancy-analyzer/internal/classifier"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// CallType is the kind of a call-graph edge.
type CallType string

const (
	CallInternal      CallType = "internal"
	CallInherited     CallType = "inherited"
	CallCrossContract CallType = "cross_contract"
	CallExternal      CallType = "external"
	CallIndirect      CallType = "indirect"
)

// ExternalPrefix tags the synthetic node key for an unresolved call target.
const ExternalPrefix = "EXTERNAL:"

// Edge is one attributed call-graph edge.
type Edge struct {
	Source      string
	Target      string
	Type        CallType
	IsResolved  bool
	ViaInterface string
}

// Graph is the call graph for a whole analysis run.
type Graph struct {
	// Nodes is every function key and every synthetic external key that
	// appears as an edge endpoint.
	Nodes map[string]struct{}
	// outEdges and inEdges index edges by source and target respectively,
	// mirroring the Callees/Callers adjacency-map split this codebase's
	// existing AST tooling already uses.
	outEdges map[string][]Edge
	inEdges  map[string][]Edge
}

func newGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]struct{}),
		outEdges: make(map[string][]Edge),
		inEdges:  make(map[string][]Edge),
	}
}

func (g *Graph) addEdge(e Edge) {
	g.Nodes[e.Source] = struct{}{}
	g.Nodes[e.Target] = struct{}{}
	g.outEdges[e.Source] = append(g.outEdges[e.Source], e)
	g.inEdges[e.Target] = append(g.inEdges[e.Target], e)
}

// Out returns the edges leaving node, in the order they were discovered.
func (g *Graph) Out(node string) []Edge { return g.outEdges[node] }

// In returns the edges arriving at node, in the order they were discovered.
func (g *Graph) In(node string) []Edge { return g.inEdges[node] }

// CanReach reports whether, starting from node, the call graph reaches
// either target or any synthetic external node. Traversal is bounded by a
// visited set, making it safe over cyclic call graphs.
func (g *Graph) CanReach(node, target string) bool {
	visited := make(map[string]bool)
	return g.canReach(node, target, visited)
}

func (g *Graph) canReach(node, target string, visited map[string]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true
	if node == target {
		return true
	}
	if strings.HasPrefix(node, ExternalPrefix) {
		return true
	}
	for _, e := range g.outEdges[node] {
		if strings.HasPrefix(e.Target, ExternalPrefix) {
			return true
		}
		if e.Target == target {
			return true
		}
		if g.canReach(e.Target, target, visited) {
			return true
		}
	}
	return false
}

// Build walks every function body in table and returns the resulting call
// graph. Functions of interface contracts are skipped: interfaces carry no
// implementation to walk.
func Build(table *symboltable.Table) *Graph {
	g := newGraph()

	for _, cname := range table.ContractNamesSorted() {
		contract := table.Contracts[cname]
		if contract.Kind == symboltable.KindInterface {
			continue
		}
		for _, fname := range contract.FunctionShortNamesSorted() {
			fn := contract.Functions[fname]
			g.Nodes[fn.Key()] = struct{}{}
			if fn.AST.Body == nil {
				continue
			}
			walkFunction(g, table, contract, fn)
		}
	}

	return g
}

func walkFunction(g *Graph, table *symboltable.Table, contract *symboltable.Contract, fn *symboltable.Function) {
	source := fn.Key()

	astwalk.Visit(fn.AST.Body, func(node, parent *astmodel.Node) {
		if node.NodeType != "FunctionCall" {
			return
		}

		if calleeName, ok := astwalk.IsSelectorEncodeCall(node); ok {
			target := contract.Name + "." + calleeName
			g.addEdge(Edge{Source: source, Target: target, Type: CallIndirect, IsResolved: true})
			fn.IndirectCalls = append(fn.IndirectCalls, target)
			return
		}

		site := classifier.Classify(node, contract.Name, table)
		emitCallEdge(g, table, contract, fn, site)
	})
}

func emitCallEdge(g *Graph, table *symboltable.Table, contract *symboltable.Contract, fn *symboltable.Function, site classifier.CallSite) {
	source := fn.Key()

	switch site.Kind {
	case classifier.CrossContract:
		target := site.ImplementationContract
		if target == "" {
			target = site.TargetContract
		}
		if target != "" {
			if impl := table.FunctionIn(target, site.CalledName); impl != nil {
				viaIface := ""
				if site.ImplementationContract != "" && site.ImplementationContract != site.TargetContract {
					viaIface = site.TargetContract
				}
				key := impl.Key()
				g.addEdge(Edge{Source: source, Target: key, Type: CallCrossContract, IsResolved: true, ViaInterface: viaIface})
				fn.CrossContractCalls = append(fn.CrossContractCalls, key)
				return
			}
		}
		emitExternalUnknown(g, fn, site.CalledName)

	case classifier.Inherited:
		if impl, _ := ResolveInherited(table, contract, site.CalledName); impl != nil {
			key := impl.Key()
			g.addEdge(Edge{Source: source, Target: key, Type: CallInherited, IsResolved: true})
			fn.InternalCalls = append(fn.InternalCalls, key)
			return
		}
		emitExternalUnknown(g, fn, site.CalledName)

	case classifier.Internal:
		if site.CalledName == "unknown" {
			return
		}
		if impl := table.FunctionIn(contract.Name, site.CalledName); impl != nil {
			key := impl.Key()
			g.addEdge(Edge{Source: source, Target: key, Type: CallInternal, IsResolved: true})
			fn.InternalCalls = append(fn.InternalCalls, key)
		}
		// Unresolved internal calls (e.g. calling a function defined only
		// in an interface this contract satisfies structurally) are
		// dropped; see the documented resolution-gap limitation.

	case classifier.ExternalUnknown:
		emitExternalUnknown(g, fn, site.CalledName)
	}
}

func emitExternalUnknown(g *Graph, fn *symboltable.Function, name string) {
	target := ExternalPrefix + name
	g.addEdge(Edge{Source: fn.Key(), Target: target, Type: CallExternal, IsResolved: false})
	fn.ExternalCalls = append(fn.ExternalCalls, target)
}

// ResolveInherited walks contract's base-contract chain depth-first,
// returning the first base (and its name) that defines a function named
// short. This mirrors Solidity's own linearization closely enough for a
// syntactic analysis: the common case of single/simple inheritance resolves
// correctly, and diamond inheritance is resolved by first-match-wins DFS
// order rather than C3 linearization.
func ResolveInherited(table *symboltable.Table, contract *symboltable.Contract, short string) (*symboltable.Function, string) {
	visited := make(map[string]bool)
	var dfs func(name string) (*symboltable.Function, string)
	dfs = func(name string) (*symboltable.Function, string) {
		if visited[name] {
			return nil, ""
		}
		visited[name] = true
		base := table.Contract(name)
		if base == nil {
			return nil, ""
		}
		if fn, ok := base.Functions[short]; ok {
			return fn, name
		}
		for _, grandBase := range base.BaseContracts {
			if fn, via := dfs(grandBase); fn != nil {
				return fn, via
			}
		}
		return nil, ""
	}

	for _, base := range contract.BaseContracts {
		if fn, via := dfs(base); fn != nil {
			return fn, via
		}
	}
	return nil, ""
}
