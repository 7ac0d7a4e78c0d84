// Package reentrancy walks the call graph and per-function CFGs to flag
// external calls that precede state changes: the classic
// checks-effects-interactions violation. It never attempts dataflow or
// symbolic execution; every result here is a heuristic, not a proof.
package reentrancy

import (
	"fmt"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/callgraph"
	"github.com/vesla0x1/reentrancy-analyzer/internal/cfg"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// Classification is the verdict for one external-call site.
type Classification string

const (
	ConfirmedReentrancy Classification = "confirmed_reentrancy"
	PotentialReentrancy Classification = "potential_reentrancy"
	SafeExternalCall    Classification = "safe_external_call"
)

// Severity ranks how urgently a pattern deserves attention.
type Severity string

const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
)

// StateChangeRef names one state-modifying node found after an external call.
type StateChangeRef struct {
	NodeID       string
	VariablePath string
}

// Pattern is one detected (or ruled-safe) reentrancy call site.
type Pattern struct {
	Function           string
	ExternalCallNode   string
	ExternalCallTarget string
	Classification     Classification
	Severity           Severity
	StateChangesAfter  []StateChangeRef
	Details            string
}

// Detect runs the detector over every function with a CFG, in a
// deterministic order (contracts and functions sorted by name, call sites
// within a function in source order), so results are reproducible.
func Detect(table *symboltable.Table, graph *callgraph.Graph, cfgs map[string]*cfg.CFG) []Pattern {
	var patterns []Pattern

	for _, key := range orderedFunctionKeys(table) {
		g, ok := cfgs[key]
		if !ok {
			continue
		}
		fn := table.Function(key)
		patterns = append(patterns, detectFunction(key, fn, g, graph)...)
	}

	return patterns
}

func orderedFunctionKeys(table *symboltable.Table) []string {
	var keys []string
	for _, cname := range table.ContractNamesSorted() {
		c := table.Contracts[cname]
		for _, name := range c.FunctionShortNamesSorted() {
			keys = append(keys, c.Functions[name].Key())
		}
	}
	return keys
}

func detectFunction(functionKey string, fn *symboltable.Function, g *cfg.CFG, graph *callgraph.Graph) []Pattern {
	var patterns []Pattern

	for _, call := range g.OrderedNodes() {
		if call.Type != cfg.ExternalCall && call.Type != cfg.KnownExternalCall {
			continue
		}

		stateChanges := findStateChangesAfter(g, call.ID)
		if len(stateChanges) == 0 {
			continue
		}

		if call.Type == cfg.KnownExternalCall && call.CalledFunction != "" {
			if graph.CanReach(call.CalledFunction, functionKey) {
				patterns = append(patterns, buildPattern(functionKey, call, ConfirmedReentrancy, stateChanges, fn))
			} else {
				patterns = append(patterns, buildPattern(functionKey, call, SafeExternalCall, stateChanges, fn))
			}
			continue
		}

		patterns = append(patterns, buildPattern(functionKey, call, PotentialReentrancy, stateChanges, fn))
	}

	return patterns
}

// findStateChangesAfter does a breadth-first search forward from the
// external-call node, restricted to this function's own CFG and excluding
// its Exit, collecting every reachable StateChange node that actually
// modifies state.
func findStateChangesAfter(g *cfg.CFG, from string) []StateChangeRef {
	visited := map[string]bool{g.ExitID: true, from: true}
	var out []StateChangeRef
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, succ := range g.Successors(cur) {
			if visited[succ.Target] {
				continue
			}
			visited[succ.Target] = true
			n, ok := g.Nodes[succ.Target]
			if !ok {
				continue
			}
			if n.Type == cfg.StateChange && n.ModifiesState {
				out = append(out, StateChangeRef{NodeID: n.ID, VariablePath: variablePath(n)})
			}
			queue = append(queue, succ.Target)
		}
	}
	return out
}

func variablePath(n *cfg.Node) string {
	if n.AST == nil {
		return ""
	}
	lhs := n.AST.LeftHandSide
	if lhs == nil {
		lhs = n.AST.LeftExpression
	}
	return reconstructPath(lhs)
}

// reconstructPath rebuilds the dotted "a.b.c" path of nested member
// accesses; an Identifier yields its name, and any other node yields its
// Name field (empty for nodes such as IndexAccess, which are not expanded).
func reconstructPath(n *astmodel.Node) string {
	if n == nil {
		return ""
	}
	switch n.NodeType {
	case "MemberAccess":
		base := reconstructPath(n.Expression)
		if base == "" {
			return n.MemberName
		}
		return base + "." + n.MemberName
	case "Identifier":
		return n.Name
	default:
		return n.Name
	}
}

func buildPattern(functionKey string, call *cfg.Node, classification Classification, changes []StateChangeRef, fn *symboltable.Function) Pattern {
	target := call.CalledFunction
	p := Pattern{
		Function:           functionKey,
		ExternalCallNode:   call.ID,
		ExternalCallTarget: target,
		Classification:     classification,
		StateChangesAfter:  changes,
		Severity:           severityFor(classification, len(changes), fn),
	}
	p.Details = fmt.Sprintf("External call to %s followed by %d state changes", displayTarget(target), len(changes))
	return p
}

func displayTarget(target string) string {
	if target == "" {
		return "unknown target"
	}
	return target
}

func isPubliclyReachable(fn *symboltable.Function) bool {
	return fn != nil && (fn.Visibility == "public" || fn.Visibility == "external")
}

func severityFor(classification Classification, stateChangeCount int, fn *symboltable.Function) Severity {
	switch classification {
	case SafeExternalCall:
		return Low
	case ConfirmedReentrancy:
		return Critical
	case PotentialReentrancy:
		if isPubliclyReachable(fn) {
			if stateChangeCount >= 2 {
				return High
			}
			return Medium
		}
		return Low
	default:
		return Low
	}
}
