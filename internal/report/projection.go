// Package report projects the analyzer's internal graphs into plain,
// JSON-serializable DTOs, and renders them as a human-readable text report.
package report

import (
	"sort"

	"github.com/vesla0x1/reentrancy-analyzer/internal/callgraph"
	"github.com/vesla0x1/reentrancy-analyzer/internal/cfg"
	"github.com/vesla0x1/reentrancy-analyzer/internal/reentrancy"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// ContractSummary describes one loaded contract.
type ContractSummary struct {
	Name                 string   `json:"name"`
	Kind                 string   `json:"kind"`
	FunctionsCount       int      `json:"functions_count"`
	StateVariablesCount  int      `json:"state_variables_count"`
	IsAbstract           bool     `json:"is_abstract"`
	BaseContracts        []string `json:"base_contracts"`
	FilePath             string   `json:"file_path"`
}

// FunctionSummary describes one function.
type FunctionSummary struct {
	Name            string   `json:"name"`
	Contract        string   `json:"contract"`
	Visibility      string   `json:"visibility"`
	StateMutability string   `json:"state_mutability"`
	ExternalCalls   int      `json:"external_calls"`
	StateChanges    int      `json:"state_changes"`
	IsOverride      bool     `json:"is_override"`
}

// CallGraphNode is one node of the projected call graph.
type CallGraphNode struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	Type              string `json:"type"`
	Contract          string `json:"contract"`
	Function          string `json:"function"`
	Visibility        string `json:"visibility"`
	StateMutability   string `json:"state_mutability"`
	HasStateChanges   bool   `json:"has_state_changes"`
	ExternalCallsCount int   `json:"external_calls_count"`
}

// CallGraphEdge is one projected call-graph edge.
type CallGraphEdge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Type         string `json:"type"`
	IsResolved   bool   `json:"is_resolved"`
	ViaInterface string `json:"via_interface,omitempty"`
}

// CallGraphView is the whole projected call graph.
type CallGraphView struct {
	Nodes []CallGraphNode `json:"nodes"`
	Edges []CallGraphEdge `json:"edges"`
}

// CFGNodeView is one projected CFG node.
type CFGNodeView struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	FunctionName   string `json:"function_name"`
	CalledFunction string `json:"called_function,omitempty"`
	IsExternal     bool   `json:"is_external"`
	ModifiesState  bool   `json:"modifies_state"`
}

// CFGEdgeView is one projected CFG edge.
type CFGEdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// CFGView is one function's projected control-flow graph.
type CFGView struct {
	Nodes []CFGNodeView `json:"nodes"`
	Edges []CFGEdgeView `json:"edges"`
}

// StateChangeView names one state-modifying node in a reentrancy pattern.
type StateChangeView struct {
	NodeID       string `json:"node_id"`
	VariablePath string `json:"variable_path"`
}

// PatternView is one projected reentrancy pattern.
type PatternView struct {
	Function           string            `json:"function"`
	ExternalCallNode   string            `json:"external_call_node"`
	ExternalCallTarget string            `json:"external_call_target,omitempty"`
	Classification     string            `json:"classification"`
	Severity           string            `json:"severity"`
	StateChangesAfter  []StateChangeView `json:"state_changes_after"`
	StateChangesCount  int               `json:"state_changes_count"`
	Details            string            `json:"details"`
}

// Summary totals the analysis run.
type Summary struct {
	TotalContracts      int            `json:"total_contracts"`
	TotalFunctions      int            `json:"total_functions"`
	TotalPatterns       int            `json:"total_patterns"`
	SeverityCounts      map[string]int `json:"severity_counts"`
	ClassificationCounts map[string]int `json:"classification_counts"`
}

// Result is the whole exported view of one analysis run.
type Result struct {
	Contracts []ContractSummary `json:"contracts"`
	Functions []FunctionSummary `json:"functions"`
	CallGraph CallGraphView     `json:"call_graph"`
	CFGs      map[string]CFGView `json:"cfg"`
	Patterns  []PatternView     `json:"reentrancy_patterns"`
	Summary   Summary           `json:"summary"`
}

// Project assembles a Result from the analyzer's internal state.
func Project(table *symboltable.Table, graph *callgraph.Graph, cfgs map[string]*cfg.CFG, patterns []reentrancy.Pattern) Result {
	return Result{
		Contracts: projectContracts(table),
		Functions: projectFunctions(table),
		CallGraph: projectCallGraph(table, graph),
		CFGs:      projectCFGs(cfgs),
		Patterns:  projectPatterns(patterns),
		Summary:   summarize(table, patterns),
	}
}

func projectContracts(table *symboltable.Table) []ContractSummary {
	var out []ContractSummary
	for _, name := range table.ContractNamesSorted() {
		c := table.Contracts[name]
		out = append(out, ContractSummary{
			Name:                c.Name,
			Kind:                string(c.Kind),
			FunctionsCount:      len(c.Functions),
			StateVariablesCount: len(c.StateVars),
			IsAbstract:          c.IsAbstract,
			BaseContracts:       append([]string{}, c.BaseContracts...),
			FilePath:            c.SourceFile,
		})
	}
	return out
}

func projectFunctions(table *symboltable.Table) []FunctionSummary {
	var out []FunctionSummary
	for _, cname := range table.ContractNamesSorted() {
		c := table.Contracts[cname]
		for _, fname := range c.FunctionShortNamesSorted() {
			fn := c.Functions[fname]
			out = append(out, FunctionSummary{
				Name:            fn.ShortName,
				Contract:        fn.OwningContract,
				Visibility:      fn.Visibility,
				StateMutability: fn.StateMutability,
				ExternalCalls:   len(fn.ExternalCalls) + len(fn.CrossContractCalls),
				StateChanges:    len(fn.StateChanges),
				IsOverride:      fn.IsOverride,
			})
		}
	}
	return out
}

func projectCallGraph(table *symboltable.Table, graph *callgraph.Graph) CallGraphView {
	view := CallGraphView{}

	nodeNames := make([]string, 0, len(graph.Nodes))
	for n := range graph.Nodes {
		nodeNames = append(nodeNames, n)
	}
	sort.Strings(nodeNames)

	for _, id := range nodeNames {
		n := CallGraphNode{ID: id, Label: id}
		if fn := table.Function(id); fn != nil {
			n.Type = visibilityNodeType(fn.Visibility)
			n.Contract = fn.OwningContract
			n.Function = fn.ShortName
			n.Visibility = fn.Visibility
			n.StateMutability = fn.StateMutability
			n.HasStateChanges = len(fn.StateChanges) > 0
			n.ExternalCallsCount = len(fn.ExternalCalls) + len(fn.CrossContractCalls)
		} else {
			n.Type = "external"
		}
		view.Nodes = append(view.Nodes, n)
	}

	for _, id := range nodeNames {
		for _, e := range graph.Out(id) {
			view.Edges = append(view.Edges, CallGraphEdge{
				Source:       e.Source,
				Target:       e.Target,
				Type:         string(e.Type),
				IsResolved:   e.IsResolved,
				ViaInterface: e.ViaInterface,
			})
		}
	}

	return view
}

func visibilityNodeType(v string) string {
	switch v {
	case "public":
		return "public"
	case "external":
		return "external"
	default:
		return "internal"
	}
}

func projectCFGs(cfgs map[string]*cfg.CFG) map[string]CFGView {
	out := make(map[string]CFGView, len(cfgs))
	for key, g := range cfgs {
		var view CFGView
		for _, n := range g.OrderedNodes() {
			view.Nodes = append(view.Nodes, CFGNodeView{
				ID:             n.ID,
				Type:           string(n.Type),
				FunctionName:   n.FunctionKey,
				CalledFunction: n.CalledFunction,
				IsExternal:     n.IsExternal,
				ModifiesState:  n.ModifiesState,
			})
			for _, s := range g.Successors(n.ID) {
				view.Edges = append(view.Edges, CFGEdgeView{Source: n.ID, Target: s.Target, Label: s.Label})
			}
		}
		out[key] = view
	}
	return out
}

func projectPatterns(patterns []reentrancy.Pattern) []PatternView {
	var out []PatternView
	for _, p := range patterns {
		var changes []StateChangeView
		for _, c := range p.StateChangesAfter {
			changes = append(changes, StateChangeView{NodeID: c.NodeID, VariablePath: c.VariablePath})
		}
		out = append(out, PatternView{
			Function:           p.Function,
			ExternalCallNode:   p.ExternalCallNode,
			ExternalCallTarget: p.ExternalCallTarget,
			Classification:     string(p.Classification),
			Severity:           string(p.Severity),
			StateChangesAfter:  changes,
			StateChangesCount:  len(changes),
			Details:            p.Details,
		})
	}
	return out
}

func summarize(table *symboltable.Table, patterns []reentrancy.Pattern) Summary {
	totalFunctions := 0
	for _, c := range table.Contracts {
		totalFunctions += len(c.Functions)
	}

	s := Summary{
		TotalContracts:       len(table.Contracts),
		TotalFunctions:       totalFunctions,
		TotalPatterns:        len(patterns),
		SeverityCounts:       map[string]int{},
		ClassificationCounts: map[string]int{},
	}
	for _, p := range patterns {
		s.SeverityCounts[string(p.Severity)]++
		s.ClassificationCounts[string(p.Classification)]++
	}
	return s
}
