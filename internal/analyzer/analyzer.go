// Package analyzer orchestrates a single, single-shot analysis run: load
// artifacts, build the symbol table, the call graph, the per-function
// CFGs, detect reentrancy patterns, and project the result.
package analyzer

import (
	"context"
	"fmt"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astloader"
	"github.com/vesla0x1/reentrancy-analyzer/internal/callgraph"
	"github.com/vesla0x1/reentrancy-analyzer/internal/cfg"
	"github.com/vesla0x1/reentrancy-analyzer/internal/logger"
	"github.com/vesla0x1/reentrancy-analyzer/internal/reentrancy"
	"github.com/vesla0x1/reentrancy-analyzer/internal/report"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// Analyzer runs one analysis over a set of AST artifacts. It is single-shot
// and not safe for concurrent use from multiple goroutines; independent
// analyses should use independent Analyzer values.
type Analyzer struct {
	log *logger.Logger
}

// New builds an Analyzer that logs through l. A nil logger is valid and
// disables logging entirely.
func New(l *logger.Logger) *Analyzer {
	return &Analyzer{log: l}
}

// Result is the immutable output of a completed analysis. Nothing in it is
// mutated again once Analyze returns, so it's safe to read concurrently.
type Result struct {
	Table     *symboltable.Table
	CallGraph *callgraph.Graph
	CFGs      map[string]*cfg.CFG
	Patterns  []reentrancy.Pattern
	Report    report.Result
}

// Analyze loads path (a single artifact file or a directory of them) and
// runs the full pipeline: symbol resolution, call-graph construction, CFG
// construction, and reentrancy detection. ctx is only checked between
// phases; none of the phases themselves are individually cancelable.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contexts, err := astloader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	if len(contexts) == 0 {
		a.warnf("no contract definitions found under %s", path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table := symboltable.Build(contexts)
	a.debugf("resolved %d contracts", len(table.Contracts))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	graph := callgraph.Build(table)
	a.debugf("call graph has %d nodes", len(graph.Nodes))

	cfgs := cfg.Build(table)
	a.debugf("built %d control-flow graphs", len(cfgs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patterns := reentrancy.Detect(table, graph, cfgs)
	a.infof("found %d reentrancy patterns", len(patterns))

	projected := report.Project(table, graph, cfgs, patterns)

	return &Result{
		Table:     table,
		CallGraph: graph,
		CFGs:      cfgs,
		Patterns:  patterns,
		Report:    projected,
	}, nil
}

func (a *Analyzer) warnf(format string, v ...interface{}) {
	if a.log != nil {
		a.log.Warn(format, v...)
	}
}

func (a *Analyzer) debugf(format string, v ...interface{}) {
	if a.log != nil {
		a.log.Debug(format, v...)
	}
}

func (a *Analyzer) infof(format string, v ...interface{}) {
	if a.log != nil {
		a.log.Info(format, v...)
	}
}
