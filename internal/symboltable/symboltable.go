// Package symboltable builds the per-contract view of functions, state
// variables, and inheritance that every later pass (call classification,
// call graph, CFG) reads from.
package symboltable

import (
	"sort"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astloader"
	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
)

// ContractKind classifies a ContractDefinition.
type ContractKind string

const (
	KindRegular   ContractKind = "regular"
	KindInterface ContractKind = "interface"
	KindLibrary   ContractKind = "library"
)

// StateVar is a contract-level storage declaration.
type StateVar struct {
	Name       string
	TypeString string
	AST        *astmodel.Node
}

// Function is a named, implemented-or-declared function of a contract.
type Function struct {
	ShortName       string
	OwningContract  string
	Visibility      string
	StateMutability string
	IsVirtual       bool
	IsOverride      bool
	AST             *astmodel.Node

	// Populated by the call classifier / call graph builder.
	InternalCalls      []string
	ExternalCalls      []string
	CrossContractCalls []string
	IndirectCalls      []string
	StateChanges       []string
}

// Key returns the fully-qualified "{contract}.{name}" identity used
// throughout the call graph and CFG.
func (f *Function) Key() string {
	return f.OwningContract + "." + f.ShortName
}

// Modifier is a contract-level modifier definition.
type Modifier struct {
	Name string
	AST  *astmodel.Node
}

// Contract is one ContractDefinition, with its functions, state variables,
// and modifiers indexed by name.
type Contract struct {
	Name          string
	SourceFile    string
	Kind          ContractKind
	IsAbstract    bool
	BaseContracts []string
	Functions     map[string]*Function
	StateVars     []StateVar
	Modifiers     map[string]*Modifier
	AST           *astmodel.Node

	stateVarNames map[string]struct{}
}

// HasStateVar reports whether name is a state variable of this contract.
func (c *Contract) HasStateVar(name string) bool {
	_, ok := c.stateVarNames[name]
	return ok
}

// FunctionNames returns the set of short function names this contract
// defines, used by interface-implementation matching.
func (c *Contract) FunctionNames() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Functions))
	for name := range c.Functions {
		out[name] = struct{}{}
	}
	return out
}

// FunctionShortNamesSorted returns this contract's function short names in
// sorted order, giving every caller that must walk Functions deterministic
// iteration instead of re-sorting independently.
func (c *Contract) FunctionShortNamesSorted() []string {
	names := make([]string, 0, len(c.Functions))
	for name := range c.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is the resolved symbol table for a whole analysis run.
type Table struct {
	Contracts map[string]*Contract

	// interfaceImplementers maps an interface name to the ordered,
	// deduplicated list of non-interface contracts considered to implement
	// it (see Build's doc comment for the matching rule).
	interfaceImplementers map[string][]string
}

// Contract looks up a contract by name; nil if not present.
func (t *Table) Contract(name string) *Contract {
	return t.Contracts[name]
}

// ContractNamesSorted returns every contract name in sorted order. Every
// pass that must walk all contracts (interface-implementer indexing, call
// graph construction, CFG construction) uses this instead of ranging
// Contracts directly, so that output ordering and assigned ids do not
// depend on Go's randomized map iteration order.
func (t *Table) ContractNamesSorted() []string {
	names := make([]string, 0, len(t.Contracts))
	for name := range t.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function looks up a function by its fully-qualified "{contract}.{name}"
// key, splitting on the last dot, so a contract name that itself contains
// a dot still resolves.
func (t *Table) Function(key string) *Function {
	contract, short, ok := splitKey(key)
	if !ok {
		return nil
	}
	return t.FunctionIn(contract, short)
}

// FunctionIn looks up a function by contract name and short name directly.
func (t *Table) FunctionIn(contract, short string) *Function {
	c := t.Contracts[contract]
	if c == nil {
		return nil
	}
	return c.Functions[short]
}

func splitKey(key string) (contract, short string, ok bool) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

// Implementers returns the contracts considered to implement interface
// iface, in resolution order (first match wins when the caller is looking
// for a specific function).
func (t *Table) Implementers(iface string) []string {
	return t.interfaceImplementers[iface]
}

// ResolveInterfaceFunction returns the first implementer of iface that
// defines a function named short, or "" if none does.
func (t *Table) ResolveInterfaceFunction(iface, short string) string {
	for _, impl := range t.interfaceImplementers[iface] {
		if c := t.Contracts[impl]; c != nil {
			if _, ok := c.Functions[short]; ok {
				return impl
			}
		}
	}
	return ""
}

// Build constructs the symbol table from loaded contract contexts.
//
// Interface implementation is decided per interface I with function set
// F_I: a non-interface contract C is an implementer of I if F_I is a subset
// of C's function names, or if I appears in C's base-contracts list. Both
// rules are checked; a contract satisfying either is included once.
func Build(contexts []astloader.ContractContext) *Table {
	t := &Table{
		Contracts:             make(map[string]*Contract),
		interfaceImplementers: make(map[string][]string),
	}

	for _, ctx := range contexts {
		t.Contracts[ctx.Contract.Name] = buildContract(ctx.SourceFile, ctx.Contract)
	}

	t.indexInterfaceImplementers()
	return t
}

func buildContract(sourceFile string, n *astmodel.Node) *Contract {
	c := &Contract{
		Name:          n.Name,
		SourceFile:    sourceFile,
		Kind:          contractKind(n.ContractKind),
		IsAbstract:    n.Abstract,
		Functions:     make(map[string]*Function),
		Modifiers:     make(map[string]*Modifier),
		AST:           n,
		stateVarNames: make(map[string]struct{}),
	}

	for i := range n.BaseContracts {
		base := n.BaseContracts[i].BaseNameString()
		if base != "" {
			c.BaseContracts = append(c.BaseContracts, base)
		}
	}

	for i := range n.Nodes {
		child := &n.Nodes[i]
		switch child.NodeType {
		case "FunctionDefinition":
			if child.Kind != "function" || child.Name == "" {
				continue
			}
			fn := &Function{
				ShortName:       child.Name,
				OwningContract:  c.Name,
				Visibility:      child.Visibility,
				StateMutability: child.StateMutability,
				IsVirtual:       child.Virtual,
				IsOverride:      child.Override != nil,
				AST:             child,
			}
			c.Functions[fn.ShortName] = fn
		case "VariableDeclaration":
			if !child.StateVariable {
				continue
			}
			var typeStr string
			if child.TypeDescriptions != nil {
				typeStr = child.TypeDescriptions.TypeString
			}
			c.StateVars = append(c.StateVars, StateVar{
				Name:       child.Name,
				TypeString: typeStr,
				AST:        child,
			})
			c.stateVarNames[child.Name] = struct{}{}
		case "ModifierDefinition":
			if child.Name == "" {
				continue
			}
			c.Modifiers[child.Name] = &Modifier{Name: child.Name, AST: child}
		}
	}

	return c
}

func contractKind(raw string) ContractKind {
	switch raw {
	case "interface":
		return KindInterface
	case "library":
		return KindLibrary
	default:
		return KindRegular
	}
}

func (t *Table) indexInterfaceImplementers() {
	names := t.ContractNamesSorted()

	for _, ifaceName := range names {
		iface := t.Contracts[ifaceName]
		if iface.Kind != KindInterface {
			continue
		}
		ifaceFuncs := iface.FunctionNames()

		seen := make(map[string]struct{})
		var implementers []string
		for _, name := range names {
			if name == ifaceName {
				continue
			}
			c := t.Contracts[name]
			if c.Kind == KindInterface {
				continue
			}
			if implementsInterface(c, ifaceFuncs) || baseContains(c, ifaceName) {
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					implementers = append(implementers, name)
				}
			}
		}
		t.interfaceImplementers[ifaceName] = implementers
	}
}

func implementsInterface(c *Contract, ifaceFuncs map[string]struct{}) bool {
	if len(ifaceFuncs) == 0 {
		return false
	}
	for name := range ifaceFuncs {
		if _, ok := c.Functions[name]; !ok {
			return false
		}
	}
	return true
}

func baseContains(c *Contract, name string) bool {
	for _, b := range c.BaseContracts {
		if b == name {
			return true
		}
	}
	return false
}
