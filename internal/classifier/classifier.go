// Package classifier decides, for a single call expression, whether it is
// an internal call, an inherited (super.*) call, or a cross-contract call.
// A cross-contract site is returned whether or not its target contract is
// loaded; Classify itself never returns ExternalUnknown, and callers treat
// a target missing from the symbol table as an unresolvable external call.
// It is purely syntactic: it never follows storage references or aliases.
package classifier

import (
	"strings"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

// Kind is the classification assigned to a call site.
type Kind string

const (
	Internal        Kind = "internal"
	Inherited       Kind = "inherited"
	CrossContract   Kind = "cross_contract"
	ExternalUnknown Kind = "external_unknown"
)

// CallSite is the result of classifying one FunctionCall expression.
type CallSite struct {
	Kind                 Kind
	CalledName           string
	TargetContract       string
	ImplementationContract string
	IsExternal           bool
	AST                  *astmodel.Node
}

// Classify inspects call, a FunctionCall node, and its callee expression in
// the context of callerContract, returning how it should be treated.
func Classify(call *astmodel.Node, callerContract string, table *symboltable.Table) CallSite {
	callee := call.Expression
	if callee == nil {
		return CallSite{Kind: Internal, CalledName: "unknown", AST: call}
	}

	if callee.NodeType == "MemberAccess" {
		if base := callee.Expression; base != nil && base.NodeType == "Identifier" && base.Name == "super" {
			return CallSite{Kind: Inherited, CalledName: callee.MemberName, AST: call}
		}

		site := classifyMemberAccess(callee, callerContract, table)
		if isExternalFunctionType(callee.TypeDescriptions) {
			site.IsExternal = true
		}
		return site
	}

	if callee.NodeType == "Identifier" {
		return CallSite{Kind: Internal, CalledName: callee.Name, AST: call}
	}

	return CallSite{Kind: Internal, CalledName: "unknown", AST: call}
}

func classifyMemberAccess(callee *astmodel.Node, callerContract string, table *symboltable.Table) CallSite {
	base := callee.Expression
	if base == nil || base.NodeType != "Identifier" {
		return CallSite{Kind: Internal, CalledName: callee.MemberName, AST: callee}
	}

	target := extractContractFromTypeString(typeStringOf(base))
	if target == "" {
		return CallSite{Kind: Internal, CalledName: callee.MemberName, AST: callee}
	}

	if target == callerContract {
		return CallSite{Kind: Internal, CalledName: callee.MemberName, AST: callee}
	}

	site := CallSite{
		Kind:           CrossContract,
		CalledName:     callee.MemberName,
		TargetContract: target,
		IsExternal:     true,
		AST:            callee,
	}

	if c := table.Contract(target); c != nil {
		if c.Kind == symboltable.KindInterface {
			site.ImplementationContract = table.ResolveInterfaceFunction(target, callee.MemberName)
		} else if !c.IsAbstract {
			site.ImplementationContract = target
		}
	}

	return site
}

func typeStringOf(n *astmodel.Node) string {
	if n == nil || n.TypeDescriptions == nil {
		return ""
	}
	return n.TypeDescriptions.TypeString
}

// extractContractFromTypeString pulls the contract name out of a
// typeString like "contract Vault" or "contract IVault". It is a token
// split, not a structural parse: the first token after the literal word
// "contract" is taken, minus any trailing "," or ")" left over from the
// surrounding type syntax.
func extractContractFromTypeString(typeString string) string {
	const marker = "contract "
	idx := strings.Index(typeString, marker)
	if idx < 0 {
		return ""
	}
	rest := typeString[idx+len(marker):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ",)")
}

func isExternalFunctionType(td *astmodel.TypeDescriptions) bool {
	if td == nil {
		return false
	}
	ts := td.TypeString
	return strings.Contains(ts, "external") && strings.Contains(ts, "function")
}
