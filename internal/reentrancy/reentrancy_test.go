package reentrancy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astloader"
	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/callgraph"
	"github.com/vesla0x1/reentrancy-analyzer/internal/cfg"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

func exprStmt(e *astmodel.Node) astmodel.Node {
	return astmodel.Node{NodeType: "ExpressionStatement", Expression: e}
}

func unresolvedCall(member, typeString string) *astmodel.Node {
	return &astmodel.Node{
		NodeType: "FunctionCall",
		Expression: &astmodel.Node{
			NodeType:   "MemberAccess",
			MemberName: member,
			Expression: &astmodel.Node{
				NodeType:         "Identifier",
				Name:             "msg.sender",
				TypeDescriptions: &astmodel.TypeDescriptions{TypeString: typeString},
			},
		},
	}
}

func knownCall(base, member, typeString string) *astmodel.Node {
	return &astmodel.Node{
		NodeType: "FunctionCall",
		Expression: &astmodel.Node{
			NodeType:   "MemberAccess",
			MemberName: member,
			Expression: &astmodel.Node{
				NodeType:         "Identifier",
				Name:             base,
				TypeDescriptions: &astmodel.TypeDescriptions{TypeString: typeString},
			},
		},
	}
}

func stateWrite(varName string) *astmodel.Node {
	return &astmodel.Node{NodeType: "Assignment", LeftHandSide: &astmodel.Node{NodeType: "Identifier", Name: varName}}
}

func stateVarDecl(name, typeString string) astmodel.Node {
	return astmodel.Node{NodeType: "VariableDeclaration", Name: name, StateVariable: true, TypeDescriptions: &astmodel.TypeDescriptions{TypeString: typeString}}
}

func pipeline(t *testing.T, contracts ...*astmodel.Node) (*symboltable.Table, *callgraph.Graph, map[string]*cfg.CFG) {
	t.Helper()
	var ctxs []astloader.ContractContext
	for _, c := range contracts {
		ctxs = append(ctxs, astloader.ContractContext{SourceFile: c.Name + ".sol", Contract: c})
	}
	table := symboltable.Build(ctxs)
	graph := callgraph.Build(table)
	cfgs := cfg.Build(table)
	return table, graph, cfgs
}

// TestClassicVulnerableWithdraw models the textbook reentrancy bug: an
// external call to an unresolvable recipient followed by a balance write,
// in a publicly reachable function.
func TestClassicVulnerableWithdraw(t *testing.T) {
	vault := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Vault", ContractKind: "contract",
		Nodes: []astmodel.Node{
			stateVarDecl("balances", "mapping(address => uint256)"),
			stateVarDecl("totalSupply", "uint256"),
			{
				NodeType: "FunctionDefinition", Name: "withdraw", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(unresolvedCall("onReceive", "contract IReceiver")),
						exprStmt(stateWrite("balances")),
						exprStmt(stateWrite("totalSupply")),
					},
				},
			},
		},
	}

	table, graph, cfgs := pipeline(t, vault)
	patterns := Detect(table, graph, cfgs)

	require.Len(t, patterns, 1)
	p := patterns[0]
	require.Equal(t, "Vault.withdraw", p.Function)
	require.Equal(t, PotentialReentrancy, p.Classification)
	require.Equal(t, High, p.Severity, "public/external function with 2+ state changes after an unknown external call is high severity")
	require.Len(t, p.StateChangesAfter, 2)
}

// TestSafeKnownExternalCall models a call to a contract this analysis can
// resolve, and whose own call graph does not lead back to the caller.
func TestSafeKnownExternalCall(t *testing.T) {
	token := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Token", ContractKind: "contract",
		Nodes: []astmodel.Node{
			{NodeType: "FunctionDefinition", Name: "transfer", Kind: "function", Visibility: "external", Body: &astmodel.Node{NodeType: "Block"}},
		},
	}
	vault := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Vault", ContractKind: "contract",
		Nodes: []astmodel.Node{
			stateVarDecl("balances", "mapping(address => uint256)"),
			{
				NodeType: "FunctionDefinition", Name: "payOut", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(knownCall("token", "transfer", "contract Token")),
						exprStmt(stateWrite("balances")),
					},
				},
			},
		},
	}

	table, graph, cfgs := pipeline(t, token, vault)
	patterns := Detect(table, graph, cfgs)

	require.Len(t, patterns, 1)
	require.Equal(t, SafeExternalCall, patterns[0].Classification)
	require.Equal(t, Low, patterns[0].Severity)
}

// TestConfirmedCrossContractReentrancy models a known external contract
// whose own function calls back into the caller, making the reentrancy
// path concrete rather than merely potential.
func TestConfirmedCrossContractReentrancy(t *testing.T) {
	vault := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Vault", ContractKind: "contract",
		Nodes: []astmodel.Node{
			stateVarDecl("balances", "mapping(address => uint256)"),
			{
				NodeType: "FunctionDefinition", Name: "withdraw", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(knownCall("hook", "notify", "contract Hook")),
						exprStmt(stateWrite("balances")),
					},
				},
			},
			{
				NodeType: "FunctionDefinition", Name: "callback", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(&astmodel.Node{NodeType: "FunctionCall", Expression: &astmodel.Node{NodeType: "Identifier", Name: "withdraw"}}),
					},
				},
			},
		},
	}
	hook := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Hook", ContractKind: "contract",
		Nodes: []astmodel.Node{
			{
				NodeType: "FunctionDefinition", Name: "notify", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(knownCall("vault", "callback", "contract Vault")),
					},
				},
			},
		},
	}

	table, graph, cfgs := pipeline(t, vault, hook)
	patterns := Detect(table, graph, cfgs)

	require.Len(t, patterns, 1)
	require.Equal(t, ConfirmedReentrancy, patterns[0].Classification)
	require.Equal(t, Critical, patterns[0].Severity)
}

func TestNoPatternWhenNoStateChangeFollowsCall(t *testing.T) {
	vault := &astmodel.Node{
		NodeType: "ContractDefinition", Name: "Vault", ContractKind: "contract",
		Nodes: []astmodel.Node{
			{
				NodeType: "FunctionDefinition", Name: "read", Kind: "function", Visibility: "external",
				Body: &astmodel.Node{
					NodeType: "Block",
					Statements: []astmodel.Node{
						exprStmt(unresolvedCall("getPrice", "contract IOracle")),
					},
				},
			},
		},
	}
	table, graph, cfgs := pipeline(t, vault)
	patterns := Detect(table, graph, cfgs)
	require.Empty(t, patterns)
}
