package callgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astloader"
	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
	"github.com/vesla0x1/reentrancy-analyzer/internal/symboltable"
)

func exprStmt(e *astmodel.Node) astmodel.Node {
	return astmodel.Node{NodeType: "ExpressionStatement", Expression: e}
}

func internalCall(name string) *astmodel.Node {
	return &astmodel.Node{NodeType: "FunctionCall", Expression: &astmodel.Node{NodeType: "Identifier", Name: name}}
}

func superCall(member string) *astmodel.Node {
	return &astmodel.Node{
		NodeType: "FunctionCall",
		Expression: &astmodel.Node{
			NodeType:   "MemberAccess",
			MemberName: member,
			Expression: &astmodel.Node{NodeType: "Identifier", Name: "super"},
		},
	}
}

func crossCall(base, member, typeString string) *astmodel.Node {
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

func bodyOf(stmts ...astmodel.Node) *astmodel.Node {
	return &astmodel.Node{NodeType: "Block", Statements: stmts}
}

func fnWithBody(name string, body *astmodel.Node) astmodel.Node {
	return astmodel.Node{NodeType: "FunctionDefinition", Name: name, Kind: "function", Visibility: "public", Body: body}
}

func contractNode(name string, bases []string, children ...astmodel.Node) *astmodel.Node {
	var baseNodes []astmodel.Node
	for _, b := range bases {
		baseNodes = append(baseNodes, astmodel.Node{BaseName: &astmodel.Node{Name: b}})
	}
	return &astmodel.Node{NodeType: "ContractDefinition", Name: name, ContractKind: "contract", BaseContracts: baseNodes, Nodes: children}
}

func buildTable(contracts ...*astmodel.Node) *symboltable.Table {
	var ctxs []astloader.ContractContext
	for _, c := range contracts {
		ctxs = append(ctxs, astloader.ContractContext{SourceFile: c.Name + ".sol", Contract: c})
	}
	return symboltable.Build(ctxs)
}

func TestBuildResolvesInternalCrossContractInheritedAndExternal(t *testing.T) {
	ownable := contractNode("Ownable", nil, fnWithBody("checkOwner", bodyOf()))

	token := contractNode("Token", nil, fnWithBody("transfer", bodyOf()))

	vault := contractNode("Vault", []string{"Ownable"},
		fnWithBody("_helper", bodyOf()),
		fnWithBody("withdraw", bodyOf(
			exprStmt(internalCall("_helper")),
			exprStmt(superCall("checkOwner")),
			exprStmt(crossCall("token", "transfer", "contract Token")),
			exprStmt(internalCall("doSomethingUnknown")),
		)),
	)

	table := buildTable(ownable, token, vault)
	graph := Build(table)

	edges := graph.Out("Vault.withdraw")
	require.Len(t, edges, 3, "unresolved internal call should be dropped, not produce an edge")

	types := map[CallType]int{}
	for _, e := range edges {
		types[e.Type]++
	}
	require.Equal(t, 1, types[CallInternal])
	require.Equal(t, 1, types[CallInherited])
	require.Equal(t, 1, types[CallCrossContract])

	require.Contains(t, graph.Nodes, "Vault._helper")
	require.Contains(t, graph.Nodes, "Ownable.checkOwner")
	require.Contains(t, graph.Nodes, "Token.transfer")
}

func TestBuildEmitsExternalUnknownForUnresolvedCrossContractCall(t *testing.T) {
	vault := contractNode("Vault", nil,
		fnWithBody("withdraw", bodyOf(
			exprStmt(crossCall("oracle", "getPrice", "contract IPriceOracle")),
		)),
	)
	table := buildTable(vault)
	graph := Build(table)

	edges := graph.Out("Vault.withdraw")
	require.Len(t, edges, 1)
	require.Equal(t, CallExternal, edges[0].Type)
	require.False(t, edges[0].IsResolved)
	require.Equal(t, ExternalPrefix+"getPrice", edges[0].Target)
}

func TestBuildDetectsIndirectSelectorCall(t *testing.T) {
	vault := contractNode("Vault", nil,
		fnWithBody("withdraw", bodyOf()),
		fnWithBody("trigger", bodyOf(
			exprStmt(&astmodel.Node{
				NodeType: "FunctionCall",
				Expression: &astmodel.Node{
					NodeType:   "MemberAccess",
					MemberName: "encodeWithSelector",
					Expression: &astmodel.Node{NodeType: "Identifier", Name: "abi"},
				},
				Arguments: []astmodel.Node{
					{
						NodeType:   "MemberAccess",
						MemberName: "selector",
						Expression: &astmodel.Node{
							NodeType:   "MemberAccess",
							MemberName: "withdraw",
							Expression: &astmodel.Node{NodeType: "Identifier", Name: "this"},
						},
					},
				},
			}),
		)),
	)
	table := buildTable(vault)
	graph := Build(table)

	edges := graph.Out("Vault.trigger")
	require.Len(t, edges, 1)
	require.Equal(t, CallIndirect, edges[0].Type)
	require.Equal(t, "Vault.withdraw", edges[0].Target)
}

func TestCanReachFindsExternalSinkAndTarget(t *testing.T) {
	g := newGraph()
	g.addEdge(Edge{Source: "A.f", Target: "A.g", Type: CallInternal, IsResolved: true})
	g.addEdge(Edge{Source: "A.g", Target: ExternalPrefix + "call", Type: CallExternal})

	require.True(t, g.CanReach("A.f", "A.g"))
	require.True(t, g.CanReach("A.f", "nonexistent"), "reaching an external sink counts regardless of target")
	require.True(t, g.CanReach("A.g", "A.f"), "no edge back, but A.g reaches an external sink")
}

func TestCanReachIsCycleSafe(t *testing.T) {
	g := newGraph()
	g.addEdge(Edge{Source: "A.f", Target: "A.g", Type: CallInternal, IsResolved: true})
	g.addEdge(Edge{Source: "A.g", Target: "A.f", Type: CallInternal, IsResolved: true})

	require.False(t, g.CanReach("A.f", "A.nowhere"))
}

func TestResolveInheritedFindsFirstMatchInBaseChain(t *testing.T) {
	grandparent := contractNode("Root", nil, fnWithBody("hook", bodyOf()))
	parent := contractNode("Middle", []string{"Root"}, fnWithBody("other", bodyOf()))
	child := contractNode("Child", []string{"Middle"}, fnWithBody("withdraw", bodyOf()))

	table := buildTable(grandparent, parent, child)
	fn, via := ResolveInherited(table, table.Contract("Child"), "hook")
	require.NotNil(t, fn)
	require.Equal(t, "Root", via)
}
