package astwalk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
)

func TestVisitReachesNestedCalls(t *testing.T) {
	body := &astmodel.Node{
		NodeType: "Block",
		Statements: []astmodel.Node{
			{
				NodeType: "ExpressionStatement",
				Expression: &astmodel.Node{
					NodeType: "FunctionCall",
					Expression: &astmodel.Node{
						NodeType:   "MemberAccess",
						MemberName: "call",
						Expression: &astmodel.Node{NodeType: "Identifier", Name: "target"},
					},
				},
			},
			{
				NodeType:  "IfStatement",
				Condition: &astmodel.Node{NodeType: "Identifier", Name: "ok"},
				TrueBody: &astmodel.Node{
					NodeType: "ExpressionStatement",
					Expression: &astmodel.Node{
						NodeType:   "Assignment",
						LeftHandSide: &astmodel.Node{NodeType: "Identifier", Name: "balance"},
					},
				},
			},
		},
	}

	var calls, assignments int
	Visit(body, func(n, parent *astmodel.Node) {
		switch n.NodeType {
		case "FunctionCall":
			calls++
		case "Assignment":
			assignments++
		}
	})

	require.Equal(t, 1, calls)
	require.Equal(t, 1, assignments)
}

func TestIsSelectorEncodeCallMatchesThisSelector(t *testing.T) {
	call := &astmodel.Node{
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
	}

	name, ok := IsSelectorEncodeCall(call)
	require.True(t, ok)
	require.Equal(t, "withdraw", name)
}

func TestIsSelectorEncodeCallRejectsUnrelatedCall(t *testing.T) {
	call := &astmodel.Node{
		NodeType: "FunctionCall",
		Expression: &astmodel.Node{
			NodeType:   "MemberAccess",
			MemberName: "transfer",
			Expression: &astmodel.Node{NodeType: "Identifier", Name: "token"},
		},
		Arguments: []astmodel.Node{{NodeType: "Identifier", Name: "amount"}},
	}

	_, ok := IsSelectorEncodeCall(call)
	require.False(t, ok)
}

func TestIsSelectorEncodeCallRejectsNonThisBase(t *testing.T) {
	call := &astmodel.Node{
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
					Expression: &astmodel.Node{NodeType: "Identifier", Name: "other"},
				},
			},
		},
	}

	_, ok := IsSelectorEncodeCall(call)
	require.False(t, ok)
}
