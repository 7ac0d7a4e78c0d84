// Package astmodel defines the typed shape of Solidity compiler AST nodes
// this analyzer understands. It mirrors only the fields the rest of the
// module reads; any node shape it doesn't recognize degrades gracefully
// rather than panicking.
package astmodel

// TypeDescriptions carries the compiler's inferred type information for an
// expression node. Only TypeString is consulted by this analyzer.
type TypeDescriptions struct {
	TypeString     string `json:"typeString,omitempty"`
	TypeIdentifier string `json:"typeIdentifier,omitempty"`
}

// Node is a single AST node. It is intentionally wide: every node shape this
// analyzer touches (SourceUnit, ContractDefinition, FunctionDefinition,
// VariableDeclaration, statements, expressions) is represented by the same
// struct, with fields that don't apply to a given NodeType simply left zero.
type Node struct {
	ID       int    `json:"id"`
	NodeType string `json:"nodeType"`
	Name     string `json:"name,omitempty"`
	Src      string `json:"src,omitempty"`

	// ContractDefinition
	ContractKind  string `json:"contractKind,omitempty"`
	Abstract      bool   `json:"abstract,omitempty"`
	BaseContracts []Node `json:"baseContracts,omitempty"`
	Nodes         []Node `json:"nodes,omitempty"`

	// InheritanceSpecifier
	BaseName *Node `json:"baseName,omitempty"`

	// UserDefinedTypeName / IdentifierPath
	PathNode *Node `json:"pathNode,omitempty"`

	// FunctionDefinition / ModifierDefinition
	Kind            string             `json:"kind,omitempty"`
	Visibility      string             `json:"visibility,omitempty"`
	StateMutability string             `json:"stateMutability,omitempty"`
	Virtual         bool               `json:"virtual,omitempty"`
	Override        *OverrideSpecifier `json:"overrides,omitempty"`
	Implemented     bool               `json:"implemented,omitempty"`
	Body            *Node              `json:"body,omitempty"`
	Modifiers       []Node             `json:"modifiers,omitempty"`

	// VariableDeclaration
	StateVariable bool `json:"stateVariable,omitempty"`

	// Block / statement containers
	Statements []Node `json:"statements,omitempty"`

	// IfStatement
	Condition *Node `json:"condition,omitempty"`
	TrueBody  *Node `json:"trueBody,omitempty"`
	FalseBody *Node `json:"falseBody,omitempty"`

	// ExpressionStatement / VariableDeclarationStatement / Return
	Expression  *Node  `json:"expression,omitempty"`
	Declarations []Node `json:"declarations,omitempty"`
	InitialValue *Node  `json:"initialValue,omitempty"`

	// FunctionCall
	Arguments []Node `json:"arguments,omitempty"`

	// MemberAccess
	MemberName string `json:"memberName,omitempty"`

	// Assignment
	LeftHandSide  *Node `json:"leftHandSide,omitempty"`
	RightHandSide *Node `json:"rightHandSide,omitempty"`

	// BinaryOperation
	LeftExpression  *Node `json:"leftExpression,omitempty"`
	RightExpression *Node `json:"rightExpression,omitempty"`

	// Any expression node
	TypeDescriptions *TypeDescriptions `json:"typeDescriptions,omitempty"`

	// ReferencedDeclaration links an Identifier/MemberAccess/IdentifierPath
	// back to the node id it resolves to, when the compiler resolved it.
	ReferencedDeclaration int `json:"referencedDeclaration,omitempty"`
}

// OverrideSpecifier is present on FunctionDefinition.overrides when the
// function declares `override`. Its shape doesn't matter to this analyzer,
// only its presence, so it is unmarshaled as an opaque marker.
type OverrideSpecifier struct {
	NodeType string `json:"nodeType,omitempty"`
}

// SourceUnit is the top-level node of a single compiled source file.
type SourceUnit struct {
	AbsolutePath string `json:"absolutePath,omitempty"`
	NodeType     string `json:"nodeType"`
	Nodes        []Node `json:"nodes,omitempty"`
}

// IsContract reports whether n is a ContractDefinition.
func (n *Node) IsContract() bool { return n != nil && n.NodeType == "ContractDefinition" }

// BaseNameString resolves the name carried by a baseContracts entry,
// accepting both the UserDefinedTypeName/pathNode and IdentifierPath shapes
// solc has used across versions.
func (n *Node) BaseNameString() string {
	if n == nil {
		return ""
	}
	target := n.BaseName
	if target == nil {
		target = n
	}
	if target.PathNode != nil && target.PathNode.Name != "" {
		return target.PathNode.Name
	}
	return target.Name
}
