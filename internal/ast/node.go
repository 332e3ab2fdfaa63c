package ast

import (
	"github.com/funvibe/serpent/internal/token"
)

type Kind int

const (
	Terminal Kind = iota
	Block
	BinaryOp
	UnaryOp
	Call
	ArgList
	Index
	Slice
	FieldAccess
	List
	Tuple
	Dict
	KeyValue
	ExprList
	Assign
	AugAssign
	MultiAssign
	ExprStmt
	While
	DoWhile
	If
	Elif
	Else
	Return
	Pass
	FuncDecl
	ParamList
	ClassDecl
	Import
	FromImport
	IDList
)

var kindNames = [...]string{
	Terminal:    "Terminal",
	Block:       "Block",
	BinaryOp:    "BinaryOp",
	UnaryOp:     "UnaryOp",
	Call:        "Call",
	ArgList:     "ArgList",
	Index:       "Index",
	Slice:       "Slice",
	FieldAccess: "FieldAccess",
	List:        "List",
	Tuple:       "Tuple",
	Dict:        "Dict",
	KeyValue:    "KeyValue",
	ExprList:    "ExprList",
	Assign:      "Assign",
	AugAssign:   "AugAssign",
	MultiAssign: "MultiAssign",
	ExprStmt:    "ExprStmt",
	While:       "While",
	DoWhile:     "DoWhile",
	If:          "If",
	Elif:        "Elif",
	Else:        "Else",
	Return:      "Return",
	Pass:        "Pass",
	FuncDecl:    "FuncDecl",
	ParamList:   "ParamList",
	ClassDecl:   "ClassDecl",
	Import:      "Import",
	FromImport:  "FromImport",
	IDList:      "IDList",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "??"
}

// Node is a tagged tree node. Terminal nodes hold a token and no children;
// every other kind holds only children. Keywords, operators and closing
// delimiters are kept as terminal children so that ranges cover them.
//
// Child layout per kind:
//
//	Block        stmt...
//	BinaryOp     left op right
//	UnaryOp      op operand
//	Call         callee ArgList
//	ArgList      "(" arg... ")"
//	Index        target index "]"
//	Slice        target lo|nil hi|nil "]"
//	FieldAccess  target ID
//	List         "[" elem... "]"
//	Tuple        "(" elem... ")"
//	Dict         "{" KeyValue... "}"
//	KeyValue     key value
//	ExprList     expr...
//	Assign       target value
//	AugAssign    target op value
//	MultiAssign  ExprList value
//	ExprStmt     expr
//	While        "while" cond Block
//	DoWhile      "do" Block cond
//	If           "if" cond Block Elif... Else?
//	Elif         "elif" cond Block
//	Else         "else" Block
//	Return       "return" value|nil
//	Pass         "pass"
//	FuncDecl     "def" ID ParamList Block
//	ParamList    "(" param... ")"
//	ClassDecl    "class" ID Block
//	Import       "import" IDList
//	FromImport   "from" ID IDList
//	IDList       ID...
type Node struct {
	Kind     Kind
	Token    *token.Token
	Children []*Node
	Range    token.Range
}

func NewTerminal(tok token.Token) *Node {
	return &Node{Kind: Terminal, Token: &tok, Range: tok.Range}
}

func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Left is the first child.
func (n *Node) Left() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Right is the last child.
func (n *Node) Right() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Text returns the token text of a terminal, or "" for other nodes.
func (n *Node) Text() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.Text
}

// Is reports whether n is a terminal of one of the given token kinds.
func (n *Node) Is(kinds ...token.Kind) bool {
	return n != nil && n.Token != nil && n.Token.Is(kinds...)
}

// Inner returns the children between the opening and closing delimiters of
// ArgList, List, Tuple, Dict and ParamList nodes.
func (n *Node) Inner() []*Node {
	if len(n.Children) < 2 {
		return nil
	}
	return n.Children[1 : len(n.Children)-1]
}

// ComputeRanges sets every node's range bottom-up: a terminal takes its
// token's range, anything else the union of its non-nil children.
func ComputeRanges(root *Node) {
	computeRange(root)
}

func computeRange(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == Terminal {
		n.Range = n.Token.Range
		return true
	}
	set := false
	for _, child := range n.Children {
		if !computeRange(child) {
			continue
		}
		if !set {
			n.Range = child.Range
			set = true
			continue
		}
		n.Range = n.Range.Union(child.Range)
	}
	return set
}

// Walk visits n and its descendants in pre-order, skipping nil children.
// Returning false from fn prunes the subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}
