package parser

import (
	"bytes"
	"strings"
)

// Node is implemented by every element of a parsed gridscript program.
// Pos reports the byte offset of the node's first token in the source text.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() int
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() int {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// CountNodes reports the total number of AST nodes in the program. The
// analyzer uses it to reject scripts above the configured complexity limit
// before any further work is done on them.
func (p *Program) CountNodes() int {
	return CountNodes(p)
}

type LetStatement struct {
	Token Token // the 'let' token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Pos() int             { return ls.Token.Position }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString("let ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

type ReturnStatement struct {
	Token Token // the 'return' token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() int             { return rs.Token.Position }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer
	out.WriteString("return")
	if rs.Value != nil {
		out.WriteString(" ")
		out.WriteString(rs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

type ExpressionStatement struct {
	Token      Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() int             { return es.Token.Position }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type BlockStatement struct {
	Token      Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() int             { return bs.Token.Position }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// WhileStatement is the only repeating construct in gridscript. The loop
// safety scan keys off the Test expression and the Body subtree.
type WhileStatement struct {
	Token Token // the 'while' token
	Test  Expression
	Body  *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() int             { return ws.Token.Position }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("while (")
	if ws.Test != nil {
		out.WriteString(ws.Test.String())
	}
	out.WriteString(") ")
	if ws.Body != nil {
		out.WriteString(ws.Body.String())
	}
	return out.String()
}

type IfStatement struct {
	Token       Token // the 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement or a chained *IfStatement; may be nil
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() int             { return is.Token.Position }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	if is.Condition != nil {
		out.WriteString(is.Condition.String())
	}
	out.WriteString(") ")
	if is.Consequence != nil {
		out.WriteString(is.Consequence.String())
	}
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type Identifier struct {
	Token Token // the IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() int             { return i.Token.Position }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() int             { return il.Token.Position }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

type FloatLiteral struct {
	Token Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() int             { return fl.Token.Position }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

type StringLiteral struct {
	Token Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() int             { return sl.Token.Position }
func (sl *StringLiteral) String() string       { return sl.Token.Literal }

type BooleanLiteral struct {
	Token Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() int             { return bl.Token.Position }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

type PrefixExpression struct {
	Token    Token // the prefix token, e.g. !, -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() int             { return pe.Token.Position }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(pe.Operator)
	if pe.Right != nil {
		out.WriteString(pe.Right.String())
	}
	out.WriteString(")")
	return out.String()
}

type InfixExpression struct {
	Token    Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() int {
	if ie.Left != nil {
		return ie.Left.Pos()
	}
	return ie.Token.Position
}
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	if ie.Left != nil {
		out.WriteString(ie.Left.String())
	}
	out.WriteString(" " + ie.Operator + " ")
	if ie.Right != nil {
		out.WriteString(ie.Right.String())
	}
	out.WriteString(")")
	return out.String()
}

type AssignExpression struct {
	Token  Token // the '=' token
	Target Expression
	Value  Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) Pos() int {
	if ae.Target != nil {
		return ae.Target.Pos()
	}
	return ae.Token.Position
}
func (ae *AssignExpression) String() string {
	var out bytes.Buffer
	if ae.Target != nil {
		out.WriteString(ae.Target.String())
	}
	out.WriteString(" = ")
	if ae.Value != nil {
		out.WriteString(ae.Value.String())
	}
	return out.String()
}

type CallExpression struct {
	Token     Token      // the '(' token
	Function  Expression // Identifier, MemberExpression, or FunctionLiteral
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() int {
	if ce.Function != nil {
		return ce.Function.Pos()
	}
	return ce.Token.Position
}
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	var args []string
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	if ce.Function != nil {
		out.WriteString(ce.Function.String())
	}
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

type MemberExpression struct {
	Token    Token // the '.' token
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Pos() int {
	if me.Object != nil {
		return me.Object.Pos()
	}
	return me.Token.Position
}
func (me *MemberExpression) String() string {
	var out bytes.Buffer
	if me.Object != nil {
		out.WriteString(me.Object.String())
	}
	out.WriteString(".")
	if me.Property != nil {
		out.WriteString(me.Property.String())
	}
	return out.String()
}

type IndexExpression struct {
	Token Token // the '[' token
	Left  Expression
	Index Expression
}

func (ix *IndexExpression) expressionNode()      {}
func (ix *IndexExpression) TokenLiteral() string { return ix.Token.Literal }
func (ix *IndexExpression) Pos() int {
	if ix.Left != nil {
		return ix.Left.Pos()
	}
	return ix.Token.Position
}
func (ix *IndexExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	if ix.Left != nil {
		out.WriteString(ix.Left.String())
	}
	out.WriteString("[")
	if ix.Index != nil {
		out.WriteString(ix.Index.String())
	}
	out.WriteString("])")
	return out.String()
}

// AwaitExpression marks a suspension point: the host scheduler may take
// control back from the script while the awaited value settles.
type AwaitExpression struct {
	Token Token // the 'await' token
	Value Expression
}

func (aw *AwaitExpression) expressionNode()      {}
func (aw *AwaitExpression) TokenLiteral() string { return aw.Token.Literal }
func (aw *AwaitExpression) Pos() int             { return aw.Token.Position }
func (aw *AwaitExpression) String() string {
	var out bytes.Buffer
	out.WriteString("await ")
	if aw.Value != nil {
		out.WriteString(aw.Value.String())
	}
	return out.String()
}

type FunctionLiteral struct {
	Token      Token // the 'function' token
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fn *FunctionLiteral) expressionNode()      {}
func (fn *FunctionLiteral) TokenLiteral() string { return fn.Token.Literal }
func (fn *FunctionLiteral) Pos() int             { return fn.Token.Position }
func (fn *FunctionLiteral) String() string {
	var out bytes.Buffer
	var params []string
	for _, p := range fn.Parameters {
		params = append(params, p.String())
	}
	out.WriteString("function(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	if fn.Body != nil {
		out.WriteString(fn.Body.String())
	}
	return out.String()
}

// Children returns the direct child nodes of n in syntactic order. It is
// the single enumeration point for every recursive walk over the AST.
func Children(n Node) []Node {
	switch node := n.(type) {
	case *Program:
		out := make([]Node, 0, len(node.Statements))
		for _, s := range node.Statements {
			out = append(out, s)
		}
		return out
	case *LetStatement:
		return childList(node.Name, node.Value)
	case *ReturnStatement:
		return childList(node.Value)
	case *ExpressionStatement:
		return childList(node.Expression)
	case *BlockStatement:
		out := make([]Node, 0, len(node.Statements))
		for _, s := range node.Statements {
			out = append(out, s)
		}
		return out
	case *WhileStatement:
		return childList(node.Test, node.Body)
	case *IfStatement:
		return childList(node.Condition, node.Consequence, node.Alternative)
	case *PrefixExpression:
		return childList(node.Right)
	case *InfixExpression:
		return childList(node.Left, node.Right)
	case *AssignExpression:
		return childList(node.Target, node.Value)
	case *CallExpression:
		out := childList(node.Function)
		for _, a := range node.Arguments {
			if a != nil {
				out = append(out, a)
			}
		}
		return out
	case *MemberExpression:
		return childList(node.Object, node.Property)
	case *IndexExpression:
		return childList(node.Left, node.Index)
	case *AwaitExpression:
		return childList(node.Value)
	case *FunctionLiteral:
		out := make([]Node, 0, len(node.Parameters)+1)
		for _, p := range node.Parameters {
			if p != nil {
				out = append(out, p)
			}
		}
		if node.Body != nil {
			out = append(out, node.Body)
		}
		return out
	default:
		// Identifiers and literals are leaves.
		return nil
	}
}

// childList filters nil entries so walks never have to re-check them.
// Typed nils from failed partial parses are caught by the IsNil check on
// the concrete pointer types used in Children.
func childList(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || isNilNode(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *BlockStatement:
		return v == nil
	case *IfStatement:
		return v == nil
	default:
		return false
	}
}

// CountNodes reports the size of the subtree rooted at n, including n.
func CountNodes(n Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range Children(n) {
		count += CountNodes(c)
	}
	return count
}
