/*
 * Copyright 2025 Databend Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Expr is an element of a statement: an expression, a FROM item, or a whole
// statement. Expressions are rendered by a Dialect.
type Expr interface {
	compile(c *compiler) error
}

// Table names a table, optionally qualified by a schema.
type Table struct {
	Schema string
	Name   string
}

// T creates a table reference. A name of the form "schema.table" is split.
func T(name string) *Table {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return &Table{Schema: name[:i], Name: name[i+1:]}
	}
	return &Table{Name: name}
}

// C returns a column of the table.
func (t *Table) C(name string) *Column {
	return &Column{Table: t, Name: name}
}

// Select starts a SELECT over the table. No columns selects every column.
func (t *Table) Select(columns ...Expr) *SelectStmt {
	return Select(columns...).From(t)
}

func (t *Table) compile(c *compiler) error {
	c.writeIdent(c.preparer.FormatTable(t))
	return nil
}

// Column is a column reference.
type Column struct {
	// Table qualifies the column. It may be nil.
	Table *Table
	Name  string
}

// Col creates an unqualified column reference.
func Col(name string) *Column {
	return &Column{Name: name}
}

func (col *Column) compile(c *compiler) error {
	if col.Table != nil && c.includeTable {
		c.writeIdent(c.preparer.Quote(col.Table.Name))
		c.b.WriteByte('.')
	}
	c.writeIdent(c.preparer.Quote(col.Name))
	return nil
}

// Eq compares the column with v. v is bound as a parameter unless it is an
// Expr.
func (col *Column) Eq(v any) *BinaryExpr { return Binary(col, OpEq, v) }

// Ne is the negation of Eq.
func (col *Column) Ne(v any) *BinaryExpr { return Binary(col, OpNe, v) }

// Lt compares the column with v using <.
func (col *Column) Lt(v any) *BinaryExpr { return Binary(col, OpLt, v) }

// Gt compares the column with v using >.
func (col *Column) Gt(v any) *BinaryExpr { return Binary(col, OpGt, v) }

// Like matches the column against a pattern.
func (col *Column) Like(v any) *BinaryExpr { return Binary(col, OpLike, v) }

// NotLike is the negation of Like.
func (col *Column) NotLike(v any) *BinaryExpr { return Binary(col, OpNotLike, v) }

// Concat concatenates the column with v.
func (col *Column) Concat(v any) *BinaryExpr { return Binary(col, OpConcat, v) }

type star struct{}

func (star) compile(c *compiler) error {
	c.b.WriteByte('*')
	return nil
}

// Star selects every column.
var Star Expr = star{}

// Literal is a value rendered inline into the statement.
type Literal struct {
	Value any
	// Type selects the literal rendering. Nil infers it from Value.
	Type *Type
}

// Lit creates an inline literal.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

// TypedLit creates an inline literal rendered as typ.
func TypedLit(v any, typ Type) *Literal {
	return &Literal{Value: v, Type: &typ}
}

func (l *Literal) compile(c *compiler) error {
	s, err := c.renderLiteral(l.Value, l.Type)
	if err != nil {
		return err
	}
	c.writeText(s)
	return nil
}

// Bind is a bound parameter.
type Bind struct {
	// Key is the parameter name. Unless Exact is set, a counter suffix is
	// appended to keep names unique within a statement.
	Key   string
	Value any
	Type  *Type
	Exact bool
}

// Param creates a bound parameter rendered under exactly name.
func Param(name string, v any) *Bind {
	return &Bind{Key: name, Value: v, Exact: true}
}

func (p *Bind) compile(c *compiler) error {
	if c.literalBinds {
		s, err := c.renderLiteral(p.Value, p.Type)
		if err != nil {
			return err
		}
		c.writeText(s)
		return nil
	}
	name := p.Key
	if !p.Exact {
		name = c.bindName(p.Key)
	}
	c.params[name] = p.Value
	c.b.WriteString("%(" + name + ")s")
	return nil
}

type raw string

func (r raw) compile(c *compiler) error {
	c.writeText(string(r))
	return nil
}

// Raw renders s verbatim. It must not contain untrusted input.
func Raw(s string) Expr {
	return raw(s)
}

// Operator is a binary SQL operator.
type Operator string

const (
	OpEq      Operator = "="
	OpNe      Operator = "!="
	OpLt      Operator = "<"
	OpLe      Operator = "<="
	OpGt      Operator = ">"
	OpGe      Operator = ">="
	OpAnd     Operator = "AND"
	OpOr      Operator = "OR"
	OpAdd     Operator = "+"
	OpSub     Operator = "-"
	OpMul     Operator = "*"
	OpDiv     Operator = "/"
	OpLike    Operator = "LIKE"
	OpNotLike Operator = "NOT LIKE"
	OpConcat  Operator = "||"
)

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Left  Expr
	Op    Operator
	Right Expr
}

// Binary creates a binary operation. A right operand that is not an Expr is
// bound as a parameter named after the left operand.
func Binary(left Expr, op Operator, right any) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: operand(right, left)}
}

func (e *BinaryExpr) compile(c *compiler) error {
	switch e.Op {
	case OpConcat:
		return c.writeFunc("concat", e.Left, e.Right)
	case OpAnd, OpOr:
		if err := c.compileGrouped(e.Left, e.Op); err != nil {
			return err
		}
		c.b.WriteString(" " + string(e.Op) + " ")
		return c.compileGrouped(e.Right, e.Op)
	default:
		if err := e.Left.compile(c); err != nil {
			return err
		}
		c.b.WriteString(" " + string(e.Op) + " ")
		return e.Right.compile(c)
	}
}

// And joins conditions with AND.
func And(conds ...Expr) Expr { return join(OpAnd, conds) }

// Or joins conditions with OR.
func Or(conds ...Expr) Expr { return join(OpOr, conds) }

func join(op Operator, conds []Expr) Expr {
	if len(conds) == 0 {
		return nil
	}
	e := conds[0]
	for _, next := range conds[1:] {
		e = &BinaryExpr{Left: e, Op: op, Right: next}
	}
	return e
}

// operand converts v into an Expr, binding plain values as parameters named
// after near.
func operand(v any, near Expr) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	key := "param"
	switch n := near.(type) {
	case *Column:
		key = n.Name
	case *FuncExpr:
		key = n.Name
	}
	return &Bind{Key: key, Value: v}
}

// FuncExpr is a function call.
type FuncExpr struct {
	Name string
	Args []Expr
}

// Func creates a call of the named function. Arguments that are not an Expr
// are bound as parameters named after the function.
func Func(name string, args ...any) *FuncExpr {
	f := &FuncExpr{Name: name}
	for _, a := range args {
		f.Args = append(f.Args, operand(a, f))
	}
	return f
}

// Count is count(e), or count(*) without argument.
func Count(e ...Expr) *FuncExpr {
	if len(e) == 0 {
		return &FuncExpr{Name: "count", Args: []Expr{Star}}
	}
	return &FuncExpr{Name: "count", Args: e[:1]}
}

// Random is a random number.
func Random() *FuncExpr { return &FuncExpr{Name: "random"} }

// Now is the current timestamp.
func Now() *FuncExpr { return &FuncExpr{Name: "now"} }

// CurrentDate is the current date.
func CurrentDate() *FuncExpr { return &FuncExpr{Name: "current_date"} }

// Substring extracts a substring of s from start, of at most length
// characters when given.
func Substring(s Expr, start any, length ...any) *FuncExpr {
	f := &FuncExpr{Name: "substring", Args: []Expr{s}}
	f.Args = append(f.Args, operand(start, f))
	if len(length) > 0 {
		f.Args = append(f.Args, operand(length[0], f))
	}
	return f
}

func (f *FuncExpr) compile(c *compiler) error {
	switch strings.ToLower(f.Name) {
	case "random":
		c.b.WriteString("rand()")
		return nil
	case "now":
		c.b.WriteString("now()")
		return nil
	case "current_date":
		c.b.WriteString("today()")
		return nil
	case "substring":
		if len(f.Args) < 2 || len(f.Args) > 3 {
			return fmt.Errorf("substring takes 2 or 3 arguments, got %d", len(f.Args))
		}
		return c.writeFunc("substring", f.Args...)
	case "count":
		return c.writeFunc("count", f.Args...)
	default:
		return c.writeFunc(f.Name, f.Args...)
	}
}

// CastExpr converts an expression to a type.
type CastExpr struct {
	Expr Expr
	Type Type
}

// Cast creates a CAST.
func Cast(e Expr, typ Type) *CastExpr {
	return &CastExpr{Expr: e, Type: typ}
}

func (e *CastExpr) compile(c *compiler) error {
	if !c.dialect.SupportsCast {
		return e.Expr.compile(c)
	}
	c.b.WriteString("CAST(")
	if err := e.Expr.compile(c); err != nil {
		return err
	}
	typ, err := CompileType(e.Type)
	if err != nil {
		return err
	}
	c.b.WriteString(" AS " + typ + ")")
	return nil
}

// OrderItem is an ORDER BY entry.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// SelectStmt is a SELECT statement.
type SelectStmt struct {
	Distinct bool
	// DistinctOn is accepted for portability and rendered as a plain
	// DISTINCT.
	DistinctOn []Expr
	Columns    []Expr
	Froms      []Expr
	Cond       Expr
	Groups     []Expr
	Orders     []OrderItem
	LimitN     *int64
	OffsetN    *int64
	// ForUpdate is ignored since row locks do not exist.
	ForUpdate bool
}

// Select creates a SELECT of the given columns. No columns selects *.
func Select(columns ...Expr) *SelectStmt {
	return &SelectStmt{Columns: columns}
}

// From appends FROM items.
func (s *SelectStmt) From(froms ...Expr) *SelectStmt {
	s.Froms = append(s.Froms, froms...)
	return s
}

// Where adds a condition, joined with AND to any existing one.
func (s *SelectStmt) Where(cond Expr) *SelectStmt {
	if s.Cond == nil {
		s.Cond = cond
	} else {
		s.Cond = And(s.Cond, cond)
	}
	return s
}

// GroupBy appends GROUP BY expressions.
func (s *SelectStmt) GroupBy(exprs ...Expr) *SelectStmt {
	s.Groups = append(s.Groups, exprs...)
	return s
}

// OrderBy appends ascending ORDER BY expressions.
func (s *SelectStmt) OrderBy(exprs ...Expr) *SelectStmt {
	for _, e := range exprs {
		s.Orders = append(s.Orders, OrderItem{Expr: e})
	}
	return s
}

// OrderByDesc appends descending ORDER BY expressions.
func (s *SelectStmt) OrderByDesc(exprs ...Expr) *SelectStmt {
	for _, e := range exprs {
		s.Orders = append(s.Orders, OrderItem{Expr: e, Desc: true})
	}
	return s
}

// Limit sets the LIMIT.
func (s *SelectStmt) Limit(n int64) *SelectStmt {
	s.LimitN = &n
	return s
}

// Offset sets the OFFSET.
func (s *SelectStmt) Offset(n int64) *SelectStmt {
	s.OffsetN = &n
	return s
}

// Alias wraps the statement as a named subquery.
func (s *SelectStmt) Alias(name string) *Subquery {
	return &Subquery{Select: s, Name: name}
}

func (s *SelectStmt) compile(c *compiler) error {
	c.b.WriteString("SELECT ")
	if s.Distinct || len(s.DistinctOn) > 0 {
		c.b.WriteString("DISTINCT ")
	}
	if len(s.Columns) == 0 {
		c.b.WriteByte('*')
	} else if err := c.writeList(s.Columns); err != nil {
		return err
	}
	if len(s.Froms) > 0 {
		c.b.WriteString(" FROM ")
		if err := c.writeList(s.Froms); err != nil {
			return err
		}
	}
	if s.Cond != nil {
		c.b.WriteString(" WHERE ")
		if err := s.Cond.compile(c); err != nil {
			return err
		}
	}
	if len(s.Groups) > 0 {
		c.b.WriteString(" GROUP BY ")
		if err := c.writeList(s.Groups); err != nil {
			return err
		}
	}
	for i, o := range s.Orders {
		if i == 0 {
			c.b.WriteString(" ORDER BY ")
		} else {
			c.b.WriteString(", ")
		}
		if err := o.Expr.compile(c); err != nil {
			return err
		}
		if o.Desc {
			c.b.WriteString(" DESC")
		}
	}
	if s.LimitN != nil {
		c.b.WriteString(" LIMIT " + strconv.FormatInt(*s.LimitN, 10))
	}
	if s.OffsetN != nil {
		c.b.WriteString(" OFFSET " + strconv.FormatInt(*s.OffsetN, 10))
	}
	return nil
}

// firstFromName returns the name of the first table the statement selects
// from.
func (s *SelectStmt) firstFromName() (string, error) {
	for _, f := range s.Froms {
		switch from := f.(type) {
		case *Table:
			return from.Name, nil
		case *Subquery:
			return from.Name, nil
		}
	}
	return "", errors.New("select has no named FROM item")
}

// Subquery is a SELECT used as a named FROM item.
type Subquery struct {
	Select *SelectStmt
	Name   string
}

// C returns a column of the subquery.
func (s *Subquery) C(name string) *Column {
	return &Column{Table: &Table{Name: s.Name}, Name: name}
}

func (s *Subquery) compile(c *compiler) error {
	c.b.WriteByte('(')
	if err := s.Select.compile(c); err != nil {
		return err
	}
	c.b.WriteString(") AS ")
	c.writeIdent(c.preparer.Quote(s.Name))
	return nil
}
