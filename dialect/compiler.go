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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Compiled is a rendered statement.
type Compiled struct {
	// SQL is the statement text. Unless it was compiled with LiteralBinds,
	// parameters appear as %(name)s and literal percent signs are doubled.
	SQL string
	// Params holds the bound parameter values by name.
	Params map[string]any
}

// String returns the statement text.
func (c *Compiled) String() string {
	return c.SQL
}

// CompileOption configures a compilation.
type CompileOption func(*compiler)

// LiteralBinds renders bound parameters inline as literals.
func LiteralBinds() CompileOption {
	return func(c *compiler) {
		c.literalBinds = true
	}
}

// compiler renders one statement. It is not reused across statements.
type compiler struct {
	dialect  *Dialect
	preparer *IdentifierPreparer

	b            strings.Builder
	params       map[string]any
	counters     map[string]int
	literalBinds bool
	includeTable bool
}

func newCompiler(d *Dialect, opts ...CompileOption) *compiler {
	c := &compiler{
		dialect:      d,
		preparer:     d.Preparer,
		params:       make(map[string]any),
		counters:     make(map[string]int),
		includeTable: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *compiler) result() *Compiled {
	return &Compiled{SQL: c.b.String(), Params: c.params}
}

// writeText writes text that may contain percent signs.
func (c *compiler) writeText(s string) {
	if !c.literalBinds {
		s = strings.ReplaceAll(s, "%", "%%")
	}
	c.b.WriteString(s)
}

func (c *compiler) writeIdent(s string) {
	c.writeText(s)
}

func (c *compiler) writeList(exprs []Expr) error {
	for i, e := range exprs {
		if i > 0 {
			c.b.WriteString(", ")
		}
		if err := e.compile(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) writeFunc(name string, args ...Expr) error {
	c.b.WriteString(name)
	c.b.WriteByte('(')
	if err := c.writeList(args); err != nil {
		return err
	}
	c.b.WriteByte(')')
	return nil
}

// compileGrouped renders e, parenthesized when it is a condition joined by
// an operator other than parent.
func (c *compiler) compileGrouped(e Expr, parent Operator) error {
	if b, ok := e.(*BinaryExpr); ok && (b.Op == OpAnd || b.Op == OpOr) && b.Op != parent {
		c.b.WriteByte('(')
		if err := e.compile(c); err != nil {
			return err
		}
		c.b.WriteByte(')')
		return nil
	}
	return e.compile(c)
}

func (c *compiler) bindName(key string) string {
	key = sanitizeBindKey(key)
	c.counters[key]++
	return key + "_" + strconv.Itoa(c.counters[key])
}

func sanitizeBindKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "param"
	}
	return b.String()
}

// renderLiteral renders v as an inline SQL literal. Date and datetime typed
// literals are wrapped in toDate and toDateTime.
func (c *compiler) renderLiteral(v any, typ *Type) (string, error) {
	var s string
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case time.Duration:
		return intervalLiteral(val), nil
	case time.Time:
		if typ != nil && typ.Kind == KindDate {
			return "toDate(" + c.preparer.QuoteString(val.Format("2006-01-02")) + ")", nil
		}
		return "toDateTime(" + c.preparer.QuoteString(val.Format("2006-01-02 15:04:05")) + ")", nil
	case string:
		s = c.preparer.QuoteString(val)
	case []byte:
		s = c.preparer.QuoteString(string(val))
	case bool:
		if val {
			s = "TRUE"
		} else {
			s = "FALSE"
		}
	case int:
		s = strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprintf("%d", val)
	case float32:
		s = strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		s = strconv.FormatFloat(val, 'g', -1, 64)
	case decimal.Decimal:
		s = val.String()
	default:
		return "", fmt.Errorf("cannot render literal value of type %T", v)
	}

	if typ != nil {
		switch typ.Kind {
		case KindDate:
			s = "toDate(" + s + ")"
		case KindDateTime:
			s = "toDateTime(" + s + ")"
		default:
		}
	}
	return s, nil
}

// intervalLiteral renders d as an INTERVAL literal.
func intervalLiteral(d time.Duration) string {
	return "to_interval('" + strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + " seconds')"
}
