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
)

// ErrInvalidMergeSource is returned when a MERGE source is neither a table,
// a select nor a subquery.
var ErrInvalidMergeSource = errors.New("invalid type for merge source")

// Assignment sets a column to a value.
type Assignment struct {
	Column string
	Value  Expr
}

type mergeAction int

const (
	mergeUpdate mergeAction = iota
	mergeDelete
	mergeInsert
)

// MergeClause is one WHEN branch of a MERGE.
type MergeClause struct {
	action    mergeAction
	predicate Expr
	set       []Assignment
}

// Where restricts the branch with an AND predicate.
func (m *MergeClause) Where(pred Expr) *MergeClause {
	m.predicate = pred
	return m
}

// Set assigns column to v. v is bound as a parameter unless it is an Expr.
// Without assignments, an update sets every column and an insert inserts
// every column.
func (m *MergeClause) Set(column string, v any) *MergeClause {
	m.set = append(m.set, Assignment{Column: column, Value: operand(v, Col(column))})
	return m
}

func (m *MergeClause) compile(c *compiler) error {
	switch m.action {
	case mergeUpdate, mergeDelete:
		c.b.WriteString("WHEN MATCHED")
	default:
		c.b.WriteString("WHEN NOT MATCHED")
	}
	if m.predicate != nil {
		c.b.WriteString(" AND ")
		if err := m.predicate.compile(c); err != nil {
			return err
		}
	}

	switch m.action {
	case mergeDelete:
		c.b.WriteString(" THEN DELETE")
		return nil
	case mergeUpdate:
		c.b.WriteString(" THEN UPDATE")
		if len(m.set) == 0 {
			c.b.WriteString(" *")
			return nil
		}
		c.b.WriteString(" SET ")
		for i, a := range m.set {
			if i > 0 {
				c.b.WriteString(", ")
			}
			c.writeIdent(c.preparer.Quote(a.Column))
			c.b.WriteString(" = ")
			if err := a.Value.compile(c); err != nil {
				return err
			}
		}
		return nil
	default:
		c.b.WriteString(" THEN INSERT")
		if len(m.set) == 0 {
			c.b.WriteString(" *")
			return nil
		}
		c.b.WriteString(" (")
		for i, a := range m.set {
			if i > 0 {
				c.b.WriteString(", ")
			}
			c.writeIdent(c.preparer.Quote(a.Column))
		}
		c.b.WriteString(") VALUES (")
		for i, a := range m.set {
			if i > 0 {
				c.b.WriteString(", ")
			}
			if err := a.Value.compile(c); err != nil {
				return err
			}
		}
		c.b.WriteByte(')')
		return nil
	}
}

// Merge is a MERGE INTO statement.
type Merge struct {
	target  *Table
	source  Expr
	on      Expr
	clauses []*MergeClause
}

// NewMerge creates a MERGE of source into target on the given condition.
// source must be a *Table, a *SelectStmt or a *Subquery.
func NewMerge(target *Table, source Expr, on Expr) (*Merge, error) {
	switch source.(type) {
	case *Table, *SelectStmt, *Subquery:
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMergeSource, source)
	}
	if target == nil || on == nil {
		return nil, errors.New("merge requires a target and a join condition")
	}
	return &Merge{target: target, source: source, on: on}, nil
}

// WhenMatchedThenUpdate adds a WHEN MATCHED THEN UPDATE branch.
func (m *Merge) WhenMatchedThenUpdate() *MergeClause {
	return m.add(mergeUpdate)
}

// WhenMatchedThenDelete adds a WHEN MATCHED THEN DELETE branch.
func (m *Merge) WhenMatchedThenDelete() *MergeClause {
	return m.add(mergeDelete)
}

// WhenNotMatchedThenInsert adds a WHEN NOT MATCHED THEN INSERT branch.
func (m *Merge) WhenNotMatchedThenInsert() *MergeClause {
	return m.add(mergeInsert)
}

func (m *Merge) add(action mergeAction) *MergeClause {
	clause := &MergeClause{action: action}
	m.clauses = append(m.clauses, clause)
	return clause
}

func (m *Merge) compile(c *compiler) error {
	c.b.WriteString("MERGE INTO ")
	if err := m.target.compile(c); err != nil {
		return err
	}

	c.b.WriteString(" USING ")
	var source *Subquery
	switch s := m.source.(type) {
	case *Table:
		source = &Subquery{Select: Select().From(s), Name: s.Name}
	case *SelectStmt:
		name, err := s.firstFromName()
		if err != nil {
			return err
		}
		source = &Subquery{Select: s, Name: name}
	case *Subquery:
		source = s
	}
	if err := source.compile(c); err != nil {
		return err
	}

	c.b.WriteString(" ON ")
	if err := m.on.compile(c); err != nil {
		return err
	}
	for _, clause := range m.clauses {
		c.b.WriteByte(' ')
		if err := clause.compile(c); err != nil {
			return err
		}
	}
	return nil
}
