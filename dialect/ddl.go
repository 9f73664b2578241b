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
)

// DDL is a schema definition statement.
type DDL interface {
	Expr
	ddl()
}

// ColumnDef defines a column of a new table.
type ColumnDef struct {
	Name    string
	Type    Type
	NotNull bool
	// Default is rendered as a literal. Nil means no default.
	Default any
}

// Constraint is a table constraint. Databend enforces none of them, so
// constraints are accepted and rendered as nothing.
type Constraint interface {
	constraint()
}

// PrimaryKey is a primary key constraint.
type PrimaryKey struct {
	Columns []string
}

func (PrimaryKey) constraint() {}

// ForeignKey is a foreign key constraint.
type ForeignKey struct {
	Columns    []string
	RefTable   *Table
	RefColumns []string
}

func (ForeignKey) constraint() {}

// CreateTable is a CREATE TABLE statement.
type CreateTable struct {
	Table       *Table
	Columns     []ColumnDef
	Constraints []Constraint
	IfNotExists bool
	// Transient tables keep no historical data.
	Transient bool
	// Engine selects the table engine, e.g. FUSE or Memory.
	Engine string
	// ClusterBy lists the cluster key expressions.
	ClusterBy []Expr
}

func (*CreateTable) ddl() {}

func (s *CreateTable) compile(c *compiler) error {
	if s.Table == nil || len(s.Columns) == 0 {
		return errors.New("create table requires a table and at least one column")
	}
	if err := c.dialect.checkIdentifier(s.Table.Name); err != nil {
		return err
	}

	c.b.WriteString("CREATE ")
	if s.Transient {
		c.b.WriteString("TRANSIENT ")
	}
	c.b.WriteString("TABLE ")
	if s.IfNotExists {
		c.b.WriteString("IF NOT EXISTS ")
	}
	if err := s.Table.compile(c); err != nil {
		return err
	}

	c.b.WriteString(" (")
	for i, col := range s.Columns {
		if i > 0 {
			c.b.WriteString(", ")
		}
		if err := c.dialect.checkIdentifier(col.Name); err != nil {
			return err
		}
		if err := col.compile(c); err != nil {
			return err
		}
	}
	c.b.WriteByte(')')

	if s.Engine != "" {
		c.b.WriteString(" ENGINE=")
		c.writeText(s.Engine)
	}
	if len(s.ClusterBy) > 0 {
		c.b.WriteString(" CLUSTER BY ( ")
		includeTable := c.includeTable
		c.includeTable = false
		err := c.writeList(s.ClusterBy)
		c.includeTable = includeTable
		if err != nil {
			return err
		}
		c.b.WriteString(" )")
	}
	return nil
}

func (col *ColumnDef) compile(c *compiler) error {
	typ, err := CompileType(col.Type)
	if err != nil {
		return err
	}
	c.writeIdent(c.preparer.Quote(col.Name))
	c.b.WriteString(" " + typ)
	if col.Default != nil {
		s, err := c.renderLiteral(col.Default, &col.Type)
		if err != nil {
			return err
		}
		c.b.WriteString(" DEFAULT ")
		c.writeText(s)
	}
	if col.NotNull {
		c.b.WriteString(" NOT NULL")
	}
	return nil
}

// DropTable is a DROP TABLE statement.
type DropTable struct {
	Table    *Table
	IfExists bool
}

func (*DropTable) ddl() {}

func (s *DropTable) compile(c *compiler) error {
	c.b.WriteString("DROP TABLE ")
	if s.IfExists {
		c.b.WriteString("IF EXISTS ")
	}
	return s.Table.compile(c)
}

// CreateSchema is a CREATE SCHEMA statement.
type CreateSchema struct {
	Name        string
	IfNotExists bool
}

func (*CreateSchema) ddl() {}

func (s *CreateSchema) compile(c *compiler) error {
	if err := c.dialect.checkIdentifier(s.Name); err != nil {
		return err
	}
	c.b.WriteString("CREATE SCHEMA ")
	if s.IfNotExists {
		c.b.WriteString("IF NOT EXISTS ")
	}
	c.writeIdent(c.preparer.Quote(s.Name))
	return nil
}

// DropSchema is a DROP SCHEMA statement. Databend drops the schema's tables
// with it, so no CASCADE is rendered.
type DropSchema struct {
	Name string
}

func (*DropSchema) ddl() {}

func (s *DropSchema) compile(c *compiler) error {
	c.b.WriteString("DROP SCHEMA ")
	c.writeIdent(c.preparer.Quote(s.Name))
	return nil
}

// CreateIndex is accepted and rendered as nothing since Databend has no
// secondary indexes of this kind.
type CreateIndex struct {
	Name    string
	Table   *Table
	Columns []string
}

func (*CreateIndex) ddl() {}

func (*CreateIndex) compile(*compiler) error {
	return nil
}

// DropIndex is accepted and rendered as nothing.
type DropIndex struct {
	Name string
}

func (*DropIndex) ddl() {}

func (*DropIndex) compile(*compiler) error {
	return nil
}
