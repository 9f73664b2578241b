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
	"context"
	"fmt"

	databend "github.com/databendlabs/databend-sqlkit-go"
)

// Dialect renders statements in Databend's SQL dialect and describes the
// features the server supports.
type Dialect struct {
	Name                string
	Driver              string
	MaxIdentifierLength int
	DefaultParamStyle   string

	SupportsCast              bool
	SupportsNativeBoolean     bool
	SupportsNativeDecimal     bool
	SupportsMultivaluesInsert bool
	SupportsAlter             bool
	SupportsComments          bool
	SupportsEmptyInsert       bool
	SupportsSaneRowcount      bool
	SupportsIsDistinctFrom    bool

	Preparer *IdentifierPreparer
}

// New creates the Databend dialect.
func New() *Dialect {
	return &Dialect{
		Name:                "databend",
		Driver:              "databend",
		MaxIdentifierLength: 127,
		DefaultParamStyle:   "pyformat",

		SupportsCast:              true,
		SupportsNativeBoolean:     true,
		SupportsNativeDecimal:     true,
		SupportsMultivaluesInsert: true,
		SupportsAlter:             true,

		Preparer: NewIdentifierPreparer(),
	}
}

// Compile renders e.
func (d *Dialect) Compile(e Expr, opts ...CompileOption) (*Compiled, error) {
	c := newCompiler(d, opts...)
	if err := e.compile(c); err != nil {
		return nil, err
	}
	return c.result(), nil
}

// CompileDDL renders a DDL statement. Values in DDL are always inlined.
func (d *Dialect) CompileDDL(e DDL) (string, error) {
	compiled, err := d.Compile(e, LiteralBinds())
	if err != nil {
		return "", err
	}
	return compiled.SQL, nil
}

// Execute compiles e and executes it on cursor.
func (d *Dialect) Execute(ctx context.Context, cursor *databend.Cursor, e Expr) error {
	compiled, err := d.Compile(e)
	if err != nil {
		return err
	}
	return cursor.Execute(ctx, compiled.SQL, compiled.Params)
}

// checkIdentifier rejects names longer than the server accepts.
func (d *Dialect) checkIdentifier(name string) error {
	if len(name) > d.MaxIdentifierLength {
		return fmt.Errorf("identifier %q exceeds the maximum length of %d characters", name, d.MaxIdentifierLength)
	}
	return nil
}
