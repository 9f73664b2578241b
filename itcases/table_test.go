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

package itcases

import (
	"context"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/databendlabs/databend-sqlkit-go/dialect"
)

func TestTableReflection(t *testing.T) {
	conn := NewConnection(t)
	defer func() { require.NoError(t, conn.Close()) }()

	ctx := context.Background()
	d := dialect.New()
	in := dialect.NewInspector(conn)

	schema, err := in.DefaultSchemaName(ctx)
	require.NoError(t, err)

	tbl := dialect.T(RandomName(t))
	ddl, err := d.CompileDDL(&dialect.CreateTable{
		Table: tbl,
		Columns: []dialect.ColumnDef{
			{Name: "id", Type: dialect.Type{Kind: dialect.KindInteger}, NotNull: true},
			{Name: "Name", Type: dialect.Type{Kind: dialect.KindVarchar}},
			{Name: "price", Type: dialect.DecimalOf(18, 5)},
			{Name: "tags", Type: dialect.ArrayOf(dialect.Type{Kind: dialect.KindVarchar})},
			{Name: "attrs", Type: dialect.MapOf(dialect.Type{Kind: dialect.KindVarchar}, dialect.Type{Kind: dialect.KindBigInt})},
			{Name: "doc", Type: dialect.Type{Kind: dialect.KindJSON}},
			{Name: "created", Type: dialect.Type{Kind: dialect.KindDateTime}},
		},
		Transient: true,
		ClusterBy: []dialect.Expr{dialect.Col("id"), dialect.Col("Name")},
	})
	require.NoError(t, err)
	require.NoError(t, conn.Execute(ctx, ddl, nil))
	defer func() {
		drop, err := d.CompileDDL(&dialect.DropTable{Table: tbl})
		require.NoError(t, err)
		require.NoError(t, conn.Execute(ctx, drop, nil))
	}()

	ok, err := in.HasTable(ctx, tbl.Name, "")
	require.NoError(t, err)
	require.True(t, ok)

	tables, err := in.TableNames(ctx, schema)
	require.NoError(t, err)
	require.Contains(t, tables, tbl.Name)

	columns, err := in.Columns(ctx, tbl.Name, "")
	require.NoError(t, err)
	snaps.MatchSnapshot(t, columns)

	options, err := in.TableOptions(ctx, tbl.Name, "")
	require.NoError(t, err)
	require.True(t, options.Transient)
	snaps.MatchSnapshot(t, options.ClusterBy)

	_, err = in.Columns(ctx, RandomName(t), "")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)
}

func TestViewReflection(t *testing.T) {
	conn := NewConnection(t)
	defer func() { require.NoError(t, conn.Close()) }()

	ctx := context.Background()
	in := dialect.NewInspector(conn)

	view := RandomName(t)
	require.NoError(t, conn.Execute(ctx, fmt.Sprintf("CREATE VIEW %s AS SELECT number FROM numbers(3)", view), nil))
	defer func() {
		require.NoError(t, conn.Execute(ctx, "DROP VIEW "+view, nil))
	}()

	views, err := in.ViewNames(ctx, "")
	require.NoError(t, err)
	require.Contains(t, views, view)

	tables, err := in.TableNames(ctx, "")
	require.NoError(t, err)
	require.NotContains(t, tables, view)

	definition, err := in.ViewDefinition(ctx, view, "")
	require.NoError(t, err)
	require.Contains(t, definition, "numbers(3)")

	_, err = in.ViewDefinition(ctx, RandomName(t), "")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)
}
