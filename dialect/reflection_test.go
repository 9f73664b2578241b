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

package dialect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	databend "github.com/databendlabs/databend-sqlkit-go"
	"github.com/databendlabs/databend-sqlkit-go/clientmock"
	"github.com/databendlabs/databend-sqlkit-go/dialect"
)

const (
	newVersion = "DatabendQuery v1.2.636-f2f3c1f(rust-1.78.0-nightly-2024-04-15T08:00:00Z)"
	oldVersion = "DatabendQuery v1.2.410-nightly-7d1c4a2(rust-1.75.0-nightly-2023-12-24T00:00:00Z)"
)

func column(name string, values ...string) clientmock.Response {
	rows := make([][]any, 0, len(values))
	for _, v := range values {
		rows = append(rows, []any{v})
	}
	return clientmock.Response{Fields: []*databend.Field{{Name: name, DataType: "String"}}, Rows: rows}
}

func inspector(t *testing.T, mock *clientmock.Mock) *dialect.Inspector {
	t.Helper()
	conn, err := databend.Connect(&databend.Config{Host: "localhost"}, databend.WithClient(mock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return dialect.NewInspector(conn)
}

func TestParseVersion(t *testing.T) {
	v, err := dialect.ParseVersion(oldVersion)
	require.NoError(t, err)
	require.Equal(t, dialect.Version{Major: 1, Minor: 2, Patch: 410}, v)
	require.Equal(t, "1.2.410", v.String())

	v, err = dialect.ParseVersion(newVersion)
	require.NoError(t, err)
	require.Equal(t, dialect.Version{Major: 1, Minor: 2, Patch: 636}, v)

	_, err = dialect.ParseVersion("8.0.26-mysql")
	require.Error(t, err)

	base := dialect.Version{Major: 1, Minor: 2, Patch: 410}
	require.True(t, base.AtMost(base))
	require.True(t, dialect.Version{Major: 1, Minor: 1, Patch: 999}.AtMost(base))
	require.False(t, dialect.Version{Major: 1, Minor: 2, Patch: 411}.AtMost(base))
	require.False(t, dialect.Version{Major: 2}.AtMost(base))
}

func TestInspectorCachesDefaultSchemaAndVersion(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().
		On("currentDatabase()", column("currentDatabase()", "default")).
		On("VERSION()", column("version()", newVersion)).
		On("information_schema.tables", column("table_name", "t1", "t2"))
	in := inspector(t, mock)

	schema, err := in.DefaultSchemaName(ctx)
	require.NoError(t, err)
	require.Equal(t, "default", schema)

	for range 2 {
		names, err := in.TableNames(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"t1", "t2"}, names)
	}
	require.Equal(t, []string{
		"SELECT currentDatabase()",
		"SELECT VERSION()",
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'default'",
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'default'",
	}, mock.Queries())
}

func TestInspectorTableAndViewNames(t *testing.T) {
	ctx := context.Background()

	mock := clientmock.New().
		On("VERSION()", column("version()", newVersion)).
		On("information_schema.views", column("table_name", "v1")).
		On("information_schema.tables", column("table_name", "t1"))
	in := inspector(t, mock)

	names, err := in.TableNames(ctx, "analytics")
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, names)
	require.Equal(t, "SELECT table_name FROM information_schema.tables WHERE table_schema = 'analytics'", mock.LastQuery())

	names, err = in.ViewNames(ctx, "analytics")
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, names)
	require.Equal(t, "SELECT table_name FROM information_schema.views WHERE table_schema = 'analytics'", mock.LastQuery())
}

func TestInspectorNamesOnOldServer(t *testing.T) {
	ctx := context.Background()

	mock := clientmock.New().
		On("VERSION()", column("version()", oldVersion)).
		On("engine LIKE '%VIEW%'", column("table_name", "v1")).
		On("engine NOT LIKE '%VIEW%'", column("table_name", "t1"))
	in := inspector(t, mock)

	names, err := in.TableNames(ctx, "analytics")
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, names)
	require.Equal(t,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'analytics' AND engine NOT LIKE '%VIEW%'",
		mock.LastQuery())

	names, err = in.ViewNames(ctx, "analytics")
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, names)
	require.Equal(t,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'analytics' AND engine LIKE '%VIEW%'",
		mock.LastQuery())
}

func TestInspectorSchemaNamesAndHasTable(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().
		On("SHOW DATABASES", column("databases_in_default", "default", "analytics")).
		On(`EXISTS TABLE "analytics"."events"`, clientmock.Response{
			Fields: []*databend.Field{{Name: "result", DataType: "Boolean"}},
			Rows:   [][]any{{"true"}},
		}).
		On("EXISTS TABLE", clientmock.Response{
			Fields: []*databend.Field{{Name: "result", DataType: "Boolean"}},
			Rows:   [][]any{{"false"}},
		})
	in := inspector(t, mock)

	schemas, err := in.SchemaNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"default", "analytics"}, schemas)

	ok, err := in.HasTable(ctx, "events", "analytics")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = in.HasTable(ctx, "Select", "analytics")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, `EXISTS TABLE "analytics"."Select"`, mock.LastQuery())
}

func TestInspectorColumns(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().
		On("table_name = 'events'", clientmock.Response{
			Fields: []*databend.Field{
				{Name: "column_name", DataType: "String"},
				{Name: "column_type", DataType: "String"},
				{Name: "is_nullable", DataType: "String"},
				{Name: "column_comment", DataType: "String"},
			},
			Rows: [][]any{
				{"id", "INT", "NO", ""},
				{"name", "Nullable(VARCHAR)", "YES", "display name"},
				{"price", "DECIMAL(10, 2)", "NO", ""},
			},
		}).
		On("information_schema.columns", clientmock.Response{
			Fields: []*databend.Field{{Name: "column_name", DataType: "String"}},
		}).
		On("EXISTS TABLE", clientmock.Response{
			Fields: []*databend.Field{{Name: "result", DataType: "Boolean"}},
			Rows:   [][]any{{"false"}},
		})
	in := inspector(t, mock)

	columns, err := in.Columns(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Equal(t,
		"SELECT column_name, column_type, is_nullable, column_comment FROM information_schema.columns"+
			" WHERE table_name = 'events' AND table_schema = 'analytics'",
		mock.LastQuery())
	require.Equal(t, []dialect.ColumnInfo{
		{Name: "id", Type: dialect.Type{Kind: dialect.KindInteger}, RawType: "INT"},
		{Name: "name", Type: dialect.Type{Kind: dialect.KindVarchar}, RawType: "Nullable(VARCHAR)", Nullable: true, Comment: "display name"},
		{Name: "price", Type: dialect.Type{Kind: dialect.KindDecimal, Precision: 10, Scale: 2}, RawType: "DECIMAL(10, 2)"},
	}, columns)

	_, err = in.Columns(ctx, "missing", "analytics")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)
	require.Equal(t, `EXISTS TABLE "analytics"."missing"`, mock.LastQuery())
}

func TestInspectorViewDefinition(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().
		On("VERSION()", column("version()", newVersion)).
		On("information_schema.views", column("table_name", "v1", "broken")).
		On(`SHOW CREATE TABLE "analytics"."broken"`, clientmock.Response{
			Err: errors.New("code: 1025, Text: Unknown table 'broken'"),
		}).
		On("SHOW CREATE TABLE", clientmock.Response{
			Fields: []*databend.Field{
				{Name: "Table", DataType: "String"},
				{Name: "Create Table", DataType: "String"},
			},
			Rows: [][]any{{"v1", "CREATE VIEW `analytics`.`v1` AS SELECT 1"}},
		})
	in := inspector(t, mock)

	def, err := in.ViewDefinition(ctx, "v1", "analytics")
	require.NoError(t, err)
	require.Equal(t, "CREATE VIEW `analytics`.`v1` AS SELECT 1", def)
	require.Equal(t, `SHOW CREATE TABLE "analytics"."v1"`, mock.LastQuery())

	_, err = in.ViewDefinition(ctx, "v2", "analytics")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)

	_, err = in.ViewDefinition(ctx, "broken", "analytics")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)
	var dbErr *databend.Error
	require.ErrorAs(t, err, &dbErr)
}

func TestInspectorTableOptionsAndComment(t *testing.T) {
	ctx := context.Background()
	options := []*databend.Field{
		{Name: "engine_full", DataType: "String"},
		{Name: "cluster_by", DataType: "String"},
		{Name: "is_transient", DataType: "Boolean"},
	}
	mock := clientmock.New().
		On("name = 'missing'", clientmock.Response{Fields: options}).
		On("engine_full", clientmock.Response{
			Fields: options,
			Rows:   [][]any{{"FUSE", "(id, name)", "true"}},
		}).
		On("SELECT comment", column("comment", "raw events"))
	in := inspector(t, mock)

	opts, err := in.TableOptions(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Equal(t, &dialect.TableOptions{Engine: "FUSE", ClusterBy: "id, name", Transient: true}, opts)
	require.Equal(t,
		"SELECT engine_full, cluster_by, is_transient FROM system.tables WHERE database = 'analytics' AND name = 'events'",
		mock.LastQuery())

	_, err = in.TableOptions(ctx, "missing", "analytics")
	require.ErrorIs(t, err, dialect.ErrNoSuchTable)

	comment, err := in.TableComment(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Equal(t, "raw events", comment)

	pks, err := in.PrimaryKeys(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Empty(t, pks)
	fks, err := in.ForeignKeys(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Empty(t, fks)
	indexes, err := in.Indexes(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Empty(t, indexes)
}

func TestInspectorDriverTypedValues(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().
		On(`EXISTS TABLE "analytics"."events"`, clientmock.Response{
			Fields: []*databend.Field{{Name: "result", DataType: "UInt8"}},
			Rows:   [][]any{{uint8(1)}},
		}).
		On("EXISTS TABLE", clientmock.Response{
			Fields: []*databend.Field{{Name: "result", DataType: "UInt8"}},
			Rows:   [][]any{{uint8(0)}},
		}).
		On("name = 'short'", clientmock.Response{
			Fields: []*databend.Field{
				{Name: "engine_full", DataType: "String"},
				{Name: "cluster_by", DataType: "String"},
			},
			Rows: [][]any{{"FUSE", ""}},
		}).
		On("engine_full", clientmock.Response{
			Fields: []*databend.Field{
				{Name: "engine_full", DataType: "String"},
				{Name: "cluster_by", DataType: "Nullable(String)"},
				{Name: "is_transient", DataType: "Int8"},
			},
			Rows: [][]any{{"FUSE", nil, int8(1)}},
		})
	in := inspector(t, mock)

	ok, err := in.HasTable(ctx, "events", "analytics")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = in.HasTable(ctx, "gone", "analytics")
	require.NoError(t, err)
	require.False(t, ok)

	opts, err := in.TableOptions(ctx, "events", "analytics")
	require.NoError(t, err)
	require.Equal(t, &dialect.TableOptions{Engine: "FUSE", Transient: true}, opts)

	_, err = in.TableOptions(ctx, "short", "analytics")
	require.ErrorContains(t, err, "expected at least 3 columns, got 2")
}
