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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	databend "github.com/databendlabs/databend-sqlkit-go"
	"github.com/databendlabs/databend-sqlkit-go/clientmock"
	"github.com/databendlabs/databend-sqlkit-go/dialect"
)

func compile(t *testing.T, e dialect.Expr, opts ...dialect.CompileOption) *dialect.Compiled {
	t.Helper()
	compiled, err := dialect.New().Compile(e, opts...)
	require.NoError(t, err)
	return compiled
}

func compileLiteral(t *testing.T, e dialect.Expr) string {
	t.Helper()
	return compile(t, e, dialect.LiteralBinds()).SQL
}

func TestCompileSelect(t *testing.T) {
	users := dialect.T("users")
	stmt := users.Select(users.C("id"), users.C("name")).
		Where(users.C("id").Eq(5)).
		Limit(10).
		Offset(20)

	compiled := compile(t, stmt)
	require.Equal(t, "SELECT users.id, users.name FROM users WHERE users.id = %(id_1)s LIMIT 10 OFFSET 20", compiled.SQL)
	require.Equal(t, map[string]any{"id_1": 5}, compiled.Params)

	require.Equal(t, "SELECT users.id, users.name FROM users WHERE users.id = 5 LIMIT 10 OFFSET 20", compileLiteral(t, stmt))
}

func TestCompileOffsetWithoutLimit(t *testing.T) {
	stmt := dialect.Select().From(dialect.T("t")).Offset(5)
	require.Equal(t, "SELECT * FROM t OFFSET 5", compileLiteral(t, stmt))
}

func TestCompileFunctions(t *testing.T) {
	t.Run("builtins", func(t *testing.T) {
		stmt := dialect.Select(dialect.Count(), dialect.Random(), dialect.Now(), dialect.CurrentDate())
		require.Equal(t, "SELECT count(*), rand(), now(), today()", compileLiteral(t, stmt))
	})

	t.Run("count", func(t *testing.T) {
		users := dialect.T("users")
		require.Equal(t, "SELECT count(users.id) FROM users", compileLiteral(t, users.Select(dialect.Count(users.C("id")))))
	})

	t.Run("substring", func(t *testing.T) {
		stmt := dialect.Select(dialect.Substring(dialect.Col("s"), 1, 3)).From(dialect.T("t"))
		compiled := compile(t, stmt)
		require.Equal(t, "SELECT substring(s, %(substring_1)s, %(substring_2)s) FROM t", compiled.SQL)
		require.Equal(t, "SELECT substring(s, 1, 3) FROM t", compileLiteral(t, stmt))

		stmt = dialect.Select(dialect.Substring(dialect.Col("s"), dialect.Lit(2))).From(dialect.T("t"))
		require.Equal(t, "SELECT substring(s, 2) FROM t", compileLiteral(t, stmt))
	})

	t.Run("generic", func(t *testing.T) {
		f := dialect.Func("IF", dialect.Binary(dialect.Raw("$1"), dialect.OpEq, "xyz"), "NULL", "NOTNULL")
		compiled := compile(t, dialect.Select(f))
		require.Equal(t, "SELECT IF($1 = %(param_1)s, %(IF_1)s, %(IF_2)s)", compiled.SQL)
		require.Equal(t, map[string]any{"param_1": "xyz", "IF_1": "NULL", "IF_2": "NOTNULL"}, compiled.Params)
	})
}

func TestCompileOperators(t *testing.T) {
	for _, tc := range []struct {
		expr dialect.Expr
		want string
	}{
		{dialect.Col("a").Concat(dialect.Col("b")), "concat(a, b)"},
		{dialect.Col("a").Concat("x"), "concat(a, 'x')"},
		{dialect.Col("name").Like("%foo%"), "name LIKE '%foo%'"},
		{dialect.Col("name").NotLike("foo_"), "name NOT LIKE 'foo_'"},
		{dialect.Col("n").Lt(dialect.Binary(dialect.Col("m"), dialect.OpAdd, 1)), "n < m + 1"},
		{dialect.Or(dialect.Col("a").Eq(1), dialect.And(dialect.Col("b").Eq(2), dialect.Col("c").Eq(3))), "a = 1 OR (b = 2 AND c = 3)"},
		{dialect.And(dialect.Col("a").Eq(1), dialect.Col("b").Eq(2), dialect.Col("c").Eq(true)), "a = 1 AND b = 2 AND c = TRUE"},
		{dialect.Cast(dialect.Col("id"), dialect.Type{Kind: dialect.KindVarchar}), "CAST(id AS VARCHAR)"},
		{dialect.Cast(dialect.Col("x"), dialect.Type{Kind: dialect.KindNumeric}), "CAST(x AS DECIMAL(38, 10))"},
	} {
		require.Equal(t, tc.want, compileLiteral(t, tc.expr))
	}
}

func TestCompileCastWithoutSupport(t *testing.T) {
	d := dialect.New()
	d.SupportsCast = false
	compiled, err := d.Compile(dialect.Cast(dialect.Col("id"), dialect.Type{Kind: dialect.KindVarchar}))
	require.NoError(t, err)
	require.Equal(t, "id", compiled.SQL)
}

func TestCompileLiterals(t *testing.T) {
	day := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, tc := range []struct {
		lit  *dialect.Literal
		want string
	}{
		{dialect.TypedLit(day, dialect.Type{Kind: dialect.KindDate}), "toDate('2024-01-02')"},
		{dialect.Lit(day), "toDateTime('2024-01-02 03:04:05')"},
		{dialect.TypedLit("2024-01-02", dialect.Type{Kind: dialect.KindDate}), "toDate('2024-01-02')"},
		{dialect.TypedLit("2024-01-02 03:04:05", dialect.Type{Kind: dialect.KindDateTime}), "toDateTime('2024-01-02 03:04:05')"},
		{dialect.Lit(90 * time.Minute), "to_interval('5400 seconds')"},
		{dialect.Lit(1500 * time.Millisecond), "to_interval('1.5 seconds')"},
		{dialect.Lit(nil), "NULL"},
		{dialect.Lit(false), "FALSE"},
		{dialect.Lit(2.5), "2.5"},
		{dialect.Lit(`it's`), `'it\'s'`},
	} {
		require.Equal(t, tc.want, compileLiteral(t, tc.lit))
	}

	_, err := dialect.New().Compile(dialect.Lit(struct{}{}))
	require.Error(t, err)
}

func TestCompileDistinctOnAndForUpdate(t *testing.T) {
	stmt := dialect.Select(dialect.Col("a")).From(dialect.T("t"))
	stmt.DistinctOn = []dialect.Expr{dialect.Col("a")}
	stmt.ForUpdate = true
	require.Equal(t, "SELECT DISTINCT a FROM t", compileLiteral(t, stmt))
}

func TestCompileGroupAndOrder(t *testing.T) {
	stmt := dialect.Select(dialect.Col("a"), dialect.Count()).
		From(dialect.T("t")).
		GroupBy(dialect.Col("a")).
		OrderByDesc(dialect.Col("a")).
		OrderBy(dialect.Col("b"))
	require.Equal(t, "SELECT a, count(*) FROM t GROUP BY a ORDER BY a DESC, b", compileLiteral(t, stmt))
}

func TestCompileExactParam(t *testing.T) {
	stmt := dialect.Select().From(dialect.T("t")).Where(dialect.Col("id").Eq(dialect.Param("id", 3)))
	compiled := compile(t, stmt)
	require.Equal(t, "SELECT * FROM t WHERE id = %(id)s", compiled.SQL)
	require.Equal(t, map[string]any{"id": 3}, compiled.Params)
}

func TestCompileEscapesPercent(t *testing.T) {
	stmt := dialect.Select().From(dialect.T("t")).Where(dialect.Col("s").Like(dialect.Lit("a%")))
	require.Equal(t, "SELECT * FROM t WHERE s LIKE 'a%%'", compile(t, stmt).SQL)
	require.Equal(t, "SELECT * FROM t WHERE s LIKE 'a%'", compileLiteral(t, stmt))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	mock := clientmock.New().On("FROM t", clientmock.Response{
		Fields: []*databend.Field{{Name: "id", DataType: "Int32"}},
		Rows:   [][]any{{"3"}},
	})
	conn, err := databend.Connect(&databend.Config{Host: "localhost"}, databend.WithClient(mock))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	cursor := conn.Cursor()
	stmt := dialect.Select().From(dialect.T("t")).
		Where(dialect.And(dialect.Col("id").Eq(3), dialect.Col("s").Like(dialect.Lit("a%"))))
	require.NoError(t, dialect.New().Execute(ctx, cursor, stmt))
	require.Equal(t, "SELECT * FROM t WHERE id = 3 AND s LIKE 'a%'", mock.LastQuery())

	rows, err := cursor.FetchAll()
	require.NoError(t, err)
	require.Equal(t, [][]databend.Value{{int64(3)}}, rows)

	require.NoError(t, dialect.New().Execute(ctx, cursor, dialect.Select().From(dialect.T("t"))))
	require.Equal(t, "SELECT * FROM t", mock.LastQuery())
}
