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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/databendlabs/databend-sqlkit-go/dialect"
)

func TestColumnType(t *testing.T) {
	for name, want := range map[string]dialect.TypeKind{
		"bigint":    dialect.KindBigInt,
		"int":       dialect.KindInteger,
		"smallint":  dialect.KindSmallInt,
		"tinyint":   dialect.KindSmallInt,
		"Int64":     dialect.KindBigInt,
		"Int32":     dialect.KindInteger,
		"Int16":     dialect.KindSmallInt,
		"Int8":      dialect.KindSmallInt,
		"UInt64":    dialect.KindBigInt,
		"UInt32":    dialect.KindInteger,
		"UInt16":    dialect.KindSmallInt,
		"UInt8":     dialect.KindSmallInt,
		"numeric":   dialect.KindNumeric,
		"Date":      dialect.KindDate,
		"DateTime":  dialect.KindDateTime,
		"Timestamp": dialect.KindDateTime,
		"Float":     dialect.KindFloat,
		"Double":    dialect.KindFloat,
		"Float32":   dialect.KindFloat,
		"Float64":   dialect.KindFloat,
		"String":    dialect.KindVarchar,
		"VARCHAR":   dialect.KindVarchar,
		"JSON":      dialect.KindJSON,
		"Variant":   dialect.KindJSON,
		"Boolean":   dialect.KindBoolean,
		"Binary":    dialect.KindBinary,
		"Bitmap":    dialect.KindBitmap,
		"Geometry":  dialect.KindGeometry,
		"Geography": dialect.KindGeography,
		"Interval":  dialect.KindInterval,
	} {
		typ, err := dialect.ColumnType(name)
		require.NoError(t, err, name)
		require.Equal(t, want, typ.Kind, name)

		nullable, err := dialect.ColumnType("Nullable(" + name + ")")
		require.NoError(t, err, name)
		require.Equal(t, typ, nullable, name)
	}
}

func TestColumnTypeParameters(t *testing.T) {
	typ, err := dialect.ColumnType("Nullable(Decimal(18, 5))")
	require.NoError(t, err)
	require.Equal(t, dialect.DecimalOf(18, 5), typ)

	typ, err = dialect.ColumnType("Array(Nullable(Int32))")
	require.NoError(t, err)
	require.Equal(t, dialect.ArrayOf(dialect.Type{Kind: dialect.KindInteger}), typ)

	typ, err = dialect.ColumnType("Map(String, Array(Int64))")
	require.NoError(t, err)
	require.Equal(t, dialect.MapOf(
		dialect.Type{Kind: dialect.KindVarchar},
		dialect.ArrayOf(dialect.Type{Kind: dialect.KindBigInt}),
	), typ)

	typ, err = dialect.ColumnType("VARCHAR(20)")
	require.NoError(t, err)
	require.Equal(t, dialect.Type{Kind: dialect.KindVarchar, Length: 20}, typ)
}

func TestColumnTypeUnknown(t *testing.T) {
	for _, name := range []string{"Tuple(Int32, String)", "Nullable(Whatever)", "", "Array(Nope)"} {
		_, err := dialect.ColumnType(name)
		require.ErrorIs(t, err, dialect.ErrUnknownType, name)
	}
}

func TestCompileType(t *testing.T) {
	for _, tc := range []struct {
		typ  dialect.Type
		want string
	}{
		{dialect.Type{Kind: dialect.KindNumeric}, "DECIMAL(38, 10)"},
		{dialect.Type{Kind: dialect.KindNumeric, Precision: 10, Scale: 2}, "DECIMAL(10, 2)"},
		{dialect.DecimalOf(18, 5), "DECIMAL(18, 5)"},
		{dialect.Type{Kind: dialect.KindNVarchar}, "VARCHAR"},
		{dialect.Type{Kind: dialect.KindVarchar, Length: 50}, "VARCHAR(50)"},
		{dialect.Type{Kind: dialect.KindJSON}, "JSON"},
		{dialect.ArrayOf(dialect.Type{Kind: dialect.KindInteger}), "Array(INTEGER)"},
		{dialect.MapOf(dialect.Type{Kind: dialect.KindVarchar}, dialect.Type{Kind: dialect.KindBigInt}), "Map(VARCHAR, BIGINT)"},
		{dialect.Type{Kind: dialect.KindTinyInt}, "TINYINT"},
		{dialect.Type{Kind: dialect.KindDouble}, "DOUBLE"},
		{dialect.Type{Kind: dialect.KindInterval}, "INTERVAL"},
		{dialect.Type{Kind: dialect.KindBitmap}, "BITMAP"},
		{dialect.Type{Kind: dialect.KindGeometry}, "GEOMETRY"},
		{dialect.Type{Kind: dialect.KindGeography}, "GEOGRAPHY"},
		{dialect.Type{Kind: dialect.KindDateTime}, "DATETIME"},
	} {
		got, err := dialect.CompileType(tc.typ)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := dialect.CompileType(dialect.Type{Kind: dialect.KindArray})
	require.Error(t, err)
	_, err = dialect.CompileType(dialect.Type{})
	require.ErrorIs(t, err, dialect.ErrUnknownType)
}
