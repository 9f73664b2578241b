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

	databend "github.com/databendlabs/databend-sqlkit-go"
)

// ErrUnknownType is returned for a server type name without a mapping.
var ErrUnknownType = errors.New("unknown column type")

// TypeKind identifies a SQL type.
type TypeKind int

const (
	KindBigInt TypeKind = iota + 1
	KindInteger
	KindSmallInt
	KindTinyInt
	KindNumeric
	KindDecimal
	KindDate
	KindDateTime
	KindFloat
	KindDouble
	KindVarchar
	KindNVarchar
	KindArray
	KindMap
	KindJSON
	KindBoolean
	KindBinary
	KindBitmap
	KindGeometry
	KindGeography
	KindInterval
)

var kindNames = map[TypeKind]string{
	KindBigInt:    "BIGINT",
	KindInteger:   "INTEGER",
	KindSmallInt:  "SMALLINT",
	KindTinyInt:   "TINYINT",
	KindNumeric:   "NUMERIC",
	KindDecimal:   "DECIMAL",
	KindDate:      "DATE",
	KindDateTime:  "DATETIME",
	KindFloat:     "FLOAT",
	KindDouble:    "DOUBLE",
	KindVarchar:   "VARCHAR",
	KindNVarchar:  "NVARCHAR",
	KindArray:     "ARRAY",
	KindMap:       "MAP",
	KindJSON:      "JSON",
	KindBoolean:   "BOOLEAN",
	KindBinary:    "BINARY",
	KindBitmap:    "BITMAP",
	KindGeometry:  "GEOMETRY",
	KindGeography: "GEOGRAPHY",
	KindInterval:  "INTERVAL",
}

func (k TypeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// Type is a SQL column type.
type Type struct {
	Kind TypeKind
	// Precision and Scale apply to NUMERIC and DECIMAL. A zero Precision
	// means unspecified.
	Precision int
	Scale     int
	// Length applies to VARCHAR. Zero means unspecified.
	Length int
	// Item is the element type of an ARRAY.
	Item *Type
	// Key and Value are the entry types of a MAP.
	Key   *Type
	Value *Type
}

// ischemaNames maps lowercase server type names to type kinds.
var ischemaNames = map[string]TypeKind{
	"bigint":    KindBigInt,
	"int":       KindInteger,
	"smallint":  KindSmallInt,
	"tinyint":   KindSmallInt,
	"int64":     KindBigInt,
	"int32":     KindInteger,
	"int16":     KindSmallInt,
	"int8":      KindSmallInt,
	"uint64":    KindBigInt,
	"uint32":    KindInteger,
	"uint16":    KindSmallInt,
	"uint8":     KindSmallInt,
	"numeric":   KindNumeric,
	"decimal":   KindDecimal,
	"date":      KindDate,
	"datetime":  KindDateTime,
	"timestamp": KindDateTime,
	"float":     KindFloat,
	"double":    KindFloat,
	"float64":   KindFloat,
	"float32":   KindFloat,
	"string":    KindVarchar,
	"varchar":   KindVarchar,
	"array":     KindArray,
	"map":       KindMap,
	"json":      KindJSON,
	"variant":   KindJSON,
	"boolean":   KindBoolean,
	"binary":    KindBinary,
	"bitmap":    KindBitmap,
	"geometry":  KindGeometry,
	"geography": KindGeography,
	"interval":  KindInterval,
}

// ColumnType maps a server type name, such as "Nullable(Decimal(18, 5))",
// to a Type. Nullable wrappers are ignored.
func ColumnType(name string) (Type, error) {
	inner := stripNullable(name)
	base := databend.BaseType(inner)
	kind, ok := ischemaNames[base]
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	typ := Type{Kind: kind}
	args := typeArgs(inner)
	switch kind {
	case KindDecimal, KindNumeric:
		if len(args) == 2 {
			p, err1 := strconv.Atoi(args[0])
			s, err2 := strconv.Atoi(args[1])
			if err := errors.Join(err1, err2); err != nil {
				return Type{}, fmt.Errorf("invalid decimal type %q: %w", name, err)
			}
			typ.Precision, typ.Scale = p, s
		}
	case KindVarchar:
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return Type{}, fmt.Errorf("invalid varchar type %q: %w", name, err)
			}
			typ.Length = n
		}
	case KindArray:
		if len(args) == 1 {
			item, err := ColumnType(args[0])
			if err != nil {
				return Type{}, err
			}
			typ.Item = &item
		}
	case KindMap:
		if len(args) == 2 {
			k, err := ColumnType(args[0])
			if err != nil {
				return Type{}, err
			}
			v, err := ColumnType(args[1])
			if err != nil {
				return Type{}, err
			}
			typ.Key, typ.Value = &k, &v
		}
	default:
	}
	return typ, nil
}

func stripNullable(name string) string {
	s := strings.TrimSpace(name)
	for len(s) > len("nullable()") && strings.EqualFold(s[:len("nullable(")], "nullable(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[len("nullable(") : len(s)-1])
	}
	return s
}

// typeArgs splits the top-level parameters of a type name:
// "Map(String, Array(Int32))" yields "String" and "Array(Int32)".
func typeArgs(name string) []string {
	open := strings.IndexByte(name, '(')
	if open < 0 || !strings.HasSuffix(name, ")") {
		return nil
	}
	body := name[open+1 : len(name)-1]

	var (
		args  []string
		depth int
		start int
	)
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(body[start:]); last != "" {
		args = append(args, last)
	}
	return args
}

// CompileType renders a type for DDL and CAST.
func CompileType(t Type) (string, error) {
	switch t.Kind {
	case KindNumeric:
		if t.Precision == 0 {
			return "DECIMAL(38, 10)", nil
		}
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale), nil
	case KindDecimal:
		if t.Precision == 0 {
			return "DECIMAL", nil
		}
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale), nil
	case KindVarchar, KindNVarchar:
		if t.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Length), nil
		}
		return "VARCHAR", nil
	case KindArray:
		if t.Item == nil {
			return "", errors.New("array type requires an item type")
		}
		item, err := CompileType(*t.Item)
		if err != nil {
			return "", err
		}
		return "Array(" + item + ")", nil
	case KindMap:
		if t.Key == nil || t.Value == nil {
			return "", errors.New("map type requires key and value types")
		}
		k, err := CompileType(*t.Key)
		if err != nil {
			return "", err
		}
		v, err := CompileType(*t.Value)
		if err != nil {
			return "", err
		}
		return "Map(" + k + ", " + v + ")", nil
	default:
		if s, ok := kindNames[t.Kind]; ok {
			return s, nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnknownType, t.Kind)
	}
}

// ArrayOf is an ARRAY of item.
func ArrayOf(item Type) Type {
	return Type{Kind: KindArray, Item: &item}
}

// MapOf is a MAP from key to value.
func MapOf(key, value Type) Type {
	return Type{Kind: KindMap, Key: &key, Value: &value}
}

// DecimalOf is a DECIMAL with the given precision and scale.
func DecimalOf(precision, scale int) Type {
	return Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}
