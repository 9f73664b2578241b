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

package databend

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value stores the contents of a single cell from a Databend statement result.
type Value any

// Field describes a single column as reported by the server.
type Field struct {
	// Name is the column name.
	Name string
	// DataType is the server type name, e.g. "Nullable(Decimal(18, 5))".
	DataType string
}

// Nullable reports whether the column type is wrapped in Nullable(...).
func (f *Field) Nullable() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(f.DataType)), "nullable(")
}

// Column is one entry of a cursor description.
//
// Only Name and TypeCode are reported by the server; the size, precision
// and scale entries are always nil and NullOK is always true.
type Column struct {
	Name         string
	TypeCode     string
	DisplaySize  *int
	InternalSize *int
	Precision    *int
	Scale        *int
	NullOK       bool
}

// BaseType strips Nullable(...) wrappers and type parameters from a server
// type name and lowercases the rest: "Nullable(Decimal(18, 5))" is "decimal".
func BaseType(dataType string) string {
	s := strings.TrimSpace(dataType)
	for {
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "nullable(") && strings.HasSuffix(s, ")") {
			s = strings.TrimSpace(s[len("nullable(") : len(s)-1])
			continue
		}
		break
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05.999999999"
)

// convertValue maps a wire value into a typed Go value according to the
// column's server type. Values the driver already decoded pass through.
func convertValue(v any, dataType string) (Value, error) {
	var s string
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = raw
	case []byte:
		s = string(raw)
	default:
		return widenNumber(raw), nil
	}

	typ := BaseType(dataType)
	if s == "NULL" && typ != "string" && typ != "varchar" {
		return nil, nil
	}

	switch typ {
	case "int8", "int16", "int32", "int64", "tinyint", "smallint", "int", "integer", "bigint":
		return strconv.ParseInt(s, 10, 64)
	case "uint8", "uint16", "uint32", "uint64":
		return strconv.ParseUint(s, 10, 64)
	case "float", "float32", "float64", "double":
		return strconv.ParseFloat(s, 64)
	case "decimal", "numeric":
		return decimal.NewFromString(s)
	case "boolean", "bool":
		return strconv.ParseBool(s)
	case "date":
		return time.Parse(dateLayout, s)
	case "timestamp", "datetime":
		t, err := time.Parse(dateTimeLayout, s)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as a datetime value: %w", s, err)
		}
		return t, nil
	case "bitmap":
		return parseBitmap(s)
	default:
		return s, nil
	}
}

// widenNumber maps the width-specific numbers the driver decodes to int64,
// uint64 and float64. Other values are returned unchanged.
func widenNumber(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// Int64Value returns v as an int64 when it holds an integer of any width,
// a decimal or a decimal string.
func Int64Value(v Value) (int64, bool) {
	switch n := widenNumber(v).(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case decimal.Decimal:
		return n.IntPart(), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// parseBitmap decodes a bitmap rendered as comma-separated integers.
func parseBitmap(s string) ([]uint64, error) {
	values := make([]uint64, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, n)
	}
	return values, nil
}

// convertRow maps every cell of row according to fields.
func convertRow(row []any, fields []*Field) ([]Value, error) {
	if len(row) != len(fields) {
		return nil, fmt.Errorf("schema length %d does not match record length %d", len(fields), len(row))
	}
	values := make([]Value, 0, len(row))
	for i, v := range row {
		val, err := convertValue(v, fields[i].DataType)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", fields[i].Name, err)
		}
		values = append(values, val)
	}
	return values, nil
}
