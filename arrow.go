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
	"io"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/shopspring/decimal"
)

// arrowType maps a server type name to the Arrow type its values are
// exported as. Types without a lossless primitive counterpart are exported
// as strings.
func arrowType(dataType string) arrow.DataType {
	switch BaseType(dataType) {
	case "int8", "int16", "int32", "int64", "tinyint", "smallint", "int", "integer", "bigint":
		return arrow.PrimitiveTypes.Int64
	case "uint8", "uint16", "uint32", "uint64":
		return arrow.PrimitiveTypes.Uint64
	case "float", "float32", "float64", "double":
		return arrow.PrimitiveTypes.Float64
	case "boolean", "bool":
		return arrow.FixedWidthTypes.Boolean
	case "date":
		return arrow.FixedWidthTypes.Date32
	case "timestamp", "datetime":
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

// ArrowSchema returns the Arrow schema of the last statement's result.
func (c *Cursor) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(c.fields))
	for _, f := range c.fields {
		fields = append(fields, arrow.Field{
			Name:     f.Name,
			Type:     arrowType(f.DataType),
			Nullable: f.Nullable(),
		})
	}
	return arrow.NewSchema(fields, nil)
}

// FetchArrow fetches up to n rows and returns them as an Arrow record batch.
//
// It returns io.EOF once the rows are exhausted. The caller owns the record
// and must Release it.
func (c *Cursor) FetchArrow(n int) (arrow.Record, error) {
	rows, err := c.FetchMany(n)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}

	b := array.NewRecordBuilder(memory.DefaultAllocator, c.ArrowSchema())
	defer b.Release()

	for _, row := range rows {
		for i, v := range row {
			if err := appendArrowValue(b.Field(i), v); err != nil {
				return nil, fmt.Errorf("column %s: %w", c.fields[i].Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendArrowValue(b array.Builder, v Value) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch fb := b.(type) {
	case *array.Int64Builder:
		switch n := widenNumber(v).(type) {
		case int64:
			fb.Append(n)
		case uint64:
			fb.Append(int64(n))
		default:
			return fmt.Errorf("expected integer, got %T", v)
		}
	case *array.Uint64Builder:
		switch n := widenNumber(v).(type) {
		case uint64:
			fb.Append(n)
		case int64:
			if n < 0 {
				return fmt.Errorf("expected unsigned integer, got %d", n)
			}
			fb.Append(uint64(n))
		default:
			return fmt.Errorf("expected unsigned integer, got %T", v)
		}
	case *array.Float64Builder:
		f, ok := widenNumber(v).(float64)
		if !ok {
			return fmt.Errorf("expected float, got %T", v)
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
		fb.Append(bv)
	case *array.Date32Builder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected date, got %T", v)
		}
		fb.Append(arrow.Date32FromTime(t))
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected timestamp, got %T", v)
		}
		fb.Append(arrow.Timestamp(t.UnixMicro()))
	case *array.StringBuilder:
		switch s := v.(type) {
		case string:
			fb.Append(s)
		case decimal.Decimal:
			fb.Append(s.String())
		default:
			fb.Append(fmt.Sprint(v))
		}
	default:
		return fmt.Errorf("unsupported arrow builder %T", b)
	}
	return nil
}
