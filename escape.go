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

// Escape renders v as a SQL literal.
func Escape(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return EscapeString(val.Format("2006-01-02 15:04:05"))
	case []byte:
		return EscapeString(string(val))
	case string:
		return EscapeString(val)
	case fmt.Stringer:
		return EscapeString(val.String())
	default:
		return EscapeString(fmt.Sprint(val))
	}
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `$$`)

// EscapeString quotes s as a string literal.
func EscapeString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

// FormatQuery substitutes pyformat parameters into operation.
//
// params is either a []any consumed by %s placeholders in order, or a
// map[string]any looked up by %(name)s placeholders. A nil params leaves
// the operation untouched. %% renders a literal percent sign.
func FormatQuery(operation string, params any) (string, error) {
	if params == nil {
		return operation, nil
	}

	var (
		positional []any
		named      map[string]any
	)
	switch p := params.(type) {
	case []any:
		positional = p
	case map[string]any:
		named = p
	default:
		return "", fmt.Errorf("unsupported param format: %T", params)
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(operation); i++ {
		c := operation[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(operation) {
			return "", fmt.Errorf("incomplete format at offset %d", i)
		}
		switch operation[i+1] {
		case '%':
			b.WriteByte('%')
			i++
		case 's':
			if named != nil {
				return "", fmt.Errorf("positional placeholder at offset %d with named parameters", i)
			}
			if next >= len(positional) {
				return "", fmt.Errorf("not enough parameters: have %d", len(positional))
			}
			b.WriteString(Escape(positional[next]))
			next++
			i++
		case '(':
			end := strings.IndexByte(operation[i+2:], ')')
			if end < 0 || i+2+end+1 >= len(operation) || operation[i+2+end+1] != 's' {
				return "", fmt.Errorf("malformed named placeholder at offset %d", i)
			}
			name := operation[i+2 : i+2+end]
			if named == nil {
				return "", fmt.Errorf("named placeholder %q with positional parameters", name)
			}
			v, ok := named[name]
			if !ok {
				return "", fmt.Errorf("missing parameter %q", name)
			}
			b.WriteString(Escape(v))
			i += 2 + end + 1
		default:
			return "", fmt.Errorf("unsupported format character %q at offset %d", operation[i+1], i)
		}
	}
	if positional != nil && next != len(positional) {
		return "", fmt.Errorf("not all parameters converted: used %d of %d", next, len(positional))
	}
	return b.String(), nil
}
