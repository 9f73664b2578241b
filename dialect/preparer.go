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
	"fmt"
	"regexp"
	"strings"
)

var reservedWords = makeSet(strings.Fields(`
	all analyse analyze and any array as asc asymmetric authorization between
	binary both case cast check collate column constraint create cross
	current_catalog current_date current_role current_schema current_time
	current_timestamp current_user default deferrable desc distinct do else end
	except false fetch for foreign freeze from full grant group having ilike in
	initially inner intersect into is isnull join leading left like limit
	localtime localtimestamp natural new not notnull null of off offset old on
	only or order outer over overlaps placing primary references returning
	right select session_user similar some symmetric table then to trailing
	true union unique user using variadic verbose when where window with
`))

func makeSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var legalCharacters = regexp.MustCompile(`^[a-z0-9_$]+$`)

// IdentifierPreparer quotes identifiers and string literals.
type IdentifierPreparer struct {
	reserved map[string]struct{}
}

// NewIdentifierPreparer creates a preparer with the Databend reserved words.
func NewIdentifierPreparer() *IdentifierPreparer {
	return &IdentifierPreparer{reserved: reservedWords}
}

// IsReserved reports whether name is a reserved word.
func (p *IdentifierPreparer) IsReserved(name string) bool {
	_, ok := p.reserved[strings.ToLower(name)]
	return ok
}

// requiresQuotes reports whether name must be quoted to be read back as-is.
func (p *IdentifierPreparer) requiresQuotes(name string) bool {
	return name == "" ||
		p.IsReserved(name) ||
		!legalCharacters.MatchString(name) ||
		(name[0] >= '0' && name[0] <= '9')
}

// Quote quotes name only when it requires quoting.
func (p *IdentifierPreparer) Quote(name string) string {
	if p.requiresQuotes(name) {
		return p.QuoteIdentifier(name)
	}
	return name
}

// QuoteIdentifier always quotes name. Embedded double quotes are doubled.
func (p *IdentifierPreparer) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// FormatTable renders a table reference, schema-qualified when it has one.
func (p *IdentifierPreparer) FormatTable(t *Table) string {
	if t.Schema != "" {
		return p.Quote(t.Schema) + "." + p.Quote(t.Name)
	}
	return p.Quote(t.Name)
}

// QuoteString renders s as a single-quoted string literal using backslash
// escapes.
func (p *IdentifierPreparer) QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range s {
		switch c {
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			if c < 0x20 {
				b.WriteString(fmt.Sprintf(`\x%02x`, c))
				break
			}
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
