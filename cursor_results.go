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
	"strings"
)

type statementKind int

const (
	kindQuery statementKind = iota
	kindInsert
	kindCopyIntoTable
	kindCopyIntoLocation
	kindMerge
)

func (k statementKind) String() string {
	switch k {
	case kindInsert:
		return "insert"
	case kindCopyIntoTable:
		return "copy_into_table"
	case kindCopyIntoLocation:
		return "copy_into_location"
	case kindMerge:
		return "merge"
	default:
		return "query"
	}
}

// classifyStatement decides how a statement is run and how its row count is
// derived, from its leading keywords.
func classifyStatement(query string) statementKind {
	words := strings.Fields(strings.TrimLeft(query, " \t\r\n("))
	if len(words) == 0 {
		return kindQuery
	}
	switch strings.ToUpper(words[0]) {
	case "INSERT", "REPLACE":
		return kindInsert
	case "MERGE":
		return kindMerge
	case "COPY":
		if len(words) < 3 || !strings.EqualFold(words[1], "INTO") {
			return kindQuery
		}
		target := words[2]
		if strings.HasPrefix(target, "@") || strings.HasPrefix(target, "'") {
			return kindCopyIntoLocation
		}
		return kindCopyIntoTable
	default:
		return kindQuery
	}
}

// CopyIntoTableResult is the per-file outcome of COPY INTO <table>.
type CopyIntoTableResult struct {
	File           string
	RowsLoaded     int64
	ErrorsSeen     int64
	FirstError     *string
	FirstErrorLine *int64
}

// CopyIntoLocationResult is the outcome of COPY INTO <location>.
type CopyIntoLocationResult struct {
	RowsUnloaded int64
	InputBytes   int64
	OutputBytes  int64
}

// MergeResult is the outcome of MERGE INTO.
type MergeResult struct {
	RowsInserted int64
	RowsUpdated  int64
	RowsDeleted  int64
}

// CopyIntoTableResults returns the per-file results of the last statement
// if it was a COPY INTO <table>, and nil otherwise.
func (c *Cursor) CopyIntoTableResults() []CopyIntoTableResult {
	if c.kind != kindCopyIntoTable || c.results == nil {
		return nil
	}
	results := make([]CopyIntoTableResult, 0, len(c.results))
	for _, row := range c.results {
		r := CopyIntoTableResult{
			File:       stringAt(row, 0),
			RowsLoaded: int64At(row, 1),
			ErrorsSeen: int64At(row, 2),
		}
		if len(row) > 3 && row[3] != nil {
			s := stringAt(row, 3)
			r.FirstError = &s
		}
		if len(row) > 4 && row[4] != nil {
			n := int64At(row, 4)
			r.FirstErrorLine = &n
		}
		results = append(results, r)
	}
	return results
}

// CopyIntoLocationResults returns the result of the last statement if it was
// a COPY INTO <location>, and nil otherwise.
func (c *Cursor) CopyIntoLocationResults() *CopyIntoLocationResult {
	if c.kind != kindCopyIntoLocation || len(c.results) == 0 {
		return nil
	}
	row := c.results[0]
	return &CopyIntoLocationResult{
		RowsUnloaded: int64At(row, 0),
		InputBytes:   int64At(row, 1),
		OutputBytes:  int64At(row, 2),
	}
}

// MergeResult returns the counters of the last statement if it was a MERGE,
// and nil otherwise. Counters of actions absent from the statement are zero.
func (c *Cursor) MergeResult() *MergeResult {
	if c.kind != kindMerge || len(c.results) == 0 {
		return nil
	}
	r := &MergeResult{}
	for i, f := range c.fields {
		name := strings.ToLower(f.Name)
		n := int64At(c.results[0], i)
		switch {
		case strings.Contains(name, "inserted"):
			r.RowsInserted = n
		case strings.Contains(name, "updated"):
			r.RowsUpdated = n
		case strings.Contains(name, "deleted"):
			r.RowsDeleted = n
		}
	}
	return r
}

func countResultRows(kind statementKind, results [][]Value) int64 {
	var total int64
	switch kind {
	case kindCopyIntoTable:
		for _, row := range results {
			total += int64At(row, 1)
		}
	case kindCopyIntoLocation:
		for _, row := range results {
			total += int64At(row, 0)
		}
	case kindMerge:
		for _, row := range results {
			for i := range row {
				total += int64At(row, i)
			}
		}
	default:
		return -1
	}
	return total
}

func int64At(row []Value, i int) int64 {
	if i >= len(row) {
		return 0
	}
	n, _ := Int64Value(row[i])
	return n
}

func stringAt(row []Value, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprint(row[i])
}

// bufferedRows replays rows that were already drained from the server.
type bufferedRows struct {
	fields []*Field
	rows   [][]any
	pos    int
}

func newBufferedRows(fields []*Field, rows [][]any) *bufferedRows {
	return &bufferedRows{fields: fields, rows: rows}
}

func (r *bufferedRows) Fields() []*Field {
	return r.fields
}

func (r *bufferedRows) Next() ([]any, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *bufferedRows) Close() error {
	r.pos = len(r.rows)
	return nil
}
