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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// CursorState is the state of the last statement executed on a cursor.
type CursorState int

const (
	// CursorStateNone indicates no statement was executed yet.
	CursorStateNone CursorState = iota
	// CursorStateRunning indicates the statement was submitted and its result
	// metadata has not been received yet.
	CursorStateRunning
	// CursorStateSucceeded indicates the result metadata was received.
	CursorStateSucceeded
	// CursorStateFailed indicates the client raised an error.
	CursorStateFailed
)

func (s CursorState) String() string {
	switch s {
	case CursorStateNone:
		return "none"
	case CursorStateRunning:
		return "running"
	case CursorStateSucceeded:
		return "succeeded"
	case CursorStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("CursorState(%d)", int(s))
	}
}

// Cursor executes statements and retrieves their rows.
//
// A cursor holds the state of one statement at a time: executing a new
// statement discards any unread rows of the previous one. Cursors are not
// safe for concurrent use.
type Cursor struct {
	conn *Connection

	id        uuid.UUID
	state     CursorState
	kind      statementKind
	rows      RowIterator
	fields    []*Field
	rownumber int
	rowcount  int64
	results   [][]Value

	// ArraySize is the number of rows FetchMany returns when called with a
	// non-positive size. It defaults to 1.
	ArraySize int
}

// QueryID returns the ID assigned to the last executed statement.
func (c *Cursor) QueryID() uuid.UUID {
	return c.id
}

// State returns the state of the last executed statement.
func (c *Cursor) State() CursorState {
	return c.state
}

// RowCount returns the number of rows affected by the last statement, or -1
// when unknown. It is only known after INSERT, COPY INTO and MERGE.
func (c *Cursor) RowCount() int64 {
	return c.rowcount
}

// RowNumber returns the number of rows fetched so far.
func (c *Cursor) RowNumber() int {
	return c.rownumber
}

// Description describes the result columns of the last statement.
//
// It is empty until a statement produced result metadata.
func (c *Cursor) Description() []Column {
	columns := make([]Column, 0, len(c.fields))
	for _, f := range c.fields {
		columns = append(columns, Column{
			Name:     f.Name,
			TypeCode: f.DataType,
			NullOK:   true,
		})
	}
	return columns
}

// Fields returns the raw field list of the last statement.
func (c *Cursor) Fields() []*Field {
	return c.fields
}

func (c *Cursor) reset() {
	if c.rows != nil {
		sneakyClose(c.rows)
	}
	c.id = uuid.Nil
	c.state = CursorStateNone
	c.kind = kindQuery
	c.rows = nil
	c.fields = nil
	c.rownumber = 0
	c.rowcount = -1
	c.results = nil
}

// Execute prepares and executes a statement.
//
// params follows FormatQuery: nil, a []any for %s placeholders or a
// map[string]any for %(name)s placeholders.
func (c *Cursor) Execute(ctx context.Context, operation string, params any) error {
	c.reset()

	query, err := FormatQuery(operation, params)
	if err != nil {
		return err
	}
	return c.run(ctx, query)
}

func (c *Cursor) run(ctx context.Context, query string) error {
	if c.conn.closed {
		return ErrClosed
	}
	id, err := uuid.NewUUID()
	if err != nil {
		return err
	}
	c.id = id
	c.state = CursorStateRunning
	c.kind = classifyStatement(query)

	logger := c.conn.logger.With(slog.String("query_id", c.id.String()), slog.String("kind", c.kind.String()))
	logger.Debug("executing statement")
	ctx = WithQueryID(ctx, c.id.String())

	if c.kind == kindInsert {
		n, err := c.conn.client.Exec(ctx, query)
		if err != nil {
			return c.fail(logger, err)
		}
		c.rowcount = n
		c.state = CursorStateSucceeded
		return nil
	}

	rows, err := c.conn.client.QueryIter(ctx, query)
	if err != nil {
		return c.fail(logger, err)
	}
	c.rows = rows
	c.fields = rows.Fields()

	switch c.kind {
	case kindCopyIntoTable, kindCopyIntoLocation, kindMerge:
		if err := c.bufferResults(); err != nil {
			return c.fail(logger, err)
		}
	default:
	}

	c.state = CursorStateSucceeded
	logger.Debug("statement succeeded", slog.Int("fields", len(c.fields)))
	return nil
}

func (c *Cursor) fail(logger *slog.Logger, err error) error {
	c.state = CursorStateFailed
	logger.Debug("statement failed", slog.String("error", err.Error()))
	return wrapClientError(err)
}

// bufferResults drains the row stream of a COPY INTO or MERGE statement so
// that its row count can be computed, and replays the rows to fetches.
func (c *Cursor) bufferResults() error {
	var buffered [][]any
	for {
		row, err := c.rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		buffered = append(buffered, row)
	}
	sneakyClose(c.rows)

	results := make([][]Value, 0, len(buffered))
	for _, row := range buffered {
		values, err := convertRow(row, c.fields)
		if err != nil {
			return err
		}
		results = append(results, values)
	}
	c.results = results
	c.rowcount = countResultRows(c.kind, results)
	c.rows = newBufferedRows(c.fields, buffered)
	return nil
}

var insertValuesPattern = regexp.MustCompile(
	`(?is)^\s*((?:INSERT|REPLACE)\s.+\sVALUES?\s*)` +
		`(\(\s*(?:%s|%\(.+\)s)\s*(?:,\s*(?:%s|%\(.+\)s)\s*)*\))` +
		`(\s*(?:ON DUPLICATE.*)?);?\s*$`)

// ExecuteMany executes operation against every parameter set in seq.
//
// An INSERT ... VALUES statement is rewritten into a single multi-row
// INSERT. Other statements run once per parameter set and only the final
// result is retained. There is no rollback: on failure, the statements that
// ran before the failing one stay applied.
func (c *Cursor) ExecuteMany(ctx context.Context, operation string, seq []any) error {
	c.reset()
	if len(seq) == 0 {
		return nil
	}

	if m := insertValuesPattern.FindStringSubmatch(operation); m != nil {
		prefix := strings.ReplaceAll(m[1], "%%", "%")
		values := make([]string, 0, len(seq))
		for _, params := range seq {
			v, err := FormatQuery(m[2], params)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return c.run(ctx, prefix+strings.Join(values, ", ")+m[3])
	}

	for _, params := range seq {
		if err := c.Execute(ctx, operation, params); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cursor) checkFetchable() error {
	if c.state == CursorStateNone {
		return ErrNoQuery
	}
	if c.rows == nil {
		return ErrNoResultSet
	}
	return nil
}

// FetchOne fetches the next row of the result.
//
// It returns a nil row and a nil error once the rows are exhausted.
func (c *Cursor) FetchOne() ([]Value, error) {
	if err := c.checkFetchable(); err != nil {
		return nil, err
	}
	row, err := c.rows.Next()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapClientError(err)
	}
	c.rownumber++
	return convertRow(row, c.fields)
}

// FetchMany fetches up to size rows. A non-positive size uses ArraySize.
//
// An empty slice is returned when no more rows are available.
func (c *Cursor) FetchMany(size int) ([][]Value, error) {
	if c.state == CursorStateNone {
		return nil, ErrNoQuery
	}
	if size <= 0 {
		size = c.ArraySize
	}
	if size <= 0 {
		size = 1
	}

	data := make([][]Value, 0, size)
	if c.rows == nil {
		return data, nil
	}
	for len(data) < size {
		row, err := c.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		data = append(data, row)
	}
	return data, nil
}

// FetchAll fetches all remaining rows.
func (c *Cursor) FetchAll() ([][]Value, error) {
	if c.state == CursorStateNone {
		return nil, ErrNoQuery
	}

	data := make([][]Value, 0)
	if c.rows == nil {
		return data, nil
	}
	for {
		row, err := c.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return data, nil
		}
		data = append(data, row)
	}
}

// Cancel interrupts the current statement on a best-effort basis.
//
// Databend offers no cancellation primitive over this interface, so Cancel
// replaces the running statement with a no-op query and drops unread rows.
// It is not guaranteed to stop server-side work.
func (c *Cursor) Cancel(ctx context.Context) error {
	if c.state == CursorStateNone {
		return ErrNoQuery
	}
	if c.id == uuid.Nil {
		return nil
	}

	if _, err := c.conn.client.Exec(ctx, "SELECT 1"); err != nil {
		return wrapClientError(err)
	}
	if c.rows != nil {
		sneakyClose(c.rows)
	}
	c.state = CursorStateSucceeded
	c.id = uuid.Nil
	c.rows = nil
	return nil
}

// Close releases the cursor's row stream and resets its state.
func (c *Cursor) Close() error {
	c.reset()
	return nil
}
