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

package clientmock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	databend "github.com/databendlabs/databend-sqlkit-go"
)

var (
	// ErrUnexpectedQuery is returned when no rule matches a statement.
	ErrUnexpectedQuery = errors.New("unexpected query")

	// ErrClosed is returned when the mock is used after Close.
	ErrClosed = errors.New("client is closed")
)

// Response is the scripted outcome of a statement.
type Response struct {
	// Fields describes the result columns.
	Fields []*databend.Field
	// Rows holds the raw row values handed to the cursor.
	Rows [][]any
	// RowsAffected is reported by Exec.
	RowsAffected int64
	// Err, when set, is returned instead of a result.
	Err error
}

type rule struct {
	fragment string
	resp     Response
}

// Mock is a scripted databend.Client. It is safe for concurrent use.
type Mock struct {
	// Default answers statements no rule matches. Nil makes them fail.
	Default *Response

	mu      sync.Mutex
	rules   []rule
	queries []string
	closed  bool
}

// New creates a mock without rules.
func New() *Mock {
	return &Mock{}
}

// Ensure Mock implements databend.Client.
var _ databend.Client = (*Mock)(nil)

// On registers resp for statements containing fragment.
func (m *Mock) On(fragment string, resp Response) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule{fragment: normalize(fragment), resp: resp})
	return m
}

// Queries returns the statements received so far, in order.
func (m *Mock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// LastQuery returns the most recent statement, or "" if there was none.
func (m *Mock) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return ""
	}
	return m.queries[len(m.queries)-1]
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) match(query string) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Response{}, ErrClosed
	}
	m.queries = append(m.queries, query)

	q := normalize(query)
	for _, r := range m.rules {
		if strings.Contains(q, r.fragment) {
			return r.resp, nil
		}
	}
	if m.Default != nil {
		return *m.Default, nil
	}
	return Response{}, fmt.Errorf("%w: %s", ErrUnexpectedQuery, q)
}

func (m *Mock) QueryIter(ctx context.Context, query string) (databend.RowIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := m.match(query)
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &rows{fields: resp.Fields, rows: resp.Rows}, nil
}

func (m *Mock) Exec(ctx context.Context, query string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	resp, err := m.match(query)
	if err != nil {
		return -1, err
	}
	if resp.Err != nil {
		return -1, resp.Err
	}
	return resp.RowsAffected, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type rows struct {
	fields []*databend.Field
	rows   [][]any
	pos    int
	closed bool
}

func (r *rows) Fields() []*databend.Field {
	return r.fields
}

func (r *rows) Next() ([]any, error) {
	if r.closed || r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *rows) Close() error {
	r.closed = true
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
