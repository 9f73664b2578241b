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
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"sync"

	godatabend "github.com/datafuselabs/databend-go"
	"github.com/google/uuid"
)

// Client is the interface of the Databend client a Connection delegates to.
//
// The default implementation speaks to the server through the databend-go
// driver. Tests substitute a scripted client, see package clientmock.
type Client interface {
	// QueryIter runs a statement and returns an iterator over its rows.
	QueryIter(ctx context.Context, query string) (RowIterator, error)
	// Exec runs a statement that returns no rows and reports the number of
	// rows affected, or -1 when the server did not report it.
	Exec(ctx context.Context, query string) (int64, error)
	// Close releases the resources held by the client.
	Close() error
}

// RowIterator iterates over the rows of one statement.
type RowIterator interface {
	// Fields describes the columns of the result.
	Fields() []*Field
	// Next returns the next row, or io.EOF when the rows are exhausted.
	Next() ([]any, error)
	// Close releases the row stream. Unread rows are discarded.
	Close() error
}

// WithQueryID returns a context that makes the server run the next
// statement under the given query id.
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, godatabend.ContextKeyQueryID, id)
}

func queryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(godatabend.ContextKeyQueryID).(string)
	return id, ok && id != ""
}

// writeTracker records the rows written by statements the client is waiting
// on, as reported by the query stats the server attaches to each page.
type writeTracker struct {
	mu   sync.Mutex
	rows map[string]int64
}

func newWriteTracker() *writeTracker {
	return &writeTracker{rows: make(map[string]int64)}
}

func (t *writeTracker) begin(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = -1
}

func (t *writeTracker) track(id string, stats *godatabend.QueryStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		t.rows[id] = int64(stats.WriteProgress.Rows)
	}
}

// finish returns the rows written by the statement, or -1 when no stats
// arrived for it.
func (t *writeTracker) finish(id string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.rows[id]
	delete(t.rows, id)
	if !ok {
		return -1
	}
	return n
}

// connector opens driver connections from a fixed databend-go config.
type connector struct {
	cfg godatabend.Config
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	// The driver keeps this context for the lifetime of the connection.
	return godatabend.DatabendDriver{}.OpenWithConfig(context.Background(), c.cfg)
}

func (c *connector) Driver() driver.Driver {
	return godatabend.DatabendDriver{}
}

type sqlClient struct {
	db     *sql.DB
	writes *writeTracker
}

// NewSQLClient creates a Client backed by the databend-go driver.
func NewSQLClient(cfg *Config) (Client, error) {
	dcfg, err := godatabend.ParseDSN(cfg.DSN())
	if err != nil {
		return nil, err
	}
	writes := newWriteTracker()
	dcfg.StatsTracker = writes.track
	db := sql.OpenDB(&connector{cfg: *dcfg})
	return &sqlClient{db: db, writes: writes}, nil
}

// Ensure sqlClient implements Client.
var _ Client = (*sqlClient)(nil)

func (c *sqlClient) QueryIter(ctx context.Context, query string) (RowIterator, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		sneakyClose(rows)
		return nil, err
	}
	fields := make([]*Field, 0, len(types))
	for _, typ := range types {
		fields = append(fields, &Field{Name: typ.Name(), DataType: databaseType(typ)})
	}
	return &sqlRows{rows: rows, fields: fields}, nil
}

// databaseType reports the server type of a column. The driver already
// reports nullable columns as Nullable(...).
func databaseType(typ *sql.ColumnType) string {
	name := typ.DatabaseTypeName()
	if strings.HasPrefix(strings.ToLower(name), "nullable(") {
		return name
	}
	if nullable, ok := typ.Nullable(); ok && nullable {
		return "Nullable(" + name + ")"
	}
	return name
}

// Exec runs a statement and reports the rows it wrote from the server's
// write progress. The driver itself never reports affected rows.
func (c *sqlClient) Exec(ctx context.Context, query string) (int64, error) {
	id, ok := queryIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
		ctx = WithQueryID(ctx, id)
	}
	c.writes.begin(id)
	_, err := c.db.ExecContext(ctx, query)
	n := c.writes.finish(id)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func (c *sqlClient) Close() error {
	return c.db.Close()
}

type sqlRows struct {
	rows   *sql.Rows
	fields []*Field
}

func (r *sqlRows) Fields() []*Field {
	return r.fields
}

func (r *sqlRows) Next() ([]any, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	values := make([]any, len(r.fields))
	dest := make([]any, len(r.fields))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}
