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
	"log/slog"
	"sync"
)

// Connection is a handle to a Databend server.
//
// Connections are small factories for cursors. Databend has no transactions:
// Commit is a no-op and Rollback always fails.
type Connection struct {
	config *Config
	client Client
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// Option configures a Connection.
type Option func(*Connection)

// WithClient makes the connection use client instead of the databend-go
// backed default.
func WithClient(client Client) Option {
	return func(conn *Connection) {
		conn.client = client
	}
}

// WithLogger sets the logger statement execution is reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(conn *Connection) {
		conn.logger = logger
	}
}

// Connect creates a new connection.
func Connect(config *Config, opts ...Option) (*Connection, error) {
	conn := &Connection{config: config}
	for _, opt := range opts {
		opt(conn)
	}
	if conn.logger == nil {
		conn.logger = slog.Default()
	}
	if conn.client == nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		client, err := NewSQLClient(config)
		if err != nil {
			return nil, wrapClientError(err)
		}
		conn.client = client
	}
	return conn, nil
}

// Open parses a databend:// connection string and creates a new connection.
func Open(uri string, opts ...Option) (*Connection, error) {
	config, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return Connect(config, opts...)
}

// Config returns the configuration the connection was created with.
func (conn *Connection) Config() *Config {
	return conn.config
}

// Cursor creates a new cursor.
func (conn *Connection) Cursor() *Cursor {
	c := &Cursor{conn: conn, ArraySize: 1}
	c.reset()
	return c
}

// Commit is a no-op since Databend has no transactions.
func (conn *Connection) Commit() error {
	return nil
}

// Rollback always fails since Databend has no transactions.
func (conn *Connection) Rollback() error {
	return notSupported("rollback")
}

// Close closes the connection. Closing an already closed connection is a no-op.
func (conn *Connection) Close() error {
	conn.closeOnce.Do(func() {
		conn.closed = true
		conn.closeErr = conn.client.Close()
	})
	return conn.closeErr
}

// Execute runs a statement on a fresh cursor and discards its rows.
func (conn *Connection) Execute(ctx context.Context, operation string, params any) error {
	c := conn.Cursor()
	defer func() { _ = c.Close() }()
	return c.Execute(ctx, operation, params)
}

// Query runs a statement on a fresh cursor and returns all its rows.
func (conn *Connection) Query(ctx context.Context, operation string, params any) ([][]Value, error) {
	c := conn.Cursor()
	defer func() { _ = c.Close() }()
	if err := c.Execute(ctx, operation, params); err != nil {
		return nil, err
	}
	return c.FetchAll()
}
