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
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotSupported is returned for operations Databend cannot perform,
	// such as rolling back a transaction.
	ErrNotSupported = errors.New("not supported")

	// ErrNoQuery is returned when a cursor is used before any statement
	// was executed on it.
	ErrNoQuery = errors.New("no query yet")

	// ErrNoResultSet is returned when fetching from a statement that did not
	// produce a row stream.
	ErrNoResultSet = errors.New("no result set")

	// ErrInvalidURI is returned when a connection string cannot be parsed.
	ErrInvalidURI = errors.New("invalid connection uri")

	// ErrClosed is returned when using a closed connection.
	ErrClosed = errors.New("connection is closed")
)

// Error represents a failure raised by the underlying Databend client.
//
// The original message is preserved verbatim; the cause, when there is one,
// is reachable through errors.Unwrap.
type Error struct {
	Message string `json:"message"`

	err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// wrapClientError converts a client failure into an *Error.
func wrapClientError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Message: err.Error(), err: err}
}

// notSupported reports op as unsupported.
func notSupported(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotSupported)
}

// sneakyClose closes c and ignores the error.
// This is useful to release a row stream whose remaining rows we don't care about.
func sneakyClose(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
