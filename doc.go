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

/*
Package databend provides a lightweight client for running statements against a Databend server.

# Connection

Use Open with a databend:// connection string, or Connect with a Config, to create a connection:

	conn, err := databend.Open("databend://root:@localhost:8000/default?secure=false")
	if err != nil {
		return err
	}
	defer conn.Close()

The network work is delegated to the databend-go driver through database/sql. Use WithClient to plug in another
Client, such as the scripted one in the clientmock package.

# Query Data

Create a Cursor, execute a statement and fetch its rows:

	c := conn.Cursor()
	err := c.Execute(ctx, "SELECT * FROM t WHERE id = %(id)s", map[string]any{"id": 42})
	if err != nil {
		return err
	}
	rows, err := c.FetchAll()

Parameters use the pyformat style: %s placeholders take a []any and %(name)s placeholders take a map[string]any. A
literal percent sign is written as %% whenever parameters are given.

FetchArrow returns the rows as Arrow record batches.

# Bulk Statements

ExecuteMany rewrites an INSERT ... VALUES statement into a single multi-row INSERT. After a COPY INTO or MERGE
statement, RowCount reports the rows loaded, unloaded or merged, and CopyIntoTableResults, CopyIntoLocationResults
and MergeResult expose the statement's summary.

# Transactions

Databend has no client-side transactions: Commit is a no-op and Rollback returns ErrNotSupported.
*/
package databend
