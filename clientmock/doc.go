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
Package clientmock provides a scripted, in-memory databend.Client.

It lets tests exercise cursors, the dialect's Inspector and anything else
built on a databend.Connection without a running server. Responses are
registered against fragments of SQL; every statement the client receives is
recorded so that tests can assert on the exact SQL that was sent.

	m := clientmock.New()
	m.On("SELECT currentDatabase()", clientmock.Response{
		Fields: []*databend.Field{{Name: "currentDatabase()", DataType: "String"}},
		Rows:   [][]any{{"default"}},
	})

	conn, _ := databend.Connect(&databend.Config{}, databend.WithClient(m))

Matching

  - A rule matches when its fragment is contained in the statement, after
    runs of whitespace in both are collapsed to single spaces.
  - Rules are tried in registration order; the first match wins.
  - When no rule matches, Default is used if set; otherwise the call fails
    with ErrUnexpectedQuery.
*/
package clientmock
