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
Package dialect renders SQL in Databend's dialect.

It carries a small expression tree (tables, columns, literals, bound
parameters, operators, functions, casts and selects) together with the
statements specific to Databend:

	merge, err := dialect.NewMerge(users, usersXtra, users.C("id").Eq(usersXtra.C("id")))
	merge.WhenMatchedThenUpdate().Set("name", usersXtra.C("name"))
	merge.WhenNotMatchedThenInsert()

	compiled, err := dialect.New().Compile(merge)

COPY INTO statements load staged files into tables and unload tables into
stages or cloud storage:

	gcs, err := dialect.NewGoogleCloudStorage("gcs://bucket/path", credentials)
	copyInto, err := dialect.NewCopyIntoTable(dialect.CopyIntoTable{
		Target: dialect.T("db.events"),
		From:   gcs,
		Format: &dialect.CSVFormat{Compression: dialect.CompressionGzip},
	})

Connection parameters of cloud storage locations, credentials included, are
written into the statement text.

# Reflection

An Inspector answers schema questions through a databend.Connection: the
schemas, tables, views and columns, and the engine, cluster key and transient
flag of a table. Databend has no primary keys, foreign keys or indexes, so
those are always reported empty.
*/
package dialect
