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

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Params map[string]string
}

// QueryResult is the structured output of the query command.
type QueryResult struct {
	Columns  []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Types    []string `json:"types,omitempty" yaml:"types,omitempty"`
	Rows     [][]any  `json:"rows,omitempty" yaml:"rows,omitempty"`
	RowCount int64    `json:"row_count" yaml:"row_count"`
}

func newQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Execute a statement and print its rows",
		Long: `Execute a statement and print its rows.

Named parameters are written as %(name)s and bound with --param; a literal
percent sign is then written as %%.

Example:
  databend-sql query "SELECT * FROM numbers(3)"
  databend-sql query "SELECT * FROM t WHERE id = %(id)s" --param id=42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringToStringVarP(&opts.Params, "param", "p", nil, "named parameter, name=value")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, sql string) error {
	conn, err := opts.connect()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var params any
	if len(opts.Params) > 0 {
		named := make(map[string]any, len(opts.Params))
		for k, v := range opts.Params {
			named[k] = v
		}
		params = named
	}

	cursor := conn.Cursor()
	defer func() { _ = cursor.Close() }()
	if err := cursor.Execute(cmd.Context(), sql, params); err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	result := &QueryResult{RowCount: cursor.RowCount()}
	description := cursor.Description()
	if len(description) > 0 {
		rows, err := cursor.FetchAll()
		if err != nil {
			return WrapExitError(ExitFailure, "failed to fetch rows", err)
		}
		for _, col := range description {
			result.Columns = append(result.Columns, col.Name)
			result.Types = append(result.Types, col.TypeCode)
		}
		result.Rows = make([][]any, 0, len(rows))
		for _, row := range rows {
			out := make([]any, len(row))
			for i, v := range row {
				out[i] = displayValue(v, result.Types[i])
			}
			result.Rows = append(result.Rows, out)
		}
		if result.RowCount < 0 {
			result.RowCount = int64(len(rows))
		}
	}

	return opts.output().Write(result, func(w io.Writer) error {
		if len(result.Columns) > 0 {
			fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
			for _, row := range result.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = formatValue(v, result.Types[i])
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
		}
		_, err := fmt.Fprintf(w, "(%d rows)\n", result.RowCount)
		return err
	})
}
