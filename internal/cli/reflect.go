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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/databendlabs/databend-sqlkit-go/dialect"
)

// ColumnView is the structured output of the columns command.
type ColumnView struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// OptionsView is the structured output of the options command.
type OptionsView struct {
	Engine    string `json:"engine" yaml:"engine"`
	ClusterBy string `json:"cluster_by,omitempty" yaml:"cluster_by,omitempty"`
	Transient bool   `json:"transient" yaml:"transient"`
	Comment   string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// inspect runs fn with an inspector over a fresh connection.
func inspect(opts *RootOptions, fn func(in *dialect.Inspector) error) error {
	conn, err := opts.connect()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	if err := fn(dialect.NewInspector(conn)); err != nil {
		return WrapExitError(ExitFailure, "reflection failed", err)
	}
	return nil
}

func writeNames(opts *RootOptions, names []string) error {
	return opts.output().Write(names, func(w io.Writer) error {
		for _, name := range names {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func newSchemasCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return inspect(opts, func(in *dialect.Inspector) error {
				names, err := in.SchemaNames(cmd.Context())
				if err != nil {
					return err
				}
				return writeNames(opts, names)
			})
		},
	}
}

func newNamesCommand(opts *RootOptions, use, short string, list func(*dialect.Inspector, context.Context, string) ([]string, error)) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return inspect(opts, func(in *dialect.Inspector) error {
				names, err := list(in, cmd.Context(), schema)
				if err != nil {
					return err
				}
				return writeNames(opts, names)
			})
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "database, defaults to the current one")
	return cmd
}

func newTablesCommand(opts *RootOptions) *cobra.Command {
	return newNamesCommand(opts, "tables", "List the tables of a database", (*dialect.Inspector).TableNames)
}

func newViewsCommand(opts *RootOptions) *cobra.Command {
	return newNamesCommand(opts, "views", "List the views of a database", (*dialect.Inspector).ViewNames)
}

func newColumnsCommand(opts *RootOptions) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Describe the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(opts, func(in *dialect.Inspector) error {
				columns, err := in.Columns(cmd.Context(), args[0], schema)
				if err != nil {
					return err
				}
				views := make([]ColumnView, 0, len(columns))
				for _, col := range columns {
					typ, err := dialect.CompileType(col.Type)
					if err != nil {
						typ = col.RawType
					}
					views = append(views, ColumnView{Name: col.Name, Type: typ, Nullable: col.Nullable, Comment: col.Comment})
				}
				return opts.output().Write(views, func(w io.Writer) error {
					fmt.Fprintln(w, "NAME\tTYPE\tNULL\tCOMMENT")
					for _, v := range views {
						if _, err := fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", v.Name, v.Type, v.Nullable, v.Comment); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "database, defaults to the current one")
	return cmd
}

func newOptionsCommand(opts *RootOptions) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "options <table>",
		Short: "Show the engine, cluster key and comment of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(opts, func(in *dialect.Inspector) error {
				ctx := cmd.Context()
				options, err := in.TableOptions(ctx, args[0], schema)
				if err != nil {
					return err
				}
				comment, err := in.TableComment(ctx, args[0], schema)
				if err != nil {
					return err
				}
				view := OptionsView{
					Engine:    options.Engine,
					ClusterBy: options.ClusterBy,
					Transient: options.Transient,
					Comment:   comment,
				}
				return opts.output().Write(view, func(w io.Writer) error {
					fmt.Fprintf(w, "engine\t%s\n", view.Engine)
					fmt.Fprintf(w, "cluster_by\t%s\n", view.ClusterBy)
					fmt.Fprintf(w, "transient\t%t\n", view.Transient)
					_, err := fmt.Fprintf(w, "comment\t%s\n", view.Comment)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "database, defaults to the current one")
	return cmd
}
