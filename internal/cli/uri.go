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
	"maps"
	"slices"

	"github.com/spf13/cobra"

	databend "github.com/databendlabs/databend-sqlkit-go"
)

// URIView is the structured output of the uri commands. The password is
// never printed.
type URIView struct {
	URI         string            `json:"uri" yaml:"uri"`
	Username    string            `json:"username,omitempty" yaml:"username,omitempty"`
	HasPassword bool              `json:"has_password" yaml:"has_password"`
	Host        string            `json:"host" yaml:"host"`
	Port        int               `json:"port,omitempty" yaml:"port,omitempty"`
	Database    string            `json:"database,omitempty" yaml:"database,omitempty"`
	Secure      bool              `json:"secure" yaml:"secure"`
	Query       map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
}

func newURIView(cfg *databend.Config) *URIView {
	redacted := *cfg
	if redacted.Password != "" {
		redacted.Password = "xxxxx"
	}
	return &URIView{
		URI:         redacted.URI(),
		Username:    cfg.Username,
		HasPassword: cfg.Password != "",
		Host:        cfg.Host,
		Port:        cfg.Port,
		Database:    cfg.Database,
		Secure:      cfg.Encryption,
		Query:       cfg.Query,
	}
}

func writeURIView(opts *RootOptions, view *URIView) error {
	return opts.output().Write(view, func(w io.Writer) error {
		fmt.Fprintf(w, "uri\t%s\n", view.URI)
		fmt.Fprintf(w, "username\t%s\n", view.Username)
		fmt.Fprintf(w, "host\t%s\n", view.Host)
		fmt.Fprintf(w, "port\t%d\n", view.Port)
		fmt.Fprintf(w, "database\t%s\n", view.Database)
		fmt.Fprintf(w, "secure\t%t\n", view.Secure)
		for _, k := range slices.Sorted(maps.Keys(view.Query)) {
			fmt.Fprintf(w, "%s\t%s\n", k, view.Query[k])
		}
		return nil
	})
}

func newURICommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Parse and build databend:// connection strings",
	}
	cmd.AddCommand(newURIParseCommand(opts))
	cmd.AddCommand(newURIBuildCommand(opts))
	return cmd
}

func newURIParseCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <uri>",
		Short: "Split a connection string into its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := databend.ParseURI(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid uri", err)
			}
			return writeURIView(opts, newURIView(cfg))
		},
	}
}

func newURIBuildCommand(opts *RootOptions) *cobra.Command {
	cfg := &databend.Config{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a connection string from its parameters",
		Long: `Build a connection string from its parameters.

Example:
  databend-sql uri build --host localhost --port 8000 --user root --database analytics`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid parameters", err)
			}
			if len(cfg.Query) == 0 {
				cfg.Query = nil
			}
			uri := cfg.URI()
			return opts.output().Write(map[string]string{"uri": uri}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, uri)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&cfg.Host, "host", "", "hostname (required)")
	cmd.Flags().IntVar(&cfg.Port, "port", 0, "port, defaults to the transport default")
	cmd.Flags().StringVar(&cfg.Username, "user", "", "username")
	cmd.Flags().StringVar(&cfg.Password, "password", "", "password")
	cmd.Flags().StringVar(&cfg.Database, "database", "", "database")
	cmd.Flags().BoolVar(&cfg.Encryption, "secure", false, "enable TLS")
	cmd.Flags().StringToStringVar(&cfg.Query, "param", nil, "extra client parameter, key=value")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
