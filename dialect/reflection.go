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

package dialect

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	databend "github.com/databendlabs/databend-sqlkit-go"
)

// ErrNoSuchTable is returned when reflecting a table or view that does not
// exist.
var ErrNoSuchTable = errors.New("no such table")

// Version is a server version.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtMost reports whether v is lower than or equal to o.
func (v Version) AtMost(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch <= o.Patch
}

// lastEngineViewVersion is the last server version without
// information_schema.views.
var lastEngineViewVersion = Version{Major: 1, Minor: 2, Patch: 410}

var versionPattern = regexp.MustCompile(`^(?:.*)v(\d+)\.(\d+)\.(\d+)-([^(]+)\(`)

// ParseVersion extracts the version from the output of SELECT VERSION(), e.g.
// "DatabendQuery v1.2.410-nightly-7d1c4a2(rust-1.75.0-nightly-2023-12-24T00:00:00Z)".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("could not determine version from string %q", s)
	}
	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	v.Patch, _ = strconv.Atoi(m[3])
	return v, nil
}

// ColumnInfo describes a reflected column.
type ColumnInfo struct {
	Name     string
	Type     Type
	RawType  string
	Nullable bool
	Comment  string
}

// TableOptions are the Databend specific options of a reflected table.
type TableOptions struct {
	Engine    string
	ClusterBy string
	Transient bool
}

// Inspector reflects schema metadata through a connection.
//
// The default schema and the server version are queried once and cached.
// An Inspector is not safe for concurrent use.
type Inspector struct {
	conn    *databend.Connection
	dialect *Dialect

	defaultSchema string
	version       *Version
}

// NewInspector creates an inspector over conn.
func NewInspector(conn *databend.Connection) *Inspector {
	return &Inspector{conn: conn, dialect: New()}
}

func (in *Inspector) scalar(ctx context.Context, query string, params any) (databend.Value, error) {
	rows, err := in.conn.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}
	return rows[0][0], nil
}

func (in *Inspector) names(ctx context.Context, query string, params any) ([]string, error) {
	rows, err := in.conn.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			names = append(names, asString(row[0]))
		}
	}
	return names, nil
}

// DefaultSchemaName returns the current database of the connection.
func (in *Inspector) DefaultSchemaName(ctx context.Context) (string, error) {
	if in.defaultSchema != "" {
		return in.defaultSchema, nil
	}
	v, err := in.scalar(ctx, "SELECT currentDatabase()", nil)
	if err != nil {
		return "", err
	}
	in.defaultSchema = asString(v)
	return in.defaultSchema, nil
}

func (in *Inspector) schemaOrDefault(ctx context.Context, schema string) (string, error) {
	if schema != "" {
		return schema, nil
	}
	return in.DefaultSchemaName(ctx)
}

// ServerVersion returns the version of the server.
func (in *Inspector) ServerVersion(ctx context.Context) (Version, error) {
	if in.version != nil {
		return *in.version, nil
	}
	v, err := in.scalar(ctx, "SELECT VERSION()", nil)
	if err != nil {
		return Version{}, err
	}
	version, err := ParseVersion(asString(v))
	if err != nil {
		return Version{}, err
	}
	in.version = &version
	return version, nil
}

// SchemaNames lists the databases.
func (in *Inspector) SchemaNames(ctx context.Context) ([]string, error) {
	return in.names(ctx, "SHOW DATABASES", nil)
}

func (in *Inspector) qualified(schema, table string) string {
	p := in.dialect.Preparer
	return p.QuoteIdentifier(schema) + "." + p.QuoteIdentifier(table)
}

// HasTable reports whether the table exists. An empty schema means the
// default schema.
func (in *Inspector) HasTable(ctx context.Context, table, schema string) (bool, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return false, err
	}
	v, err := in.scalar(ctx, "EXISTS TABLE "+in.qualified(schema, table), nil)
	if err != nil {
		return false, err
	}
	return asBool(v), nil
}

// TableNames lists the tables of a schema, views excluded.
func (in *Inspector) TableNames(ctx context.Context, schema string) ([]string, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return nil, err
	}
	version, err := in.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT table_name FROM information_schema.tables WHERE table_schema = %(schema_name)s"
	if version.AtMost(lastEngineViewVersion) {
		query += " AND engine NOT LIKE '%%VIEW%%'"
	}
	return in.names(ctx, query, map[string]any{"schema_name": schema})
}

// ViewNames lists the views of a schema.
func (in *Inspector) ViewNames(ctx context.Context, schema string) ([]string, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return nil, err
	}
	version, err := in.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT table_name FROM information_schema.views WHERE table_schema = %(schema_name)s"
	if version.AtMost(lastEngineViewVersion) {
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = %(schema_name)s AND engine LIKE '%%VIEW%%'"
	}
	return in.names(ctx, query, map[string]any{"schema_name": schema})
}

// Columns describes the columns of a table.
func (in *Inspector) Columns(ctx context.Context, table, schema string) ([]ColumnInfo, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return nil, err
	}
	rows, err := in.conn.Query(ctx,
		"SELECT column_name, column_type, is_nullable, column_comment FROM information_schema.columns"+
			" WHERE table_name = %(table_name)s AND table_schema = %(schema_name)s",
		map[string]any{"table_name": table, "schema_name": schema})
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("expected at least 3 columns, got %d", len(row))
		}
		raw := asString(row[1])
		typ, err := ColumnType(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", asString(row[0]), err)
		}
		col := ColumnInfo{
			Name:     asString(row[0]),
			Type:     typ,
			RawType:  raw,
			Nullable: asString(row[2]) == "YES",
		}
		if len(row) > 3 {
			col.Comment = asString(row[3])
		}
		columns = append(columns, col)
	}

	if len(columns) == 0 {
		exists, err := in.HasTable(ctx, table, schema)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchTable, in.qualified(schema, table))
		}
	}
	return columns, nil
}

// ViewDefinition returns the CREATE statement of a view.
func (in *Inspector) ViewDefinition(ctx context.Context, view, schema string) (string, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return "", err
	}
	name := in.qualified(schema, view)

	views, err := in.ViewNames(ctx, schema)
	if err != nil {
		return "", err
	}
	found := false
	for _, v := range views {
		if v == view {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrNoSuchTable, name)
	}

	rows, err := in.conn.Query(ctx, "SHOW CREATE TABLE "+name, nil)
	if err != nil {
		var dbErr *databend.Error
		if errors.As(err, &dbErr) && strings.Contains(dbErr.Message, "1025") {
			return "", fmt.Errorf("%w: %s: %w", ErrNoSuchTable, name, err)
		}
		return "", err
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return "", fmt.Errorf("%w: %s", ErrNoSuchTable, name)
	}
	return asString(rows[0][1]), nil
}

var clusterByPattern = regexp.MustCompile(`^\((.*)\)$`)

// TableOptions returns the engine, cluster key and transient flag of a
// table.
func (in *Inspector) TableOptions(ctx context.Context, table, schema string) (*TableOptions, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return nil, err
	}
	rows, err := in.conn.Query(ctx,
		"SELECT engine_full, cluster_by, is_transient FROM system.tables"+
			" WHERE database = %(schema_name)s AND name = %(table_name)s",
		map[string]any{"table_name": table, "schema_name": schema})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTable, in.qualified(schema, table))
	}

	row := rows[0]
	if len(row) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}
	opts := &TableOptions{Engine: asString(row[0])}
	clusterBy := strings.TrimSpace(asString(row[1]))
	if m := clusterByPattern.FindStringSubmatch(clusterBy); m != nil {
		clusterBy = m[1]
	}
	opts.ClusterBy = clusterBy
	opts.Transient = asBool(row[2])
	return opts, nil
}

// TableComment returns the comment of a table.
func (in *Inspector) TableComment(ctx context.Context, table, schema string) (string, error) {
	schema, err := in.schemaOrDefault(ctx, schema)
	if err != nil {
		return "", err
	}
	rows, err := in.conn.Query(ctx,
		"SELECT comment FROM system.tables WHERE database = %(schema_name)s AND name = %(table_name)s",
		map[string]any{"table_name": table, "schema_name": schema})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoSuchTable, in.qualified(schema, table))
	}
	return asString(rows[0][0]), nil
}

// PrimaryKeys always returns no columns since Databend has no primary keys.
func (in *Inspector) PrimaryKeys(context.Context, string, string) ([]string, error) {
	return []string{}, nil
}

// ForeignKeyInfo describes a reflected foreign key.
type ForeignKeyInfo struct {
	Columns         []string
	ReferredSchema  string
	ReferredTable   string
	ReferredColumns []string
}

// ForeignKeys always returns no keys since Databend has no foreign keys.
func (in *Inspector) ForeignKeys(context.Context, string, string) ([]ForeignKeyInfo, error) {
	return []ForeignKeyInfo{}, nil
}

// IndexInfo describes a reflected index.
type IndexInfo struct {
	Name    string
	Columns []string
	Unique  bool
}

// Indexes always returns no indexes.
func (in *Inspector) Indexes(context.Context, string, string) ([]IndexInfo, error) {
	return []IndexInfo{}, nil
}

func asString(v databend.Value) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

func asBool(v databend.Value) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "no":
			return false
		default:
			return true
		}
	default:
		n, ok := databend.Int64Value(v)
		return ok && n != 0
	}
}
