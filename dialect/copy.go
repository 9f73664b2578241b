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
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var onErrorPattern = regexp.MustCompile(`(?i)^(CONTINUE|ABORT(_\d+)?|SKIP_FILE(_\d+%?)?)$`)

// CopyIntoTableOptions are the copy options of COPY INTO <table>. Zero
// values are left to the server default.
type CopyIntoTableOptions struct {
	SizeLimit           int
	Purge               bool
	Force               bool
	DisableVariantCheck bool
	// OnError is CONTINUE, ABORT, ABORT_<n>, SKIP_FILE, SKIP_FILE_<n> or
	// SKIP_FILE_<n>%.
	OnError          string
	MaxFiles         int
	ReturnFailedOnly bool
	// ColumnMatchMode is CASE_SENSITIVE or CASE_INSENSITIVE.
	ColumnMatchMode string
}

func (o *CopyIntoTableOptions) Validate() error {
	if o.SizeLimit < 0 || o.MaxFiles < 0 {
		return fmt.Errorf("%w: size limit and max files must not be negative", ErrInvalidFormatOption)
	}
	if o.OnError != "" && !onErrorPattern.MatchString(o.OnError) {
		return fmt.Errorf("%w: on error %q", ErrInvalidFormatOption, o.OnError)
	}
	return oneOf("column match mode", o.ColumnMatchMode, "CASE_SENSITIVE", "CASE_INSENSITIVE")
}

func (o *CopyIntoTableOptions) render() string {
	var opts []string
	if o.SizeLimit > 0 {
		opts = append(opts, "SIZE_LIMIT = "+strconv.Itoa(o.SizeLimit))
	}
	if o.Purge {
		opts = append(opts, "PURGE = TRUE")
	}
	if o.Force {
		opts = append(opts, "FORCE = TRUE")
	}
	if o.DisableVariantCheck {
		opts = append(opts, "DISABLE_VARIANT_CHECK = TRUE")
	}
	if o.OnError != "" {
		opts = append(opts, "ON_ERROR = "+strings.ToUpper(o.OnError))
	}
	if o.MaxFiles > 0 {
		opts = append(opts, "MAX_FILES = "+strconv.Itoa(o.MaxFiles))
	}
	if o.ReturnFailedOnly {
		opts = append(opts, "RETURN_FAILED_ONLY = TRUE")
	}
	if o.ColumnMatchMode != "" {
		opts = append(opts, "COLUMN_MATCH_MODE = "+strings.ToUpper(o.ColumnMatchMode))
	}
	return strings.Join(opts, " ")
}

// CopyIntoTable is a COPY INTO <table> statement loading staged files.
type CopyIntoTable struct {
	Target *Table
	// From is a Location or *FileColumns.
	From    Expr
	Files   []string
	Pattern string
	Format  FileFormat
	Options CopyIntoTableOptions
}

// NewCopyIntoTable validates s and returns it as a statement.
func NewCopyIntoTable(s CopyIntoTable) (*CopyIntoTable, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *CopyIntoTable) Validate() error {
	if s.Target == nil {
		return errors.New("copy into table requires a target table")
	}
	if s.Format == nil {
		return errors.New("copy into table requires a file format")
	}
	var fromErr error
	switch from := s.From.(type) {
	case Location:
		fromErr = from.Validate()
	case *FileColumns:
		if from.From == nil {
			fromErr = errors.New("file columns require a location")
		} else {
			fromErr = from.From.Validate()
		}
	default:
		fromErr = fmt.Errorf("%w: copy into table cannot read from %T", ErrInvalidLocation, s.From)
	}
	return errors.Join(fromErr, s.Format.Validate(), s.Options.Validate())
}

func (s *CopyIntoTable) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.b.WriteString("COPY INTO ")
	if err := s.Target.compile(c); err != nil {
		return err
	}
	c.b.WriteString(" FROM ")
	if err := s.From.compile(c); err != nil {
		return err
	}
	if len(s.Files) > 0 {
		files := make([]string, 0, len(s.Files))
		for _, f := range s.Files {
			files = append(files, c.preparer.QuoteString(f))
		}
		c.b.WriteString(" FILES = (")
		c.writeText(strings.Join(files, ", "))
		c.b.WriteByte(')')
	}
	if s.Pattern != "" {
		c.b.WriteString(" PATTERN = ")
		c.writeText(c.preparer.QuoteString(s.Pattern))
	}
	c.b.WriteString(" FILE_FORMAT = ")
	if err := s.Format.compile(c); err != nil {
		return err
	}
	if opts := s.Options.render(); opts != "" {
		c.writeText(" " + opts)
	}
	return nil
}

// CopyIntoLocationOptions are the copy options of COPY INTO <location>.
type CopyIntoLocationOptions struct {
	Single      bool
	MaxFileSize int
	Overwrite   bool
	// IncludeQueryID defaults to true on the server.
	IncludeQueryID *bool
	UseRawPath     bool
}

func (o *CopyIntoLocationOptions) Validate() error {
	if o.MaxFileSize < 0 {
		return fmt.Errorf("%w: max file size must not be negative", ErrInvalidFormatOption)
	}
	return nil
}

func (o *CopyIntoLocationOptions) render() string {
	var opts []string
	if o.Single {
		opts = append(opts, "SINGLE = TRUE")
	}
	if o.MaxFileSize > 0 {
		opts = append(opts, "MAX_FILE_SIZE = "+strconv.Itoa(o.MaxFileSize))
	}
	if o.Overwrite {
		opts = append(opts, "OVERWRITE = TRUE")
	}
	if o.IncludeQueryID != nil {
		if *o.IncludeQueryID {
			opts = append(opts, "INCLUDE_QUERY_ID = TRUE")
		} else {
			opts = append(opts, "INCLUDE_QUERY_ID = FALSE")
		}
	}
	if o.UseRawPath {
		opts = append(opts, "USE_RAW_PATH = TRUE")
	}
	return strings.Join(opts, " ")
}

// CopyIntoLocation is a COPY INTO <location> statement unloading a table or
// a query.
type CopyIntoLocation struct {
	Target Location
	// From is a *Table or a *SelectStmt.
	From    Expr
	Format  FileFormat
	Options CopyIntoLocationOptions
}

// NewCopyIntoLocation validates s and returns it as a statement.
func NewCopyIntoLocation(s CopyIntoLocation) (*CopyIntoLocation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *CopyIntoLocation) Validate() error {
	if s.Target == nil {
		return fmt.Errorf("%w: copy into location requires a target", ErrInvalidLocation)
	}
	if s.Format == nil {
		return errors.New("copy into location requires a file format")
	}
	var fromErr error
	switch s.From.(type) {
	case *Table, *SelectStmt:
	default:
		fromErr = fmt.Errorf("copy into location cannot read from %T", s.From)
	}
	return errors.Join(s.Target.Validate(), fromErr, s.Format.Validate(), s.Options.Validate())
}

func (s *CopyIntoLocation) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.b.WriteString("COPY INTO ")
	if err := s.Target.compile(c); err != nil {
		return err
	}
	c.b.WriteString(" FROM ")
	switch from := s.From.(type) {
	case *SelectStmt:
		c.b.WriteByte('(')
		if err := from.compile(c); err != nil {
			return err
		}
		c.b.WriteByte(')')
	default:
		if err := from.compile(c); err != nil {
			return err
		}
	}
	c.b.WriteString(" FILE_FORMAT = ")
	if err := s.Format.compile(c); err != nil {
		return err
	}
	if opts := s.Options.render(); opts != "" {
		c.writeText(" " + opts)
	}
	return nil
}
