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
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidFormatOption is returned when a file format option is outside
// its allowed set.
var ErrInvalidFormatOption = errors.New("invalid file format option")

// Compression is the compression of staged files.
type Compression string

const (
	CompressionNone       Compression = "NONE"
	CompressionAuto       Compression = "AUTO"
	CompressionGzip       Compression = "GZIP"
	CompressionBz2        Compression = "BZ2"
	CompressionBrotli     Compression = "BROTLI"
	CompressionZstd       Compression = "ZSTD"
	CompressionDeflate    Compression = "DEFLATE"
	CompressionRawDeflate Compression = "RAW_DEFLATE"
	CompressionXz         Compression = "XZ"
)

func (c Compression) validate() error {
	switch c {
	case "", CompressionNone, CompressionAuto, CompressionGzip, CompressionBz2, CompressionBrotli,
		CompressionZstd, CompressionDeflate, CompressionRawDeflate, CompressionXz:
		return nil
	default:
		return fmt.Errorf("%w: compression %q", ErrInvalidFormatOption, string(c))
	}
}

// FileFormat describes the format of staged files.
type FileFormat interface {
	Expr
	// Validate checks every option against its allowed set.
	Validate() error
}

// Bool returns a pointer to b, for options whose default is not false.
func Bool(b bool) *bool {
	return &b
}

// formatWriter renders a FILE_FORMAT option list.
type formatWriter struct {
	c *compiler
}

func newFormatWriter(c *compiler, typ string) *formatWriter {
	c.b.WriteString("(TYPE = " + typ)
	return &formatWriter{c: c}
}

func (w *formatWriter) raw(name, value string) {
	w.c.b.WriteString(", " + name + " = ")
	w.c.writeText(value)
}

func (w *formatWriter) str(name, value string) {
	if value != "" {
		w.raw(name, w.c.preparer.QuoteString(value))
	}
}

func (w *formatWriter) keyword(name, value string) {
	if value != "" {
		w.raw(name, strings.ToUpper(value))
	}
}

func (w *formatWriter) boolean(name string, value *bool) {
	if value == nil {
		return
	}
	if *value {
		w.raw(name, "TRUE")
	} else {
		w.raw(name, "FALSE")
	}
}

// flag renders name only when value is set to true.
func (w *formatWriter) flag(name string, value *bool) {
	if value != nil && *value {
		w.raw(name, "TRUE")
	}
}

func (w *formatWriter) close() {
	w.c.b.WriteByte(')')
}

func oneOf(option, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidFormatOption, option, strings.Join(allowed, ", "), value)
}

func validateRecordDelimiter(v string) error {
	if v == "" || v == "\r\n" || utf8.RuneCountInString(v) == 1 {
		return nil
	}
	return fmt.Errorf("%w: record delimiter must be a single character or \\r\\n, got %q", ErrInvalidFormatOption, v)
}

func validateFieldDelimiter(v string) error {
	if v == "" || utf8.RuneCountInString(v) == 1 {
		return nil
	}
	return fmt.Errorf("%w: field delimiter must be a single character, got %q", ErrInvalidFormatOption, v)
}

// CSVFormat is the CSV file format.
type CSVFormat struct {
	RecordDelimiter       string
	FieldDelimiter        string
	Quote                 string
	Escape                string
	SkipHeader            int
	NaNDisplay            string
	NullDisplay           string
	// ErrorOnColumnMismatch is only rendered when true.
	ErrorOnColumnMismatch *bool
	// EmptyFieldAs is one of NULL, STRING or FIELD_DEFAULT.
	EmptyFieldAs string
	OutputHeader *bool
	// BinaryFormat is one of HEX or BASE64.
	BinaryFormat string
	Compression  Compression
}

func (f *CSVFormat) Validate() error {
	if f.SkipHeader < 0 {
		return fmt.Errorf("%w: skip header must not be negative", ErrInvalidFormatOption)
	}
	return errors.Join(
		validateRecordDelimiter(f.RecordDelimiter),
		validateFieldDelimiter(f.FieldDelimiter),
		oneOf("quote", f.Quote, `"`, `'`, "`"),
		oneOf("escape", f.Escape, `\`),
		oneOf("empty field as", f.EmptyFieldAs, "NULL", "STRING", "FIELD_DEFAULT"),
		oneOf("binary format", f.BinaryFormat, "HEX", "BASE64"),
		f.Compression.validate(),
	)
}

func (f *CSVFormat) compile(c *compiler) error {
	if err := f.Validate(); err != nil {
		return err
	}
	w := newFormatWriter(c, "CSV")
	w.str("RECORD_DELIMITER", f.RecordDelimiter)
	w.str("FIELD_DELIMITER", f.FieldDelimiter)
	w.str("QUOTE", f.Quote)
	w.str("ESCAPE", f.Escape)
	if f.SkipHeader > 0 {
		w.raw("SKIP_HEADER", strconv.Itoa(f.SkipHeader))
	}
	w.str("NAN_DISPLAY", f.NaNDisplay)
	w.str("NULL_DISPLAY", f.NullDisplay)
	w.flag("ERROR_ON_COLUMN_MISMATCH", f.ErrorOnColumnMismatch)
	w.keyword("EMPTY_FIELD_AS", f.EmptyFieldAs)
	w.boolean("OUTPUT_HEADER", f.OutputHeader)
	w.keyword("BINARY_FORMAT", f.BinaryFormat)
	w.keyword("COMPRESSION", string(f.Compression))
	w.close()
	return nil
}

// TSVFormat is the tab-separated values file format.
type TSVFormat struct {
	RecordDelimiter string
	FieldDelimiter  string
	Compression     Compression
}

func (f *TSVFormat) Validate() error {
	return errors.Join(
		validateRecordDelimiter(f.RecordDelimiter),
		validateFieldDelimiter(f.FieldDelimiter),
		f.Compression.validate(),
	)
}

func (f *TSVFormat) compile(c *compiler) error {
	if err := f.Validate(); err != nil {
		return err
	}
	w := newFormatWriter(c, "TSV")
	w.str("RECORD_DELIMITER", f.RecordDelimiter)
	w.str("FIELD_DELIMITER", f.FieldDelimiter)
	w.keyword("COMPRESSION", string(f.Compression))
	w.close()
	return nil
}

// NDJSONFormat is the newline-delimited JSON file format.
type NDJSONFormat struct {
	// NullFieldAs is one of NULL or FIELD_DEFAULT.
	NullFieldAs string
	// MissingFieldAs is one of ERROR, NULL or FIELD_DEFAULT.
	MissingFieldAs string
	Compression    Compression
}

func (f *NDJSONFormat) Validate() error {
	return errors.Join(
		oneOf("null field as", f.NullFieldAs, "NULL", "FIELD_DEFAULT"),
		oneOf("missing field as", f.MissingFieldAs, "ERROR", "NULL", "FIELD_DEFAULT"),
		f.Compression.validate(),
	)
}

func (f *NDJSONFormat) compile(c *compiler) error {
	if err := f.Validate(); err != nil {
		return err
	}
	w := newFormatWriter(c, "NDJSON")
	w.keyword("NULL_FIELD_AS", f.NullFieldAs)
	w.keyword("MISSING_FIELD_AS", f.MissingFieldAs)
	w.keyword("COMPRESSION", string(f.Compression))
	w.close()
	return nil
}

// ParquetFormat is the Parquet file format.
type ParquetFormat struct {
	// MissingFieldAs is one of ERROR or FIELD_DEFAULT.
	MissingFieldAs string
}

func (f *ParquetFormat) Validate() error {
	return oneOf("missing field as", f.MissingFieldAs, "ERROR", "FIELD_DEFAULT")
}

func (f *ParquetFormat) compile(c *compiler) error {
	if err := f.Validate(); err != nil {
		return err
	}
	w := newFormatWriter(c, "PARQUET")
	w.keyword("MISSING_FIELD_AS", f.MissingFieldAs)
	w.close()
	return nil
}

// ORCFormat is the ORC file format.
type ORCFormat struct{}

func (*ORCFormat) Validate() error {
	return nil
}

func (*ORCFormat) compile(c *compiler) error {
	newFormatWriter(c, "ORC").close()
	return nil
}
