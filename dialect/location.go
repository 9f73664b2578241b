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
	"net/url"
	"strings"
)

// ErrInvalidLocation is returned for a storage location with a missing name
// or an unexpected URI scheme.
var ErrInvalidLocation = errors.New("invalid storage location")

// Location is a stage or an external storage location.
type Location interface {
	Expr
	// Validate checks the location's name or URI.
	Validate() error
}

// Stage is a named stage, optionally narrowed to a path inside it.
type Stage struct {
	Name string
	Path string
}

// NewStage creates a stage location.
func NewStage(name, path string) (*Stage, error) {
	s := &Stage{Name: name, Path: path}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stage) Validate() error {
	if s.Name == "" || strings.ContainsAny(s.Name, " /'") {
		return fmt.Errorf("%w: stage name %q", ErrInvalidLocation, s.Name)
	}
	return nil
}

func (s *Stage) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.b.WriteByte('@')
	c.writeText(s.Name)
	if p := strings.TrimPrefix(s.Path, "/"); p != "" {
		c.b.WriteByte('/')
		c.writeText(p)
	}
	return nil
}

func validateScheme(uri, scheme string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	if u.Scheme != scheme {
		return fmt.Errorf("%w: expected a %s:// uri, got %q", ErrInvalidLocation, scheme, uri)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing bucket or container in %q", ErrInvalidLocation, uri)
	}
	return nil
}

// connectionWriter renders an external location with its CONNECTION block.
// The parameters, credentials included, are written in plain text.
type connectionWriter struct {
	c      *compiler
	params []string
}

func (w *connectionWriter) add(name, value string) {
	if value != "" {
		w.params = append(w.params, name+" = "+w.c.preparer.QuoteString(value))
	}
}

func (w *connectionWriter) write(uri string) {
	w.c.writeText(w.c.preparer.QuoteString(uri))
	if len(w.params) > 0 {
		w.c.b.WriteString(" CONNECTION = (")
		w.c.writeText(strings.Join(w.params, " "))
		w.c.b.WriteByte(')')
	}
}

// AmazonS3 is an Amazon S3 (or S3-compatible) location.
type AmazonS3 struct {
	URI                    string
	AccessKeyID            string
	SecretAccessKey        string
	EndpointURL            string
	EnableVirtualHostStyle *bool
	MasterKey              string
	Region                 string
	SecurityToken          string
}

// NewAmazonS3 creates an S3 location. uri must use the s3:// scheme.
func NewAmazonS3(uri, accessKeyID, secretAccessKey string) (*AmazonS3, error) {
	s := &AmazonS3{URI: uri, AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AmazonS3) Validate() error {
	return validateScheme(s.URI, "s3")
}

func (s *AmazonS3) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w := &connectionWriter{c: c}
	w.add("ENDPOINT_URL", s.EndpointURL)
	w.add("ACCESS_KEY_ID", s.AccessKeyID)
	w.add("SECRET_ACCESS_KEY", s.SecretAccessKey)
	if s.EnableVirtualHostStyle != nil {
		if *s.EnableVirtualHostStyle {
			w.params = append(w.params, "ENABLE_VIRTUAL_HOST_STYLE = TRUE")
		} else {
			w.params = append(w.params, "ENABLE_VIRTUAL_HOST_STYLE = FALSE")
		}
	}
	w.add("MASTER_KEY", s.MasterKey)
	w.add("REGION", s.Region)
	w.add("SECURITY_TOKEN", s.SecurityToken)
	w.write(s.URI)
	return nil
}

// AzureBlobStorage is an Azure Blob Storage location.
type AzureBlobStorage struct {
	URI         string
	AccountName string
	AccountKey  string
}

// NewAzureBlobStorage creates an Azure Blob Storage location. uri must use
// the azblob:// scheme.
func NewAzureBlobStorage(uri, accountName, accountKey string) (*AzureBlobStorage, error) {
	s := &AzureBlobStorage{URI: uri, AccountName: accountName, AccountKey: accountKey}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AzureBlobStorage) Validate() error {
	if err := validateScheme(s.URI, "azblob"); err != nil {
		return err
	}
	if s.AccountName == "" {
		return fmt.Errorf("%w: azure account name is required", ErrInvalidLocation)
	}
	return nil
}

func (s *AzureBlobStorage) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w := &connectionWriter{c: c}
	w.add("ENDPOINT_URL", "https://"+s.AccountName+".blob.core.windows.net")
	w.add("ACCOUNT_NAME", s.AccountName)
	w.add("ACCOUNT_KEY", s.AccountKey)
	w.write(s.URI)
	return nil
}

// GoogleCloudStorage is a Google Cloud Storage location.
type GoogleCloudStorage struct {
	URI string
	// Credentials is the base64 encoded service account key.
	Credentials string
}

// NewGoogleCloudStorage creates a GCS location. uri must use the gcs://
// scheme.
func NewGoogleCloudStorage(uri, credentials string) (*GoogleCloudStorage, error) {
	s := &GoogleCloudStorage{URI: uri, Credentials: credentials}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GoogleCloudStorage) Validate() error {
	return validateScheme(s.URI, "gcs")
}

func (s *GoogleCloudStorage) compile(c *compiler) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w := &connectionWriter{c: c}
	w.add("ENDPOINT_URL", "https://storage.googleapis.com")
	w.add("CREDENTIAL", s.Credentials)
	w.write(s.URI)
	return nil
}

// FileColumns selects expressions over the columns of staged files, which
// are referenced as $1, $2 and so on.
type FileColumns struct {
	Columns []Expr
	From    Location
}

func (f *FileColumns) compile(c *compiler) error {
	if len(f.Columns) == 0 || f.From == nil {
		return errors.New("file columns require columns and a location")
	}
	c.b.WriteString("(SELECT ")
	if err := c.writeList(f.Columns); err != nil {
		return err
	}
	c.b.WriteString(" FROM ")
	if err := f.From.compile(c); err != nil {
		return err
	}
	c.b.WriteByte(')')
	return nil
}
