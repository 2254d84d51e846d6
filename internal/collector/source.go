/*
Copyright 2026 The budget-allocator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"gopkg.in/yaml.v3"

	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/pkg/core"
)

const (
	// DefaultEncoding is the character set of CSV exports from the
	// spreadsheets the tables are maintained in.
	DefaultEncoding = "ISO-8859-1"

	// DefaultSeparator is the CSV field separator.
	DefaultSeparator = ','
)

// SourceOptions configures how a table file is read.
type SourceOptions struct {
	// Separator is the CSV field separator. Zero selects DefaultSeparator.
	Separator rune

	// Encoding is the IANA name of the CSV character set. Empty selects
	// DefaultEncoding.
	Encoding string
}

func (o SourceOptions) withDefaults() SourceOptions {
	if o.Separator == 0 {
		o.Separator = DefaultSeparator
	}
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	return o
}

// NewSource returns the source able to read path, chosen by file extension.
func NewSource(path string, opts SourceOptions) (TableSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return NewCSVSource(path, opts)
	case ".yaml", ".yml", ".json":
		return NewYAMLSource(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadTable reads and cleans the table at path.
func LoadTable(ctx context.Context, path string, opts SourceOptions) (*core.PriceTable, error) {
	source, err := NewSource(path, opts)
	if err != nil {
		return nil, err
	}
	return source.Load(ctx)
}

// CSVSource reads a delimited text export of the price table.
type CSVSource struct {
	path      string
	separator rune
	encoding  encoding.Encoding
	charset   string
}

// NewCSVSource creates a CSVSource, resolving the configured encoding.
func NewCSVSource(path string, opts SourceOptions) (*CSVSource, error) {
	opts = opts.withDefaults()
	enc, err := ianaindex.IANA.Encoding(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", opts.Encoding, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", opts.Encoding)
	}
	return &CSVSource{
		path:      path,
		separator: opts.Separator,
		encoding:  enc,
		charset:   opts.Encoding,
	}, nil
}

// Name implements TableSource.
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Load implements TableSource.
func (s *CSVSource) Load(ctx context.Context) (*core.PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening price table: %w", err)
	}
	defer f.Close() //nolint:errcheck

	raw, err := s.read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	table, err := Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("cleaning %s: %w", s.path, err)
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Loaded price table",
		"source", s.Name(),
		"encoding", s.charset,
		"tiers", len(table.Tiers),
		"categories", len(table.Categories))
	return table, nil
}

func (s *CSVSource) read(r io.Reader) (RawTable, error) {
	reader := csv.NewReader(s.encoding.NewDecoder().Reader(r))
	reader.Comma = s.separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return RawTable{}, fmt.Errorf("%w: %v", ErrMalformedTable, parseErr)
		}
		return RawTable{}, err
	}
	if len(records) == 0 {
		return RawTable{}, ErrEmptyTable
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return RawTable{Header: header, Records: records[1:]}, nil
}

// YAMLSource reads a price table written in the core.PriceTable schema:
//
//	tiers: [p1, p2]
//	thresholds: [10, 20]
//	categories:
//	  - {type: super marché, name: riz, prices: [10, 20]}
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a YAMLSource.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Name implements TableSource.
func (s *YAMLSource) Name() string {
	return "yaml:" + s.path
}

// Load implements TableSource.
func (s *YAMLSource) Load(ctx context.Context) (*core.PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening price table: %w", err)
	}

	var decoded core.PriceTable
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, s.path, err)
	}
	if blankRecord(decoded.Thresholds) {
		return nil, fmt.Errorf("%w: %s has no thresholds", ErrMalformedTable, s.path)
	}
	table, err := Clean(RawTableFrom(&decoded))
	if err != nil {
		return nil, fmt.Errorf("cleaning %s: %w", s.path, err)
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Loaded price table",
		"source", s.Name(),
		"tiers", len(table.Tiers),
		"categories", len(table.Categories))
	return table, nil
}
