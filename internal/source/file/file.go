/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package file implements the delimited-file variant of source.Adapter. A
// directory is one source; each delimited file in it is one logical table
// named after the file without its extension.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// DefaultSampleSize bounds schema inference to the first N data rows.
const DefaultSampleSize = 1000

var defaultNullTokens = []string{"", "NA", "NULL"}

var tableExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Options configure how delimited files are read.
type Options struct {
	// Delimiter defaults to ','.
	Delimiter rune

	// Encoding names the character encoding of the files. Recognized:
	// "utf-8" (default), "latin-1"/"iso-8859-1", "windows-1252",
	// "utf-16le", "utf-16be".
	Encoding string

	// NullTokens are compared case-insensitively against raw cells; a match
	// loads as null. Defaults to {"", "NA", "NULL"}.
	NullTokens []string

	// SampleSize bounds schema inference. Defaults to DefaultSampleSize.
	SampleSize int
}

// Adapter reads a directory of delimited files.
type Adapter struct {
	dir        string
	delimiter  rune
	decoder    *encoding.Decoder
	nullTokens map[string]struct{}
	sampleSize int
	logger     *zap.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New validates the directory and returns an adapter over it.
func New(dir string, opts Options, logger *zap.Logger) (*Adapter, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &source.SourceNotFoundError{Source: source.KindFile, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &source.SourceNotFoundError{Source: source.KindFile, Path: dir, Err: fmt.Errorf("not a directory")}
	}

	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if len(opts.NullTokens) == 0 {
		opts.NullTokens = defaultNullTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	decoder, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]struct{}, len(opts.NullTokens))
	for _, t := range opts.NullTokens {
		tokens[strings.ToLower(t)] = struct{}{}
	}

	return &Adapter{
		dir:        dir,
		delimiter:  opts.Delimiter,
		decoder:    decoder,
		nullTokens: tokens,
		sampleSize: opts.SampleSize,
		logger:     logger.Named("file"),
	}, nil
}

func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), nil
	}
	return nil, fmt.Errorf("unrecognized encoding %q", name)
}

func (a *Adapter) Kind() source.Kind { return source.KindFile }

func (a *Adapter) Close() error { return nil }

// ListTables enumerates delimited files in the directory, sorted by name.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, &source.SourceNotFoundError{Source: source.KindFile, Path: a.dir, Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if tableExtensions[ext] {
			names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	sort.Strings(names)
	return names, nil
}

// tablePath resolves a logical table name to its file, trying the known
// extensions in a fixed order.
func (a *Adapter) tablePath(name string) (string, error) {
	for _, ext := range []string{".csv", ".tsv", ".txt"} {
		path := filepath.Join(a.dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", &source.SourceNotFoundError{
		Source: source.KindFile,
		Path:   filepath.Join(a.dir, name),
		Err:    fmt.Errorf("no delimited file for table %q", name),
	}
}

func (a *Adapter) openReader(path string) (*csv.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &source.SourceNotFoundError{Source: source.KindFile, Path: path, Err: err}
	}

	var r io.Reader = f
	if a.decoder != nil {
		r = transform.NewReader(f, a.decoder)
	}

	cr := csv.NewReader(r)
	cr.Comma = a.delimiter
	// FieldsPerRecord defaults to the header width, so ragged rows surface
	// as csv.ErrFieldCount and become MalformedFileError.
	return cr, f, nil
}

// readHeader reads and validates the header row.
func readHeader(cr *csv.Reader, path string) ([]string, error) {
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &source.MalformedFileError{File: path, Err: fmt.Errorf("missing header row")}
	}
	if err != nil {
		return nil, &source.MalformedFileError{File: path, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, nil
}

func (a *Adapter) isNullToken(raw string) bool {
	_, ok := a.nullTokens[strings.ToLower(raw)]
	return ok
}

// LoadTable reads the whole file, parsing each cell under the inferred (or
// declared) column type. Null sentinels load as null and unparseable cells
// load as raw; only structural defects abort the load.
func (a *Adapter) LoadTable(ctx context.Context, name string, opts source.LoadOptions) (*table.Table, error) {
	start := time.Now()

	if len(opts.Filters) > 0 {
		return nil, fmt.Errorf("table %q: filter predicates require a SQL source", name)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var schema table.Schema
	if opts.DeclaredSchema != nil {
		schema = opts.DeclaredSchema.Clone()
	} else {
		inferred, err := a.InferSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		schema = inferred
	}

	path, err := a.tablePath(name)
	if err != nil {
		return nil, err
	}
	cr, closer, err := a.openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	header, err := readHeader(cr, path)
	if err != nil {
		return nil, err
	}
	if len(header) != len(schema.Columns) {
		return nil, &source.MalformedFileError{
			File: path,
			Err:  fmt.Errorf("header has %d columns, schema expects %d", len(header), len(schema.Columns)),
		}
	}
	// Matching arity is not enough: a declared schema with the right width
	// but wrong names would silently mislabel every column.
	for i, h := range header {
		if h != schema.Columns[i].Name {
			return nil, &source.MalformedFileError{
				File: path,
				Err:  fmt.Errorf("header column %d is %q, schema expects %q", i+1, h, schema.Columns[i].Name),
			}
		}
	}

	tbl := &table.Table{Name: name, Schema: schema}
	line := 1
	for {
		if err := a.checkDeadline(ctx, "load_table", name); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Ragged rows are a structural defect of the file, not a cell
			// anomaly.
			return nil, &source.MalformedFileError{File: path, Line: line, Err: err}
		}

		row := make(table.Row, len(record))
		for i, raw := range record {
			row[i] = a.parseCell(schema.Columns[i].Type, raw)
		}
		tbl.Rows = append(tbl.Rows, row)

		if opts.MaxRows > 0 && len(tbl.Rows) >= opts.MaxRows {
			break
		}
	}

	a.logger.Debug("loaded table",
		zap.String("table", name),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return tbl, nil
}

func (a *Adapter) parseCell(tag table.TypeTag, raw string) table.Value {
	if a.isNullToken(raw) {
		return table.Null()
	}
	v, ok := table.Parse(tag, raw)
	if !ok {
		return table.Raw(raw)
	}
	return v
}

func (a *Adapter) checkDeadline(ctx context.Context, op, name string) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &source.TimeoutError{Source: source.KindFile, Operation: op, Table: name, Err: ctx.Err()}
		}
		return ctx.Err()
	default:
		return nil
	}
}
