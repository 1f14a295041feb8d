/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package dataview

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReaderCloser couples a buffered reader with the closer of its source.
type ReaderCloser struct {
	*bufio.Reader
	io.Closer
}

// Close closes the underlying source, if any.
func (r *ReaderCloser) Close() error {
	if r.Closer != nil {
		return r.Closer.Close()
	}
	return nil
}

// CSVReader reads a Table from CSV text.  The header row names each column as
// 'role:name', e.g. 'category:Region' or 'value:Sales'.  Cells in value and
// highlight columns are parsed as float64; empty cells are nil.
type CSVReader struct {
	name   string
	reader ReaderCloser
}

// NewCSVReader returns a CSVReader producing a Table with the provided name.
// The reader takes ownership of reader.
func NewCSVReader(name string, reader ReaderCloser) *CSVReader {
	return &CSVReader{
		name:   name,
		reader: reader,
	}
}

func parseHeader(cells []string) ([]Column, error) {
	cols := make([]Column, len(cells))
	for idx, cell := range cells {
		roleStr, name, ok := strings.Cut(cell, ":")
		if !ok {
			return nil, fmt.Errorf("header cell '%s' is not of the form role:name", cell)
		}
		role, err := ParseRole(roleStr)
		if err != nil {
			return nil, err
		}
		cols[idx] = Column{Name: strings.TrimSpace(name), Role: role}
	}
	return cols, nil
}

func parseCell(col Column, cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	switch col.Role {
	case ValueRole, HighlightRole:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", col.Name, err)
		}
		return f, nil
	default:
		return cell, nil
	}
}

// Read consumes the receiver's input and returns the Table it describes.
// Read may only be called once.
func (r *CSVReader) Read() (*Table, error) {
	defer r.reader.Close()
	cr := csv.NewReader(r.reader.Reader)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset '%s' is empty", r.name)
		}
		return nil, err
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("dataset '%s': %w", r.name, err)
	}
	t := &Table{
		Name:    r.name,
		Columns: cols,
	}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset '%s': %w", r.name, err)
		}
		row := make([]any, len(record))
		for idx, cell := range record {
			if row[idx], err = parseCell(cols[idx], cell); err != nil {
				return nil, fmt.Errorf("dataset '%s' line %d: %w", r.name, line, err)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadCSV reads a Table with the provided name from CSV text in r.  If r is
// an io.Closer, it is closed.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	rc := ReaderCloser{Reader: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		rc.Closer = c
	}
	return NewCSVReader(name, rc).Read()
}
