// Package csvexport reads and stores CSV files downloaded from export endpoints.
package csvexport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Parser reads an exported CSV with BOM and encoding detection
type Parser struct {
	delimiter rune
	headerMap map[string]int
	headers   []string
	line      int
	rows      int
	reader    *csv.Reader
}

// Option configures a Parser
type Option func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// NewParser creates a parser reading from r. A leading UTF-8 BOM, which
// exports carry so that spreadsheets detect the encoding, is discarded.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	p := &Parser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if bytes.HasPrefix(head, bom) {
		_, _ = buf.Discard(len(bom))
	}
	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// ParseBytes creates a parser over data
func ParseBytes(data []byte, opts ...Option) (*Parser, error) {
	return NewParser(bytes.NewReader(data), opts...)
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read export for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// a multi-byte rune may be cut at the peek boundary
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads the header row
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.headers = make([]string, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		p.headers[i] = h
		p.headerMap[h] = i
	}
	p.line = 1
	return nil
}

// Headers returns the parsed header names
func (p *Parser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *Parser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// Row is one parsed CSV row
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value of a column
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row; it returns io.EOF at the end of input
func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}
	p.rows++

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}
	for i, h := range p.headers {
		if i < len(record) {
			row.Data[h] = strings.TrimSpace(record[i])
		} else {
			row.Data[h] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping blank ones
func (p *Parser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// TotalRows returns the number of data rows read so far
func (p *Parser) TotalRows() int {
	return p.rows
}
