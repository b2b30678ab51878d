package csvexport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Document is a fully parsed export file
type Document struct {
	Headers []string
	Rows    []*Row
}

// Parse reads a whole export file
func Parse(data []byte) (*Document, error) {
	p, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, err
	}
	return &Document{Headers: p.Headers(), Rows: rows}, nil
}

// RowCount returns the number of non-blank data rows
func (d *Document) RowCount() int {
	return len(d.Rows)
}

// Preview returns up to n rows ordered by the header columns
func (d *Document) Preview(n int) [][]string {
	n = min(max(n, 0), len(d.Rows))
	out := make([][]string, 0, n)
	for _, row := range d.Rows[:n] {
		fields := make([]string, len(d.Headers))
		for i, h := range d.Headers {
			fields[i] = row.Get(h)
		}
		out = append(out, fields)
	}
	return out
}

// ResolvePath decides where an export is written. An empty out uses the
// suggested filename in the working directory; an existing directory or a
// path ending in a separator receives the suggested filename.
func ResolvePath(out, filename string) string {
	if out == "" {
		return filename
	}
	if os.IsPathSeparator(out[len(out)-1]) {
		return filepath.Join(out, filename)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

// Save writes data to path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func Save(path string, data []byte, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrFileExists)
		}
		return fmt.Errorf("open export file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	return f.Close()
}
