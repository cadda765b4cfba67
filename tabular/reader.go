package tabular

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Source is one uploaded file held fully in memory.
type Source struct {
	Name string
	Data []byte
}

// ReadExcel decodes a spreadsheet source into a table. Only the first sheet is
// read, the first row supplies column headers, and every cell is read as text
// so identifier columns that look numeric lose no precision.
func ReadExcel(src Source) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &SourceReadError{File: src.Name, Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &SourceReadError{File: src.Name, Err: fmt.Errorf("no sheets found")}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &SourceReadError{File: src.Name, Err: err}
	}
	if len(rows) == 0 {
		return New(), nil
	}

	t := New(dedupeHeaders(rows[0])...)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		t.AppendRow(row...)
	}
	return t, nil
}

// ReadDelimited decodes a delimited text source (default separator: tab).
// Bytes that are not valid UTF-8 are decoded as Windows-1258 first. Rows with
// more fields than the header are malformed and skipped rather than aborting
// the read; short rows are padded with empty cells.
func ReadDelimited(src Source, sep rune) (*Table, error) {
	if sep == 0 {
		sep = '\t'
	}
	data := src.Data
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1258.NewDecoder(), data)
		if err != nil {
			return nil, &SourceReadError{File: src.Name, Err: err}
		}
		data = decoded
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return New(), nil
	}

	header := strings.Split(lines[0], string(sep))
	t := New(dedupeHeaders(header)...)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, string(sep))
		if len(fields) > len(header) {
			continue
		}
		t.AppendRow(fields...)
	}
	return t, nil
}

// ExtractArchive scans a zip container and returns the entries whose names end
// with one of the given extensions (case-insensitive). Non-matching entries
// are ignored. Each match is extracted into an independent buffer.
func ExtractArchive(src Source, exts ...string) ([]Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return nil, &SourceReadError{File: src.Name, Err: err}
	}
	var out []Source
	for _, entry := range zr.File {
		lower := strings.ToLower(entry.Name)
		matched := false
		for _, ext := range exts {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, &SourceReadError{File: entry.Name, Err: err}
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()
			return nil, &SourceReadError{File: entry.Name, Err: err}
		}
		rc.Close()
		out = append(out, Source{Name: entry.Name, Data: buf.Bytes()})
	}
	return out, nil
}

func dedupeHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ReadCache memoizes parsed tables by the hash of the exact input bytes, so
// re-running with identical uploads skips re-parsing. The cache is advisory:
// callers get an independent copy and must never assume it is populated.
type ReadCache struct {
	mu     sync.Mutex
	tables map[[sha256.Size]byte]*Table
}

// NewReadCache creates an empty parse cache.
func NewReadCache() *ReadCache {
	return &ReadCache{tables: make(map[[sha256.Size]byte]*Table)}
}

// Excel reads a spreadsheet source through the cache.
func (c *ReadCache) Excel(src Source) (*Table, error) {
	return c.memoize('x', src, func() (*Table, error) { return ReadExcel(src) })
}

// Delimited reads a delimited text source through the cache.
func (c *ReadCache) Delimited(src Source, sep rune) (*Table, error) {
	return c.memoize(byte(sep), src, func() (*Table, error) { return ReadDelimited(src, sep) })
}

func (c *ReadCache) memoize(mode byte, src Source, read func() (*Table, error)) (*Table, error) {
	h := sha256.New()
	h.Write([]byte{mode})
	h.Write(src.Data)
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))

	c.mu.Lock()
	cached, ok := c.tables[key]
	c.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	t, err := read()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.tables[key] = t
	c.mu.Unlock()
	return t.Clone(), nil
}
