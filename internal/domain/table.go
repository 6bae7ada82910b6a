package domain

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row bounds used by the extractors.
const (
	DefaultRowLimit   = 50000
	TelemetryRowLimit = 500
	WeatherRowLimit   = 5000
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Row maps a header name to the raw (trimmed) cell value of one data line.
type Row map[string]string

// Table is a parsed tabular export. Headers keep file column order and may
// repeat; Rows never exceeds the limit it was read with.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadOptions controls table parsing. A zero Limit means DefaultRowLimit and
// a zero Comma means the delimiter is sniffed from the header line.
type ReadOptions struct {
	Limit int
	Comma rune
}

func (o ReadOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultRowLimit
	}
	return o.Limit
}

// ParseTable reads delimited text. Blank lines are skipped, quoted fields may
// contain the delimiter and doubled quotes, and rows shorter than the header
// are padded with empty strings. Reading stops silently after the row limit.
func ParseTable(r io.Reader, opts ReadOptions) (Table, error) {
	const op = "parse table"

	content, err := io.ReadAll(r)
	if err != nil {
		return Table{}, extractErr(op, ReasonIO, err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return Table{}, extractErr(op, ReasonStructure, ErrEmptyFile)
	}

	comma := opts.Comma
	if comma == 0 {
		comma = DetectDelimiter(headerLine(content))
	}

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	b := newTableBuilder(opts.limit())
	for !b.full() {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return Table{}, extractErr(op, ReasonIO, err)
		}
		b.add(rec)
	}
	return b.table(op)
}

// ParseWorkbook reads the first sheet of an XLSX workbook with the same
// header and row semantics as ParseTable.
func ParseWorkbook(r io.Reader, opts ReadOptions) (Table, error) {
	const op = "parse workbook"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, extractErr(op, ReasonIO, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, extractErr(op, ReasonStructure, ErrEmptyFile)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return Table{}, extractErr(op, ReasonIO, err)
	}
	defer rows.Close()

	b := newTableBuilder(opts.limit())
	for !b.full() && rows.Next() {
		rec, err := rows.Columns()
		if err != nil {
			return Table{}, extractErr(op, ReasonIO, err)
		}
		b.add(rec)
	}
	return b.table(op)
}

// DetectDelimiter prefers ';' when the header line contains one.
func DetectDelimiter(header string) rune {
	if strings.ContainsRune(header, ';') {
		return ';'
	}
	return ','
}

func headerLine(content []byte) string {
	for len(content) > 0 {
		line := content
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			content = nil
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return string(line)
		}
	}
	return ""
}

type tableBuilder struct {
	limit   int
	headers []string
	rows    []Row
}

func newTableBuilder(limit int) *tableBuilder {
	return &tableBuilder{limit: limit}
}

func (b *tableBuilder) full() bool {
	return b.headers != nil && len(b.rows) >= b.limit
}

func (b *tableBuilder) add(rec []string) {
	if blankRecord(rec) {
		return
	}
	if b.headers == nil {
		b.headers = make([]string, len(rec))
		for i, h := range rec {
			b.headers[i] = strings.TrimSpace(h)
		}
		return
	}
	row := make(Row, len(b.headers))
	for j, h := range b.headers {
		if j < len(rec) {
			row[h] = strings.TrimSpace(rec[j])
		} else {
			row[h] = ""
		}
	}
	b.rows = append(b.rows, row)
}

func (b *tableBuilder) table(op string) (Table, error) {
	if b.headers == nil {
		return Table{}, extractErr(op, ReasonStructure, ErrEmptyFile)
	}
	rows := b.rows
	if rows == nil {
		rows = []Row{}
	}
	return Table{Headers: b.headers, Rows: rows}, nil
}

func blankRecord(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "")
}
