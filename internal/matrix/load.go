package matrix

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
)

// LoadOptions configures file loading on top of Options.
type LoadOptions struct {
	Options
	// Charset names the CSV file encoding (IANA name, e.g. "windows-1256").
	// Empty means UTF-8. Matrices exported from legacy GIS tooling are
	// often not UTF-8.
	Charset string
	// Sheet selects the XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// Load reads a compatibility matrix from a CSV or XLSX file, dispatching on
// the file extension.
func Load(path string, opts LoadOptions) (*Matrix, error) {
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, opts)
	case ".xlsx":
		return LoadXLSX(path, opts)
	default:
		return nil, eris.Errorf("matrix: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadCSV reads a matrix from a CSV file with category labels on the first
// row and first column. The top-left corner cell is ignored.
func LoadCSV(path string, opts LoadOptions) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "matrix: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if opts.Charset != "" && !strings.EqualFold(opts.Charset, "utf-8") {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "matrix: unknown charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "matrix: read csv row")
		}
		rows = append(rows, record)
	}

	return fromRows(rows, opts.Options)
}

// LoadXLSX reads a matrix from an XLSX workbook, same layout as LoadCSV.
func LoadXLSX(path string, opts LoadOptions) (*Matrix, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "matrix: open xlsx")
	}

	var sheet *xlsx.Sheet
	if opts.Sheet != "" {
		s, ok := f.Sheet[opts.Sheet]
		if !ok {
			return nil, eris.Errorf("matrix: sheet %q not found", opts.Sheet)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.New("matrix: workbook has no sheets")
		}
		sheet = f.Sheets[0]
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}

	return fromRows(rows, opts.Options)
}

// fromRows interprets a header row plus labeled data rows as a square table.
// Row labels must match the header labels in order; a mismatch means the
// table is not the same set of categories on both axes.
func fromRows(rows [][]string, opts Options) (*Matrix, error) {
	if len(rows) < 2 {
		return nil, eris.Wrap(ErrNotSquare, "table needs a header row and at least one data row")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, eris.Wrap(ErrNotSquare, "header row has no category labels")
	}
	labels := make([]string, len(header)-1)
	copy(labels, header[1:])

	cells := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		rowLabel := opts.Synonyms.Canonical(row[0])
		if i >= len(labels) {
			return nil, eris.Wrapf(ErrNotSquare, "more data rows than header labels")
		}
		colLabel := opts.Synonyms.Canonical(labels[i])
		if rowLabel != colLabel {
			return nil, eris.Wrapf(ErrNotSquare, "row %d labeled %q, header says %q", i+1, rowLabel, colLabel)
		}
		cells = append(cells, row[1:])
	}

	return New(labels, cells, opts)
}
