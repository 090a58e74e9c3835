package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingHeader is returned when the file has no usable header row.
	ErrMissingHeader = errors.New("missing header row")
	// ErrMalformedInput is returned when the file cannot be parsed at all.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoUpload is returned when a request carries no file content.
	ErrNoUpload = errors.New("no file uploaded")
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Format is the container format of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFileName picks the format from the file extension. Uploads
// without an extension are treated as CSV.
func FormatFromFileName(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case "", ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// RawRow is one data line keyed by header name.
type RawRow struct {
	// Index is the 1-based data row number; the header and skipped blank
	// lines are not counted.
	Index int
	// Line is the 1-based physical line (or sheet row) in the file.
	Line   int
	Values map[string]string
}

// Get returns the value under the header, or "" when the column is absent.
func (r RawRow) Get(header string) string {
	return r.Values[header]
}

// recordSource yields raw records with their physical line numbers.
type recordSource interface {
	next() ([]string, int, error)
	io.Closer
}

// Reader streams RawRows out of an uploaded file in a single pass.
type Reader struct {
	src    recordSource
	header []string
	index  int
}

// NewReader opens the file and consumes its header row.
func NewReader(r io.Reader, format Format) (*Reader, error) {
	var (
		src recordSource
		err error
	)
	switch format {
	case FormatCSV:
		src = newCSVSource(r)
	case FormatXLSX:
		src, err = newXLSXSource(r)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	header, err := readHeader(src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &Reader{src: src, header: header}, nil
}

// Header returns the trimmed header names in file order.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next non-blank data row, or io.EOF once the file is
// exhausted.
func (r *Reader) Next() (RawRow, error) {
	for {
		record, line, err := r.src.next()
		if err != nil {
			return RawRow{}, err
		}
		if isBlank(record) {
			continue
		}
		r.index++
		return RawRow{
			Index:  r.index,
			Line:   line,
			Values: alignRecord(r.header, record),
		}, nil
	}
}

// Close releases resources held by the underlying decoder.
func (r *Reader) Close() error {
	return r.src.Close()
}

// readHeader takes the first record as the header. A blank first record is a
// missing header; the next line is never promoted in its place.
func readHeader(src recordSource) ([]string, error) {
	record, _, err := src.next()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, err
	}
	if isBlank(record) {
		return nil, ErrMissingHeader
	}
	header := make([]string, len(record))
	for i, name := range record {
		header[i] = strings.TrimSpace(name)
	}
	return header, nil
}

// alignRecord pairs values with header names positionally. Short records are
// padded with empty values, extra cells are dropped, and a repeated header
// name keeps the value of its first position.
func alignRecord(header []string, record []string) map[string]string {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, seen := values[name]; seen {
			continue
		}
		if i < len(record) {
			values[name] = record[i]
		} else {
			values[name] = ""
		}
	}
	return values
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type csvSource struct {
	reader *csv.Reader
}

func newCSVSource(r io.Reader) *csvSource {
	buffered := bufio.NewReader(r)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return &csvSource{reader: reader}
}

func (s *csvSource) next() ([]string, int, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformedInput, parseErr)
		}
		return nil, 0, fmt.Errorf("failed to read csv: %w", err)
	}
	line, _ := s.reader.FieldPos(0)
	return record, line, nil
}

func (s *csvSource) Close() error {
	return nil
}

type xlsxSource struct {
	file *excelize.File
	rows *excelize.Rows
	line int
}

func newXLSXSource(r io.Reader) (*xlsxSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %v", ErrMalformedInput, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrMalformedInput)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return &xlsxSource{file: f, rows: rows}, nil
}

func (s *xlsxSource) next() ([]string, int, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return nil, 0, io.EOF
	}
	s.line++
	record, err := s.rows.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, s.line, err)
	}
	return record, s.line, nil
}

func (s *xlsxSource) Close() error {
	rowsErr := s.rows.Close()
	fileErr := s.file.Close()
	return errors.Join(rowsErr, fileErr)
}
