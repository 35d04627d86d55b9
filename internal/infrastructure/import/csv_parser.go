// Package csvimport reads customer batches from CSV uploads.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	partnerapp "github.com/erp/crm/internal/application/partner"
)

// Recognised header names, compared case-insensitively
const (
	ColumnName  = "name"
	ColumnEmail = "email"
	ColumnPhone = "phone"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrMissingHeader   = errors.New("header row is missing")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParserOption configures the reader
type ParserOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// ReadCustomers parses a CSV with a header row into a bulk request.
// Columns are matched by header; name and email are required and
// unknown columns are ignored. Blank lines and rows with only empty
// fields are skipped, so record numbers in bulk results count data
// rows, not file lines.
func ReadCustomers(r io.Reader, opts ...ParserOption) (partnerapp.BulkCreateCustomersRequest, error) {
	var req partnerapp.BulkCreateCustomersRequest

	buf := bufio.NewReader(r)
	if head, _ := buf.Peek(len(utf8BOM)); string(head) == string(utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}
	data, err := io.ReadAll(buf)
	if err != nil {
		return req, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return req, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return req, ErrInvalidEncoding
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(reader)
	}

	header, err := reader.Read()
	if err == io.EOF {
		return req, ErrMissingHeader
	}
	if err != nil {
		return req, fmt.Errorf("failed to read header: %w", err)
	}
	columns := indexHeader(header)
	if missing := missingColumns(columns, ColumnName, ColumnEmail); len(missing) > 0 {
		return req, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return req, fmt.Errorf("failed to read line: %w", err)
		}
		if isBlank(record) {
			continue
		}
		req.Customers = append(req.Customers, partnerapp.CreateCustomerRequest{
			Name:  field(record, columns, ColumnName),
			Email: field(record, columns, ColumnEmail),
			Phone: field(record, columns, ColumnPhone),
		})
	}
	return req, nil
}

func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func missingColumns(columns map[string]int, required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// field returns the trimmed value of column, or "" when the row is short
func field(record []string, columns map[string]int, column string) string {
	i, ok := columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
