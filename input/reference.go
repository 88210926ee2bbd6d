package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shebbar27/flow-log-parser/flows"
)

// Column names of the reference tables.
const (
	DecimalColumn  = "Decimal"
	KeywordColumn  = "Keyword"
	DstPortColumn  = "dstport"
	ProtocolColumn = "protocol"
	TagColumn      = "tag"
)

// headerReader reads csv rows and addresses fields by the column names of the
// first line.
type headerReader struct {
	table   string
	csv     *csv.Reader
	columns []int
	names   []string
}

func newHeaderReader(r io.Reader, table string, names ...string) (*headerReader, error) {
	hr := &headerReader{
		table:   table,
		csv:     csv.NewReader(r),
		columns: make([]int, len(names)),
		names:   names,
	}
	hr.csv.FieldsPerRecord = -1
	header, err := hr.csv.Read()
	if err != nil {
		return nil, hr.wrap(err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}
	for i, name := range names {
		col, ok := index[name]
		if !ok {
			return nil, &flows.MalformedRowError{Table: table, Line: 1, Field: name, Err: flows.ErrMissingField}
		}
		hr.columns[i] = col
	}
	return hr, nil
}

func (hr *headerReader) wrap(err error) error {
	if err == io.EOF {
		return err
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &flows.MalformedRowError{Table: hr.table, Line: perr.Line, Err: perr.Err}
	}
	return fmt.Errorf("reading %s table: %w", hr.table, err)
}

// next returns the requested fields of the next row and its line number.
func (hr *headerReader) next() ([]string, int, error) {
	record, err := hr.csv.Read()
	if err != nil {
		return nil, 0, hr.wrap(err)
	}
	line, _ := hr.csv.FieldPos(0)
	values := make([]string, len(hr.columns))
	for i, col := range hr.columns {
		if col >= len(record) {
			return nil, line, &flows.MalformedRowError{Table: hr.table, Line: line, Field: hr.names[i], Err: flows.ErrMissingField}
		}
		values[i] = record[col]
	}
	return values, line, nil
}

// ReadProtocols reads a protocol reference table with Decimal and Keyword
// columns, like the IANA protocol-numbers.csv. An empty input yields no rows.
func ReadProtocols(r io.Reader) ([]flows.ProtocolRow, error) {
	hr, err := newHeaderReader(r, flows.ProtocolTable, DecimalColumn, KeywordColumn)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []flows.ProtocolRow
	for {
		values, line, err := hr.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, flows.ProtocolRow{Line: line, Decimal: values[0], Keyword: values[1]})
	}
}

// ReadPolicies reads a lookup table with dstport, protocol and tag columns.
// An empty input yields no rows.
func ReadPolicies(r io.Reader) ([]flows.PolicyRow, error) {
	hr, err := newHeaderReader(r, flows.PolicyTable, DstPortColumn, ProtocolColumn, TagColumn)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []flows.PolicyRow
	for {
		values, line, err := hr.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, flows.PolicyRow{Line: line, DstPort: values[0], Protocol: values[1], Tag: values[2]})
	}
}

// LoadProtocols reads the protocol reference table from a file.
func LoadProtocols(path string) ([]flows.ProtocolRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadProtocols(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// LoadPolicies reads the lookup table from a file.
func LoadPolicies(path string) ([]flows.PolicyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadPolicies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
