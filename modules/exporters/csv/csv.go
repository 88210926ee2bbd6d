package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

// produces RFC4180 conforming csv (except for the line ending, which is LF instead of CRLF)
// this does not use encoding/csv since this results in a huge performance drop due to first writing to strings and then checking those for commas, which is unnessecary for all the numbers

const writeBufferSize = 64 * 1024

type csvExporter struct {
	id      string
	outfile string
	f       io.WriteCloser
	writer  *bufio.Writer
	flush   bool
}

func (pe *csvExporter) writeString(field string) error {
	if field == "" {
		return nil
	}
	if !strings.ContainsAny(field, "\"\r\n,") {
		r1, _ := utf8.DecodeRuneInString(field)
		if unicode.IsSpace(r1) {
			if err := pe.writer.WriteByte('"'); err != nil {
				return err
			}
			if _, err := pe.writer.WriteString(field); err != nil {
				return err
			}
			return pe.writer.WriteByte('"')
		}
		_, err := pe.writer.WriteString(field)
		return err
	}
	if err := pe.writer.WriteByte('"'); err != nil {
		return err
	}
	for len(field) > 0 {
		special := strings.IndexByte(field, '"')
		if special == -1 {
			if _, err := pe.writer.WriteString(field); err != nil {
				return err
			}
			break
		}
		if _, err := pe.writer.WriteString(field[:special]); err != nil {
			return err
		}
		if _, err := pe.writer.WriteString("\"\""); err != nil {
			return err
		}
		field = field[special+1:]
	}
	return pe.writer.WriteByte('"')
}

func (pe *csvExporter) endLine() error {
	if err := pe.writer.WriteByte('\n'); err != nil {
		return err
	}
	if pe.flush {
		return pe.writer.Flush()
	}
	return nil
}

func (pe *csvExporter) fields(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := pe.writer.WriteByte(','); err != nil {
				return err
			}
		}
		if err := pe.writeString(field); err != nil {
			return err
		}
	}
	return pe.endLine()
}

func (pe *csvExporter) count(n uint64) error {
	if err := pe.writer.WriteByte(','); err != nil {
		return err
	}
	_, err := pe.writer.WriteString(strconv.FormatUint(n, 10))
	return err
}

// ExportTags writes the tag report
func (pe *csvExporter) ExportTags(rows []flows.TagCount) error {
	if err := pe.fields(flows.TagHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := pe.writeString(row.Tag); err != nil {
			return err
		}
		if err := pe.count(row.Count); err != nil {
			return err
		}
		if err := pe.endLine(); err != nil {
			return err
		}
	}
	return nil
}

// ExportPortProtocols writes the port/protocol report
func (pe *csvExporter) ExportPortProtocols(rows []flows.PortProtocolCount) error {
	if err := pe.fields(flows.PortProtocolHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := pe.writer.WriteString(strconv.FormatUint(uint64(row.Port), 10)); err != nil {
			return err
		}
		if err := pe.writer.WriteByte(','); err != nil {
			return err
		}
		if err := pe.writeString(row.Protocol); err != nil {
			return err
		}
		if err := pe.count(row.Count); err != nil {
			return err
		}
		if err := pe.endLine(); err != nil {
			return err
		}
	}
	return nil
}

//Finish Write outstanding data and wait for completion
func (pe *csvExporter) Finish() error {
	if err := pe.writer.Flush(); err != nil {
		pe.f.Close()
		return err
	}
	return pe.f.Close()
}

func (pe *csvExporter) ID() string {
	return pe.id
}

func (pe *csvExporter) Init() (err error) {
	pe.f, err = util.CreateOutput(pe.outfile)
	if err != nil {
		return fmt.Errorf("couldn't open file %s: %w", pe.outfile, err)
	}
	pe.writer = bufio.NewWriterSize(pe.f, writeBufferSize)
	return nil
}

func newCSVExporter(name string, opts interface{}, args []string) (arguments []string, ret util.Module, err error) {
	arguments = args

	outfile, ok := util.StringOption(opts, "file")
	if !ok || outfile == "" {
		return nil, nil, errors.New("CSV exporter needs a filename as argument")
	}
	flush, _ := util.BoolOption(opts, "flush")

	if name == "" {
		name = "CSV|" + outfile
	}
	ret = &csvExporter{id: name, outfile: outfile, flush: flush}
	return
}

func csvhelp(w io.Writer, name string) {
	fmt.Fprintf(w, `
The %s exporter writes a report to a csv file with a header line followed
by one line per tag or per port/protocol pair.

As option, the output file is needed; - writes to stdout.

Usage configuration:
  format: %s
  file: tag_counts.csv
  options:
    flush: false   # flush after each line
`, name, name)
}

func init() {
	flows.RegisterExporter("csv", "Exports reports to a csv file.", newCSVExporter, csvhelp)
}
