package text

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

type textExporter struct {
	id      string
	outfile string
	f       io.WriteCloser
}

func (pe *textExporter) table(header []string, alignment ...int) *tablewriter.Table {
	t := tablewriter.NewWriter(pe.f)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetColumnAlignment(alignment)
	return t
}

func (pe *textExporter) ExportTags(rows []flows.TagCount) error {
	t := pe.table(flows.TagHeader, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT)
	for _, row := range rows {
		t.Append([]string{row.Tag, strconv.FormatUint(row.Count, 10)})
	}
	t.Render()
	return nil
}

func (pe *textExporter) ExportPortProtocols(rows []flows.PortProtocolCount) error {
	t := pe.table(flows.PortProtocolHeader, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT)
	for _, row := range rows {
		t.Append([]string{strconv.FormatUint(uint64(row.Port), 10), row.Protocol, strconv.FormatUint(row.Count, 10)})
	}
	t.Render()
	return nil
}

func (pe *textExporter) Finish() error {
	return pe.f.Close()
}

func (pe *textExporter) ID() string {
	return pe.id
}

func (pe *textExporter) Init() (err error) {
	pe.f, err = util.CreateOutput(pe.outfile)
	if err != nil {
		return fmt.Errorf("couldn't open file %s: %w", pe.outfile, err)
	}
	return nil
}

func newTextExporter(name string, opts interface{}, args []string) ([]string, util.Module, error) {
	outfile, ok := util.StringOption(opts, "file")
	if !ok || outfile == "" {
		return nil, nil, errors.New("text exporter needs a filename as argument")
	}
	if name == "" {
		name = "TEXT|" + outfile
	}
	return args, &textExporter{id: name, outfile: outfile}, nil
}

func texthelp(w io.Writer, name string) {
	fmt.Fprintf(w, `
The %s exporter writes a report as an aligned text table, e.g. for reading
on a terminal.

As option, the output file is needed; - writes to stdout.

Usage configuration:
  format: %s
  file: -
`, name, name)
}

func init() {
	flows.RegisterExporter("text", "Exports reports as text tables.", newTextExporter, texthelp)
}
