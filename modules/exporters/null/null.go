package null

import (
	"fmt"
	"io"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

type nullExporter struct {
}

func (pe *nullExporter) ExportTags([]flows.TagCount) error { return nil }

func (pe *nullExporter) ExportPortProtocols([]flows.PortProtocolCount) error { return nil }

//Finish Write outstanding data and wait for completion
func (pe *nullExporter) Finish() error { return nil }

func (pe *nullExporter) ID() string { return "null" }

func (pe *nullExporter) Init() error { return nil }

func newNullExporter(name string, opts interface{}, args []string) (arguments []string, ret util.Module, err error) {
	arguments = args
	ret = &nullExporter{}
	return
}

func nullHelp(w io.Writer, name string) {
	fmt.Fprintf(w, `
The %s exporter does not write out anything.
`, name)
}

func init() {
	flows.RegisterExporter("null", "Exports nothing.", newNullExporter, nullHelp)
}
