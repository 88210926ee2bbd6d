package flows

import (
	"io"

	"github.com/shebbar27/flow-log-parser/util"
)

const exporterName = "exporter"

// Report headers
var (
	TagHeader          = []string{"Tag", "Count"}
	PortProtocolHeader = []string{"Port", "Protocol", "Count"}
)

// Exporter writes one report. Each output file gets its own exporter, which
// gets exactly one call to one of the Export methods on it, then Finish.
type Exporter interface {
	util.Module
	// ExportTags writes the tag report.
	ExportTags([]TagCount) error
	// ExportPortProtocols writes the port/protocol report.
	ExportPortProtocols([]PortProtocolCount) error
	// Finish flushes outstanding data and closes the output.
	Finish() error
}

// RegisterExporter registers an exporter (see module system in util)
func RegisterExporter(name, desc string, new util.ModuleCreator, help util.ModuleHelp) {
	util.RegisterModule(exporterName, name, desc, new, help)
}

// ExporterHelp writes the help of a specific exporter to w (see module system in util)
func ExporterHelp(w io.Writer, which string) error {
	return util.GetModuleHelp(w, exporterName, which)
}

// MakeExporter creates an exporter instance (see module system in util)
func MakeExporter(which, name string, options interface{}, args []string) ([]string, Exporter, error) {
	args, module, err := util.CreateModule(exporterName, which, name, options, args)
	if err != nil {
		return args, nil, err
	}
	return args, module.(Exporter), nil
}

// ListExporters returns a list of exporters (see module system in util)
func ListExporters() ([]util.ModuleDescription, error) {
	return util.GetModules(exporterName)
}
