package ipfix

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CN-TU/go-ipfix"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

const pen uint32 = 1234
const tmpBase uint16 = 0x7000

// Information elements not in the iana list. They get a number from the
// private range on first use.
var (
	tagIE      = ipfix.NewInformationElement("flowTag", 0, 0, ipfix.StringType, 0)
	protocolIE = ipfix.NewInformationElement("protocolName", 0, 0, ipfix.StringType, 0)
)

type ipfixExporter struct {
	id        string
	outfile   string
	specfile  string
	countIE   ipfix.InformationElement
	portIE    ipfix.InformationElement
	out       io.WriteCloser
	spec      io.WriteCloser
	writer    *ipfix.MessageStream
	allocated map[string]ipfix.InformationElement
	now       ipfix.DateTimeNanoseconds
}

func (pe *ipfixExporter) template(ies ...ipfix.InformationElement) (int, error) {
	return pe.writer.AddTemplate(pe.now, pe.AllocateIE(ies)...)
}

// ExportTags writes one data record per tag
func (pe *ipfixExporter) ExportTags(rows []flows.TagCount) error {
	id, err := pe.template(tagIE, pe.countIE)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := pe.writer.SendData(pe.now, id, row.Tag, row.Count); err != nil {
			return fmt.Errorf("tag %q: %w", row.Tag, err)
		}
	}
	return nil
}

// ExportPortProtocols writes one data record per port/protocol pair
func (pe *ipfixExporter) ExportPortProtocols(rows []flows.PortProtocolCount) error {
	id, err := pe.template(pe.portIE, protocolIE, pe.countIE)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := pe.writer.SendData(pe.now, id, row.Port, row.Protocol, row.Count); err != nil {
			return fmt.Errorf("port %d/%s: %w", row.Port, row.Protocol, err)
		}
	}
	return nil
}

//Finish Write outstanding data and wait for completion
func (pe *ipfixExporter) Finish() error {
	err := pe.writer.Flush(pe.now)
	if err == nil && pe.spec != nil {
		pe.writeSpec(pe.spec)
	}
	if cerr := pe.closeOutputs(); err == nil {
		err = cerr
	}
	return err
}

// closeOutputs closes the message stream file and the spec file, if any,
// and returns the first error.
func (pe *ipfixExporter) closeOutputs() (err error) {
	for _, c := range []io.Closer{pe.out, pe.spec} {
		if c == nil {
			continue
		}
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	pe.out, pe.spec = nil, nil
	return
}

func (pe *ipfixExporter) writeSpec(w io.Writer) {
	ies := make([]ipfix.InformationElement, len(pe.allocated))
	for _, ie := range pe.allocated {
		ies[ie.ID-tmpBase] = ie
	}
	for _, ie := range ies {
		fmt.Fprintln(w, ie)
	}
}

func (pe *ipfixExporter) ID() string {
	return pe.id
}

var normalizer = strings.NewReplacer("(", "❲", ")", "❳")

func normalizeName(name string) string {
	return normalizer.Replace(name)
}

// AllocateIE assigns private numbers to temporary information elements.
func (pe *ipfixExporter) AllocateIE(ies []ipfix.InformationElement) []ipfix.InformationElement {
	for i, ie := range ies {
		if ie.ID == 0 && ie.Pen == 0 { //Temporary Element
			if ie, ok := pe.allocated[ie.Name]; ok {
				ies[i] = ie
				continue
			}
			name := ie.Name
			ie = ipfix.InformationElement{
				Name:   normalizeName(name),
				Pen:    pen,
				ID:     uint16(len(pe.allocated)) + tmpBase,
				Type:   ie.Type,
				Length: ie.Length,
			}
			ies[i] = ie
			pe.allocated[name] = ie
		}
	}
	return ies
}

func (pe *ipfixExporter) Init() (err error) {
	pe.allocated = make(map[string]ipfix.InformationElement)
	pe.now = ipfix.DateTimeNanoseconds(time.Now().UnixNano())
	pe.out, err = util.CreateOutput(pe.outfile)
	if err != nil {
		return fmt.Errorf("couldn't open file %s: %w", pe.outfile, err)
	}
	if pe.specfile != "" {
		pe.spec, err = util.CreateOutput(pe.specfile)
		if err != nil {
			pe.closeOutputs()
			return fmt.Errorf("couldn't open file %s: %w", pe.specfile, err)
		}
	}
	pe.writer, err = ipfix.MakeMessageStream(pe.out, 65535, 0)
	if err != nil {
		pe.closeOutputs()
		return fmt.Errorf("couldn't create ipfix message stream: %w", err)
	}
	return nil
}

func newIPFIXExporter(name string, opts interface{}, args []string) ([]string, util.Module, error) {
	outfile, ok := util.StringOption(opts, "file")
	if !ok || outfile == "" {
		return nil, nil, errors.New("IPFIX exporter needs a filename as argument")
	}
	specfile, _ := util.StringOption(opts, "spec")

	ipfix.LoadIANASpec()
	countIE, err := ipfix.GetInformationElement("observedFlowTotalCount")
	if err != nil {
		return nil, nil, err
	}
	portIE, err := ipfix.GetInformationElement("destinationTransportPort")
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = "IPFIX|" + outfile
	}
	return args, &ipfixExporter{id: name, outfile: outfile, specfile: specfile, countIE: countIE, portIE: portIE}, nil
}

func ipfixhelp(w io.Writer, name string) {
	fmt.Fprintf(w, `
The %s exporter writes a report as an ipfix message stream. Every row
becomes one data record; counts use observedFlowTotalCount, tags and
protocol names use private information elements.

As option, the output file is needed.

Usage configuration:
  format: %s
  file: tag_counts.ipfix
  options:
    spec: tag_counts.iespec   # write iespec of private ies to file
`, name, name)
}

func init() {
	flows.RegisterExporter("ipfix", "Exports reports to an ipfix file.", newIPFIXExporter, ipfixhelp)
}
