package parquet

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

// TagRow is a tag report row in Parquet format.
type TagRow struct {
	Tag   string `parquet:"tag,zstd"`
	Count int64  `parquet:"count"`
}

// PortProtocolRow is a port/protocol report row in Parquet format.
type PortProtocolRow struct {
	Port     int32  `parquet:"port"`
	Protocol string `parquet:"protocol,zstd"`
	Count    int64  `parquet:"count"`
}

// getCompression returns the parquet-go compression codec for name.
func getCompression(name string) (compress.Codec, error) {
	switch name {
	case "zstd", "":
		return &parquet.Zstd, nil
	case "snappy":
		return &parquet.Snappy, nil
	case "lz4":
		return &parquet.Lz4Raw, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "none":
		return &parquet.Uncompressed, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}

type parquetExporter struct {
	id      string
	outfile string
	codec   compress.Codec
	f       io.WriteCloser
}

func write[T any](w io.Writer, codec compress.Codec, rows []T) error {
	writer := parquet.NewGenericWriter[T](w, parquet.Compression(codec))
	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

func (pe *parquetExporter) ExportTags(rows []flows.TagCount) error {
	out := make([]TagRow, len(rows))
	for i, row := range rows {
		out[i] = TagRow{Tag: row.Tag, Count: int64(row.Count)}
	}
	return write(pe.f, pe.codec, out)
}

func (pe *parquetExporter) ExportPortProtocols(rows []flows.PortProtocolCount) error {
	out := make([]PortProtocolRow, len(rows))
	for i, row := range rows {
		out[i] = PortProtocolRow{Port: int32(row.Port), Protocol: row.Protocol, Count: int64(row.Count)}
	}
	return write(pe.f, pe.codec, out)
}

func (pe *parquetExporter) Finish() error {
	return pe.f.Close()
}

func (pe *parquetExporter) ID() string {
	return pe.id
}

func (pe *parquetExporter) Init() (err error) {
	if pe.outfile == "-" {
		return errors.New("parquet exporter can't write to stdout")
	}
	pe.f, err = util.CreateOutput(pe.outfile)
	if err != nil {
		return fmt.Errorf("couldn't open file %s: %w", pe.outfile, err)
	}
	return nil
}

func newParquetExporter(name string, opts interface{}, args []string) ([]string, util.Module, error) {
	outfile, ok := util.StringOption(opts, "file")
	if !ok || outfile == "" {
		return nil, nil, errors.New("parquet exporter needs a filename as argument")
	}
	compression, _ := util.StringOption(opts, "compression")
	codec, err := getCompression(compression)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = "PARQUET|" + outfile
	}
	return args, &parquetExporter{id: name, outfile: outfile, codec: codec}, nil
}

func parquethelp(w io.Writer, name string) {
	fmt.Fprintf(w, `
The %s exporter writes a report to a parquet file. The tag report has the
columns tag and count, the port/protocol report port, protocol and count.

As option, the output file is needed.

Usage configuration:
  format: %s
  file: tag_counts.parquet
  options:
    compression: zstd   # zstd, snappy, lz4, gzip or none
`, name, name)
}

func init() {
	flows.RegisterExporter("parquet", "Exports reports to a parquet file.", newParquetExporter, parquethelp)
}
