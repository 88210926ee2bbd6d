package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/shebbar27/flow-log-parser/flows"
)

const (
	readBufferSize = 64 * 1024
	maxLineLength  = 1024 * 1024
)

// FlowLog is an open flow log yielding one record per line. It satisfies
// flows.Records and flows.LineErrors: a line longer than the limit is
// skipped up to its end and reported by LineErr, reading continues with the
// next line.
type FlowLog struct {
	r       *bufio.Reader
	name    string
	line    []byte
	lineErr error
	err     error
	closers []io.Closer
}

// NewFlowLog reads records from r. name is used in error messages only.
func NewFlowLog(name string, r io.Reader) *FlowLog {
	return &FlowLog{r: bufio.NewReaderSize(r, readBufferSize), name: name}
}

// Scan advances to the next line. It returns false at the end of the input
// or on a read error, which is then returned by Err.
func (fl *FlowLog) Scan() bool {
	fl.line, fl.lineErr = fl.line[:0], nil
	for {
		chunk, err := fl.r.ReadSlice('\n')
		if fl.lineErr == nil {
			if len(fl.line)+len(chunk) > maxLineLength+1 {
				fl.lineErr = fmt.Errorf("%w: more than %d bytes", flows.ErrLineTooLong, maxLineLength)
				fl.line = fl.line[:0]
			} else {
				fl.line = append(fl.line, chunk...)
			}
		}
		switch {
		case err == nil:
			return true
		case errors.Is(err, bufio.ErrBufferFull):
		case err == io.EOF:
			// last line without a trailing newline
			return len(fl.line) > 0 || fl.lineErr != nil
		default:
			fl.err = err
			return false
		}
	}
}

// Text returns the current line without its line ending.
func (fl *FlowLog) Text() string {
	line := bytes.TrimSuffix(fl.line, []byte{'\n'})
	return string(bytes.TrimSuffix(line, []byte{'\r'}))
}

// LineErr returns flows.ErrLineTooLong if the current line was skipped.
func (fl *FlowLog) LineErr() error {
	return fl.lineErr
}

// Err returns the first read error, not counting the end of the input.
func (fl *FlowLog) Err() error {
	return fl.err
}

// OpenFlowLog opens a flow log file. "-" reads standard input, and a ".gz"
// suffix is decompressed on the fly.
func OpenFlowLog(path string) (*FlowLog, error) {
	var r io.Reader
	var closers []io.Closer
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
		closers = append(closers, f)
	}
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, err
		}
		r = zr
		closers = append([]io.Closer{zr}, closers...)
	}
	fl := NewFlowLog(path, r)
	fl.closers = closers
	return fl, nil
}

// Name returns the name given on creation.
func (fl *FlowLog) Name() string {
	return fl.name
}

// Close releases the underlying file, if any.
func (fl *FlowLog) Close() (err error) {
	for _, c := range fl.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	fl.closers = nil
	return
}
