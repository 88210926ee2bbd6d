package input

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shebbar27/flow-log-parser/flows"
)

const flowLog = `2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT OK
2 123456789012 eni-4d3c2b1a 192.168.1.100 203.0.113.101 23 49154 6 15 12000 1620140761 1620140821 REJECT OK
`

func readAll(t *testing.T, fl *FlowLog) []string {
	t.Helper()
	var ret []string
	for fl.Scan() {
		ret = append(ret, fl.Text())
	}
	require.NoError(t, fl.Err())
	return ret
}

func TestOpenFlowLog(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "flows.log")
	require.NoError(t, os.WriteFile(plain, []byte(flowLog), 0o644))

	compressed := filepath.Join(dir, "flows.log.gz")
	f, err := os.Create(compressed)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(flowLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	want := strings.Split(strings.TrimSuffix(flowLog, "\n"), "\n")
	for _, path := range []string{plain, compressed} {
		fl, err := OpenFlowLog(path)
		require.NoError(t, err, path)
		assert.Equal(t, path, fl.Name())
		assert.Equal(t, want, readAll(t, fl), path)
		assert.NoError(t, fl.Close())
		assert.NoError(t, fl.Close())
	}
}

func TestOpenFlowLogErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenFlowLog(filepath.Join(dir, "missing.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	notGzip := filepath.Join(dir, "flows.log.gz")
	require.NoError(t, os.WriteFile(notGzip, []byte(flowLog), 0o644))
	_, err = OpenFlowLog(notGzip)
	assert.ErrorIs(t, err, gzip.ErrHeader)
}

func TestFlowLogLongLine(t *testing.T) {
	long := strings.Repeat("x ", 100*1024)
	fl := NewFlowLog("long", strings.NewReader(long+"\nshort\n"))
	got := readAll(t, fl)
	require.Len(t, got, 2)
	assert.Equal(t, long, got[0])
	assert.Equal(t, "short", got[1])
	assert.NoError(t, fl.Close())
}

func TestFlowLogOversizedLine(t *testing.T) {
	good := strings.Split(strings.TrimSuffix(flowLog, "\n"), "\n")
	huge := good[0] + " " + strings.Repeat("x", 2*maxLineLength)
	input := good[0] + "\n" + huge + "\r\n" + good[1] + "\r\n" + huge

	fl := NewFlowLog("big.log", strings.NewReader(input))
	var got []string
	var failed []int
	for n := 1; fl.Scan(); n++ {
		if fl.LineErr() != nil {
			assert.ErrorIs(t, fl.LineErr(), flows.ErrLineTooLong)
			failed = append(failed, n)
			continue
		}
		got = append(got, fl.Text())
	}
	require.NoError(t, fl.Err())
	assert.Equal(t, good, got)
	assert.Equal(t, []int{2, 4}, failed)
}

func TestFlowLogOversizedLineRun(t *testing.T) {
	good := strings.Split(strings.TrimSuffix(flowLog, "\n"), "\n")
	huge := good[0] + " " + strings.Repeat("x", 2*maxLineLength)
	input := good[0] + "\n" + huge + "\n" + good[1] + "\n"

	res, err := flows.Run(context.Background(),
		[]flows.ProtocolRow{{Decimal: "6", Keyword: "TCP"}},
		[]flows.PolicyRow{{DstPort: "49153", Protocol: "tcp", Tag: "high"}},
		NewFlowLog("big.log", strings.NewReader(input)),
		flows.Workers(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Records)
	assert.Equal(t, 3, res.Lines)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.ErrorIs(t, res.Errors[0], flows.ErrLineTooLong)
}
