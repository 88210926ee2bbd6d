package input

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shebbar27/flow-log-parser/flows"
)

const protocolNumbers = "\ufeffDecimal,Keyword,Protocol,IPv6 Extension Header,Reference\n" +
	"0,HOPOPT,IPv6 Hop-by-Hop Option,Y,[RFC8200]\n" +
	"6,TCP,Transmission Control,,\"[RFC9293]\"\n" +
	"17,UDP,User Datagram,,[RFC768][Jon_Postel]\n" +
	"146-252,,Unassigned,,[Internet_Assigned_Numbers_Authority]\n"

func TestReadProtocols(t *testing.T) {
	rows, err := ReadProtocols(strings.NewReader(protocolNumbers))
	require.NoError(t, err)
	assert.Equal(t, []flows.ProtocolRow{
		{Line: 2, Decimal: "0", Keyword: "HOPOPT"},
		{Line: 3, Decimal: "6", Keyword: "TCP"},
		{Line: 4, Decimal: "17", Keyword: "UDP"},
		{Line: 5, Decimal: "146-252", Keyword: ""},
	}, rows)

	reg, err := flows.NewRegistry(rows)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, "tcp", reg.Resolve("6"))
}

func TestReadPolicies(t *testing.T) {
	rows, err := ReadPolicies(strings.NewReader("dstport,protocol,tag\n25,tcp,sv_P1\n 68 , udp , sv_P2 \n\n443,tcp,sv_P2\n"))
	require.NoError(t, err)
	assert.Equal(t, []flows.PolicyRow{
		{Line: 2, DstPort: "25", Protocol: "tcp", Tag: "sv_P1"},
		{Line: 3, DstPort: " 68 ", Protocol: " udp ", Tag: " sv_P2 "},
		{Line: 5, DstPort: "443", Protocol: "tcp", Tag: "sv_P2"},
	}, rows)

	pol, err := flows.NewPolicy(rows)
	require.NoError(t, err)
	assert.Equal(t, "sv_p2", pol.Classify(68, "UDP"))
}

func TestReadPoliciesColumnOrder(t *testing.T) {
	rows, err := ReadPolicies(strings.NewReader("tag, protocol ,dstport\nweb,tcp,80\n"))
	require.NoError(t, err)
	assert.Equal(t, []flows.PolicyRow{{Line: 2, DstPort: "80", Protocol: "tcp", Tag: "web"}}, rows)
}

func TestReadEmpty(t *testing.T) {
	protocols, err := ReadProtocols(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, protocols)
	policies, err := ReadPolicies(strings.NewReader("dstport,protocol,tag\n"))
	require.NoError(t, err)
	assert.Empty(t, policies)
}

func TestReadMalformed(t *testing.T) {
	tests := map[string]struct {
		read  func(string) error
		input string
		line  int
		field string
		err   error
	}{
		"missing column": {
			read:  readPolicies,
			input: "dstport,tag\n80,web\n",
			line:  1,
			field: ProtocolColumn,
			err:   flows.ErrMissingField,
		},
		"short row": {
			read:  readPolicies,
			input: "dstport,protocol,tag\n80,tcp,web\n443,tcp\n",
			line:  3,
			field: TagColumn,
			err:   flows.ErrMissingField,
		},
		"short protocol row": {
			read:  readProtocols,
			input: "Decimal,Keyword\n6,TCP\n17\n",
			line:  3,
			field: KeywordColumn,
			err:   flows.ErrMissingField,
		},
		"bare quote": {
			read:  readPolicies,
			input: "dstport,protocol,tag\n80,tcp,web\n80,t\"cp,web\n",
			line:  3,
			err:   csv.ErrBareQuote,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.read(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, flows.ErrMalformedReferenceRow)
			assert.ErrorIs(t, err, tc.err)
			var merr *flows.MalformedRowError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, tc.line, merr.Line)
			assert.Equal(t, tc.field, merr.Field)
		})
	}
}

func readPolicies(s string) error {
	_, err := ReadPolicies(strings.NewReader(s))
	return err
}

func readProtocols(s string) error {
	_, err := ReadProtocols(strings.NewReader(s))
	return err
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookup.csv")
	require.NoError(t, os.WriteFile(path, []byte("dstport,protocol,tag\n80,tcp,web\n443,tcp\n"), 0o644))

	_, err := LoadPolicies(path)
	assert.ErrorIs(t, err, flows.ErrMalformedReferenceRow)
	assert.Contains(t, err.Error(), path)

	path = filepath.Join(dir, "protocol-numbers.csv")
	require.NoError(t, os.WriteFile(path, []byte(protocolNumbers), 0o644))
	rows, err := LoadProtocols(path)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = LoadProtocols(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
