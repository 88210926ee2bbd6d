package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shebbar27/flow-log-parser/flows"
)

func TestBuiltinProtocols(t *testing.T) {
	rows := BuiltinProtocols()
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.NotEmpty(t, row.Keyword, row.Decimal)
		assert.False(t, strings.HasPrefix(row.Keyword, "Unknown"), row.Decimal)
	}

	reg, err := flows.NewRegistry(rows)
	require.NoError(t, err)
	assert.Equal(t, len(rows), reg.Len())
	for number, want := range map[string]string{
		"0":  "hopopt",
		"1":  "icmp",
		"6":  "tcp",
		"17": "udp",
		"50": "esp",
		"58": "ipv6-icmp",
	} {
		name, ok := reg.Lookup(number)
		assert.True(t, ok, number)
		assert.Equal(t, want, name, number)
	}
	_, ok := reg.Lookup("253")
	assert.False(t, ok)
}
