package flows

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	for in, want := range map[string]uint16{
		"0":     0,
		"80":    80,
		" 443 ": 443,
		"65535": 65535,
	} {
		port, err := ParsePort(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, port, in)
	}
	for _, in := range []string{"", "-1", "65536", "80.0", "http", "0x50"} {
		_, err := ParsePort(in)
		assert.ErrorIs(t, err, ErrInvalidPort, in)
	}
}

func TestPolicyClassify(t *testing.T) {
	_, pol := testTables(t)
	assert.Equal(t, 4, pol.Len())
	assert.Equal(t, "web", pol.Classify(80, "tcp"))
	assert.Equal(t, "web", pol.Classify(443, "TCP"))
	assert.Equal(t, "dns", pol.Classify(53, " Udp"))
	assert.Equal(t, Untagged, pol.Classify(53, "tcp"))
	assert.Equal(t, Untagged, pol.Classify(22, "tcp"))
	assert.Equal(t, Untagged, pol.Classify(80, "unknown protocol 99"))
}

func TestPolicyDuplicate(t *testing.T) {
	pol, err := NewPolicy([]PolicyRow{
		{DstPort: "25", Protocol: "tcp", Tag: "mail"},
		{DstPort: "25", Protocol: "TCP", Tag: "SMTP"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pol.Len())
	assert.Equal(t, "smtp", pol.Classify(25, "tcp"))
}

func TestPolicyMalformed(t *testing.T) {
	tests := map[string]struct {
		row   PolicyRow
		field string
		err   error
	}{
		"port too large":  {PolicyRow{Line: 7, DstPort: "70000", Protocol: "tcp", Tag: "x"}, "dstport", ErrInvalidPort},
		"port not number": {PolicyRow{Line: 7, DstPort: "http", Protocol: "tcp", Tag: "x"}, "dstport", ErrInvalidPort},
		"no protocol":     {PolicyRow{Line: 7, DstPort: "80", Protocol: " ", Tag: "x"}, "protocol", ErrMissingField},
		"no tag":          {PolicyRow{Line: 7, DstPort: "80", Protocol: "tcp"}, "tag", ErrMissingField},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewPolicy([]PolicyRow{testPolicies[0], tc.row})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedReferenceRow)
			assert.ErrorIs(t, err, tc.err)
			var merr *MalformedRowError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, PolicyTable, merr.Table)
			assert.Equal(t, 7, merr.Line)
			assert.Equal(t, tc.field, merr.Field)
		})
	}
}

func TestPolicyRebuild(t *testing.T) {
	rows := append([]PolicyRow{
		{DstPort: "25", Protocol: "tcp", Tag: "mail"},
		{DstPort: "25", Protocol: "TCP", Tag: "SMTP"},
		{DstPort: "68", Protocol: "Udp", Tag: "sv_P2"},
	}, testPolicies...)
	first, err := NewPolicy(rows)
	require.NoError(t, err)
	second, err := NewPolicy(rows)
	require.NoError(t, err)

	assert.Equal(t, first.Len(), second.Len())
	for _, key := range []LookupKey{
		{25, "tcp"}, {25, "TCP"}, {68, "udp"}, {80, "tcp"}, {443, "Tcp"},
		{53, "udp"}, {0, "icmp"}, {22, "tcp"}, {80, "unknown protocol 99"},
	} {
		assert.Equal(t, first.Classify(key.Port, key.Protocol), second.Classify(key.Port, key.Protocol), key)
	}
	assert.Equal(t, "smtp", second.Classify(25, "tcp"))
}
