package flows

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// record returns a version 2 flow log line with the given destination port and protocol number.
func record(dstport, protocol string) string {
	return fmt.Sprintf("2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 49153 %s %s 25 20000 1620140761 1620140821 ACCEPT OK", dstport, protocol)
}

func lines(l ...string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(strings.Join(l, "\n")))
}

var (
	testProtocols = []ProtocolRow{
		{Line: 2, Decimal: "1", Keyword: "ICMP"},
		{Line: 3, Decimal: "6", Keyword: "TCP"},
		{Line: 4, Decimal: "17", Keyword: "UDP"},
	}
	testPolicies = []PolicyRow{
		{Line: 2, DstPort: "80", Protocol: "tcp", Tag: "web"},
		{Line: 3, DstPort: "443", Protocol: "TCP", Tag: "Web"},
		{Line: 4, DstPort: "53", Protocol: "udp", Tag: "dns"},
		{Line: 5, DstPort: "0", Protocol: "icmp", Tag: "ping"},
	}
)

func testTables(t *testing.T) (*Registry, *Policy) {
	t.Helper()
	reg, err := NewRegistry(testProtocols)
	require.NoError(t, err)
	pol, err := NewPolicy(testPolicies)
	require.NoError(t, err)
	return reg, pol
}
