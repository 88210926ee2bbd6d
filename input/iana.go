package input

import (
	"strconv"
	"strings"

	"github.com/google/gopacket/layers"

	"github.com/shebbar27/flow-log-parser/flows"
)

// gopacket names some protocols after its decoders; these are the IANA keywords.
var ianaKeywords = map[layers.IPProtocol]string{
	layers.IPProtocolIPv6HopByHop:    "HOPOPT",
	layers.IPProtocolICMPv4:          "ICMP",
	layers.IPProtocolIPv6Routing:     "IPv6-Route",
	layers.IPProtocolIPv6Fragment:    "IPv6-Frag",
	layers.IPProtocolESP:             "ESP",
	layers.IPProtocolAH:              "AH",
	layers.IPProtocolICMPv6:          "IPv6-ICMP",
	layers.IPProtocolNoNextHeader:    "IPv6-NoNxt",
	layers.IPProtocolIPv6Destination: "IPv6-Opts",
	layers.IPProtocolMPLSInIP:        "MPLS-in-IP",
}

// BuiltinProtocols returns protocol rows for every IP protocol gopacket knows.
// It is used when no protocol reference table is given.
func BuiltinProtocols() []flows.ProtocolRow {
	var rows []flows.ProtocolRow
	for i := 0; i < 256; i++ {
		p := layers.IPProtocol(i)
		name, ok := ianaKeywords[p]
		if !ok {
			name = p.String()
			if name == "" || strings.HasPrefix(name, "Unknown") {
				continue
			}
		}
		rows = append(rows, flows.ProtocolRow{Decimal: strconv.Itoa(i), Keyword: name})
	}
	return rows
}
