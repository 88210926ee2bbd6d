package flows

import (
	"strconv"
	"strings"
)

// Untagged is the tag of flows without a matching policy entry.
const Untagged = "untagged"

// PolicyRow is one row of the lookup table.
type PolicyRow struct {
	Line     int // source line, for error reporting only
	DstPort  string
	Protocol string
	Tag      string
}

// LookupKey identifies a (destination port, protocol name) pair. Protocol is always lowercase.
type LookupKey struct {
	Port     uint16
	Protocol string
}

// Policy maps LookupKeys to tags. It is read-only after NewPolicy.
type Policy struct {
	tags map[LookupKey]string
}

// ParsePort parses a destination port in [0, 65535].
func ParsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, ErrInvalidPort
	}
	return uint16(port), nil
}

// NewPolicy builds a policy from rows. Later rows overwrite earlier rows with
// the same key.
func NewPolicy(rows []PolicyRow) (*Policy, error) {
	p := &Policy{tags: make(map[LookupKey]string, len(rows))}
	for _, row := range rows {
		port, err := ParsePort(row.DstPort)
		if err != nil {
			return nil, &MalformedRowError{Table: PolicyTable, Line: row.Line, Field: "dstport", Err: err}
		}
		protocol := normalize(row.Protocol)
		if protocol == "" {
			return nil, &MalformedRowError{Table: PolicyTable, Line: row.Line, Field: "protocol", Err: ErrMissingField}
		}
		tag := normalize(row.Tag)
		if tag == "" {
			return nil, &MalformedRowError{Table: PolicyTable, Line: row.Line, Field: "tag", Err: ErrMissingField}
		}
		p.tags[LookupKey{Port: port, Protocol: protocol}] = tag
	}
	return p, nil
}

// Classify returns the tag for port and protocol, or Untagged.
func (p *Policy) Classify(port uint16, protocol string) string {
	if tag, ok := p.tags[LookupKey{Port: port, Protocol: normalize(protocol)}]; ok {
		return tag
	}
	return Untagged
}

// Len returns the number of policy entries.
func (p *Policy) Len() int {
	return len(p.tags)
}
