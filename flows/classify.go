package flows

import (
	"fmt"
	"strings"
)

// Positions of the fields used from a flow record (0-based).
const (
	DstPortField  = 6
	ProtocolField = 7

	minRecordFields = ProtocolField + 1
)

// Classification is the outcome of classifying one flow record.
type Classification struct {
	Key           LookupKey
	Tag           string
	KnownProtocol bool
}

// Classify resolves the protocol name and tag of one flow record. The returned
// RecordParseError has Line unset; the caller knows where the record came from.
func Classify(record string, reg *Registry, pol *Policy) (Classification, error) {
	fields := strings.Fields(record)
	if len(fields) < minRecordFields {
		return Classification{}, &RecordParseError{Err: fmt.Errorf("%w: got %d, need %d", ErrShortRecord, len(fields), minRecordFields)}
	}
	port, err := ParsePort(fields[DstPortField])
	if err != nil {
		return Classification{}, &RecordParseError{Err: fmt.Errorf("%w %q", err, fields[DstPortField])}
	}
	protocol, known := reg.Lookup(fields[ProtocolField])
	return Classification{
		Key:           LookupKey{Port: port, Protocol: protocol},
		Tag:           pol.Classify(port, protocol),
		KnownProtocol: known,
	}, nil
}
