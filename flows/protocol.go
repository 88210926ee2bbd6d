package flows

import (
	"strings"
)

// UnknownProtocolPrefix prefixes the name synthesized for protocol numbers missing from a Registry.
const UnknownProtocolPrefix = "unknown protocol "

// ProtocolRow is one row of the protocol reference table.
type ProtocolRow struct {
	Line    int // source line, for error reporting only
	Decimal string
	Keyword string
}

// Registry maps protocol numbers (textual, as they appear in flow records) to
// canonical lowercase protocol names. It is read-only after NewRegistry.
type Registry struct {
	names map[string]string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewRegistry builds a registry from rows. Later rows overwrite earlier rows
// with the same number. Rows without a keyword are not inserted, so their
// number resolves to the unknown placeholder.
func NewRegistry(rows []ProtocolRow) (*Registry, error) {
	r := &Registry{names: make(map[string]string, len(rows))}
	for _, row := range rows {
		number := normalize(row.Decimal)
		if number == "" {
			return nil, &MalformedRowError{Table: ProtocolTable, Line: row.Line, Field: "Decimal", Err: ErrMissingField}
		}
		name := normalize(row.Keyword)
		if name == "" {
			continue
		}
		r.names[number] = name
	}
	return r, nil
}

// Lookup returns the canonical name of number, and whether the registry knows it.
func (r *Registry) Lookup(number string) (string, bool) {
	number = normalize(number)
	name, ok := r.names[number]
	if !ok {
		return UnknownProtocolPrefix + number, false
	}
	return name, true
}

// Resolve returns the canonical name of number, or the unknown placeholder.
func (r *Registry) Resolve(number string) string {
	name, _ := r.Lookup(number)
	return name
}

// Len returns the number of known protocols.
func (r *Registry) Len() int {
	return len(r.names)
}
