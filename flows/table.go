package flows

import (
	"sort"
)

// TagCount is one row of the tag report.
type TagCount struct {
	Tag   string
	Count uint64
}

// PortProtocolCount is one row of the port/protocol report.
type PortProtocolCount struct {
	Port     uint16
	Protocol string
	Count    uint64
}

// Snapshot holds both frequency tables. Tags are ordered by tag, port/protocol
// pairs by port and then protocol.
type Snapshot struct {
	Tags          []TagCount
	PortProtocols []PortProtocolCount
}

// TagTotal returns the sum of all tag counts.
func (s Snapshot) TagTotal() (n uint64) {
	for _, t := range s.Tags {
		n += t.Count
	}
	return
}

// PortProtocolTotal returns the sum of all port/protocol counts.
func (s Snapshot) PortProtocolTotal() (n uint64) {
	for _, p := range s.PortProtocols {
		n += p.Count
	}
	return
}

// Tag returns the count of tag, 0 if it was never seen.
func (s Snapshot) Tag(tag string) uint64 {
	i := sort.Search(len(s.Tags), func(i int) bool { return s.Tags[i].Tag >= tag })
	if i < len(s.Tags) && s.Tags[i].Tag == tag {
		return s.Tags[i].Count
	}
	return 0
}

// PortProtocol returns the count of the (port, protocol) pair, 0 if it was never seen.
func (s Snapshot) PortProtocol(port uint16, protocol string) uint64 {
	for _, p := range s.PortProtocols {
		if p.Port == port && p.Protocol == protocol {
			return p.Count
		}
	}
	return 0
}

func sortedTags(counts map[string]uint64) []TagCount {
	ret := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		ret = append(ret, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Tag < ret[j].Tag })
	return ret
}

func sortedPortProtocols(counts map[LookupKey]uint64) []PortProtocolCount {
	ret := make([]PortProtocolCount, 0, len(counts))
	for key, count := range counts {
		ret = append(ret, PortProtocolCount{Port: key.Port, Protocol: key.Protocol, Count: count})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Port != ret[j].Port {
			return ret[i].Port < ret[j].Port
		}
		return ret[i].Protocol < ret[j].Protocol
	})
	return ret
}
