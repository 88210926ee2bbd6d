package flows

// Aggregator classifies flow records and counts them per tag and per
// (port, protocol) pair. An Aggregator is not safe for concurrent use; see
// ParallelAggregator for sharded processing.
type Aggregator struct {
	registry *Registry
	policy   *Policy
	stats    *Stats
	tags     map[string]uint64
	pairs    map[LookupKey]uint64
	total    uint64
}

// NewAggregator returns an empty aggregator using reg and pol for classification.
// stats may be nil.
func NewAggregator(reg *Registry, pol *Policy, stats *Stats) *Aggregator {
	return &Aggregator{
		registry: reg,
		policy:   pol,
		stats:    stats,
		tags:     make(map[string]uint64),
		pairs:    make(map[LookupKey]uint64),
	}
}

// Observe classifies record and counts it. If the record can't be parsed, a
// *RecordParseError is returned and neither table changes.
func (a *Aggregator) Observe(record string) error {
	c, err := Classify(record, a.registry, a.policy)
	if err != nil {
		a.stats.failed()
		return err
	}
	a.tags[c.Tag]++
	a.pairs[c.Key]++
	a.total++
	a.stats.observed(c)
	return nil
}

// Merge adds the counts of other to a. other is left untouched.
func (a *Aggregator) Merge(other *Aggregator) {
	for tag, n := range other.tags {
		a.tags[tag] += n
	}
	for key, n := range other.pairs {
		a.pairs[key] += n
	}
	a.total += other.total
}

// Total returns the number of records counted.
func (a *Aggregator) Total() uint64 {
	return a.total
}

// Snapshot returns a sorted copy of the current counts.
func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		Tags:          sortedTags(a.tags),
		PortProtocols: sortedPortProtocols(a.pairs),
	}
}
