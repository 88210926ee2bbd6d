package flows

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stats counts pipeline events as prometheus metrics. A nil *Stats is valid
// and counts nothing.
type Stats struct {
	records  prometheus.Counter
	skipped  prometheus.Counter
	untagged prometheus.Counter
	unknown  prometheus.Counter
	tags     *prometheus.CounterVec
}

// NewStats creates the pipeline metrics and registers them with reg.
func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowlog",
			Name:      "records_processed_total",
			Help:      "Flow records classified and counted.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowlog",
			Name:      "records_failed_total",
			Help:      "Flow records skipped because they could not be parsed.",
		}),
		untagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowlog",
			Name:      "records_untagged_total",
			Help:      "Flow records without a matching policy entry.",
		}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowlog",
			Name:      "records_unknown_protocol_total",
			Help:      "Flow records whose protocol number is not in the protocol registry.",
		}),
		tags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowlog",
			Name:      "records_by_tag_total",
			Help:      "Flow records per resolved tag.",
		}, []string{"tag"}),
	}
	for _, c := range []prometheus.Collector{s.records, s.skipped, s.untagged, s.unknown, s.tags} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Stats) observed(c Classification) {
	if s == nil {
		return
	}
	s.records.Inc()
	s.tags.WithLabelValues(c.Tag).Inc()
	if c.Tag == Untagged {
		s.untagged.Inc()
	}
	if !c.KnownProtocol {
		s.unknown.Inc()
	}
}

func (s *Stats) failed() {
	if s == nil {
		return
	}
	s.skipped.Inc()
}
