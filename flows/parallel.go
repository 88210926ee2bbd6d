package flows

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type numberedLine struct {
	number int
	text   string
	err    error
}

type shard struct {
	table  *Aggregator
	in     chan []numberedLine
	errors []*RecordParseError
}

// ParallelAggregator spreads records over several private Aggregators and
// sums their counts. The result equals sequential processing of the same input.
type ParallelAggregator struct {
	registry  *Registry
	policy    *Policy
	stats     *Stats
	batchSize int
	shards    []*shard
	merged    *Aggregator
}

// NewParallelAggregator returns an aggregator with num shards which hands
// records to them in batches of batchSize.
func NewParallelAggregator(num, batchSize int, reg *Registry, pol *Policy, stats *Stats) *ParallelAggregator {
	if num < 1 {
		num = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	ret := &ParallelAggregator{
		registry:  reg,
		policy:    pol,
		stats:     stats,
		batchSize: batchSize,
		shards:    make([]*shard, num),
		merged:    NewAggregator(reg, pol, stats),
	}
	for i := range ret.shards {
		ret.shards[i] = &shard{table: NewAggregator(reg, pol, stats)}
	}
	return ret
}

func (pa *ParallelAggregator) feed(ctx context.Context, source string, records Records, log *zap.Logger) (lines int, errs []*RecordParseError, err error) {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range pa.shards {
		s := s
		s.in = make(chan []numberedLine, 2)
		s.errors = nil
		g.Go(func() error {
			for batch := range s.in {
				for _, line := range batch {
					if perr := observeLine(s.table, source, line.number, line.text, line.err); perr != nil {
						s.errors = append(s.errors, perr)
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer func() {
			for _, s := range pa.shards {
				close(s.in)
			}
		}()
		next := 0
		batch := make([]numberedLine, 0, pa.batchSize)
		send := func() error {
			select {
			case pa.shards[next].in <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			next = (next + 1) % len(pa.shards)
			batch = make([]numberedLine, 0, pa.batchSize)
			return nil
		}
		for records.Scan() {
			lines++
			batch = append(batch, numberedLine{number: lines, text: records.Text(), err: lineErr(records)})
			if len(batch) == pa.batchSize {
				if err := send(); err != nil {
					return err
				}
			}
		}
		if err := records.Err(); err != nil {
			return fmt.Errorf("reading flow records: %w", err)
		}
		if len(batch) > 0 {
			return send()
		}
		return nil
	})
	err = g.Wait()

	for _, s := range pa.shards {
		pa.merged.Merge(s.table)
		s.table = NewAggregator(pa.registry, pa.policy, pa.stats)
		errs = append(errs, s.errors...)
		s.errors = nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Line < errs[j].Line })
	for _, perr := range errs {
		log.Debug("skipping flow record", zap.String("source", source), zap.Int("line", perr.Line), zap.Error(perr.Err))
	}
	return
}

// Snapshot returns the merged counts of all finished feeds.
func (pa *ParallelAggregator) Snapshot() Snapshot {
	return pa.merged.Snapshot()
}

// Total returns the number of records counted by all finished feeds.
func (pa *ParallelAggregator) Total() uint64 {
	return pa.merged.Total()
}
