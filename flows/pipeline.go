package flows

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Records is a sequence of flow record lines. *bufio.Scanner satisfies it.
type Records interface {
	Scan() bool
	Text() string
	Err() error
}

// LineErrors is implemented by Records that can fail a single line without
// failing the whole input, e.g. a line exceeding the maximum length. LineErr
// reports the error of the line returned by the last Scan; Text is ignored
// then.
type LineErrors interface {
	LineErr() error
}

// how often the sequential path looks at the context
const cancelCheckInterval = 4096

// Result is the outcome of a pipeline run.
type Result struct {
	Snapshot
	// Errors holds the skipped records in input order.
	Errors []*RecordParseError
	// Records is the number of counted records.
	Records uint64
	// Lines is the number of lines read, including skipped ones.
	Lines int
}

type options struct {
	workers   int
	batchSize int
	logger    *zap.Logger
	stats     *Stats
}

// Option configures a Pipeline.
type Option func(*options)

// Workers sets the number of aggregation shards. Values below 2 process
// records sequentially.
func Workers(n int) Option {
	return func(o *options) { o.workers = n }
}

// BatchSize sets how many records are handed to a shard at once.
func BatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// Logger sets the logger; the default discards everything.
func Logger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStats counts pipeline events in s.
func WithStats(s *Stats) Option {
	return func(o *options) { o.stats = s }
}

// table is implemented by Aggregator and ParallelAggregator.
type table interface {
	feed(ctx context.Context, source string, records Records, log *zap.Logger) (lines int, errs []*RecordParseError, err error)
	Snapshot() Snapshot
	Total() uint64
}

// Pipeline streams flow logs through one aggregation. Counts accumulate across
// Feed calls; line numbers in errors are per source.
type Pipeline struct {
	opts   options
	table  table
	errors []*RecordParseError
	lines  int
}

// NewPipeline returns a pipeline classifying with reg and pol.
func NewPipeline(reg *Registry, pol *Policy, opts ...Option) *Pipeline {
	o := options{workers: 1, batchSize: 256, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{opts: o}
	if o.workers > 1 {
		p.table = NewParallelAggregator(o.workers, o.batchSize, reg, pol, o.stats)
	} else {
		p.table = NewAggregator(reg, pol, o.stats)
	}
	o.logger.Debug("pipeline created",
		zap.Int("protocols", reg.Len()),
		zap.Int("policies", pol.Len()),
		zap.Int("workers", o.workers))
	return p
}

// Feed processes all records. Unparseable records are collected and do not
// stop processing; a read error from records or a canceled ctx does.
func (p *Pipeline) Feed(ctx context.Context, source string, records Records) error {
	lines, errs, err := p.table.feed(ctx, source, records, p.opts.logger)
	p.lines += lines
	p.errors = append(p.errors, errs...)
	if err != nil {
		return err
	}
	p.opts.logger.Debug("flow log processed",
		zap.String("source", source),
		zap.Int("lines", lines),
		zap.Int("skipped", len(errs)))
	return nil
}

// Result returns the counts and errors collected so far.
func (p *Pipeline) Result() *Result {
	return &Result{
		Snapshot: p.table.Snapshot(),
		Errors:   p.errors,
		Records:  p.table.Total(),
		Lines:    p.lines,
	}
}

// Run builds the protocol registry and the tag policy, and streams records
// through a new Pipeline. Construction errors are returned before any record
// is read.
func Run(ctx context.Context, protocols []ProtocolRow, policies []PolicyRow, records Records, opts ...Option) (*Result, error) {
	reg, err := NewRegistry(protocols)
	if err != nil {
		return nil, err
	}
	pol, err := NewPolicy(policies)
	if err != nil {
		return nil, err
	}
	p := NewPipeline(reg, pol, opts...)
	if err := p.Feed(ctx, "", records); err != nil {
		return nil, err
	}
	return p.Result(), nil
}

// lineErr returns the error records reports for the current line, if any.
func lineErr(records Records) error {
	if le, ok := records.(LineErrors); ok {
		return le.LineErr()
	}
	return nil
}

// observeLine counts line, or the line error lerr, and returns the parse
// error, if any, with position set.
func observeLine(a *Aggregator, source string, number int, line string, lerr error) *RecordParseError {
	err := lerr
	if err != nil {
		a.stats.failed()
	} else if err = a.Observe(line); err == nil {
		return nil
	}
	var perr *RecordParseError
	if !errors.As(err, &perr) {
		perr = &RecordParseError{Err: err}
	}
	perr.Source = source
	perr.Line = number
	return perr
}

func (a *Aggregator) feed(ctx context.Context, source string, records Records, log *zap.Logger) (lines int, errs []*RecordParseError, err error) {
	for records.Scan() {
		lines++
		if lines%cancelCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}
		if perr := observeLine(a, source, lines, records.Text(), lineErr(records)); perr != nil {
			log.Debug("skipping flow record", zap.String("source", source), zap.Int("line", lines), zap.Error(perr.Err))
			errs = append(errs, perr)
		}
	}
	if rerr := records.Err(); rerr != nil {
		err = fmt.Errorf("reading flow records: %w", rerr)
	}
	return
}
