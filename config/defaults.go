// Package config holds the run configuration of flow-log-parser and its
// defaults. Values can be given in a yaml file and overridden on the command
// line.
package config

const (
	// DefaultFormat is the report format used when an output names none.
	// Override via config: tag_counts.format, port_protocol_counts.format
	DefaultFormat = "csv"

	// DefaultWorkers processes records sequentially.
	// Override via config: workers
	DefaultWorkers = 1

	// DefaultBatchSize is the number of records handed to a shard at once
	// when workers > 1.
	// Override via config: batch_size
	DefaultBatchSize = 256

	// DefaultMaxReportedErrors limits how many skipped records are logged
	// individually; the rest are summarized.
	// Override via config: max_reported_errors
	DefaultMaxReportedErrors = 20

	// DefaultLogLevel is the zap level name.
	// Override via config: log.level
	DefaultLogLevel = "info"
)
