/*
Package flows classifies flow log records and aggregates them into reports.

A flow record is one whitespace separated line of a flow log. Only two fields
are used: the destination port (field 6, 0-based) and the protocol number
(field 7). Everything else on the line is ignored.

Classification uses two lookup tables, both built once and read-only afterwards:

	Registry: protocol number -> protocol name ("6" -> "tcp")
	Policy:   (port, protocol name) -> tag  ((443, "tcp") -> "sv_p2")

Protocol numbers missing from the Registry resolve to "unknown protocol <n>",
and pairs missing from the Policy resolve to the tag "untagged". Neither is an
error. Names and tags are lowercased on construction and on lookup.

Records are counted by an Aggregator in two frequency tables: tag -> count and
(port, protocol) -> count. Records that cannot be parsed (less than eight fields
or a non-numeric port) are skipped and returned as RecordParseError together
with their line number; they never stop processing.

The Pipeline drives a run:

	reading -> [classify] -> (aggregate) -> snapshot -> export

With Workers(n) the aggregation is spread over n shards, each owning private
tables that are summed once the input is exhausted. The result is identical to
the sequential run.

Reports are written by exporters, which are provided as modules (see
modules/exporters) and selected by name.
*/
package flows
