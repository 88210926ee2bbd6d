/*
This contains a flow log classifier: it tags flow log records using a lookup table and
counts them per tag and per port/protocol pair.

Building

For building "go build" or "go install" can be used. The exporters compiled into the binary
are listed in builtin.go.

Overview

The classifier reads two reference tables and one or more flow logs:

	lookup table (dstport,protocol,tag) -> policy
	protocol mappings (Decimal,Keyword) -> registry
	flow log -> (split) -> [classify] -> (aggregate) -> export

() parts in the pipeline are fixed, [] parts are configured via the reference tables, and export
is provided from a module and configured from the command line or a configuration file.

Every flow log line is split on whitespace. The 7th field is the destination port, the 8th field the
protocol number. The protocol number is resolved to a keyword with the registry; numbers missing from
it become "unknown protocol <n>". The pair of port and keyword is then looked up in the policy, which
yields a tag or "untagged". Keywords match case-insensitively.

Aggregation runs in a single goroutine or, with -n, in n shards that get batches of lines
round-robin and are merged once all flow logs are read. The result is the same in both cases.

Lines that can't be parsed are skipped and reported with their source and line number; --strict
turns them into a failed run.

Example usage

The general syntax on the command line is "flow-log-parser run [flags] [flowlog ...]". The options
of the exporters can be queried with "flow-log-parser exporters <exporter>".

Example:

	flow-log-parser run --lookup-table-file lookup.csv --protocol-mappings-file protocol-numbers.csv \
		--tag-count-file tags.csv --port-protocol-count-file pairs.csv flows.log

Contents

The following list describes all the different things contained in the subdirectories.

 * config: yaml run configuration
 * flows: flows package; registry, policy, classification, and aggregation
 * input: readers for the reference tables and flow logs
 * modules: implementation of exporters
 * util: module registry, logging, and output helpers
*/
package main
