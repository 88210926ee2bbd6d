package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/shebbar27/flow-log-parser/config"
	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/input"
	"github.com/shebbar27/flow-log-parser/util"
)

type runFlags struct {
	configFile        string
	lookupTable       string
	protocolMappings  string
	flowLogs          []string
	tagCounts         string
	portProtocols     string
	format            string
	workers           int
	batchSize         int
	strict            bool
	maxReportedErrors int
	metricsFile       string
	logLevel          string
	logJSON           bool
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [flags] [flowlog ...]",
		Short: "Classify flow logs and write tag and port/protocol counts",
		Long: `Reads the lookup table and the protocol mappings, classifies every record of
the given flow logs and writes the tag counts and the port/protocol counts.

Flow logs are given with --flow-log-file (repeatable) or as arguments; - reads
standard input and files ending in .gz are decompressed. Records that can't be
parsed are skipped and reported; with --strict they make the run fail.

Without --protocol-mappings-file a built-in protocol table is used.

Settings can also be read from a yaml file with --config; flags given on the
command line take precedence.

Examples:
  Write csv reports
    flow-log-parser run --lookup-table-file lookup.csv \
      --protocol-mappings-file protocol-numbers.csv --flow-log-file flows.log \
      --tag-count-file tags.csv --port-protocol-count-file pairs.csv

  Print both reports as tables, using 4 workers
    flow-log-parser run -n 4 --format text --lookup-table-file lookup.csv \
      --tag-count-file - --port-protocol-count-file - flows.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd.Flags(), args)
			if err != nil {
				return err
			}
			// Do not output help message if we get this far.
			cmd.SilenceUsage = true

			logger, err := util.NewLogger(cfg.Log.Level, cfg.Log.JSON)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return run(cmd.Context(), cfg, logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.configFile, "config", "", "Read settings from this yaml file")
	flags.StringVar(&f.lookupTable, "lookup-table-file", "", "Path to the lookup table file (dstport,protocol,tag)")
	flags.StringVar(&f.protocolMappings, "protocol-mappings-file", "", "Path to the protocol mappings file (Decimal,Keyword); built-in table if empty")
	flags.StringArrayVar(&f.flowLogs, "flow-log-file", nil, "Path to a flow log file (repeatable)")
	flags.StringVar(&f.tagCounts, "tag-count-file", "", "Path to the output tag count file")
	flags.StringVar(&f.portProtocols, "port-protocol-count-file", "", "Path to the output port/protocol count file")
	flags.StringVar(&f.format, "format", config.DefaultFormat, "Report format of both outputs (see exporters command)")
	flags.IntVarP(&f.workers, "workers", "n", config.DefaultWorkers, "Number of parallel aggregation shards")
	flags.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "Records handed to a shard at once")
	flags.BoolVar(&f.strict, "strict", false, "Fail if any flow record can't be parsed")
	flags.IntVar(&f.maxReportedErrors, "max-reported-errors", config.DefaultMaxReportedErrors, "Skipped records logged individually")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write run statistics in prometheus text format to this file")
	flags.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&f.logJSON, "log-json", false, "Log as json")
	return cmd
}

// config loads the configuration file, if any, and applies the flags that
// were set explicitly.
func (f *runFlags) config(flags *pflag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("lookup-table-file", func() { cfg.LookupTableFile = f.lookupTable })
	set("protocol-mappings-file", func() { cfg.ProtocolMappingsFile = f.protocolMappings })
	set("flow-log-file", func() { cfg.FlowLogFiles = f.flowLogs })
	set("tag-count-file", func() { cfg.TagCounts.File = f.tagCounts })
	set("port-protocol-count-file", func() { cfg.PortProtocolCounts.File = f.portProtocols })
	set("format", func() {
		cfg.TagCounts.Format = f.format
		cfg.PortProtocolCounts.Format = f.format
	})
	set("workers", func() { cfg.Workers = f.workers })
	set("batch-size", func() { cfg.BatchSize = f.batchSize })
	set("strict", func() { cfg.Strict = f.strict })
	set("max-reported-errors", func() { cfg.MaxReportedErrors = f.maxReportedErrors })
	set("metrics-file", func() { cfg.MetricsFile = f.metricsFile })
	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("log-json", func() { cfg.Log.JSON = f.logJSON })
	cfg.FlowLogFiles = append(cfg.FlowLogFiles, args...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func makeExporter(out config.Output) (flows.Exporter, error) {
	opts := make(map[string]interface{}, len(out.Options)+1)
	for k, v := range out.Options {
		opts[k] = v
	}
	opts["file"] = out.File
	_, e, err := flows.MakeExporter(out.Format, "", opts, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating exporter '%s': %w", out.Format, err)
	}
	return e, nil
}

func loadTables(cfg *config.Config, logger *zap.Logger) (*flows.Registry, *flows.Policy, error) {
	var protocols []flows.ProtocolRow
	if cfg.ProtocolMappingsFile != "" {
		var err error
		if protocols, err = input.LoadProtocols(cfg.ProtocolMappingsFile); err != nil {
			return nil, nil, err
		}
	} else {
		logger.Info("No protocol mappings file given, using built-in protocol table")
		protocols = input.BuiltinProtocols()
	}
	policies, err := input.LoadPolicies(cfg.LookupTableFile)
	if err != nil {
		return nil, nil, err
	}
	reg, err := flows.NewRegistry(protocols)
	if err != nil {
		return nil, nil, err
	}
	pol, err := flows.NewPolicy(policies)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Reading lookup table and protocol mappings completed",
		zap.Int("protocols", reg.Len()), zap.Int("policies", pol.Len()))
	return reg, pol, nil
}

func reportErrors(logger *zap.Logger, errs []*flows.RecordParseError, max int) {
	for i, err := range errs {
		if i == max {
			logger.Warn("Further skipped flow records not shown", zap.Int("count", len(errs)-max))
			return
		}
		logger.Warn("Skipped flow record", zap.String("source", err.Source), zap.Int("line", err.Line), zap.Error(err.Err))
	}
}

func export(e flows.Exporter, write func(flows.Exporter) error) error {
	if err := e.Init(); err != nil {
		return err
	}
	if err := write(e); err != nil {
		e.Finish()
		return fmt.Errorf("%s: %w", e.ID(), err)
	}
	return e.Finish()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Processing flow logs started", zap.Strings("flow_logs", cfg.FlowLogFiles))

	tagExporter, err := makeExporter(cfg.TagCounts)
	if err != nil {
		return err
	}
	portExporter, err := makeExporter(cfg.PortProtocolCounts)
	if err != nil {
		return err
	}

	reg, pol, err := loadTables(cfg, logger)
	if err != nil {
		return err
	}

	var metrics *prometheus.Registry
	var stats *flows.Stats
	if cfg.MetricsFile != "" {
		metrics = prometheus.NewRegistry()
		if stats, err = flows.NewStats(metrics); err != nil {
			return err
		}
	}

	pipeline := flows.NewPipeline(reg, pol,
		flows.Workers(cfg.Workers),
		flows.BatchSize(cfg.BatchSize),
		flows.Logger(logger),
		flows.WithStats(stats))
	for _, path := range cfg.FlowLogFiles {
		fl, err := input.OpenFlowLog(path)
		if err != nil {
			return err
		}
		err = pipeline.Feed(ctx, path, fl)
		fl.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	result := pipeline.Result()
	reportErrors(logger, result.Errors, cfg.MaxReportedErrors)

	if err := export(tagExporter, func(e flows.Exporter) error { return e.ExportTags(result.Tags) }); err != nil {
		return err
	}
	logger.Info("Output file generated successfully", zap.String("file", cfg.TagCounts.File))
	if err := export(portExporter, func(e flows.Exporter) error { return e.ExportPortProtocols(result.PortProtocols) }); err != nil {
		return err
	}
	logger.Info("Output file generated successfully", zap.String("file", cfg.PortProtocolCounts.File))

	if metrics != nil {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	logger.Info("Processing flow logs completed",
		zap.Int("lines", result.Lines),
		zap.Uint64("records", result.Records),
		zap.Int("skipped", len(result.Errors)),
		zap.Int("tags", len(result.Tags)),
		zap.Int("port_protocols", len(result.PortProtocols)))

	if cfg.Strict && len(result.Errors) > 0 {
		return fmt.Errorf("%d flow records could not be parsed", len(result.Errors))
	}
	return nil
}
