package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "surge",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Core run flags
	flags.String("target", "", "Base URL of the service under test")
	flags.IntP("concurrency", "c", 10, "Max simultaneously outstanding requests per batch")
	flags.Duration("timeout", 5*time.Second, "Per-request abort threshold")
	flags.IntP("total", "t", 100, "Total number of requests per run")
	flags.IntP("repeat", "n", 1, "Number of independent runs to merge")
	flags.IntP("rate", "r", 0, "Requests per second launch pacing (0 means unpaced)")

	// Endpoint pool flags
	flags.String("endpoints", "", "Override the endpoint pool (comma-separated identifiers)")
	flags.String("endpoints-file", "", "Path to a YAML file defining the endpoint pool")
	flags.String("mode", string(ModeRandom), "Endpoint selection policy: 'random' or 'sequential'")
	flags.Int64("seed", 0, "Seed for random endpoint selection (0 means time-based)")
	flags.String("expect", "", "JSON expectation on 2xx responses, 'path' or 'path=value'")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("json-file", "", "Write the merged summary as JSON to the given path")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.Bool("trace", false, "Enable OpenTelemetry tracing")
	flags.String("trace-endpoint", "", "OTLP exporter endpoint")
	flags.String("trace-protocol", "", "OTLP protocol: 'grpc' or 'http'")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Skip TLS for the OTLP exporter")
	flags.Bool("trace-propagate", false, "Inject W3C trace headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("total") {
		val, err := fs.GetInt("total")
		if err != nil {
			return err
		}
		cfg.Total = val
	}
	if fs.Changed("repeat") {
		val, err := fs.GetInt("repeat")
		if err != nil {
			return err
		}
		cfg.Repeat = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("endpoints") && fs.Changed("endpoints-file") {
		return fmt.Errorf("--endpoints and --endpoints-file are mutually exclusive")
	}
	if fs.Changed("endpoints") {
		val, err := fs.GetString("endpoints")
		if err != nil {
			return err
		}
		pool, err := SplitEndpoints(val)
		if err != nil {
			return err
		}
		cfg.Endpoints = pool
	}
	if fs.Changed("endpoints-file") {
		val, err := fs.GetString("endpoints-file")
		if err != nil {
			return err
		}
		if err := loadEndpointsFile(cfg, strings.TrimSpace(val)); err != nil {
			return err
		}
	}
	if fs.Changed("mode") {
		val, err := fs.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("expect") {
		val, err := fs.GetString("expect")
		if err != nil {
			return err
		}
		cfg.Expect = strings.TrimSpace(val)
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("json-file") {
		val, err := fs.GetString("json-file")
		if err != nil {
			return err
		}
		cfg.JSONFile = strings.TrimSpace(val)
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enable = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}

	return nil
}

// SplitEndpoints parses a comma-separated endpoint pool override.
func SplitEndpoints(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	pool := make([]string, 0, len(parts))
	for _, part := range parts {
		ep := strings.TrimSpace(part)
		if ep == "" {
			continue
		}
		pool = append(pool, ep)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("endpoints override %q contains no identifiers", raw)
	}
	return pool, nil
}
