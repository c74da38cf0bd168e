package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"apimocker/store"
)

// Version is injected during build.
var Version = "dev"

type flagValues struct {
	config    string
	file      string
	host      string
	port      int
	logLevel  string
	logFormat string
	watch     bool
}

func newRootCmd() *cobra.Command {
	var fv flagValues
	defaults := DefaultConfig()

	root := &cobra.Command{
		Use:   "apimocker",
		Short: "Mocks REST endpoints from a JSON file and creates CRUD operations",
		Long: `apimocker serves every top-level array of a JSON document as a collection
under /api/{collection}, with create, read, replace, merge and delete
operations. Successful mutations are written back to the same file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, fv)
			if err != nil {
				return err
			}
			level, _ := parseLevel(cfg.LogLevel)
			logger := newLogger(os.Stderr, level, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return startServer(ctx, cfg, logger)
		},
	}

	f := root.Flags()
	f.StringVarP(&fv.config, "config", "c", "", "YAML config file")
	f.StringVarP(&fv.file, "file", "f", "", "Path to the JSON data file")
	f.StringVar(&fv.host, "host", defaults.Host, "Listen host")
	f.IntVarP(&fv.port, "port", "p", defaults.Port, "Listen port")
	f.StringVar(&fv.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&fv.logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	f.BoolVar(&fv.watch, "watch", false, "Reload the data file when it is edited externally")

	root.AddCommand(newValidateCmd(), newVersionCmd())
	return root
}

// resolveConfig layers the config file and explicitly set flags over the
// defaults.
func resolveConfig(cmd *cobra.Command, fv flagValues) (Config, error) {
	cfg := DefaultConfig()
	if fv.config != "" {
		var err error
		if cfg, err = LoadConfig(fv.config); err != nil {
			return cfg, err
		}
	}
	f := cmd.Flags()
	if f.Changed("file") {
		cfg.File = fv.file
	}
	if f.Changed("host") {
		cfg.Host = fv.host
	}
	if f.Changed("port") {
		cfg.Port = fv.port
	}
	if f.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = fv.logFormat
	}
	if f.Changed("watch") {
		cfg.Watch = fv.watch
	}
	return cfg, cfg.Validate()
}

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a data file loads without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return validateFile(cmd.OutOrStdout(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON data file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func validateFile(w io.Writer, path string) error {
	data, _, err := store.ReadFile(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "%s: %d collection(s)\n", path, len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %d record(s)\n", name, len(data[name]))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "apimocker", Version)
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
