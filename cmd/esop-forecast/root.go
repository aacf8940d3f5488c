package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/esop-forecast/internal/config"
	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/internal/server"
	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/output"
	"github.com/iwvelando/esop-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 5 * time.Second

type rootOptions struct {
	configLocation string
	logLevel       string
	outputFormat   string
	outputFile     string
	percent        float64
	count          float64
	multiple       int
}

// NewRootCommand builds the esop-forecast command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "esop-forecast",
		Short: "Compare ESOP tax liability with and without early exercise",
		Long: "esop-forecast projects the tax owed on an employee stock option grant across\n" +
			"ten IPO valuations, comparing exercise at IPO against exercising today.",
		SilenceUsage: true,
	}
	root.SetContext(ctx)

	persistent := &pflag.FlagSet{}
	persistent.StringVar(&opts.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	persistent.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().AddFlagSet(persistent)

	local := &pflag.FlagSet{}
	local.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json, pdf")
	local.StringVarP(&opts.outputFile, "out", "o", "", "write output to this file instead of stdout")
	local.Float64Var(&opts.percent, "percent", 0, "percentage of the grant to exercise (selects percentage mode)")
	local.Float64Var(&opts.count, "count", 0, "absolute number of options to exercise (selects absolute mode)")
	local.IntVar(&opts.multiple, "multiple", 0, "IPO valuation multiple to summarise (1-10)")
	root.Flags().AddFlagSet(local)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runForecast(cmd, opts)
	}

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// loadConfiguration loads the application config. A missing file at a
// location that was not asked for explicitly yields the built-in defaults,
// still subject to ESOP_* environment overrides.
func loadConfiguration(location string, explicit bool) (*config.Configuration, error) {
	if !explicit {
		if _, err := os.Stat(location); errors.Is(err, fs.ErrNotExist) {
			return config.LoadConfigurationFromReader(strings.NewReader(""))
		}
	}
	return config.LoadConfiguration(location)
}

func applySelectionFlags(cmd *cobra.Command, opts *rootOptions, conf *config.Configuration) error {
	flags := cmd.Flags()
	if flags.Changed("percent") && flags.Changed("count") {
		return fmt.Errorf("--percent and --count are mutually exclusive")
	}
	if flags.Changed("percent") {
		conf.Selection.Mode = constants.SelectionPercentage
		conf.Selection.Percent = opts.percent
	}
	if flags.Changed("count") {
		conf.Selection.Mode = constants.SelectionAbsolute
		conf.Selection.Count = opts.count
	}
	if flags.Changed("multiple") {
		conf.Selection.Multiple = opts.multiple
	}
	return nil
}

func runForecast(cmd *cobra.Command, opts *rootOptions) error {
	conf, err := loadConfiguration(opts.configLocation, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	if err := applySelectionFlags(cmd, opts, conf); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	result, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	destination := conf.Output.File
	if opts.outputFile != "" {
		destination = opts.outputFile
	}

	var w io.Writer = cmd.OutOrStdout()
	if destination != "" {
		file, err := os.Create(destination)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Warn("failed to close output file",
					zap.String("op", "main"),
					zap.Error(closeErr),
				)
			}
		}()
		w = file
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(w, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(w, result)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(w, result); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
	case constants.OutputFormatPDF:
		data, err := output.PDFReport(result)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write PDF output: %w", err)
		}
	}

	logger.Debug("forecast written",
		zap.String("op", "main"),
		zap.String("format", outputFormat),
		zap.String("destination", destination),
	)
	return nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	serverConfigLocation := constants.DefaultServerConfigFile
	address := ""

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&serverConfigLocation, "server-config", serverConfigLocation, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		serverConf, err := server.LoadConfig(serverConfigLocation)
		if err != nil {
			return err
		}
		if address != "" {
			serverConf.Address = address
		}

		logger, err := initializeLogger(serverConf.Logging, opts.logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		appConfigLocation := opts.configLocation
		explicit := cmd.Flags().Changed("config")
		if !explicit && serverConf.ConfigFile != "" {
			appConfigLocation = serverConf.ConfigFile
			explicit = true
		}
		conf, err := loadConfiguration(appConfigLocation, explicit)
		if err != nil {
			return fmt.Errorf("failed to load configuration at %s: %w", appConfigLocation, err)
		}
		if err := conf.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		for _, warning := range conf.ValidateConfiguration() {
			logger.Warn("Configuration warning: "+warning,
				zap.String("op", "serve"),
			)
		}

		ln, err := net.Listen("tcp", serverConf.Address)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", serverConf.Address, err)
		}
		return serve(cmd.Context(), logger, ln, server.NewHandler(logger, *conf, serverConf.BodySizeBytes(), version))
	}
	return cmd
}

// serve runs the HTTP server on ln until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, logger *zap.Logger, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening",
			zap.String("op", "serve"),
			zap.String("address", ln.Addr().String()),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down dashboard", zap.String("op", "serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
