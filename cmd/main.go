package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bryan-cox/wageledger/internal/clipboard"
	"github.com/bryan-cox/wageledger/internal/config"
	"github.com/bryan-cox/wageledger/internal/model"
	"github.com/bryan-cox/wageledger/internal/report"
	"github.com/bryan-cox/wageledger/internal/server"
	"github.com/bryan-cox/wageledger/internal/tariff"
	"github.com/bryan-cox/wageledger/internal/timesheet"
	"github.com/bryan-cox/wageledger/internal/wage"
)

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	filePath        string
	tariffPath      string
	outputFormat    string
	copyToClipboard bool
	outPath         string
	listenAddr      string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:           "wageledger",
		Short:         "A CLI tool to calculate monthly wages from CSV timesheets.",
		Long:          `WageLedger parses CSV timesheets (name,id,date,start,end) and calculates each worker's monthly wages, split into regular, evening and overtime pay.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// calculateCmd represents the calculate command
	calculateCmd = &cobra.Command{
		Use:   "calculate [files...]",
		Short: "Calculate monthly wages.",
		Long:  `Calculates the monthly wages of every worker in one or more timesheets. Timesheets with invalid rows are reported row by row and no wages are calculated for them.`,
		RunE:  runCalculateCommand,
	}

	// validateCmd represents the validate command
	validateCmd = &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check timesheets without calculating wages.",
		RunE:  runValidateCommand,
	}

	// exportCmd represents the export command
	exportCmd = &cobra.Command{
		Use:   "export [files...]",
		Short: "Export monthly payslips as PDF.",
		Long:  `Calculates wages over all given timesheets together and writes one payslip page per worker per month.`,
		RunE:  runExportCommand,
	}

	// tariffCmd represents the tariff command
	tariffCmd = &cobra.Command{
		Use:   "tariff",
		Short: "Print the effective tariff as YAML.",
		RunE:  runTariffCommand,
	}

	// serveCmd represents the serve command
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the wage calculation over HTTP.",
		RunE:  runServeCommand,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	// Add persistent flags to the root command (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "timesheet.csv", "Path to the CSV timesheet, - for stdin. Ignored when files are given as arguments.")
	rootCmd.PersistentFlags().StringVar(&tariffPath, "tariff", "", "Path to a YAML tariff file. Overrides WAGELEDGER_TARIFF_FILE and WAGELEDGER_TARIFF_URL.")

	calculateCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or json.")
	calculateCmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Also copy the output to the clipboard.")

	exportCmd.Flags().StringVar(&outPath, "out", "payslips.pdf", "Path of the PDF to write.")

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address. Overrides WAGELEDGER_ADDR.")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tariffCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Main Application Entry Point ---

func main() {
	// Setup structured JSON logger for errors until the configuration is read.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	Execute()
}

// --- Command Execution Logic ---

func runCalculateCommand(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown format %q, use text or json", outputFormat)
	}
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	sheets, err := loadTimesheets(cmd.Context(), env.parser, cmd.InOrStdin(), timesheetPaths(args))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch outputFormat {
	case "json":
		results := make([]report.Result, len(sheets))
		for i, sheet := range sheets {
			results[i] = report.Result{Source: sheet.path, Errors: sheet.rows}
			if sheet.valid() {
				results[i].Months = wage.Calculate(sheet.shifts, env.tariff)
			}
		}
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		if err := report.WriteJSON(&buf, v); err != nil {
			return err
		}
	default:
		for i, sheet := range sheets {
			printSheetHeader(&buf, sheets, i)
			if !sheet.valid() {
				report.PrintRowErrors(&buf, sheet.rows)
				continue
			}
			report.PrintMonthlyReports(&buf, wage.Calculate(sheet.shifts, env.tariff))
		}
	}

	text := buf.String()
	if _, err := io.WriteString(cmd.OutOrStdout(), text); err != nil {
		return err
	}
	if copyToClipboard {
		if err := clipboard.CopyText(text); err != nil {
			slog.Warn("could not copy report to clipboard", "error", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Report copied to clipboard.")
		}
	}
	return invalidSheetsError(sheets)
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	sheets, err := loadTimesheets(cmd.Context(), env.parser, cmd.InOrStdin(), timesheetPaths(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, sheet := range sheets {
		printSheetHeader(out, sheets, i)
		if !sheet.valid() {
			report.PrintRowErrors(out, sheet.rows)
			continue
		}
		fmt.Fprintf(out, "%d shifts OK\n", len(sheet.shifts))
	}
	return invalidSheetsError(sheets)
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	sheets, err := loadTimesheets(cmd.Context(), env.parser, cmd.InOrStdin(), timesheetPaths(args))
	if err != nil {
		return err
	}

	var shifts []model.Shift
	for i, sheet := range sheets {
		if !sheet.valid() {
			printSheetHeader(cmd.OutOrStdout(), sheets, i)
			report.PrintRowErrors(cmd.OutOrStdout(), sheet.rows)
			continue
		}
		shifts = append(shifts, sheet.shifts...)
	}
	if err := invalidSheetsError(sheets); err != nil {
		return err
	}

	reports := wage.Calculate(shifts, env.tariff)
	var payslips int
	for _, monthly := range reports {
		payslips += len(monthly.Workers)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", outPath, err)
	}
	if err := report.WritePayslips(f, reports); err != nil {
		f.Close()
		return fmt.Errorf("could not write payslips to '%s': %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write payslips to '%s': %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d payslips to %s\n", payslips, outPath)
	return nil
}

func runTariffCommand(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	data, err := tariff.Marshal(env.tariff)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	cfg := env.config
	if listenAddr != "" {
		cfg.Addr = listenAddr
	}

	logger := cfg.NewLogger(os.Stderr)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewRouter(server.Options{
			Tariff:             env.tariff,
			Location:           env.location,
			Logger:             logger,
			MaxBodyBytes:       cfg.MaxBodyBytes,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			AllowedOrigins:     cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// --- Helper Functions ---

// environment is what every command needs before it reads a timesheet.
type environment struct {
	config   *config.Config
	tariff   model.Tariff
	location *time.Location
	parser   *timesheet.Parser
}

func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	if tariffPath != "" {
		cfg.TariffFile = tariffPath
		cfg.TariffURL = ""
	}
	t, source, err := tariff.Resolve(cmd.Context(), cfg.TariffFile, cfg.TariffURL, cfg.TariffToken)
	if err != nil {
		return nil, fmt.Errorf("could not load tariff: %w", err)
	}
	slog.Debug("tariff loaded", "source", source)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &environment{
		config:   cfg,
		tariff:   t,
		location: loc,
		parser:   timesheet.NewParser(loc),
	}, nil
}

// timesheetPaths returns the positional arguments, or the --file flag when
// none are given.
func timesheetPaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{filePath}
}

// parsedSheet is one timesheet after parsing: either shifts or rows is set.
type parsedSheet struct {
	path   string
	shifts []model.Shift
	rows   []timesheet.RowError
}

func (s parsedSheet) valid() bool {
	return len(s.rows) == 0
}

// loadTimesheets reads and parses every path concurrently. The result keeps
// the order of paths. Invalid rows are not an error here; unreadable files are.
func loadTimesheets(ctx context.Context, parser *timesheet.Parser, stdin io.Reader, paths []string) ([]parsedSheet, error) {
	sheets := make([]parsedSheet, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := readTimesheet(path, stdin)
			if err != nil {
				return err
			}

			sheet := parsedSheet{path: path}
			shifts, err := parser.Parse(text)
			var parseErr *timesheet.ParseError
			switch {
			case errors.As(err, &parseErr):
				sheet.rows = parseErr.Rows
				slog.Debug("timesheet has invalid rows", "path", path, "invalid_rows", len(parseErr.Rows))
			case err != nil:
				return fmt.Errorf("'%s': %w", path, err)
			default:
				sheet.shifts = shifts
			}
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}

func readTimesheet(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		return timesheet.Read(stdin)
	}
	return timesheet.ReadFile(path)
}

// printSheetHeader names the timesheet when more than one is printed.
func printSheetHeader(out io.Writer, sheets []parsedSheet, i int) {
	if len(sheets) < 2 {
		return
	}
	if i > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "==> %s <==\n", sheets[i].path)
}

func invalidSheetsError(sheets []parsedSheet) error {
	var invalid int
	for _, sheet := range sheets {
		if !sheet.valid() {
			invalid++
		}
	}
	if invalid == 0 {
		return nil
	}
	if len(sheets) == 1 {
		return errors.New("timesheet has invalid rows")
	}
	return fmt.Errorf("%d of %d timesheets have invalid rows", invalid, len(sheets))
}
