package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/office-tracker/internal/attendance"
	"github.com/username/office-tracker/internal/calendar"
	"github.com/username/office-tracker/internal/config"
	"github.com/username/office-tracker/internal/daybook"
	"github.com/username/office-tracker/internal/export"
	"github.com/username/office-tracker/internal/holiday"
	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/internal/server"
	"github.com/username/office-tracker/internal/store"
	"github.com/username/office-tracker/pkg/dateutil"
)

const appName = "office-tracker"

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Personal office attendance tracker",
		Long:  "Track in-office days against a monthly attendance target, with public holiday integration",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(vacationCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(settingsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appContext bundles the wired components for one command invocation
type appContext struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	manager *daybook.Manager
}

func (a *appContext) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
}

func initializeApp() (*appContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var oracle holiday.Oracle
	if cfg.Holiday.Disabled {
		logger.Info("Holiday lookups disabled")
		oracle = holiday.NewNoopOracle()
	} else {
		oracle = holiday.NewNagerOracle(cfg.Holiday.BaseURL, cfg.Holiday.GetCacheTTL(), logger)
	}

	policies := map[string]model.SeedPolicy{}
	if cfg.Seed.PresetOwner != "" {
		policies[cfg.Seed.PresetOwner] = model.PresetSeedPolicy
	}

	manager := daybook.NewManager(st, oracle, daybook.Defaults{
		Country:  cfg.Defaults.Country,
		Region:   cfg.Defaults.State,
		Timezone: cfg.Defaults.Timezone,
	}, policies, logger)

	return &appContext{cfg: cfg, store: st, manager: manager}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			router := server.NewRouter(server.NewHandler(app.manager, appName, logger), logger)
			srv := &http.Server{
				Addr:    app.cfg.Server.ListenAddr,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case sig := <-stop:
				logger.Info("Shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			return nil
		},
	}
}

func monthCmd() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "month <owner>",
		Short: "Show the month grid and attendance summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			owner := args[0]
			target := dateutil.AddMonths(dateutil.StartOfDay(time.Now()), offset)
			year, month := target.Year(), target.Month()

			days, settings, err := app.manager.MonthView(cmd.Context(), owner, year, month)
			if err != nil {
				return fmt.Errorf("failed to load month: %w", err)
			}

			printMonth(owner, year, month, days)
			printSummary(attendance.ComputeSummary(days, settings), settings)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Month offset relative to the current month (e.g. -1 for last month)")
	return cmd
}

func setCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "set <owner> <date> <status>",
		Short: "Set the status for one day",
		Long:  "Set the status for one day. Statuses: " + strings.Join(statusNames(), ", "),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			date, err := dateutil.ParseDate(args[1])
			if err != nil {
				return err
			}
			status := model.Status(strings.ToUpper(args[2]))

			patch := model.DayPatch{Status: &status}
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}
			if err := app.manager.UpsertDay(cmd.Context(), args[0], date, patch); err != nil {
				return err
			}
			fmt.Printf("✅ %s set to %s\n", args[1], status)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the day")
	return cmd
}

func vacationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacation <owner> <start> <end>",
		Short: "Mark an inclusive date range as vacation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			start, err := dateutil.ParseDate(args[1])
			if err != nil {
				return err
			}
			end, err := dateutil.ParseDate(args[2])
			if err != nil {
				return err
			}

			affected, err := app.manager.BulkSetVacation(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Marked %d day(s) as vacation\n", affected)
			if affected == 0 {
				fmt.Println("   (only days already on the calendar are updated; open the month first)")
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <owner> <year> <month>",
		Short: "Export a month to a versioned JSON backup file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			year, month, err := parseYearMonth(args[1], args[2])
			if err != nil {
				return err
			}

			owner := args[0]
			days, settings, err := app.manager.MonthView(cmd.Context(), owner, year, month)
			if err != nil {
				return fmt.Errorf("failed to load month: %w", err)
			}

			summary := attendance.ComputeSummary(days, settings)
			data, err := export.SerializeMonth(days, settings, summary)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, export.Filename(appName, year, month))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Printf("✅ Exported %d day(s) to %s\n", len(days), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the export file to")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <owner> <file>",
		Short: "Import a month from a JSON backup file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			parsed, err := export.DeserializeMonth(data)
			if err != nil {
				return err
			}

			owner := args[0]
			applied := 0
			for _, day := range parsed.Days {
				day := day
				patch := model.DayPatch{
					Status:      &day.Status,
					IsHoliday:   &day.IsHoliday,
					HolidayName: &day.HolidayName,
					Notes:       &day.Notes,
				}
				if err := app.manager.UpsertDay(cmd.Context(), owner, day.Date, patch); err != nil {
					return fmt.Errorf("import stopped after %d day(s): %w", applied, err)
				}
				applied++
			}
			fmt.Printf("✅ Imported %d day(s) (schema %s)\n", applied, parsed.Version)
			return nil
		},
	}
}

func settingsCmd() *cobra.Command {
	var (
		percent        float64
		rounding       string
		treatment      string
		creditWeekdays []string
	)

	cmd := &cobra.Command{
		Use:   "settings <owner>",
		Short: "Show or update the owner's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return err
			}
			defer app.Close()

			owner := args[0]
			var patch model.SettingsPatch
			if cmd.Flags().Changed("percent") {
				patch.RequiredPercent = &percent
			}
			if cmd.Flags().Changed("rounding") {
				mode := model.RoundingMode(rounding)
				patch.RoundingMode = &mode
			}
			if cmd.Flags().Changed("treatment") {
				t := model.HolidayTreatment(treatment)
				patch.MonFriHolidayTreatment = &t
			}
			if cmd.Flags().Changed("credit-weekdays") {
				patch.CreditWeekdays = creditWeekdays
			}

			edited := patch.RequiredPercent != nil || patch.RoundingMode != nil ||
				patch.MonFriHolidayTreatment != nil || patch.CreditWeekdays != nil
			if edited {
				if err := app.manager.UpsertSettings(cmd.Context(), owner, patch); err != nil {
					return err
				}
			}

			settings, err := app.manager.GetSettings(cmd.Context(), owner)
			if err != nil {
				return err
			}
			fmt.Printf("Settings for %s\n", owner)
			fmt.Printf("  required_percent:          %.0f%%\n", settings.RequiredPercent*100)
			fmt.Printf("  rounding_mode:             %s\n", settings.RoundingMode)
			fmt.Printf("  credit_weekdays:           %s\n", strings.Join(settings.CreditWeekdays, ","))
			fmt.Printf("  monfri_holiday_treatment:  %s\n", settings.MonFriHolidayTreatment)
			fmt.Printf("  country/state:             %s/%s\n", settings.Country, settings.Region)
			fmt.Printf("  timezone:                  %s\n", settings.Timezone)
			return nil
		},
	}

	cmd.Flags().Float64Var(&percent, "percent", 0.60, "Required attendance fraction of workdays (0..1)")
	cmd.Flags().StringVar(&rounding, "rounding", "ceil", "Rounding mode: ceil, floor or round_half_up")
	cmd.Flags().StringVar(&treatment, "treatment", "neutral", "Mon/Fri holiday treatment: neutral, exclude or credit")
	cmd.Flags().StringSliceVar(&creditWeekdays, "credit-weekdays", nil, "Weekdays credited when they are holidays, e.g. TUE,WED,THU")
	return cmd
}

func parseYearMonth(yearArg, monthArg string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", yearArg)
	}
	monthNum, err := strconv.Atoi(monthArg)
	if err != nil || monthNum < 1 || monthNum > 12 {
		return 0, 0, fmt.Errorf("invalid month %q, must be 1-12", monthArg)
	}
	return year, time.Month(monthNum), nil
}

// statusCell maps statuses to two-character grid cells
var statusCell = map[model.Status]string{
	model.StatusNone:         " .",
	model.StatusWFH:          " h",
	model.StatusInOffice:     " O",
	model.StatusVacation:     " V",
	model.StatusBiohub:       " B",
	model.StatusTraining:     " T",
	model.StatusOtherHoliday: " H",
}

func printMonth(owner string, year int, month time.Month, days []model.DayRecord) {
	fmt.Printf("\n📅 %s — %s %d\n", owner, month, year)
	fmt.Println("      Mon   Tue   Wed   Thu   Fri   Sat   Sun")

	weeks, err := calendar.MonthGrid(year, month)
	if err != nil {
		return
	}
	byDate := make(map[string]model.DayRecord, len(days))
	for _, d := range days {
		byDate[dateutil.FormatDate(d.Date)] = d
	}

	for _, week := range weeks {
		row := "    "
		for _, date := range week {
			if date.IsZero() {
				row += "      "
				continue
			}
			cell := " ."
			marker := " "
			if rec, ok := byDate[dateutil.FormatDate(date)]; ok {
				cell = statusCell[rec.Status]
				if rec.IsHoliday {
					marker = "*"
				}
			}
			row += fmt.Sprintf(" %2d%s%s", date.Day(), cell, marker)
		}
		fmt.Println(row)
	}
	fmt.Println("\n  O=office  h=home  V=vacation  B=biohub  T=training  H=holiday-off  .=unset  *=public holiday")
}

func printSummary(summary model.MonthSummary, settings model.Settings) {
	fmt.Println("\n📊 Attendance")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  Workdays:        %d\n", summary.Workdays)
	fmt.Printf("  Counted days:    %d of %d (%.1f%%)\n", summary.Numerator, summary.Denominator, summary.PercentAchieved)
	fmt.Printf("  Required:        %d (%.0f%%, %s)\n", summary.RequiredDays, settings.RequiredPercent*100, settings.RoundingMode)
	if summary.Balance >= 0 {
		fmt.Printf("  Balance:         +%d day(s) ahead\n", summary.Balance)
	} else {
		fmt.Printf("  Balance:         %d day(s) behind\n", summary.Balance)
	}
	if summary.CreditedHolidays > 0 {
		fmt.Printf("  Credited holidays: %d\n", summary.CreditedHolidays)
	}
}

func statusNames() []string {
	statuses := model.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return names
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
