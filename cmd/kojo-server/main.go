package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kojo/kojo/internal/config"
	"github.com/kojo/kojo/internal/domain/records"
	"github.com/kojo/kojo/internal/domain/records/csvhttp"
	"github.com/kojo/kojo/internal/domain/tax"
	"github.com/kojo/kojo/internal/platform/middleware"
	"github.com/kojo/kojo/internal/platform/storage"
	"github.com/kojo/kojo/internal/platform/taxcsv"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kojo-server",
		Short: "Medical-expense and furusato-nozei deduction tracker",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// openGateway builds the configured persistence backend. The returned
// closer is a no-op for the file backend.
func openGateway(cfg *config.Config) (records.Gateway, func() error, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		gw, err := storage.NewSQLiteGateway(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil
	default:
		gw, err := storage.NewFileGateway(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() error { return nil }, nil
	}
}

// openStore loads the persisted aggregate (tolerating a slow data
// directory at startup) and wraps it in the record store.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*records.Store, func() error, error) {
	gw, closer, err := openGateway(cfg)
	if err != nil {
		return nil, nil, err
	}
	data := storage.LoadWithRetry(ctx, gw, cfg.LoadRetries, cfg.LoadRetryInterval(), logger)
	return records.NewStore(data, gw, logger), closer, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local API server for the desktop frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open data store")
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.DataBackend).Str("path", cfg.DataFile).Msg("data store ready")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	api := e.Group("/api/v1")
	records.NewHandler(store).RegisterRoutes(api)
	csvhttp.NewHandler(store).RegisterRoutes(api)
	tax.NewHandler(store).RegisterRoutes(api)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Graceful shutdown
	go func() {
		addr := "127.0.0.1:" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active medical records as a spreadsheet CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			logger := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			items := store.Medical()
			if len(items) == 0 {
				fmt.Println("No medical records to export.")
				return nil
			}
			if out == "" {
				out = taxcsv.Filename(time.Now().Year())
			}
			if err := os.WriteFile(out, taxcsv.Export(items), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("Exported %d record(s) to %s\n", len(items), out)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output path (default: 医療費控除明細_<year>.csv)")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import medical records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result := taxcsv.Import(string(raw))
			if len(result.Records) == 0 {
				fmt.Println("No importable rows found.")
				return nil
			}
			for _, d := range result.Degraded {
				fmt.Printf("line %d: could not parse %s, defaulted\n", d.Line, d.Field)
			}

			// Confirmation with the row count before anything is written.
			if !yes {
				fmt.Printf("Add %d record(s) to the active collection? [y/N]: ", len(result.Records))
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Println("Import cancelled.")
					return nil
				}
			}

			logger := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			added, err := store.ImportMedicalBatch(cmd.Context(), result.Records)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d record(s).\n", added)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the deduction summary and the e-Tax grouping",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			s := tax.Summarize(store.Medical(), store.Furusato())
			fmt.Printf("Medical paid:        ¥%d\n", s.Total)
			fmt.Printf("Reimbursed:          ¥%d\n", s.TotalReimbursement)
			fmt.Printf("Net expense:         ¥%d\n", s.NetExpense)
			fmt.Printf("Medical deduction:   ¥%d\n", s.MedicalDeduction)
			fmt.Printf("Furusato donations:  ¥%d\n", s.FurusatoTotal)
			fmt.Printf("Furusato deduction:  ¥%d\n", s.FurusatoDeduction)
			fmt.Printf("Estimated refund:    ¥%d (approximation)\n", s.EstimatedRefund)

			entries := tax.EtaxSummary(store.Medical())
			if len(entries) > 0 {
				fmt.Println("\ne-Tax entries (per patient and provider):")
				for _, e := range entries {
					fmt.Printf("  %s / %s: ¥%d", e.PatientName, e.ProviderName, e.TotalAmount)
					if e.TotalReimbursement > 0 {
						fmt.Printf(" (reimbursed ¥%d)", e.TotalReimbursement)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}
}
