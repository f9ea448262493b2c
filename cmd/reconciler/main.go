package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledger-reconciliation/internal/config"
	"ledger-reconciliation/internal/engine"
	"ledger-reconciliation/internal/gateway"
	"ledger-reconciliation/internal/logging"
	"ledger-reconciliation/internal/server"
	"ledger-reconciliation/internal/usecase"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Set up in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Three-way reconciliation of order, payment gateway and vault ledgers",
	Long: `reconciler links every order-ledger row to its payment gateway and
settlement vault counterparts, classifies disagreements with a fixed decision
table and renders the result as a multi-sheet workbook.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	orderFile   string
	gatewayFile string
	vaultFile   string
	outputFile  string
	printJSON   bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile three ledger exports (.xlsx or .csv) into a report workbook",
	Example: `  reconciler reconcile --orders orders.xlsx --gateway gateway.csv \
    --vault vault.csv --out reconciliation_output.xlsx`,
	RunE: runReconcile,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload endpoint over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "reconciler.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	reconcileCmd.Flags().StringVar(&orderFile, "orders", "", "Path to the order ledger export (required)")
	reconcileCmd.Flags().StringVar(&gatewayFile, "gateway", "", "Path to the payment gateway export (required)")
	reconcileCmd.Flags().StringVar(&vaultFile, "vault", "", "Path to the vault export (required)")
	reconcileCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output workbook path (defaults to report.download_name)")
	reconcileCmd.Flags().BoolVar(&printJSON, "json", false, "Print the aggregation as JSON to stdout")
	_ = reconcileCmd.MarkFlagRequired("orders")
	_ = reconcileCmd.MarkFlagRequired("gateway")
	_ = reconcileCmd.MarkFlagRequired("vault")

	rootCmd.AddCommand(reconcileCmd, serveCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	eng, err := engine.New(cfg.EngineConfig())
	if err != nil {
		return err
	}

	// --- Dependency Injection (Wiring the application) ---
	repo := gateway.NewFileTableRepository()
	uc := usecase.NewReconciliationUseCase(repo, eng, logger)

	report, err := uc.Reconcile(cmd.Context(), usecase.Refs{
		Order:   orderFile,
		Gateway: gatewayFile,
		Vault:   vaultFile,
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	out := outputFile
	if out == "" {
		out = cfg.Report.DownloadName
	}
	if err := gateway.NewWorkbookWriter().WriteFile(out, report.Sheets); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("report written", zap.String("path", out), zap.Int("sheets", len(report.Sheets)))

	if printJSON {
		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to generate JSON report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := engine.New(cfg.EngineConfig())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, eng, logger).Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
