package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"carewise/internal/config"
	"carewise/internal/database"
	"carewise/internal/logger"
	"carewise/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	assumeYes    bool
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "CareWise record store backup tool",
	Long: `Export the CareWise record store to a JSON file, or import one back.

Environment Variables:
  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./carewise.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the record store to a JSON file",
	Example: "  backup export\n  backup export --output mybackup.json",
	RunE:    runExport,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import records from a JSON file",
	Example: "  # Import (merge with existing records)\n  backup import --input backup.json\n\n" +
		"  # Import (replace all records)\n  backup import --input backup.json --clear",
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Input file path")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "Clear existing records before import (WARNING: destructive)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openStore loads configuration, connects and brings the schema up to date.
func openStore(ctx context.Context) (*database.DB, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(ctx, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, log, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, log, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = log.Sync() }()

	outputPath := exportOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Info("exporting record store", zap.String("output", outputPath))
	if err := service.NewBackupService(db, log).Export(ctx, outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	log.Info("export complete", zap.Float64("size_mb", float64(info.Size())/1024/1024))
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if _, err := os.Stat(importInput); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	db, log, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = log.Sync() }()

	if importClear && !assumeYes &&
		!confirm(cmd, "WARNING: This will delete all existing records. Type 'yes' to confirm: ") {
		log.Info("import cancelled")
		return nil
	}

	log.Info("importing record store", zap.String("input", importInput))
	if err := service.NewBackupService(db, log).Import(ctx, importInput, importClear); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Info("import complete")
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
