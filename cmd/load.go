package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnsys"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/emgapi/internal/util"
	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/config"
	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/loader"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <dataset.yaml>",
	Short: "Loads a dataset file into the relational and document stores",
	Long: `Loads biomes, studies, samples, runs and analyses into the relational
store, and annotation terms, organisms and annotation sets into the
document store. Set documents with the same job id and pipeline version
are replaced.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg := setup()
		defer logger.Sync()

		dialect, err := db.ParseDialect(cfg.Backend)
		if err != nil {
			logger.Error("Bad backend", zap.Error(err))
			os.Exit(1)
		}

		if err := prepareDirs(cfg, dialect); err != nil {
			logger.Error("Cannot create directory", zap.Error(err))
			os.Exit(1)
		}

		start := time.Now()
		ds, err := loader.ReadFile(args[0])
		if err != nil {
			logger.Error("Cannot read dataset", zap.String("path", args[0]), zap.Error(err))
			os.Exit(1)
		}

		ctx := context.Background()
		stores, err := db.Open(ctx, dialect, cfg.DSN(), cfg.DocDir)
		if err != nil {
			logger.Error("Cannot open stores", zap.Error(err))
			os.Exit(1)
		}
		defer stores.Close()

		stats, err := loader.Load(ctx, stores, ds)
		if err != nil {
			logger.Error("Cannot load dataset", zap.Error(err))
			stores.Close()
			os.Exit(1)
		}
		logger.Info("Dataset loaded",
			zap.String("path", args[0]),
			zap.Int("documents", stats.Terms+stats.Organisms+stats.Sets),
			zap.Duration("took", time.Since(start)))
	},
}

// prepareDirs creates the document store directory, and the sqlite file's
// directory for the sqlite backend, when they are missing.
func prepareDirs(cfg config.Config, dialect db.Dialect) error {
	dirs := []string{cfg.DocDir}
	if dialect == db.SQLite {
		dirs = append(dirs, filepath.Dir(cfg.SQLitePath))
	}
	for _, dir := range dirs {
		if util.DirExists(dir) {
			continue
		}
		logger.Info("Creating directory", zap.String("dir", dir))
		if err := gnsys.MakeDir(dir); err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
