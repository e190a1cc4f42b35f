package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/emgapi/internal/util"
	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/config"
	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/handler"
	"github.com/yumyai/emgapi/pkg/middle"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API over the loaded stores",
	Run: func(cmd *cobra.Command, _ []string) {
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			opts = append(opts, config.OptListen(listen))
		}
		cfg := setup()
		defer logger.Sync() // Make sure that the buffered is flushed.

		if err := util.RequireDir(cfg.DocDir); err != nil {
			logger.Error("Document store missing, run `emgapi load` first", zap.Error(err))
			os.Exit(1)
		}

		dialect, err := db.ParseDialect(cfg.Backend)
		if err != nil {
			logger.Error("Bad backend", zap.Error(err))
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stores, err := db.Open(ctx, dialect, cfg.DSN(), cfg.DocDir)
		if err != nil {
			logger.Error("Cannot open stores", zap.Error(err))
			os.Exit(1)
		}
		defer stores.Close()

		logger.Info("Start:", zap.String("Version", Version))
		logger.Info("Open stores on",
			zap.Stringer("backend", dialect),
			zap.String("relational", cfg.SafeDSN()),
			zap.String("documents", cfg.DocDir))

		httpLog := logger.Named("http")
		mux := handler.NewRouter(handler.NewDBContext(stores, cfg))
		srv := &http.Server{
			Addr: cfg.Listen,
			Handler: middle.Chain(mux,
				middle.RequestIDMiddleware(httpLog),
				middle.LoggingMiddleware(httpLog),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdown); err != nil {
				logger.Warn("Shutdown", zap.Error(err))
			}
		}()

		logger.Info("Server starting", zap.String("listen", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error starting server:", zap.Error(err))
		}
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "address to listen on, e.g. 0.0.0.0:8080")
	rootCmd.AddCommand(serveCmd)
}
