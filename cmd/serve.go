package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"go-patrol/cronjobs"
	"go-patrol/db"
	"go-patrol/handlers"
	"go-patrol/logger"
	"go-patrol/metrics"
	"go-patrol/routes"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled jobs",
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	cmd.Flags().Bool("no-cron", false, "disable scheduled cleanup and backfill")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.New(reg)

	pl := newPipeline(cfg)
	proc, err := newProcessor(ctx, cfg, pl, met, log)
	if err != nil {
		return err
	}
	defer db.CloseFirestore()

	noCron, _ := cmd.Flags().GetBool("no-cron")
	if cfg.Cron.Enabled && !noCron {
		c, err := cronjobs.InitCronJobs(proc, cronjobs.Schedule{
			Cleanup:  cfg.Cron.Cleanup,
			Backfill: cfg.Cron.Backfill,
		}, met, log)
		if err != nil {
			return err
		}
		defer func() { <-c.Stop().Done() }()
	}

	r := routes.SetupRouter(routes.Deps{
		Service:    proc,
		Classifier: pl.classifier,
		Resolver:   pl.resolver,
		Memo:       handlers.MemoDefaults(cfg.Report.ApplyMemoDefaults),
		Gatherer:   reg,
		ClientURL:  cfg.Server.ClientURL,
	})

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.String("addr", srv.Addr), logger.String("client_url", cfg.Server.ClientURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
