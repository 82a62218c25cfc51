package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/grpcserver"
	"jobmate/jobboard-service/internal/httpapi"
	"jobmate/jobboard-service/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		migrateFirst bool
		noScheduler  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers with the ingestion scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrateFirst, !noScheduler)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before starting")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve requests only, without cron jobs")
	return cmd
}

func serve(parent context.Context, migrateFirst, withScheduler bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if migrateFirst {
		status, err := db.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", zap.Uint("version", status.Version), zap.Bool("changed", status.Changed))
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// ── Scheduler ────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if withScheduler {
		sched, err = scheduler.New(a.ingestion, a.recommend, cfg.IngestIntervalHours, cfg.RecomputeIntervalHours, log)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Deps{
		Sources:      a.ingestion,
		Jobs:         a.catalog,
		Profiles:     a.preferences,
		Recommender:  a.recommend,
		Applications: a.tracker,
		Metrics:      a.metrics,
		Checks: map[string]httpapi.HealthCheck{
			"postgres": a.pingPostgres,
			"redis":    a.pingRedis,
		},
		JWTSecret: cfg.JWTSecret,
		Version:   version,
		Logger:    log,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("grpc listen on :%s: %w", cfg.GRPCPort, err)
	}
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger(log)))
	grpcserver.Register(grpcSrv, grpcserver.NewServer(a.catalog, a.recommend, a.tracker, log))

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP listening", zap.String("version", version), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("gRPC listening", zap.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		log.Error("server failed, shutting down", zap.Error(runErr))
	case <-ctx.Done():
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", zap.Error(err))
	}
	stopGRPC(shutdownCtx, grpcSrv)

	log.Info("stopped")
	return runErr
}

// stopGRPC drains in-flight RPCs, forcing a stop once ctx expires.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}
