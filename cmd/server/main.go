package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/ledger-backend/internal/adapter/grpc"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/ledger-backend/internal/adapter/rest"
	"github.com/simaogato/ledger-backend/internal/config"
	"github.com/simaogato/ledger-backend/internal/logger"
	"github.com/simaogato/ledger-backend/internal/usecase/audit"
	"github.com/simaogato/ledger-backend/internal/usecase/directory"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
	"github.com/simaogato/ledger-backend/internal/usecase/rollup"
	"github.com/simaogato/ledger-backend/internal/usecase/seeder"
	"github.com/simaogato/ledger-backend/internal/usecase/stats"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultToken() {
		log.Warn("API_TOKEN is not set, using the development token")
	}

	// 1. Setup Database
	db, isolation, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	editMode, err := rollup.ParseEditMode(cfg.EditMode)
	if err != nil {
		return err
	}

	// 2. Initialize Repositories
	transactionRepo := sqlstore.NewTransactionRepository(db)
	historyRepo := sqlstore.NewHistoryRepository(db)
	directoryRepo := sqlstore.NewDirectoryRepository(db)
	auditRepo := sqlstore.NewAuditRepository(db)
	unitOfWork := sqlstore.NewUnitOfWork(db, isolation)

	// 3. Initialize Services (Use Cases)
	ledgerService := ledger.NewLedgerService(unitOfWork, editMode, log.With("component", "ledger"))
	statsService := stats.NewStatsService(transactionRepo, historyRepo, cfg.StatsMaxRangeDays)
	directoryService := directory.NewDirectoryService(directoryRepo)
	auditor := audit.NewAuditor(auditRepo, log.With("component", "audit"))

	// Seed starter directories for configured users
	directorySeeder := seeder.NewDirectorySeeder(directoryService)
	for _, userID := range cfg.SeedUserIDs {
		seedCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
		err := directorySeeder.Seed(seedCtx, userID)
		cancel()
		if err != nil {
			return fmt.Errorf("seed directory for %s: %w", userID, err)
		}
		log.Info("starter directory seeded", "user_id", userID)
	}

	// 4. Schedule the rollup audit
	scheduler, err := audit.Schedule(cfg.AuditSchedule, auditor, 10*cfg.DBTimeout)
	if err != nil {
		return err
	}
	if scheduler != nil {
		log.Info("rollup audit scheduled", "schedule", cfg.AuditSchedule)
		defer func() { <-scheduler.Stop().Done() }()
	}

	g, gctx := errgroup.WithContext(ctx)

	// 5. Start gRPC Server
	if cfg.GRPCAddr != "" {
		grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log.With("transport", "grpc")),
			grpcadapter.AuthInterceptor(cfg.APIToken),
			grpcadapter.TimeoutInterceptor(cfg.DBTimeout),
		))
		grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(ledgerService, statsService))
		reflection.Register(grpcServer)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}

		g.Go(func() error {
			log.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpclib.ErrServerStopped) {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			log.Info("gRPC server stopped")
			return nil
		})
	}

	// 6. Start HTTP Server
	if cfg.HTTPAddr != "" {
		if cfg.LogMode == "prod" || cfg.LogMode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		handler := rest.NewHandler(ledgerService, statsService, directoryService)
		httpServer := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: rest.NewRouter(rest.RouterConfig{
				Handler:        handler,
				Log:            log.With("transport", "http"),
				APIToken:       cfg.APIToken,
				RequestTimeout: cfg.DBTimeout,
				AllowedOrigins: cfg.AllowedOrigins,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP shutdown: %w", err)
			}
			log.Info("HTTP server stopped")
			return nil
		})
	}

	<-gctx.Done()
	log.Info("shutting down gracefully")

	return g.Wait()
}

// openStorage connects to the configured backend, applies pending migrations
// and returns the isolation level units of work should run at
func openStorage(cfg *config.Config, log *logger.Logger) (*sqlstore.DB, sql.IsolationLevel, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		if err := sqlite.RunMigrations(cfg.SQLiteDBPath); err != nil {
			return nil, sql.LevelDefault, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		db, err := sqlite.NewDB(cfg.SQLiteDBPath)
		if err != nil {
			return nil, sql.LevelDefault, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		log.Info("using sqlite backend", "path", cfg.SQLiteDBPath)
		// SQLite serializes writers; the isolation option does not apply
		return db, sql.LevelDefault, nil

	default:
		isolation, err := cfg.IsolationLevel()
		if err != nil {
			return nil, sql.LevelDefault, err
		}

		var db *sqlstore.DB
		for attempt := 1; ; attempt++ {
			db, err = postgres.NewDB(cfg.DBConnStr)
			if err == nil {
				break
			}
			if attempt == connectAttempts {
				return nil, sql.LevelDefault, fmt.Errorf("failed to connect to database: %w", err)
			}
			log.Warn("database not ready, retrying", "attempt", attempt, "error", err)
			time.Sleep(connectBackoff)
		}

		if err := postgres.RunMigrations(cfg.DBConnStr); err != nil {
			db.Close()
			return nil, sql.LevelDefault, fmt.Errorf("failed to migrate postgres database: %w", err)
		}
		log.Info("using postgres backend", "isolation", isolation.String())
		return db, isolation, nil
	}
}
