package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blackwallet.backend/internal/config"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"blackwallet.backend/internal/infrastructure/datasources/postgres"
	"blackwallet.backend/internal/infrastructure/email"
	"blackwallet.backend/internal/infrastructure/jobs"
	"blackwallet.backend/internal/infrastructure/repositories"
	"blackwallet.backend/internal/interfaces/http/handlers"
	"blackwallet.backend/internal/interfaces/http/middleware"
	"blackwallet.backend/internal/usecases"
	"blackwallet.backend/pkg/jwt"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/redis"
)

// relayer is everything the usecases need from the chain.
type relayer interface {
	usecases.WalletChain
	usecases.WalletResetter
	Close()
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.OpenGorm(sqlDB)
	}
	migrateDB = postgres.Migrate
	dialChain = dialRelayer
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
	notifyCh  = func(ch chan<- os.Signal) { signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM) }
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "REDIS_URL not set; idempotency keys disabled and relayer lock is in-process")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := migrateDB(db); err != nil {
		return err
	}
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	chain, err := dialChain(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize relayer: %w", err)
	}
	defer chain.Close()
	logger.Info(ctx, "Relayer ready", zap.String("relayer", chain.RelayerAddress().Hex()))

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	uow := repositories.NewUnitOfWork(db)

	mailer := email.NewDispatcher(cfg.SMTP)

	notificationUsecase := usecases.NewNotificationUsecase(notificationRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	contactUsecase := usecases.NewContactUsecase(contactRepo)
	walletUsecase := usecases.NewWalletUsecase(userRepo, walletRepo, chain, notificationUsecase)
	ledgerUsecase := usecases.NewLedgerUsecase(uow, walletRepo, transactionRepo, notificationUsecase)
	approvalUsecase := usecases.NewApprovalUsecase(walletRepo, ledgerUsecase, chain, mailer, notificationUsecase, cfg.Approval.AppURL, cfg.Approval.TokenTTL)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	if cfg.Jobs.RolloverEnabled {
		var guard jobs.RolloverGuard
		if redis.GetClient() != nil {
			guard = jobs.NewRedisRolloverGuard(0)
		}
		rollover := jobs.NewDailySpendingRolloverJob(ledgerUsecase, guard, cfg.Jobs.RolloverCheck)
		go rollover.Start(jobCtx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:         handlers.NewAuthHandler(authUsecase),
		walletHandler:       handlers.NewWalletHandler(walletUsecase),
		ledgerHandler:       handlers.NewLedgerHandler(ledgerUsecase, walletUsecase),
		approvalHandler:     handlers.NewApprovalHandler(approvalUsecase, walletUsecase),
		notificationHandler: handlers.NewNotificationHandler(notificationUsecase),
		contactHandler:      handlers.NewContactHandler(contactUsecase),
		authMiddleware:      middleware.AuthMiddleware(jwtService),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		notifyCh(quit)
		<-quit
		logger.Info(ctx, "Shutting down server")
		cancelJobs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "Blackwallet backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1"),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// dialRelayer builds the relayer client. The nonce lock is shared through
// Redis when it is configured.
func dialRelayer(ctx context.Context, cfg *config.Config) (relayer, error) {
	signer, err := blockchain.NewKeySigner(cfg.Blockchain.RelayerPrivateKey)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(cfg.Blockchain.FactoryAddress) {
		return nil, fmt.Errorf("FACTORY_ADDRESS %q is not a valid address", cfg.Blockchain.FactoryAddress)
	}

	var locker blockchain.NonceLocker = blockchain.NewMutexLocker()
	if redis.GetClient() != nil {
		locker = blockchain.NewRedisNonceLocker(signer.Address().Hex(), cfg.Blockchain.NonceLockTTL)
	}

	client, err := blockchain.DialRelayerClient(ctx, cfg.Blockchain.RPCURL, signer, locker,
		common.HexToAddress(cfg.Blockchain.FactoryAddress),
		blockchain.RelayerOptions{
			ConfirmTimeout: cfg.Blockchain.ConfirmTimeout,
			ReceiptPoll:    cfg.Blockchain.ReceiptPoll,
		})
	if err != nil {
		return nil, err
	}
	if want := cfg.Blockchain.ChainID; want != 0 && client.ChainID().Int64() != want {
		got := client.ChainID().Int64()
		client.Close()
		return nil, fmt.Errorf("rpc chain id %d does not match CHAIN_ID %d", got, want)
	}
	return client, nil
}
