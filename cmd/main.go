package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/clients"
	"storefront/internal/delivery"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validation"
	"storefront/pkg/db"
)

const shutdownTimeout = 10 * time.Second

func main() {
	bootstrap := logrus.New()
	bootstrap.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	bootstrap.SetOutput(os.Stdout)

	cfg := config.LoadConfig(bootstrap)

	log, logCloser, err := logger.Setup(logger.Config{
		Level:     cfg.LogLevel,
		Dir:       cfg.LogDir,
		ToConsole: cfg.LogToConsole,
		ToFile:    cfg.LogToFile,
		UseColors: cfg.LogUseColors,
		Format:    cfg.LogFormat,
	})
	if err != nil {
		bootstrap.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	log.Infof("Starting %s (%s)...", cfg.AppName, cfg.Environment)

	if err := validation.Register(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	// --- Database ---
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		} else {
			log.Info("Database connection closed.")
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("Failed to access database pool: %v", err)
	}
	log.Infof("Database ready (driver=%s).", cfg.DatabaseDriver)

	// --- Dependency Injection ---
	productRepo := repository.NewProductRepository(gdb, log)
	userRepo := repository.NewUserRepository(gdb, log)
	orderRepo := repository.NewOrderRepository(gdb, log)
	postRepo := repository.NewPostRepository(gdb, log)
	log.Info("Repositories initialized.")

	payments := clients.NewPaymentHTTPClient(cfg.PaymentGatewayURL, cfg.UpstreamTimeout, log)
	shipping := clients.NewShippingHTTPClient(cfg.ShippingCarrierURL, cfg.UpstreamTimeout, log)

	productUseCase := usecase.NewProductUseCase(productRepo, log)
	userUseCase := usecase.NewUserUseCase(userRepo, log)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, userRepo, log)
	postUseCase := usecase.NewPostUseCase(postRepo, log)
	commerceUseCase := usecase.NewCommerceUseCase(orderRepo, payments, shipping, log)
	log.Info("Use cases initialized.")

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := userUseCase.EnsureAdmin(bootCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Errorf("Failed to bootstrap admin account: %v", err)
	}
	cancelBoot()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := delivery.NewRouter(delivery.Dependencies{
		Config:   cfg,
		Logger:   log,
		Tokens:   tokens,
		DB:       sqlDB,
		Metrics:  middleware.NewMetrics(),
		Products: productUseCase,
		Users:    userUseCase,
		Orders:   orderUseCase,
		Posts:    postUseCase,
		Commerce: commerceUseCase,
	})
	log.Info("API routes registered.")

	// --- gRPC health ---
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(cfg.AppName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		log.Infof("gRPC health service listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	// --- HTTP ---
	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutdown signal received...")

	healthServer.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server forced to shut down: %v", err)
	}
	grpcServer.GracefulStop()
	log.Infof("%s shut down gracefully.", cfg.AppName)
}
