package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/config"
	"github.com/alvaro-chz/banking-core-api/internal/handler"
	"github.com/alvaro-chz/banking-core-api/internal/repository"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Carga de la configuración
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Error al cargar la configuración: %v", err)
	}

	// Conexión a PostgreSQL
	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	))
	if err != nil {
		logger.Fatalf("Error al conectar con la base de datos: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Error al verificar la conexión con la base de datos: %v", err)
	}

	// Repositorios
	logger.Info("Inicializando repositorios...")
	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db, logger)
	accountRepo := repository.NewAccountRepository(db, logger)
	transactionRepo := repository.NewTransactionRepository(db, logger)
	beneficiaryRepo := repository.NewBeneficiaryRepository(db, logger)
	attemptRepo := repository.NewLoginAttemptRepository(db, logger)
	auditRepo := repository.NewAuditLogRepository(db, logger)

	// Fuente de tipos de cambio: tabla fija o API externa
	var rateSource service.RateSource
	switch cfg.ExchangeSource {
	case config.ExchangeSourceAPI:
		rateSource = service.NewExchangeAPIClient(cfg.ExchangeAPIBaseURL, cfg.ExchangeAPIAppID, cfg.ExchangeAPITimeout, logger)
	default:
		rateSource = service.NewStaticRateSource(cfg.ExchangeStaticRates)
	}

	// Servicios
	logger.Info("Inicializando servicios...")
	emailSender := service.NewEmailSender(logger)
	exchangeService := service.NewExchangeService(rateSource, logger)
	codeGenerator := service.NewCodeGenerator()
	auditService := service.NewAuditLogService(auditRepo, logger)
	defer auditService.Close()

	transactionService := service.NewTransactionService(
		store,
		accountRepo,
		transactionRepo,
		userRepo,
		exchangeService,
		codeGenerator,
		emailSender,
		logger,
	)
	accountService := service.NewAccountService(accountRepo, codeGenerator, logger)
	authService := service.NewAuthService(userRepo, attemptRepo, accountService, auditService, cfg.JWTSecret, cfg.TokenExpiry, logger)
	userService := service.NewUserService(userRepo, logger)
	beneficiaryService := service.NewBeneficiaryService(beneficiaryRepo, accountRepo, logger)
	adminService := service.NewAdminService(userRepo, transactionRepo, attemptRepo, transactionService, auditService, logger)
	interestService := service.NewInterestService(accountRepo, transactionService, cfg.InterestAnnualRate, logger)

	// Handlers HTTP
	logger.Info("Inicializando handlers...")
	authHandler := handler.NewAuthHandler(authService, logger)
	accountHandler := handler.NewAccountHandler(accountService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, logger)
	beneficiaryHandler := handler.NewBeneficiaryHandler(beneficiaryService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)

	router := mux.NewRouter()

	// Rutas públicas de autenticación
	publicRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(publicRouter)

	// Rutas protegidas por token
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))
	accountHandler.RegisterRoutes(apiRouter)
	transactionHandler.RegisterRoutes(apiRouter)
	beneficiaryHandler.RegisterRoutes(apiRouter)
	userHandler.RegisterRoutes(apiRouter)

	// Rutas de administración, solo rol ADMIN
	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(handler.AdminOnly(logger))
	adminHandler.RegisterRoutes(adminRouter)

	// Planificador del abono de intereses de cuentas de ahorro
	logger.Info("Configurando el planificador de intereses...")
	c := cron.New()
	_, err = c.AddFunc(cfg.InterestCronSpec, func() {
		logger.Info("Iniciando ciclo de abono de intereses")
		interestService.PayAll(context.Background())
	})
	if err != nil {
		logger.Fatalf("Error al configurar el planificador: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("Servidor escuchando en %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error del servidor: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Apagando el servidor...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Error al apagar el servidor: %v", err)
	}
	logger.Info("Servidor detenido correctamente")
}
