package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	httpapi "github.com/MdHasibulHasan1/SmartStore-server/internal/api/http"
	stripeclient "github.com/MdHasibulHasan1/SmartStore-server/internal/client/stripe"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/config"
	mongorepo "github.com/MdHasibulHasan1/SmartStore-server/internal/repository/mongo"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/service"
	platformlogging "github.com/MdHasibulHasan1/SmartStore-server/platform/logging"
	platformshutdown "github.com/MdHasibulHasan1/SmartStore-server/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown сервера
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	readiness   func() bool
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости сервера
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "smartstore",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building SmartStore server", zap.String("http_addr", cfg.HTTPAddr))

	// Подключаемся к MongoDB
	logger.Info("Connecting to MongoDB")
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	// Проверяем подключение
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelDisconnect()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	logger.Info("MongoDB connection established", zap.String("database", cfg.MongoDB))

	db := client.Database(cfg.MongoDB)

	// Функция readiness для health check
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx, readpref.Primary()) == nil
	}

	// Репозитории поверх общей базы
	productRepo := mongorepo.NewProductRepository(db, cfg.ReserveAttempts)
	cartRepo := mongorepo.NewCartRepository(db)
	orderRepo := mongorepo.NewOrderRepository(logger, db)
	userRepo := mongorepo.NewUserRepository(db)

	// Платёжный провайдер
	gateway := stripeclient.NewClient(cfg.StripeSecretKey, logger)

	// Service слой
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.TokenTTL)
	userService := service.NewUserService(logger, userRepo)
	catalogService := service.NewCatalogService(logger, productRepo)
	cartService := service.NewCartService(logger, cartRepo)
	checkoutService := service.NewCheckoutService(logger, productRepo, cartRepo, orderRepo, gateway, cfg.CheckoutTimeout)

	// HTTP handler и роутер
	handler := httpapi.NewHandler(logger, tokenService, userService, catalogService, cartService, checkoutService)
	router := httpapi.NewRouter(handler, readiness, tokenService)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции в обратном порядке выполнения
	shutdownMgr.Add("mongo_client", platformshutdown.DisconnectMongo(client))
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
		readiness:   readiness,
	}, nil
}

// Run запускает сервер и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting SmartStore server", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("SmartStore server stopped")
	return nil
}
