package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geekdeals/internal/config"
	"geekdeals/internal/handlers"
	"geekdeals/internal/limiter"
	"geekdeals/internal/middleware"
	"geekdeals/internal/repositories"
	"geekdeals/internal/routes"
	"geekdeals/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "geekdeals/docs"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App owns the HTTP server and every background resource it depends on.
type App struct {
	cfg        *config.Config
	router     *gin.Engine
	store      *services.CodeStore
	dispatcher *services.CodeDispatcher
	closers    []func(context.Context) error
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации: ", err)
	}
	if err := a.Serve(ctx); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	// === Storage ===
	userRepo, productRepo, closeDB, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeDB)

	// === Services ===
	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		Secret:    cfg.JWTSecret,
		ExpiresIn: cfg.TokenTTL(),
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	store, err := services.NewCodeStore(services.CodeStoreConfig{
		TTL:           cfg.CodeLifetime(),
		SweepInterval: cfg.SweepEvery(),
		MaxAttempts:   cfg.CodeMaxAttempts,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.store = store

	authService := services.NewAuthService(cfg.BcryptCost)
	userService := services.NewUserService(userRepo, authService)
	productService := services.NewProductService(productRepo)

	a.dispatcher = services.NewCodeDispatcher(newEmailService(cfg), newOperatorNotifier(cfg))

	throttle, closeThrottle := newLoginThrottle(ctx, cfg)
	if closeThrottle != nil {
		a.closers = append(a.closers, closeThrottle)
	}

	loginService := services.NewLoginService(
		services.NewCredentialVerifier(userRepo, authService),
		store,
		a.dispatcher,
		tokens,
		userRepo,
		throttle,
	)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(loginService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)

	// === Gin ===
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		middleware.AuthMiddleware(tokens, userService),
		authHandler,
		userHandler,
		productHandler,
	)
	a.router = router
	return a, nil
}

func (a *App) Handler() http.Handler { return a.router }

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	a.store.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на %s (env=%s)", srv.Addr, a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("shutting down HTTP server...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	a.Close(shutdownCtx)
	log.Println("HTTP server stopped")
	return serveErr
}

// Close stops the sweeper, waits for in-flight code deliveries and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.store != nil {
		a.store.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Printf("close: %v", err)
		}
	}
	a.closers = nil
}

func openStorage(ctx context.Context, cfg *config.Config) (repositories.UserRepository, repositories.ProductRepository, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.DatabaseBackend() {
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		db := client.Database(cfg.DatabaseName)
		users := db.Collection("users")
		if err := repositories.EnsureUserIndexes(ctx, users); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		log.Printf("[db] mongo connected db=%s", cfg.DatabaseName)
		return repositories.NewMongoUserRepository(users),
			repositories.NewMongoProductRepository(db.Collection("products")),
			client.Disconnect, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		log.Printf("[db] postgres connected")
		return repositories.NewUserRepository(db),
			repositories.NewProductRepository(db),
			func(context.Context) error { return db.Close() }, nil

	case config.BackendMemory:
		log.Printf("[db] WARNING: in-memory storage, data is lost on restart")
		return repositories.NewMemoryUserRepository(),
			repositories.NewMemoryProductRepository(),
			func(context.Context) error { return nil }, nil
	}
	return nil, nil, nil, fmt.Errorf("unsupported DATABASE_URL %q", cfg.DatabaseURL)
}

func newEmailService(cfg *config.Config) services.EmailService {
	if cfg.SMTPConfigured() {
		return services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	log.Printf("[email] SMTP not configured, using log transport")
	return services.NewLogEmailService(cfg.SMTPFrom)
}

// newOperatorNotifier returns nil in production: codes never leave the email channel there.
func newOperatorNotifier(cfg *config.Config) services.OperatorNotifier {
	if cfg.IsProduction() {
		return nil
	}
	notifiers := []services.OperatorNotifier{services.NewLogNotifier()}
	if cfg.TelegramBotToken != "" {
		tg, err := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("[tg] operator channel disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return services.NewMultiNotifier(notifiers...)
}

func newLoginThrottle(ctx context.Context, cfg *config.Config) (services.LoginThrottle, func(context.Context) error) {
	if !cfg.LoginThrottleEnabled {
		return nil, nil
	}
	lc := limiter.Config{
		Window:     cfg.ThrottleWindow(),
		DefaultMax: cfg.LoginThrottlePerEmail,
		Max: map[string]int{
			"email": cfg.LoginThrottlePerEmail,
			"ip":    cfg.LoginThrottlePerIP,
		},
	}
	if cfg.RedisAddr == "" {
		return limiter.NewMemoryLimiter(lc), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[limiter] redis %s unreachable, login throttle fails open until it recovers: %v", cfg.RedisAddr, err)
	}
	return limiter.NewRedisLimiter(rdb, lc), func(context.Context) error { return rdb.Close() }
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
