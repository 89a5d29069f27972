package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/database"
	"task-manager/internal/handlers"
	"task-manager/internal/middleware"
	"task-manager/internal/monitoring"
	"task-manager/internal/repositories"
	"task-manager/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Application holds all application dependencies and state.
type Application struct {
	Config *config.Config
	DB     *database.Pool
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	TaskService services.TaskService
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer config.Logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		config.Logger.Fatalf("failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	config.Logger.Info("initializing task manager backend")
	config.Logger.Infof("environment: %s", cfg.Server.Environment)

	pool, err := database.NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: cfg.Database.MigrationsPath,
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	if cfg.Seed.Enabled && !cfg.IsProduction() {
		if err := repositories.SeedSampleTasks(pool.DB); err != nil {
			return nil, fmt.Errorf("sample data seeding failed: %w", err)
		}
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			config.Logger.Warnf("redis unavailable: %v (falling back to in-memory rate limiting)", err)
		} else {
			app.Redis = client
			config.Logger.Info("redis connected")
		}
	}

	repo := repositories.NewTaskRepository(pool.DB)
	app.TaskService = services.NewTaskService(repo)

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return pool.Health()
	})
	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	config.Logger.Info("all services initialized")
	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())

	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		r.Use(limiter.CreateMiddleware("api", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.RequestsPerMin,
			Window:  time.Minute,
			KeyFunc: middleware.ClientIPKey,
		}))
	} else {
		limit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(limit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORS.AllowedOrigins,
		AllowMethods:     app.Config.CORS.AllowedMethods,
		AllowHeaders:     app.Config.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: app.Config.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	taskHandler := handlers.NewTaskHandler(app.TaskService)

	v1 := r.Group("/api/v1")
	tasks := v1.Group("/tasks")
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.GET("/filter", taskHandler.FilterTasks)
		tasks.GET("/overdue", taskHandler.GetOverdueTasks)
		tasks.GET("/due-today", taskHandler.GetTasksDueToday)
		tasks.GET("/due-within", taskHandler.GetTasksDueWithin)
		tasks.GET("/high-priority", taskHandler.GetHighPriorityPendingTasks)
		tasks.GET("/recent", taskHandler.GetRecentlyUpdatedTasks)
		tasks.GET("/search", taskHandler.SearchTasks)
		tasks.GET("/statistics", taskHandler.GetStatistics)
		tasks.GET("/status/:status", taskHandler.GetTasksByStatus)
		tasks.GET("/priority/:priority", taskHandler.GetTasksByPriority)
		tasks.GET("/category/:category", taskHandler.GetTasksByCategory)
		tasks.GET("/assigned/:assignedTo", taskHandler.GetTasksAssignedTo)
		tasks.GET("/created-by/:createdBy", taskHandler.GetTasksCreatedBy)
		tasks.GET("/:id", taskHandler.GetTaskByID)

		tasks.POST("", taskHandler.CreateTask)
		tasks.POST("/bulk-update-status", taskHandler.BulkUpdateStatus)

		tasks.PUT("/:id", taskHandler.UpdateTask)

		tasks.PATCH("/:id", taskHandler.PatchTask)
		tasks.PATCH("/:id/complete", taskHandler.CompleteTask)
		tasks.PATCH("/:id/start", taskHandler.StartTask)

		tasks.DELETE("/bulk-delete", taskHandler.BulkDeleteTasks)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		config.Logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			config.Logger.Errorf("server forced to shutdown: %v", err)
		}

		app.cleanup()
		config.Logger.Info("server stopped gracefully")
	}()

	config.Logger.Infof("server starting on %s", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		config.Logger.Fatalf("server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			config.Logger.Warnf("error closing redis: %v", err)
		}
	}

	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			config.Logger.Warnf("error closing database: %v", err)
		}
	}
}
