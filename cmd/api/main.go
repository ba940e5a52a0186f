package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"invhub-rest-api/internal/cache"
	"invhub-rest-api/internal/config"
	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/repository"
	"invhub-rest-api/internal/service"
	httpTransport "invhub-rest-api/internal/transport/http"
	"invhub-rest-api/internal/transport/http/handler"
	"invhub-rest-api/internal/transport/http/middleware"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log.Printf("Starting %s v%s in %s mode",
		cfg.App.Name,
		cfg.App.Version,
		cfg.App.Environment,
	)

	// Create data directory for SQLite
	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize SQLite for inventories/items/comments (LOCAL - no network latency!)
	store, err := repository.NewSQLiteStore(cfg.SQLite.Path)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("✓ SQLite database initialized (%s)", cfg.SQLite.Path)

	// Connect to Main Database (for account/API key lookup - optional)
	mainDB, err := connectDB(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		"Main DB",
	)
	if err != nil {
		log.Printf("Warning: Failed to connect to Main DB: %v", err)
		mainDB = nil
	} else {
		defer mainDB.Close()
		log.Println("✓ Main DB connected")
	}

	// Account repo is optional (uses Main MySQL DB); without it only
	// env-var API keys are accepted.
	if mainDB != nil {
		middleware.SetAccountRepository(repository.NewMySQLAccountRepository(mainDB))
	}

	// Initialize Redis buffer (Redis buffers comments, SQLite persists)
	flushFunc := func(ctx context.Context, comments []*domain.Comment) error {
		return store.BatchInsertComments(ctx, comments)
	}

	redisCfg := cache.RedisBufferConfig{
		Addr:          cfg.Redis.Addr,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		FlushInterval: cfg.Redis.FlushInterval,
		KeyPrefix:     cfg.Redis.KeyPrefix,
	}

	var (
		commentSink service.CommentSink
		events      service.EventPublisher
		pending     handler.PendingCounter
	)
	redisBuffer, redisErr := cache.NewRedisCommentBuffer(redisCfg, flushFunc)
	if redisErr != nil {
		log.Printf("⚠ Redis unavailable: %v (in-memory buffer, no live updates)", redisErr)
		memBuffer := cache.NewCommentBuffer(cfg.Redis.FlushInterval, flushFunc)
		defer memBuffer.Close()
		commentSink = memBuffer
		pending = memBuffer
	} else {
		defer redisBuffer.Close()
		commentSink = redisBuffer
		events = redisBuffer
		pending = redisBuffer
		log.Printf("✓ Redis buffer enabled (flush every %v, DB=%d)", cfg.Redis.FlushInterval, cfg.Redis.DB)
	}

	// Initialize services
	inventoryService := service.NewInventoryService(store, events)
	itemService := service.NewItemService(store, store, idformat.NewRenderer(), events)
	commentService := service.NewCommentService(store, commentSink, events)
	if inventoryService == nil || itemService == nil || commentService == nil {
		log.Fatalf("FATAL: Failed to create services")
	}
	log.Println("✓ Services initialized")

	// Initialize transport layer - HTTP
	router := httpTransport.NewRouter(
		handler.New(),
		handler.NewInventoryHandler(inventoryService),
		handler.NewItemHandler(itemService),
		handler.NewCommentHandler(commentService),
		handler.NewAdminHandler(pending, store),
	)

	// Configure HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.Address())
		log.Println("Available endpoints:")
		log.Println("  GET    /api/v1/health")
		log.Println("  POST   /api/v1/inventories")
		log.Println("  POST   /api/v1/inventories/{id}/items")
		log.Println("  GET    /api/v1/inventories/{id}/next-id")
		log.Println("  POST   /api/v1/preview")
		log.Println("  GET    /api/v1/admin/stats")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// connectDB establishes a connection to a MySQL database.
func connectDB(host string, port int, user, password, dbName, label string) (*sql.DB, error) {
	// DSN with timeout settings to prevent hanging connections
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&timeout=5s&readTimeout=10s&writeTimeout=10s",
		user, password, host, port, dbName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", label, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Verify connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", label, err)
	}

	return db, nil
}

// init sets up logging format
func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
}
