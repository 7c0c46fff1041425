package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	apimod "github.com/example/taskboard/modules/api"
	cachemod "github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/notification"
	taskmod "github.com/example/taskboard/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	dbPath := getEnv("DB_PATH", "./tasks.db")
	httpPort := getEnvInt("HTTP_PORT", 3000)
	cacheEnabled := getEnv("CACHE_ENABLED", "false") == "true"
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)
	cachePrefix := getEnv("CACHE_PREFIX", "tasks:")

	log.Println("=== Taskboard ===")
	log.Printf("Database: %s", dbPath)
	log.Printf("HTTP Port: %d", httpPort)
	if cacheEnabled {
		log.Printf("Cache: Redis at %s (prefix: %s, TTL: %s)", redisAddr, cachePrefix, cacheTTL)
	} else {
		log.Println("Cache: disabled")
	}

	taskModule := taskmod.NewModule(dbPath)
	apiModule := apimod.NewModule(httpPort)

	var cacheModule *cachemod.Module
	if cacheEnabled {
		cacheModule = cachemod.NewModule(redisAddr, cachePrefix, cacheTTL)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: independent modules first, then modules with dependencies.
	if cacheModule != nil {
		app.Register(cacheModule)
	}
	app.Register(notification.NewModule()) // event consumer
	app.Register(taskModule)               // core domain, emits events
	app.Register(apiModule)                // driving adapter, depends on task

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// The read services fall back to the database until the cache is wired.
	if cacheModule != nil {
		taskModule.SetCache(cacheModule.GetCache())
	}

	printStartupInfo(httpPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /api/tasks               - List tasks (optional status, priority, sortBy)")
	log.Println("  GET    /api/tasks/today/tasks   - List tasks due today")
	log.Println("  GET    /api/tasks/stats/summary - Dashboard summary")
	log.Println("  GET    /api/tasks/:id           - Get a task by id")
	log.Println("  POST   /api/tasks               - Create a task")
	log.Println("  PUT    /api/tasks/:id           - Update a task")
	log.Println("  DELETE /api/tasks/:id           - Delete a task")
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
