// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"shoppulse/api/database"
	"shoppulse/api/geo"
	"shoppulse/api/handlers"
	"shoppulse/api/middleware"
	"shoppulse/api/snapshot"
	"shoppulse/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize the behavior store (ClickHouse by default) ---
	var events snapshot.EventStore
	var refStore handlers.ReferenceDater
	switch strings.ToLower(os.Getenv("STORE_DRIVER")) {
	case "", "clickhouse":
		chClient, err := database.NewClickHouseDB()
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		defer chClient.Close()
		st := store.NewBehaviorStore(chClient)
		events = st
		refStore = st
	case "postgres":
		dbClient, err := database.NewPostgresDB()
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer dbClient.Close()
		st := store.NewPostgresBehaviorStore(dbClient.DB)
		events = st
		refStore = st
	default:
		log.Fatalf("Unknown STORE_DRIVER %q (want clickhouse or postgres)", os.Getenv("STORE_DRIVER"))
	}

	// --- Build the country polygon index once per process lifetime ---
	// Boundary fetch failure degrades to an empty index: the geo
	// distribution comes back empty but every other aggregate still works.
	var index *geo.CountryIndex
	if fc, err := geo.LoadFeatureCollection(); err != nil {
		log.Printf("WARNING: boundary dataset unavailable, geo distribution disabled: %v", err)
		index = geo.BuildIndex(nil)
	} else {
		index = geo.BuildIndex(fc)
	}

	// --- Snapshot assembly and caching ---
	assembler := snapshot.NewAssembler(events, index)
	cache := snapshot.NewCache(database.NewRedisClient())
	snapshotHandlers := handlers.NewSnapshotHandlers(assembler, refStore, cache)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		stats := api.Group("/stats")
		{
			stats.GET("/snapshot", snapshotHandlers.GetSnapshot)
			stats.GET("/reference-date", snapshotHandlers.GetReferenceDate)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Dashboard API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Dashboard API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
