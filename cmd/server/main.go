package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"route-dispatch-service/internal/adapters/cache"
	"route-dispatch-service/internal/adapters/events"
	"route-dispatch-service/internal/adapters/repositories"
	"route-dispatch-service/internal/adapters/routing"
	"route-dispatch-service/internal/adapters/sequence"
	"route-dispatch-service/internal/api"
	"route-dispatch-service/internal/platform/db"
	"route-dispatch-service/internal/ports"
	"route-dispatch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, Redis, NATS) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if strings.TrimSpace(jwtSecret) == "" {
		log.Fatal("JWT_SECRET is required")
	}

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	port := getEnv("PORT", "8080")
	country := getEnv("GEOCODE_COUNTRY", "VN")
	maxActive := getEnvInt("MAX_ACTIVE_ROUTES", services.DefaultMaxActiveRoutes)

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// Initialize schema on startup for local runs; seeding lives in dbtool.
	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	// ORS provider writes leg results through a persistent cache so the
	// same shop pair never costs two external calls.
	legCache := cache.NewSQLLegCache(database)
	provider, err := routing.NewORSRoutingProvider(orsKey, country, legCache)
	if err != nil {
		log.Fatal(err)
	}

	seqStore := repositories.NewSQLSequenceStore(database)
	var allocator ports.CodeAllocator = services.NewSequenceAllocator(seqStore)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		allocator = sequence.NewRedisAllocator(client, seqStore)
		log.Printf("Sequence counters backed by redis addr=%s", addr)
	}

	var publisher ports.EventPublisher
	if url := os.Getenv("NATS_URL"); url != "" {
		natsPub, err := events.NewNATSPublisher(url)
		if err != nil {
			log.Fatal(err)
		}
		defer natsPub.Close()
		publisher = natsPub
		log.Printf("Audit events published to nats url=%s", url)
	}

	routes := repositories.NewSQLRouteRepository(database)
	shops := repositories.NewSQLShopRepository(database)
	workers := repositories.NewSQLWorkerRepository(database)
	vehicles := repositories.NewSQLVehicleTypeRepository(database)

	recorder := services.NewAuditRecorder(repositories.NewSQLAuditLog(database), publisher)

	router := api.NewRouter(api.RouterDeps{
		Routes: routes,
		Creator: &services.RouteCreator{
			Routes:   routes,
			Shops:    shops,
			Vehicles: vehicles,
			Provider: provider,
			Codes:    allocator,
			Audit:    recorder,
		},
		Lifecycle:   services.NewRouteLifecycle(routes, recorder),
		Coordinator: services.NewAssignmentCoordinator(routes, workers, recorder, maxActive),
		Registrar: &services.ShopRegistrar{
			Shops:    shops,
			Codes:    allocator,
			Geocoder: provider,
			Audit:    recorder,
		},
		JWTSecret: jwtSecret,
	})

	// Timeouts are tuned for cold-cache route creation (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}
