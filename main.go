package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"pazar/controllers"

	"github.com/go-michi/michi"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/handlers"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/segmentio/kafka-go"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	connStr := os.Getenv("DATABASE_CONNECTION_STR")
	if connStr == "" {
		log.Fatal("DATABASE_CONNECTION_STR not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	// Connect to the database
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	controllers.SetDB(db)

	// Handle migrations
	migRoot := os.Getenv("MIGRATIONS_ROOT")
	if migRoot == "" {
		migRoot = "database/migrations"
	}
	mig, err := migrate.New("file://"+migRoot, connStr)
	if err != nil {
		log.Fatal(err)
	}
	if err := mig.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal(err)
		}
		log.Printf("migrations: %s", err.Error())
	}

	// Optional popular-products cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		controllers.SetRedis(redis.NewClient(&redis.Options{Addr: addr}))
	}

	// Optional order event publisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		controllers.SetKafkaWriter(&kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
			Topic:                  "order-events",
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		})
	}

	// Initialize the router and define routes
	r := michi.NewRouter()
	r.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))))
	r.Route("/api", func(api *michi.Router) {
		api.HandleFunc("POST auth/register", controllers.Register)
		api.HandleFunc("POST auth/login", controllers.Login)
		api.HandleFunc("PUT auth/profile", controllers.Authenticate(controllers.UpdateProfile))
		api.HandleFunc("POST auth/profile", controllers.Authenticate(controllers.UpdateProfile))

		api.HandleFunc("GET categories", controllers.GetCategories)
		api.HandleFunc("POST categories", controllers.Authenticate(controllers.RequireAdmin(controllers.CreateCategory)))

		api.HandleFunc("GET products", controllers.GetProducts)
		api.HandleFunc("GET products/popular", controllers.GetPopularProducts)
		api.HandleFunc("GET products/{id}", controllers.GetProductByID)
		api.HandleFunc("POST products", controllers.Authenticate(controllers.CreateProduct))
		api.HandleFunc("DELETE products/{id}", controllers.Authenticate(controllers.DeleteProduct))
		api.HandleFunc("POST upload", controllers.Authenticate(controllers.UploadImage))

		api.HandleFunc("POST orders", controllers.Authenticate(controllers.CreateOrder))
		api.HandleFunc("GET orders/my-orders", controllers.Authenticate(controllers.GetMyOrders))
		api.HandleFunc("PATCH orders/{id}/status", controllers.Authenticate(controllers.UpdateOrderStatus))

		api.HandleFunc("POST favorites", controllers.Authenticate(controllers.AddFavorite))
		api.HandleFunc("DELETE favorites/{product_id}", controllers.Authenticate(controllers.RemoveFavorite))
		api.HandleFunc("GET favorites", controllers.Authenticate(controllers.GetFavorites))
		api.HandleFunc("GET favorites/check/{product_id}", controllers.OptionalAuthenticate(controllers.CheckFavorite))
		api.HandleFunc("GET favorites/ids", controllers.OptionalAuthenticate(controllers.GetFavoriteIDs))
	})

	// Enable CORS
	corsOptions := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server running on port %s", port)
	if err := http.ListenAndServe(":"+port, corsOptions(controllers.RequestLogger(r))); err != nil {
		log.Fatal(err)
	}
}
