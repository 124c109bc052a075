package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"mealprep/internal/api"
	"mealprep/internal/config"
	"mealprep/internal/household"
	"mealprep/internal/importer"
	"mealprep/internal/inventory"
	"mealprep/internal/mealplan"
	"mealprep/internal/platform/gemini"
	"mealprep/internal/platform/localllm"
	"mealprep/internal/platform/unsplash"
	"mealprep/internal/recipe"
	"mealprep/internal/shopping"
)

// modelBackend is what both the Gemini and local LLM clients provide.
type modelBackend interface {
	importer.Extractor
	api.ModelClient
}

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Order matters: recipes must exist before meal plans reference them.
	recipeStore, err := recipe.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize recipe store: %v", err)
	}
	mealPlanStore, err := mealplan.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize meal plan store: %v", err)
	}
	inventoryStore, err := inventory.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize inventory store: %v", err)
	}
	shoppingStore, err := shopping.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize shopping store: %v", err)
	}
	householdStore, err := household.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize household store: %v", err)
	}

	var model modelBackend
	if cfg.GeminiAPIKey != "" {
		model, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to create gemini client: %v", err)
		}
	} else {
		log.Printf("GEMINI_API_KEY not set, using local model at %s", cfg.LocalLLMURL)
		model = localllm.NewClient(cfg.LocalLLMURL)
	}

	var images api.ImageSearcher
	if cfg.UnsplashAccessKey != "" {
		images = unsplash.NewClient(cfg.UnsplashAccessKey)
	} else {
		log.Printf("UNSPLASH_ACCESS_KEY not set, recipe image search disabled")
	}

	handler := api.NewHandler(recipeStore, mealPlanStore, shoppingStore, inventoryStore,
		householdStore, importer.New(model), model, images, []byte(cfg.JWTSecret))

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.RegisterRoutes(r)

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		panic(fmt.Errorf("server exited: %w", err))
	}
}
