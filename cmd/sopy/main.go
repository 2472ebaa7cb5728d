package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ikignosis/sopy/internal/admin"
	"github.com/ikignosis/sopy/internal/config"
	"github.com/ikignosis/sopy/internal/db"
	"github.com/ikignosis/sopy/internal/proxy/handlers"
	"github.com/ikignosis/sopy/internal/routetable"
	"github.com/ikignosis/sopy/internal/upstream"
	"github.com/ikignosis/sopy/internal/version"
)

func main() {
	configPath := os.Getenv("SOPY_CONFIG")
	if configPath == "" {
		configPath = "sopy.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize config store
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := db.NewStore(database)

	// Build the route table from persisted state before serving traffic
	table := routetable.New()
	if err := table.Rebuild(store); err != nil {
		log.Fatalf("Failed to build route table: %v", err)
	}

	// Start the admin socket server
	adminServer := admin.NewServer(cfg.AdminSocketPath, admin.NewHandler(store, table))
	if err := adminServer.Start(); err != nil {
		log.Fatalf("Failed to start admin socket server: %v", err)
	}
	defer adminServer.Close()

	// The REST adapter reaches the store through the socket like any client
	adminClient := admin.NewClient(cfg.AdminSocketPath)

	// Initialize upstream client
	upstreamClient := upstream.NewClient(cfg.UpstreamTimeout)

	// Create router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", handlers.RootHandler())
	r.Get("/hello/{name}", handlers.HelloHandler())

	// ============================================
	// OpenAI-compatible API
	// ============================================
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat/completions", handlers.ChatCompletionsHandler(table, upstreamClient))
		r.Get("/models", handlers.ModelsListHandler(table))
	})

	// ============================================
	// Admin REST adapter (translates 1:1 to socket commands)
	// ============================================
	r.Route("/admin", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/", handlers.AddAuthHandler(adminClient))
			r.Get("/", handlers.ListAuthHandler(adminClient))
			r.Get("/{name}", handlers.GetAuthHandler(adminClient))
			r.Delete("/{name}", handlers.RemoveAuthHandler(adminClient))
		})
		r.Route("/backend", func(r chi.Router) {
			r.Post("/", handlers.AddBackendHandler(adminClient))
			r.Get("/", handlers.ListBackendsHandler(adminClient))
			r.Delete("/", handlers.RemoveBackendHandler(adminClient))
			r.Get("/{provider}", handlers.GetBackendHandler(adminClient))
		})
		r.Route("/model_mapping", func(r chi.Router) {
			r.Post("/", handlers.AddModelMappingHandler(adminClient))
			r.Get("/", handlers.ListModelMappingsHandler(adminClient))
			r.Get("/{model_name}", handlers.GetModelMappingHandler(adminClient))
			r.Delete("/{model_name}", handlers.RemoveModelMappingHandler(adminClient))
		})
	})

	log.Printf("🚀 sopy %s starting on http://%s", version.Version, cfg.ListenAddr)
	log.Printf("🔌 OpenAI API: http://%s/v1", cfg.ListenAddr)
	log.Printf("🔌 Admin REST: http://%s/admin", cfg.ListenAddr)
	log.Printf("📦 Config store: %s (%d models routed)", cfg.DBPath, table.Len())

	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
