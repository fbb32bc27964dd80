package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"procure/db"
	"procure/db/migrations"
	"procure/internal/ai"
	"procure/internal/config"
	"procure/internal/handlers"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	dbConn, err := sqlx.Connect("postgres", cfg.Database.Conn)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	migrations.Run(cfg.Database.Conn)

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatalf("Cannot create upload dir: %v", err)
	}

	// Без ключа API все оценки идут через детерминированный мок
	var client *ai.Client
	if cfg.LLM.APIKey != "" {
		client = ai.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, ai.NewService(client), cfg.Uploads.Dir)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		// запросы предложений (RFP)
		r.Post("/rfps", h.CreateRFPHandler)
		r.Get("/rfps", h.GetRFPsHandler)
		r.Get("/rfps/{rfpId}", h.GetRFPHandler)
		r.Patch("/rfps/{rfpId}", h.EditRFPHandler)
		r.Patch("/rfps/{rfpId}/stage", h.AdvanceRFPStageHandler)
		r.Patch("/rfps/{rfpId}/lock", h.LockRFPBidsHandler)
		r.Get("/rfps/{rfpId}/comparison", h.GetComparisonHandler)
		// предложения (bids)
		r.Post("/rfps/{rfpId}/bids", h.UploadBidHandler)
		r.Get("/rfps/{rfpId}/bids", h.GetBidsForRFPHandler)
		r.Get("/bids", h.GetAllBidsHandler)
		r.Get("/bids/{bidId}", h.GetBidHandler)
		r.Post("/bids/{bidId}/evaluate", h.EvaluateBidHandler)
		r.Patch("/bids/{bidId}", h.HumanReviewHandler)
		r.Patch("/bids/{bidId}/status", h.UpdateBidStatusHandler)
		// поставщики
		r.Get("/vendors", h.GetVendorsHandler)
		// вопросы и ответы
		r.Get("/rfps/{rfpId}/qa", h.GetQAHandler)
		r.Post("/rfps/{rfpId}/qa", h.CreateQAHandler)
		r.Patch("/qa/{qaId}", h.AnswerQAHandler)
		// администрирование
		r.Post("/admin/reset", h.ResetHandler)
	})

	// Загруженные документы отдаются по имени файла
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	log.Printf("Starting server on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, r))
}
