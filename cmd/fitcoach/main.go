package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ytakeda/fitcoach/internal/database"
	"github.com/ytakeda/fitcoach/internal/handlers"
	"github.com/ytakeda/fitcoach/internal/middleware"
)

func main() {
	// Load .env if present; real env vars win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	dbPath := envDefault("FITCOACH_DB_PATH", "fitcoach.db")
	addr := envDefault("FITCOACH_ADDR", ":8080")
	uploadDir := envDefault("FITCOACH_UPLOAD_DIR", "uploads")

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Database ready: %s", filepath.Clean(dbPath))

	// Session manager with SQLite store. Sessions are the only identity
	// the app has, so give them a long lifetime.
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db)
	sessionManager.Lifetime = 365 * 24 * time.Hour
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = os.Getenv("FITCOACH_SECURE_COOKIES") == "true"

	session := &handlers.Session{DB: db, Sessions: sessionManager}
	onboarding := &handlers.Onboarding{DB: db}
	plans := &handlers.Plans{DB: db}
	advice := &handlers.Advice{DB: db}
	chat := &handlers.Chat{DB: db}
	workouts := &handlers.Workouts{DB: db}
	metrics := &handlers.Metrics{DB: db, UploadDir: uploadDir}
	dashboard := &handlers.Dashboard{DB: db}
	settings := &handlers.Settings{DB: db}

	// Model calls are expensive; give them a tighter per-IP budget than
	// the plain CRUD endpoints.
	coachLimiter := middleware.NewRateLimiter(10, 3)
	defer coachLimiter.Stop()

	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS)

	r.Get("/health", handleHealth)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)

		r.Post("/session", session.Init)

		// Everything below needs an initialized session.
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return middleware.RequireSession(sessionManager, next)
			})

			r.Get("/dashboard", dashboard.Show)
			r.Get("/settings/status", settings.Status)
			r.Post("/onboarding", onboarding.Save)
			r.Post("/workouts", workouts.Create)
			r.Get("/workouts", workouts.List)
			r.Get("/metrics", metrics.List)

			r.Group(func(r chi.Router) {
				r.Use(coachLimiter.Limit)

				r.Post("/extract-metrics", metrics.Extract)
				r.Post("/inbody", metrics.Upload)
				r.Post("/plans/generate", plans.Generate)
				r.Post("/advice", advice.Generate)
				r.Post("/chat", chat.Send)
			})
		})
	})

	log.Printf("FitCoach listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
