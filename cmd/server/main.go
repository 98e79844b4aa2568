package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/config"
	"groovetree/backend/internal/database"
	"groovetree/backend/internal/handlers"
	"groovetree/backend/internal/mailer"
	"groovetree/backend/internal/middleware"
)

func main() {
	cfg := config.Load()
	initLogging(cfg)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Warn().Err(err).Msg("failed to run migrations")
	}

	router := mux.NewRouter()
	router.Use(middleware.CORS(cfg))

	mail := mailer.New(cfg)

	// Auth (public)
	authHandler := handlers.NewAuthHandler(db, cfg, mail)
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/verify-email", authHandler.VerifyEmail).Methods("POST", "OPTIONS")

	// /auth/me is deliberately soft: anonymous callers get a null user, not
	// a 401, so clients can poll session state without error noise.
	router.Handle("/api/auth/me",
		middleware.OptionalAuth(http.HandlerFunc(authHandler.Me))).Methods("GET", "OPTIONS")

	// OAuth (public)
	oauthHandler := handlers.NewOAuthHandler(db, cfg)
	router.HandleFunc("/api/auth/oauth/{provider}", oauthHandler.Initiate).Methods("GET")
	router.HandleFunc("/api/auth/oauth/{provider}/callback", oauthHandler.Callback).Methods("GET")

	// Public search and analytics ingestion
	pagesHandler := handlers.NewPagesHandler(db)
	searchHandler := handlers.NewSearchHandler(db)
	analyticsHandler := handlers.NewAnalyticsHandler(db)
	router.HandleFunc("/api/search", searchHandler.Search).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/analytics/track", analyticsHandler.Track).Methods("POST", "OPTIONS")

	// Uploaded files are public by URL
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Protected API routes (require a valid session)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.RequireAuth)

	apiRouter.HandleFunc("/auth/password", authHandler.ChangePassword).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/auth/send-verification", authHandler.SendVerification).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/auth/2fa/setup", authHandler.Setup2FA).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/auth/2fa/enable", authHandler.Enable2FA).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/auth/2fa/disable", authHandler.Disable2FA).Methods("POST", "OPTIONS")

	// Page management
	apiRouter.HandleFunc("/page/create", pagesHandler.Create).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/page/me", pagesHandler.Me).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/page/update", pagesHandler.Update).Methods("PUT", "OPTIONS")

	// Links
	linksHandler := handlers.NewLinksHandler(db)
	apiRouter.HandleFunc("/links/create", linksHandler.Create).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/links/reorder", linksHandler.Reorder).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/links/{id}", linksHandler.Update).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/links/{id}", linksHandler.Delete).Methods("DELETE", "OPTIONS")

	// Events
	eventsHandler := handlers.NewEventsHandler(db)
	apiRouter.HandleFunc("/events/create", eventsHandler.Create).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/events/{id}", eventsHandler.Update).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/events/{id}", eventsHandler.Delete).Methods("DELETE", "OPTIONS")

	// Photos
	photosHandler := handlers.NewPhotosHandler(db)
	apiRouter.HandleFunc("/photos/create", photosHandler.Create).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/photos/{id}", photosHandler.Update).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/photos/{id}", photosHandler.Delete).Methods("DELETE", "OPTIONS")

	// Favorites
	favoritesHandler := handlers.NewFavoritesHandler(db)
	apiRouter.HandleFunc("/favorites", favoritesHandler.Create).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/favorites", favoritesHandler.Check).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/favorites", favoritesHandler.Delete).Methods("DELETE", "OPTIONS")
	apiRouter.HandleFunc("/favorites/list", favoritesHandler.List).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/favorites/calendar", favoritesHandler.Calendar).Methods("GET", "OPTIONS")

	// Analytics dashboard
	apiRouter.HandleFunc("/analytics/stats", analyticsHandler.Stats).Methods("GET", "OPTIONS")

	// Uploads
	uploadsHandler := handlers.NewUploadsHandler(cfg)
	apiRouter.HandleFunc("/upload/avatar", uploadsHandler.Avatar).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/upload/photo", uploadsHandler.Photo).Methods("POST", "OPTIONS")

	// User data
	usersHandler := handlers.NewUsersHandler(db, cfg)
	apiRouter.HandleFunc("/user/export", usersHandler.Export).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/user/delete", usersHandler.Delete).Methods("DELETE", "OPTIONS")

	// Public page read. Registered after the authenticated subrouter so
	// /api/page/create, /api/page/me and /api/page/update match there first;
	// mux evaluates routes in registration order.
	router.HandleFunc("/api/page/{slug}", pagesHandler.GetBySlug).Methods("GET", "OPTIONS")

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
