package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/petermazzocco/go-profile-images/internal/app"
	"github.com/petermazzocco/go-profile-images/internal/auth"
	"github.com/petermazzocco/go-profile-images/internal/config"
	"github.com/petermazzocco/go-profile-images/internal/handlers"
	"github.com/petermazzocco/go-profile-images/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// OAUTH
	goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.OAuthCallbackURL, "email", "profile"))

	// Session store
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.SecureCookies
	gothic.Store = store

	r.Handle("/metrics", promhttp.Handler())

	// User auth
	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		handlers.UserLoginHandler(w, r, a.Catalog)
	})
	r.Post("/logout/{provider}", func(w http.ResponseWriter, r *http.Request) {
		gothic.Logout(w, r)
	})
	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
			fmt.Fprintf(w, "User already authenticated: %s\n", gothUser.Name)
		} else {
			gothic.BeginAuthHandler(w, r)
		}
	})

	// Public image URLs
	r.Get("/users/{nickname}/profile-image", func(w http.ResponseWriter, r *http.Request) {
		handlers.PublicProfileImageHandler(w, r, a.Uploads)
	})

	// Available API routes for authenticated users
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.UserMiddleware)
		r.Use(httprate.Limit(
			cfg.RateLimitPerMinute,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Post("/profile-image", func(w http.ResponseWriter, r *http.Request) {
			handlers.UploadProfileImageHandler(w, r, a.Uploads, cfg.MaxUploadBytes)
		})
		r.Get("/profile-image", func(w http.ResponseWriter, r *http.Request) {
			handlers.GetProfileImageHandler(w, r, a.Uploads)
		})
		r.Get("/user", func(w http.ResponseWriter, r *http.Request) {
			handlers.GetUserHandler(w, r, a.Catalog)
		})
	})

	a.Logger.Info("starting API server", slog.String("addr", cfg.Addr))
	log.Fatal(http.ListenAndServe(cfg.Addr, r))
}
