package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. Adjust CORS for your frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000", "https://*.run.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": apiVersion})
	})

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", a.handleRegister)
		api.Post("/auth/login", a.handleLogin)

		// Service-to-service agent endpoints, no auth (matches the
		// internal network contract of the agent service).
		api.Route("/agent", func(ag chi.Router) {
			ag.Post("/analyze-market", a.handleAnalyzeMarket)
			ag.Post("/negotiate", a.handleNegotiate)
			ag.Post("/evaluate", a.handleEvaluateOffers)
			ag.Post("/orchestrate", a.handleOrchestrate)
			ag.Post("/listen", a.handleListen)
			ag.Post("/chat", a.handleChat)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)

			pr.Route("/listings", func(lr chi.Router) {
				lr.Get("/", a.handleListListings)
				lr.Post("/", a.handleCreateListing)
				lr.Get("/mine", a.handleMyListings)
				lr.Get("/{id}", a.handleGetListing)
				lr.Put("/{id}", a.handleUpdateListing)
				lr.Delete("/{id}", a.handleDeleteListing)

				lr.Post("/{id}/offers", a.handlePlaceOffer)
				lr.Get("/{id}/offers", a.handleListOffers)
				lr.Post("/{id}/evaluate", a.handleEvaluateListing)
			})
		})
	})

	return r
}
