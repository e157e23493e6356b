package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/modauth"
	"github.com/darktohka/confessions-bot/internal/services/stats"
	"github.com/darktohka/confessions-bot/internal/transport/http/handlers"
)

type Dependencies struct {
	ConfessionService *confsvc.Service
	StatsService      *stats.Service
	Deliverer         confsvc.Deliverer
	TokenManager      *modauth.JWTManager
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	confessionHandler := handlers.NewConfessionHandler(deps.ConfessionService, deps.Deliverer, deps.Logger)
	policyHandler := handlers.NewPolicyHandler(deps.ConfessionService)
	statsHandler := handlers.NewStatsHandler(deps.StatsService)
	authMW := AuthMiddleware(deps.TokenManager, deps.Logger)

	r.Get("/health", healthHandler.Get)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Route("/communities/{communityID}", func(r chi.Router) {
			r.Post("/confessions", confessionHandler.Submit)
			r.Get("/pending", confessionHandler.ListPending)
			r.Post("/pending/{pendingID}/approve", confessionHandler.Approve)
			r.Post("/pending/{pendingID}/reject", confessionHandler.Reject)

			r.Route("/policy", func(r chi.Router) {
				r.Get("/cooldown", policyHandler.GetCooldown)
				r.Put("/cooldown", policyHandler.SetCooldown)
				r.Get("/destination", policyHandler.GetDestination)
				r.Put("/destination", policyHandler.SetDestination)
				r.Get("/blacklist", policyHandler.ListBlacklist)
				r.Post("/blacklist", policyHandler.AddBlacklistTerm)
				r.Delete("/blacklist", policyHandler.RemoveBlacklistTerm)
				r.Get("/categories", policyHandler.ListCategories)
				r.Post("/categories", policyHandler.AddCategory)
				r.Delete("/categories", policyHandler.RemoveCategory)
			})
		})

		r.Get("/stats/button", statsHandler.ButtonStats)
	})
}
