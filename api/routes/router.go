package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brimhq/growth-engine/api/controllers"
	"github.com/brimhq/growth-engine/api/middleware"
	"github.com/brimhq/growth-engine/internal/analytics"
	"github.com/brimhq/growth-engine/internal/leads"
	"github.com/brimhq/growth-engine/pkg/config"
	"github.com/brimhq/growth-engine/pkg/logger"
)

// NewRouter wires every HTTP surface of the API service.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db controllers.Pinger,
	cache controllers.Pinger,
	leadsService leads.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, db, cache))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Post("/score", controllers.ScoreLead(leadsService, logg))
			r.Post("/batch-score", controllers.BatchScoreLeads(leadsService, logg))
		})

		r.Route("/activation", func(r chi.Router) {
			r.Post("/log-event", controllers.LogActivationEvent(leadsService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/score-distribution", controllers.ScoreDistribution(analyticsService, logg))
			r.Get("/top-leads", controllers.TopLeads(analyticsService, logg))
			r.Get("/funnel", controllers.ActivationFunnel(analyticsService, logg))
			r.Get("/funnel-over-time", controllers.FunnelOverTime(analyticsService, logg))
			r.Get("/email-performance", controllers.EmailPerformance(analyticsService, logg))
			r.Get("/leads-table", controllers.LeadsTable(analyticsService, logg))

			r.Route("/kpis", func(r chi.Router) {
				r.Get("/qualified-leads", controllers.QualifiedLeadsKPI(analyticsService, logg))
				r.Get("/activations", controllers.NewActivationsKPI(analyticsService, logg))
				r.Get("/conversion-rate", controllers.ConversionRateKPI(analyticsService, logg))
				r.Get("/engagement", controllers.EngagementKPI(analyticsService, logg))
			})
		})
	})

	return r
}
