package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RMarques88/gelatoprod-backend/api/controllers"
	"github.com/RMarques88/gelatoprod-backend/api/middleware"
	"github.com/RMarques88/gelatoprod-backend/internal/notifications"
	"github.com/RMarques88/gelatoprod-backend/internal/production"
	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/config"
	"github.com/RMarques88/gelatoprod-backend/pkg/db"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	stockService stock.Service,
	recipeRepo recipes.Repository,
	productionService production.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stock-items", func(r chi.Router) {
			r.Post("/", controllers.CreateStockItem(stockService, logg))
			r.Get("/", controllers.ListStockItems(stockService, logg))
			r.Route("/{stockItemID}", func(r chi.Router) {
				r.Get("/", controllers.GetStockItem(stockService, logg))
				r.Delete("/", controllers.DeleteStockItem(stockService, logg))
				r.Patch("/minimum", controllers.UpdateStockItemMinimum(stockService, logg))
				r.Post("/archive", controllers.ArchiveStockItem(stockService, logg))
				r.Post("/movements", controllers.AdjustStock(stockService, logg))
				r.Get("/movements", controllers.ListStockMovements(stockService, logg))
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.ListAlerts(stockService, logg))
			r.Post("/{alertID}/acknowledge", controllers.AcknowledgeAlert(stockService, logg))
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.ListRecipes(recipeRepo, logg))
			r.Route("/{recipeID}", func(r chi.Router) {
				r.Get("/", controllers.GetRecipe(recipeRepo, logg))
				r.Post("/resolve", controllers.ResolveRecipe(recipeRepo, logg))
			})
		})

		r.Route("/production-plans", func(r chi.Router) {
			r.Post("/", controllers.SchedulePlan(productionService, logg))
			r.Get("/", controllers.ListPlans(productionService, logg))
			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", controllers.GetPlan(productionService, logg))
				r.Post("/start", controllers.StartPlan(productionService, logg))
				r.Post("/cancel", controllers.CancelPlan(productionService, logg))
				r.Post("/complete", controllers.CompletePlan(productionService, logg))
				r.Get("/divergences", controllers.ListPlanDivergences(productionService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
		})
	})

	return r
}
