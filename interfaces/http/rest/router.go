package rest

import (
	"net/http"

	"smartproduct-backend/infrastructure/config"
	"smartproduct-backend/infrastructure/di"
	"smartproduct-backend/interfaces/http/rest/handlers"
	"smartproduct-backend/interfaces/http/rest/middleware"
	"smartproduct-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		cfg:       container.Config,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.smartproduct.io"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.logger))

		commandHandler := handlers.NewCommandHandler(rt.container.CommandService, rt.logger)
		eventHandler := handlers.NewEventHandler(rt.container.EventService, rt.container.AlertService, rt.logger)
		registrationHandler := handlers.NewRegistrationHandler(rt.container.RegistrationService, rt.logger)
		settingHandler := handlers.NewSettingHandler(rt.container.SettingService, rt.logger)

		r.Route("/devices", func(r chi.Router) {
			// Static segments before the deviceId wildcard.
			r.Get("/events", eventHandler.GetUserEvents)
			r.Get("/alerts", eventHandler.GetAlerts)
			r.Get("/alerts/count", eventHandler.GetAlertsCount)

			r.Route("/{deviceId}", func(r chi.Router) {
				r.Post("/commands", commandHandler.CreateCommand)
				r.Get("/commands", commandHandler.GetCommands)
				r.Get("/commands/{commandId}", commandHandler.GetCommand)

				r.Get("/events", eventHandler.GetDeviceEvents)
				r.Get("/events/{eventId}", eventHandler.GetEvent)
				r.Put("/events/{eventId}", eventHandler.AckEvent)
			})
		})

		r.Route("/registration", func(r chi.Router) {
			r.Post("/", registrationHandler.CreateRegistration)
			r.Get("/", registrationHandler.ListRegistrations)
			r.Delete("/{deviceId}", registrationHandler.DeleteRegistration)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingHandler.GetSetting)
			r.Put("/", settingHandler.UpdateSetting)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"environment": rt.cfg.Environment,
	})
}
