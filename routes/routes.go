package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stonebridge/family-office-portal/app"
	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auth := deps.AuthMiddleware

	r.Route("/api", func(r chi.Router) {
		// Health endpoints are public
		r.Get("/health", deps.HealthHandler.HandleHealth)
		r.Get("/health/ready", deps.HealthHandler.HandleReadiness)

		// Authentication endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.HandleRegister)
			r.Post("/login", deps.AuthHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Get("/me", deps.AuthHandler.HandleMe)
			})
		})

		// Family office management; creation is platform-admin only
		r.Route("/family-offices", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.OfficeHandler.HandleListOffices)
			r.Get("/{id}", deps.OfficeHandler.HandleGetOffice)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Post("/", deps.OfficeHandler.HandleCreateOffice)
			})
		})

		// Family management; creation is limited to administrators
		r.Route("/families", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.FamilyHandler.HandleListFamilies)
			r.Get("/{id}", deps.FamilyHandler.HandleGetFamily)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin, models.RoleFamilyOfficeAdmin))
				r.Post("/", deps.FamilyHandler.HandleCreateFamily)
			})
		})

		// Documents
		r.Route("/documents", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.DocumentHandler.HandleListDocuments)
			r.Post("/", deps.DocumentHandler.HandleUploadDocument)
			r.Get("/{id}", deps.DocumentHandler.HandleGetDocument)
			r.Get("/{id}/download", deps.DocumentHandler.HandleDownloadDocument)
		})

		// Meetings
		r.Route("/meetings", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.MeetingHandler.HandleListMeetings)
			r.Post("/", deps.MeetingHandler.HandleCreateMeeting)
			r.Get("/{id}", deps.MeetingHandler.HandleGetMeeting)
			r.Patch("/{id}", deps.MeetingHandler.HandleUpdateMeeting)
		})

		// Messages
		r.Route("/messages", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.MessageHandler.HandleListMessages)
			r.Post("/", deps.MessageHandler.HandleSendMessage)
			r.Post("/{id}/read", deps.MessageHandler.HandleMarkMessageRead)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
