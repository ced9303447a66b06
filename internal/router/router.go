package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clientiq-crm/bff/internal/config"
	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/handler"
	mw "github.com/clientiq-crm/bff/internal/middleware"
	"github.com/clientiq-crm/bff/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Everything except the session login/register endpoints, the health check,
// and the WebSocket handshake sits behind the session middleware.
func New(cfg *config.Config, api *crm.API, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration: credentials on, because the session rides a cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.UIOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	sessionHandler := handler.NewSessionHandler(api, cfg.SessionSecret)
	sessionHandler.RegisterPublicRoutes(r)

	// WebSocket route (authenticates via the session cookie on the handshake)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.SessionSecret, w, r)
	})

	// Protected routes (require a session)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(cfg.SessionSecret))

		sessionHandler.RegisterRoutes(r)

		dashboardHandler := handler.NewDashboardHandler(api)
		r.Route("/dashboard", dashboardHandler.RegisterRoutes)

		clientHandler := handler.NewClientHandler(api, hub)
		r.Route("/clients", clientHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(api, hub)
		r.Route("/orders", orderHandler.RegisterRoutes)
		r.Route("/orderitems", orderHandler.RegisterItemRoutes)

		productHandler := handler.NewProductHandler(api, hub)
		r.Route("/products", productHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(api)
		r.Route("/users", userHandler.RegisterRoutes)
	})

	log.Println("Router initialized with all handlers")
	return r
}
