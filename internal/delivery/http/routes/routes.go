package routes

import (
	"net/http"

	"staffing-hub/internal/delivery/http/handler"
	"staffing-hub/internal/delivery/http/middleware"
	v1 "staffing-hub/internal/delivery/http/routes/v1"
	"staffing-hub/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	health  *handler.HealthHandler
	auth    *middleware.AuthMiddleware
	v1      v1.Handlers
	events  *ws.Handler
	metrics http.Handler
}

func NewRegistry(health *handler.HealthHandler, auth *middleware.AuthMiddleware, h v1.Handlers, events *ws.Handler, metrics http.Handler) *Registry {
	return &Registry{health: health, auth: auth, v1: h, events: events, metrics: metrics}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
	if r.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.metrics))
	}
	if r.events != nil {
		app.Get("/ws/events", r.events.HandleEvents)
	}

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.auth, r.v1)
}
