package v1

import (
	"staffing-hub/internal/delivery/http/handler"
	"staffing-hub/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Ranking  *handler.RankingHandler
	Requests *handler.RequestHandler
	Roles    *handler.RoleHandler
}

// Register mounts the staffing API. Every route requires a bearer token.
func Register(r fiber.Router, auth *middleware.AuthMiddleware, h Handlers) {
	if r == nil {
		return
	}

	protected := r.Group("", auth.Middleware())

	if h.Ranking != nil {
		h.Ranking.RegisterRoutes(protected)
	}
	if h.Roles != nil {
		h.Roles.RegisterRoutes(protected)
	}
	if h.Requests != nil {
		h.Requests.RegisterRoutes(protected)
	}
}
