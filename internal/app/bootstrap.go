package app

import (
	"fmt"
	"strings"
	"time"

	"staffing-hub/internal/config"
	"staffing-hub/internal/delivery/http/handler"
	"staffing-hub/internal/delivery/http/middleware"
	"staffing-hub/internal/delivery/http/routes"
	v1 "staffing-hub/internal/delivery/http/routes/v1"
	"staffing-hub/internal/metrics"
	"staffing-hub/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and the HTTP app on top of it. The returned
// cleanup releases every connection the container opened.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := NewLogger(cfg.App)
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Cache),
		middleware.NewAuthMiddleware(c.JWT),
		v1.Handlers{
			Ranking:  handler.NewRankingHandler(c.Ranking),
			Requests: handler.NewRequestHandler(c.Requests, c.Slots),
			Roles:    handler.NewRoleHandler(c.Slots),
		},
		ws.NewHandler(c.Hub, c.Logger),
		metrics.Handler(),
	)
	registry.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
