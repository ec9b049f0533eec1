package main

import (
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"doctrack/docs"
	handlers "doctrack/internal/http/handler"
	"doctrack/internal/http/middleware"
	"doctrack/internal/service"
	"doctrack/internal/session"
)

// bodyLimit leaves room for multipart framing around a maximum-size upload.
const bodyLimit = 12 * 1024 * 1024

// newApp builds the Fiber app with global middleware, routes, /metrics and Swagger UI.
func newApp(
	l *zap.Logger,
	db handlers.Pinger,
	authSvc service.AuthService,
	sessions *session.Manager,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "doctrack",
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit,
	})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Skip(middleware.Logger(l), "/health", "/healthz", "/metrics"))
	app.Use(prom.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, db, authSvc, sessions)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return app, nil
}
