package bootstrap

import (
	"brickmark-backend/internal/config"
	"brickmark-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app from environment configuration. Embedders that
// only need the HTTP surface (e.g. integration harnesses) import this package
// instead of internal.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
