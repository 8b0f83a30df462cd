package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/hello-openshift/internal/http/v1/greeting"
	"github.com/janisto/hello-openshift/internal/platform/config"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, cfg *config.Config) {
	greeting.New(cfg.GreetingMessage).Register(api)
}
