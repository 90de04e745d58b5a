package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jsoniter "github.com/json-iterator/go"
	pkg "github.com/pollroom/server/pkg/internal"
	"github.com/pollroom/server/pkg/internal/auth"
	"github.com/pollroom/server/pkg/internal/http/admin"
	"github.com/pollroom/server/pkg/internal/http/api"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// IReader verifies identity-provider tokens; main wires it up at boot and
// leaves it nil when no key is configured, which turns every request
// anonymous-only.
var IReader *auth.TokenReader

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          pkg.AppName,
		AppName:               pkg.AppName,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOrigins:     strings.Join(viper.GetStringSlice("security.cors_origins"), ","),
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
		AllowHeaders: "Authorization, Content-Type",
	}))

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
		return err
	})

	app.Use(auth.ContextMiddleware(IReader))

	api.MapAPIs(app, "/api")
	admin.MapControllers(app, "/api/admin")
	mapWebsocket(app)

	return &App{app}
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting http server.")
	}
}
