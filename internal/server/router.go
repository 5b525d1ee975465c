package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Target identifies what a browse request points at: an account hash (empty
// for the primary account) and the raw path below the account root.
type Target struct {
	Hash  string
	Query string
}

// BrowseHandler serves a resolved route target. It allows injecting fake
// handlers during tests.
type BrowseHandler interface {
	Browse(fiber.Ctx, Target) error
}

// BrowseHandlerFunc adapts a function to the BrowseHandler interface.
type BrowseHandlerFunc func(fiber.Ctx, Target) error

// Browse makes BrowseHandlerFunc satisfy BrowseHandler.
func (f BrowseHandlerFunc) Browse(c fiber.Ctx, t Target) error {
	return f(c, t)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Browser    BrowseHandler
	ListenPort int
}

const contextKeyRequestID = "_anyindex_request_id"

// NewApp builds a Fiber application with request-id middleware, panic
// recovery and the browse routes. Diagnostics routes are registered
// separately (see routes.RegisterDiagnostics).
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Browser == nil {
		return nil, errors.New("browse handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		UnescapePath:  true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/", func(c fiber.Ctx) error {
		return opts.Browser.Browse(c, Target{})
	})
	app.Get("/d/:hash", func(c fiber.Ctx) error {
		return opts.Browser.Browse(c, Target{Hash: c.Params("hash")})
	})
	app.Get("/d/:hash/*", func(c fiber.Ctx) error {
		return opts.Browser.Browse(c, Target{
			Hash:  c.Params("hash"),
			Query: c.Params("*"),
		})
	})

	return app, nil
}

// RegisterFallback answers unmatched paths with a JSON 404. Call it after all
// other routes are registered.
func RegisterFallback(app *fiber.App, logger *logrus.Logger) {
	app.Use(func(c fiber.Ctx) error {
		logger.WithFields(logrus.Fields{
			"action":     "route_lookup",
			"path":       c.Path(),
			"request_id": RequestID(c),
		}).Warn("route unmapped")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "route_unmapped",
		})
	})
}

func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
