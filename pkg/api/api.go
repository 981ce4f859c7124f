// Package api implements the REST API over the unit catalog and the
// expression evaluator.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/lemonberrylabs/unitconv/pkg/conversion"
	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/lemonberrylabs/unitconv/pkg/types"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// Server is the REST API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// Config holds the HTTP server settings.
type Config struct {
	// BodyLimit is the maximum request body size in bytes. Zero keeps
	// fiber's default of 4 MiB.
	BodyLimit int
	// AccessLog enables one log line per request.
	AccessLog bool
}

// New creates a new API server.
func New(s *store.Store, cfg Config) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             cfg.BodyLimit,
		// symbols such as "°C" and "%" arrive percent-encoded
		UnescapePath: true,
	})

	if cfg.AccessLog {
		app.Use(logger.New())
	}

	// Catalog
	app.Get("/v1/units", srv.listUnits)
	app.Post("/v1/units", srv.createUnit)
	app.Get("/v1/units/:symbol", srv.getUnit)
	app.Put("/v1/units/:symbol", srv.updateUnit)
	app.Delete("/v1/units/:symbol", srv.deleteUnit)

	// Evaluation
	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/convert", srv.convert)
	app.Get("/v1/prefixes", srv.listPrefixes)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Catalog Handlers ---

func (s *Server) listUnits(c *fiber.Ctx) error {
	us := s.store.ListUnits(c.Query("filter"))
	items := make([]parser.UnitSpec, len(us))
	for i, u := range us {
		items[i] = parser.SpecFor(u)
	}
	return c.JSON(fiber.Map{
		"units": items,
	})
}

func (s *Server) createUnit(c *fiber.Ctx) error {
	u, err := unitFromBody(c)
	if err != nil {
		return sendError(c, err)
	}
	if err := s.store.AddUnit(c.UserContext(), u); err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(parser.SpecFor(u))
}

func (s *Server) getUnit(c *fiber.Ctx) error {
	u, err := s.store.GetUnit(c.Params("symbol"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(parser.SpecFor(u))
}

func (s *Server) updateUnit(c *fiber.Ctx) error {
	u, err := unitFromBody(c)
	if err != nil {
		return sendError(c, err)
	}
	if err := s.store.ModifyUnit(c.UserContext(), c.Params("symbol"), u); err != nil {
		return sendError(c, err)
	}
	return c.JSON(parser.SpecFor(u))
}

func (s *Server) deleteUnit(c *fiber.Ctx) error {
	if err := s.store.DeleteUnit(c.UserContext(), c.Params("symbol")); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{})
}

func unitFromBody(c *fiber.Ctx) (units.Unit, error) {
	var spec parser.UnitSpec
	if err := c.BodyParser(&spec); err != nil {
		return units.Unit{}, types.NewValueError(fmt.Sprintf("invalid request body: %v", err))
	}
	return spec.Unit()
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, types.NewValueError(fmt.Sprintf("invalid request body: %v", err)))
	}
	if req.Expression == "" {
		return sendError(c, types.NewValueError("expression is required"))
	}

	cv := conversion.New(s.store.Snapshot())
	r, err := cv.Evaluate(req.Expression)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"result":  quantityToJSON(r.Quantity),
		"measure": r.Measure,
	})
}

type convertRequest struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Prefix string  `json:"prefix"`
}

func (s *Server) convert(c *fiber.Ctx) error {
	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, types.NewValueError(fmt.Sprintf("invalid request body: %v", err)))
	}
	if req.Prefix != "" && !units.IsPrefix(req.Prefix) {
		return sendError(c, types.NewValueError(fmt.Sprintf("unknown prefix %q", req.Prefix)))
	}

	cv := conversion.New(s.store.Snapshot())
	cv.SetInputUnit(req.Unit)
	cv.SetInputPrefix(req.Prefix)
	cv.SetInputValue(req.Value)

	if err := cv.Input().Finite(); err != nil {
		return sendError(c, err)
	}
	results := cv.Results()
	items := make([]fiber.Map, len(results))
	for i, r := range results {
		if err := r.Finite(); err != nil {
			return sendError(c, err)
		}
		items[i] = quantityToJSON(r)
	}
	return c.JSON(fiber.Map{
		"input":   quantityToJSON(cv.Input()),
		"results": items,
	})
}

func (s *Server) listPrefixes(c *fiber.Ctx) error {
	ps := units.Prefixes()
	items := make([]fiber.Map, len(ps))
	for i, p := range ps {
		items[i] = fiber.Map{
			"prefix": p,
			"scale":  units.PrefixScale(p),
		}
	}
	return c.JSON(fiber.Map{
		"prefixes": items,
	})
}

// --- Helpers ---

func sendError(c *fiber.Ctx, err error) error {
	apiErr := types.Classify(err)
	return c.Status(int(apiErr.Code)).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    apiErr.Code,
			"message": apiErr.Message,
			"status":  apiErr.Status,
			"tags":    apiErr.Tags,
		},
	})
}

func quantityToJSON(q units.Quantity) fiber.Map {
	return fiber.Map{
		"value":   q.Value,
		"prefix":  q.Prefix,
		"symbol":  q.Unit.DisplaySymbol(),
		"name":    q.Unit.Name,
		"display": q.String(),
	}
}
