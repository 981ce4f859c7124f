// Package web provides the embedded web UI: an expression evaluator with a
// conversion table and a browsable unit catalog.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/unitconv/pkg/conversion"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/lemonberrylabs/unitconv/pkg/types"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"formatValue": formatValue,
			"dimension":   dimension,
			"siSymbol":    siSymbol,
			"pathEscape":  url.PathEscape,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// layout and page are parsed together per request so that the "content"
	// block of one page never clashes with another
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.evaluate)
	app.Get("/ui/units", h.unitList)
	app.Get("/ui/units/:symbol", h.unitDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type evaluateContent struct {
	Expression string
	Result     *units.Quantity
	Measure    string
	Error      string
	Results    []units.Quantity
}

type unitListContent struct {
	Filter string
	Units  []units.Unit
}

type unitDetailContent struct {
	Unit    units.Unit
	Results []units.Quantity
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) evaluate(c *fiber.Ctx) error {
	content := evaluateContent{Expression: c.Query("q")}
	if content.Expression != "" {
		cv := conversion.New(h.store.Snapshot())
		r, err := cv.Evaluate(content.Expression)
		if err != nil {
			content.Error = types.Classify(err).Message
		} else {
			content.Result = &r.Quantity
			content.Measure = r.Measure
			content.Results = cv.Results()
		}
	}
	return h.render(c, "evaluate.html", "evaluate", content)
}

func (h *Handler) unitList(c *fiber.Ctx) error {
	filter := c.Query("filter")
	return h.render(c, "units.html", "units", unitListContent{
		Filter: filter,
		Units:  h.store.ListUnits(filter),
	})
}

func (h *Handler) unitDetail(c *fiber.Ctx) error {
	u, err := h.store.GetUnit(c.Params("symbol"))
	if err != nil {
		c.Status(404)
		return h.render(c, "notfound.html", "units", notFoundContent{
			Message: fmt.Sprintf("Unit %q not found", c.Params("symbol")),
		})
	}

	cv := conversion.New(h.store.Snapshot())
	cv.SetInputUnit(u.Symbol)
	return h.render(c, "unit.html", "units", unitDetailContent{
		Unit:    u,
		Results: cv.Results(),
	})
}

// --- Template Helpers ---

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func dimension(u units.Unit) string {
	return u.Measure.Dimension()
}

func siSymbol(u units.Unit) string {
	return u.Measure.SISymbol()
}
