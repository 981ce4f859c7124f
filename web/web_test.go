package web

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/store"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	us, err := parser.Standard()
	if err != nil {
		t.Fatal(err)
	}
	h := New(store.New(catalog.New(us), nil))
	app := fiber.New()
	h.Register(app)
	return app
}

func get(t *testing.T, app *fiber.App, path string, wantStatus int) string {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("expected %d, got %d: %s", wantStatus, resp.StatusCode, body)
	}
	return string(body)
}

func TestEvaluatePage(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"empty", "/ui", []string{"Evaluate", "unitconv"}},
		{"sum", "/ui?q=2+km+%2B+300+m", []string{"2.3 km", "LENGTH", "Conversions", "mile"}},
		{"force", "/ui?q=1+kg*1+m%2Fs%5E2", []string{"1 N", "FORCE"}},
		{"dimension error", "/ui?q=2+m+%2B+3+s", []string{"cannot add"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := get(t, app, tt.path, 200)
			for _, w := range tt.want {
				if !strings.Contains(html, w) {
					t.Errorf("expected %q in response", w)
				}
			}
		})
	}
}

func TestUnitList(t *testing.T) {
	app := setupTestApp(t)

	html := get(t, app, "/ui/units", 200)
	for _, w := range []string{"meter", "newton", "degree Celsius"} {
		if !strings.Contains(html, w) {
			t.Errorf("expected %q in unit list", w)
		}
	}

	html = get(t, app, "/ui/units?filter=fahrenheit", 200)
	if !strings.Contains(html, "degree Fahrenheit") || strings.Contains(html, "newton") {
		t.Error("filter not applied")
	}

	html = get(t, app, "/ui/units?filter=zzz", 200)
	if !strings.Contains(html, "No units match") {
		t.Error("expected empty state message")
	}
}

func TestUnitDetail(t *testing.T) {
	app := setupTestApp(t)

	html := get(t, app, "/ui/units/ft", 200)
	for _, w := range []string{"foot", "LENGTH", "0.3048", "yard"} {
		if !strings.Contains(html, w) {
			t.Errorf("expected %q in unit page", w)
		}
	}

	html = get(t, app, "/ui/units/parsec", 404)
	if !strings.Contains(html, "Not Found") {
		t.Error("expected not found page")
	}
}

func TestRootRedirect(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui" {
		t.Errorf("expected redirect to /ui, got %q", loc)
	}
}
