package server

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

func TestRouterPassesTargets(t *testing.T) {
	cases := []struct {
		url   string
		hash  string
		query string
	}{
		{"/", "", ""},
		{"/d/abc123", "abc123", ""},
		{"/d/abc123/Music/a%20b.mp3", "abc123", "Music/a b.mp3"},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			app, recorder := newTestApp(t)
			resp, err := app.Test(httptest.NewRequest("GET", tc.url, nil))
			if err != nil {
				t.Fatalf("app.Test failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusNoContent {
				t.Fatalf("expected 204, got %d", resp.StatusCode)
			}
			if recorder.last.Hash != tc.hash || recorder.last.Query != tc.query {
				t.Fatalf("unexpected target %+v", recorder.last)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Fatalf("expected X-Request-ID header to be set")
			}
		})
	}
}

func TestRouterKeepsIncomingRequestID(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.Header.Get("X-Request-ID") != "trace-1" {
		t.Fatalf("incoming request id should be echoed, got %q", resp.Header.Get("X-Request-ID"))
	}
}

func TestRouterFallbackReturns404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 status, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"route_unmapped"`)) {
		t.Fatalf("expected route_unmapped error, got %s", string(body))
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app, err := NewApp(AppOptions{
		Logger:     logger,
		ListenPort: 8080,
		Browser: BrowseHandlerFunc(func(fiber.Ctx, Target) error {
			panic("boom")
		}),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("panic should become 500, got %d", resp.StatusCode)
	}
}

func TestNewAppValidatesOptions(t *testing.T) {
	if _, err := NewApp(AppOptions{}); err == nil {
		t.Fatalf("missing logger should fail")
	}
	if _, err := NewApp(AppOptions{Logger: logrus.New(), Browser: &browseRecorder{}}); err == nil {
		t.Fatalf("missing port should fail")
	}
}

type browseRecorder struct {
	last Target
}

func (b *browseRecorder) Browse(c fiber.Ctx, t Target) error {
	b.last = t
	return c.SendStatus(fiber.StatusNoContent)
}

func newTestApp(t *testing.T) (*fiber.App, *browseRecorder) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	recorder := &browseRecorder{}
	app, err := NewApp(AppOptions{
		Logger:     logger,
		Browser:    recorder,
		ListenPort: 8080,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	RegisterFallback(app, logger)
	return app, recorder
}
