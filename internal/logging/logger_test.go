package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.WithField("project_id", 3).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["service"] != serviceName {
		t.Fatalf("service = %v, want %q", line["service"], serviceName)
	}
	if line["msg"] != "hello" {
		t.Fatalf("msg = %v", line["msg"])
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", log.GetLevel())
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	if _, err := NewWithOutput("loud", "json", &bytes.Buffer{}); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := NewWithOutput("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput("info", "text", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestAccessLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(AccessLog(log))
	app.Get("/boom", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, target := range []string{"/ok", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
	}

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel || entries[0].Data["status"] != 200 {
		t.Fatalf("first entry = %v %v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Level != logrus.WarnLevel || entries[1].Data["path"] != "/boom" {
		t.Fatalf("second entry = %v %v", entries[1].Level, entries[1].Data)
	}
}
