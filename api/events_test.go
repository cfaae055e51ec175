package api_test

import (
	"net/http"
	"testing"
	"time"
)

func TestEventsOnPresetChange(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	conn, _, err := dialWS(t, srv, "/api/events")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	// the handler subscribes right after the upgrade
	time.Sleep(50 * time.Millisecond)

	resp := do(t, http.MethodPost, srv.URL+"/api/presets", `{"name":"Dark","config":"theme = dark"}`)
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if ev.Type != "presets" {
		t.Fatalf("expected presets event, got %q", ev.Type)
	}
}
