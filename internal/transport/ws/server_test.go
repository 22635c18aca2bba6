package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world"
)

func startServer(t *testing.T) string {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "ws_test", TickRateHz: 50, Height: 1}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()

	v, err := protocol.LoadValidator(filepath.Join("..", "..", "..", "schemas"))
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	srv := NewServer(w, log.New(io.Discard, "", 0))
	srv.SetValidator(v)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return "ws" + strings.TrimPrefix(hs.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestServer_HelloActObs(t *testing.T) {
	conn := dial(t, startServer(t))

	if err := conn.WriteJSON(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       "bot",
	}); err != nil {
		t.Fatalf("hello: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.AgentID == "" || welcome.WorldParams.SignalMax != 15 {
		t.Fatalf("welcome: %+v", welcome)
	}

	if err := conn.WriteJSON(protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Edits: []protocol.EditReq{
			{ID: "src", Type: protocol.EditPlace, Block: "POWER_BLOCK", Pos: [3]int{0, 0, 0}},
			{ID: "w", Type: protocol.EditPlace, Block: "WIRE", Pos: [3]int{1, 0, 0}},
		},
	}); err != nil {
		t.Fatalf("act: %v", err)
	}

	var sawResult, sawWire bool
	for !(sawResult && sawWire) {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read obs: %v", err)
		}
		var obs protocol.ObsMsg
		if err := json.Unmarshal(b, &obs); err != nil {
			t.Fatalf("obs: %v", err)
		}
		for _, e := range obs.Events {
			if e["type"] == "ACTION_RESULT" && e["ref"] == "w" {
				if e["ok"] != true {
					t.Fatalf("place failed: %v", e)
				}
				sawResult = true
			}
		}
		for _, wo := range obs.Wires {
			if wo.Pos == [3]int{1, 0, 0} && wo.Power == 15 {
				sawWire = true
			}
		}
	}
}

func TestServer_RejectsInvalidHello(t *testing.T) {
	conn := dial(t, startServer(t))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"HELLO","protocol_version":"1.0"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy close, got %v", err)
	}
}
