package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"voxelwire.ai/internal/protocol"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name    = flag.String("name", "bot", "agent name")
		originX = flag.Int("x", 0, "circuit origin x")
		originY = flag.Int("y", 0, "circuit origin y")
		originZ = flag.Int("z", 0, "circuit origin z")
		length  = flag.Int("length", 8, "wire length between switch and lamp")
		every   = flag.Uint64("toggle_every", 50, "toggle the switch every N ticks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &circuitBot{origin: [3]int{*originX, *originY, *originZ}, length: *length, every: *every}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME agent_id=%s tick_rate=%d signal=[%d,%d]",
				w.AgentID, w.WorldParams.TickRateHz, w.WorldParams.SignalMin, w.WorldParams.SignalMax)

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			for _, l := range obs.Lamps {
				logger.Printf("tick=%d lamp %v lit=%v", obs.Tick, l.Pos, l.Lit)
			}
			for _, e := range obs.Events {
				if e["type"] == "ACTION_RESULT" && e["ok"] != true {
					logger.Printf("tick=%d %v failed: %v %v", obs.Tick, e["ref"], e["code"], e["message"])
				}
			}
			if act, ok := b.next(&obs); ok {
				_ = conn.WriteJSON(act)
			}
		}
	}
}

// circuitBot lays out SWITCH, WIRE x length, LAMP along +X and then flips
// the switch on a fixed cadence.
type circuitBot struct {
	origin [3]int
	length int
	every  uint64
	built  bool
}

func (b *circuitBot) plan() []protocol.EditReq {
	x, y, z := b.origin[0], b.origin[1], b.origin[2]
	edits := []protocol.EditReq{{ID: "build_switch", Type: protocol.EditPlace, Block: "SWITCH", Pos: [3]int{x, y, z}}}
	for i := 1; i <= b.length; i++ {
		edits = append(edits, protocol.EditReq{
			ID:    fmt.Sprintf("build_wire_%d", i),
			Type:  protocol.EditPlace,
			Block: "WIRE",
			Pos:   [3]int{x + i, y, z},
		})
	}
	return append(edits, protocol.EditReq{ID: "build_lamp", Type: protocol.EditPlace, Block: "LAMP", Pos: [3]int{x + b.length + 1, y, z}})
}

func (b *circuitBot) next(obs *protocol.ObsMsg) (protocol.ActMsg, bool) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            obs.Tick,
		AgentID:         obs.AgentID,
	}
	if !b.built {
		b.built = true
		act.Edits = b.plan()
		return act, true
	}
	if b.every == 0 || obs.Tick%b.every != 0 {
		return act, false
	}
	act.Edits = []protocol.EditReq{{ID: fmt.Sprintf("toggle_%d", obs.Tick), Type: protocol.EditToggle, Pos: b.origin}}
	return act, true
}
