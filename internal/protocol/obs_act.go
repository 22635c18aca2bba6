package protocol

// OBS (server -> client), one per tick.
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`
	WorldID         string `json:"world_id"`

	Wires  []WireObs `json:"wires"`
	Lamps  []LampObs `json:"lamps,omitempty"`
	Items  []ItemObs `json:"items,omitempty"`
	Events []Event   `json:"events"`
}

// WireObs reports a wire whose committed power changed this tick.
type WireObs struct {
	Pos   [3]int `json:"pos"`
	Power int    `json:"power"`
	From  int    `json:"from"`
}

type LampObs struct {
	Pos [3]int `json:"pos"`
	Lit bool   `json:"lit"`
}

type ItemObs struct {
	ID    string `json:"id"`
	Pos   [3]int `json:"pos"`
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type Event map[string]interface{}

// ACT (client -> server)
type ActMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	AgentID         string    `json:"agent_id"`
	Edits           []EditReq `json:"edits,omitempty"`
}

type EditReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Pos   [3]int `json:"pos"`
	Block string `json:"block,omitempty"`
	// Dir is the belt direction for CONVEYOR placements ("+X","-X","+Z","-Z").
	Dir string `json:"dir,omitempty"`
}
