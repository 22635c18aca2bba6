package main

import (
	"fmt"
	"io"

	"voxelwire.ai/internal/persistence/indexdb"
	"voxelwire.ai/internal/sim/world"
)

func gauge(out io.Writer, name, help string) {
	fmt.Fprintf(out, "# HELP %s %s\n", name, help)
	fmt.Fprintf(out, "# TYPE %s gauge\n", name)
}

func counter(out io.Writer, name, help string) {
	fmt.Fprintf(out, "# HELP %s %s\n", name, help)
	fmt.Fprintf(out, "# TYPE %s counter\n", name)
}

// writeMetrics renders m in the Prometheus text exposition format.
func writeMetrics(out io.Writer, worldID string, tick uint64, m world.WorldMetrics) {
	if m.Tick != 0 {
		tick = m.Tick
	}

	gauge(out, "voxelwire_world_tick", "Current world tick.")
	fmt.Fprintf(out, "voxelwire_world_tick{world=%q} %d\n", worldID, tick)

	gauge(out, "voxelwire_world_agents", "Current number of agents in the world.")
	fmt.Fprintf(out, "voxelwire_world_agents{world=%q} %d\n", worldID, m.Agents)

	gauge(out, "voxelwire_world_clients", "Current number of connected clients.")
	fmt.Fprintf(out, "voxelwire_world_clients{world=%q} %d\n", worldID, m.Clients)

	gauge(out, "voxelwire_world_loaded_chunks", "Loaded chunk count.")
	fmt.Fprintf(out, "voxelwire_world_loaded_chunks{world=%q} %d\n", worldID, m.LoadedChunks)

	gauge(out, "voxelwire_world_items", "Live dropped item entities.")
	fmt.Fprintf(out, "voxelwire_world_items{world=%q} %d\n", worldID, m.Items)

	gauge(out, "voxelwire_world_queue_depth", "Channel backlog depth.")
	fmt.Fprintf(out, "voxelwire_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(out, "voxelwire_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(out, "voxelwire_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	gauge(out, "voxelwire_world_step_ms", "Last tick step duration in milliseconds.")
	fmt.Fprintf(out, "voxelwire_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

	gauge(out, "voxelwire_wire_last_tick", "Wire propagation work done in the last tick.")
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "passes", m.Wire.Passes)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "nodes", m.Wire.Nodes)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "offers", m.Wire.Offers)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "changed", m.Wire.Changed)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "broken", m.Wire.Broken)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "stale", m.Wire.Stale)
	fmt.Fprintf(out, "voxelwire_wire_last_tick{world=%q,metric=%q} %d\n", worldID, "truncated", boolGauge(m.Wire.Truncated))

	gauge(out, "voxelwire_wire_pending", "Wire changes deferred to the next tick.")
	fmt.Fprintf(out, "voxelwire_wire_pending{world=%q} %d\n", worldID, m.Wire.Pending)

	counter(out, "voxelwire_wire_passes_total", "Propagation passes run since start or snapshot.")
	fmt.Fprintf(out, "voxelwire_wire_passes_total{world=%q} %d\n", worldID, m.Wire.PassTotal)

	counter(out, "voxelwire_wire_stale_total", "Nodes skipped at commit because the cell changed underneath.")
	fmt.Fprintf(out, "voxelwire_wire_stale_total{world=%q} %d\n", worldID, m.Wire.StaleTotal)
}

func writeIndexMetrics(out io.Writer, s indexdb.Stats) {
	gauge(out, "voxelwire_index_queue_depth", "Pending index writes.")
	fmt.Fprintf(out, "voxelwire_index_queue_depth %d\n", s.QueueDepth)

	counter(out, "voxelwire_index_dropped_total", "Index writes dropped because the queue was full.")
	fmt.Fprintf(out, "voxelwire_index_dropped_total{kind=%q} %d\n", "tick", s.DropTickTotal)
	fmt.Fprintf(out, "voxelwire_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
	fmt.Fprintf(out, "voxelwire_index_dropped_total{kind=%q} %d\n", "wire_pass", s.DropWirePassTotal)
	fmt.Fprintf(out, "voxelwire_index_dropped_total{kind=%q} %d\n", "snapshot", s.DropSnapshotTotal)
}

func boolGauge(v bool) int {
	if v {
		return 1
	}
	return 0
}
