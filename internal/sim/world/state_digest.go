package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWritePos(h hashWriter, tmp *[8]byte, p Vec3i) {
	digestWriteI64(h, tmp, int64(p.X))
	digestWriteI64(h, tmp, int64(p.Y))
	digestWriteI64(h, tmp, int64(p.Z))
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// stateDigest hashes everything that determines future ticks.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(w.cfg.Seed))

	for _, k := range w.chunks.LoadedChunkKeys() {
		digestWriteI64(h, &tmp, int64(k.CX))
		digestWriteI64(h, &tmp, int64(k.CZ))
		d := w.chunks.chunks[k].Digest()
		h.Write(d[:])
	}

	for _, p := range sortedKeys(w.switches) {
		digestWritePos(h, &tmp, p)
		h.Write([]byte{boolByte(w.switches[p])})
	}
	for _, p := range sortedKeys(w.sensors) {
		digestWritePos(h, &tmp, p)
		h.Write([]byte{boolByte(w.sensors[p])})
	}
	for _, p := range sortedKeys(w.conveyors) {
		m := w.conveyors[p]
		digestWritePos(h, &tmp, p)
		h.Write([]byte{byte(m.DX), byte(m.DZ)})
	}
	for _, id := range w.sortedItemIDs() {
		e := w.items[id]
		h.Write([]byte(id))
		digestWritePos(h, &tmp, e.Pos)
		h.Write([]byte(e.Item))
		digestWriteU64(h, &tmp, uint64(e.Count))
		digestWriteU64(h, &tmp, e.ExpiresTick)
	}

	digestWriteU64(h, &tmp, uint64(len(w.wires.pending)))
	for _, c := range w.wires.pending {
		digestWritePos(h, &tmp, c.Pos)
		h.Write([]byte{byte(c.Kind)})
	}

	digestWriteU64(h, &tmp, w.nextAgentNum.Load())
	digestWriteU64(h, &tmp, w.nextItemNum.Load())

	return hex.EncodeToString(h.Sum(nil))
}
