package world

import (
	"fmt"
	"sort"
)

// ItemEntity is a dropped item stack in the world (e.g. a popped wire).
// It is part of the authoritative sim state and must be snapshot/digest'd.
type ItemEntity struct {
	EntityID    string
	Pos         Vec3i
	Item        string
	Count       int
	CreatedTick uint64
	ExpiresTick uint64
}

func (e *ItemEntity) ID() string { return e.EntityID }

func (e *ItemEntity) live() bool { return e != nil && e.Item != "" && e.Count > 0 }

func (w *World) newItemEntityID() string {
	n := w.nextItemNum.Add(1)
	return fmt.Sprintf("IT%06d", n)
}

func (w *World) spawnItemEntity(nowTick uint64, actor string, pos Vec3i, item string, count int, reason string) string {
	if item == "" || count <= 0 {
		return ""
	}
	ttl := uint64(w.cfg.ItemTTLTicks)

	// Merge into the first live stack of the same item at pos.
	for _, id := range w.itemsAt[pos] {
		e := w.items[id]
		if !e.live() || e.Item != item {
			continue
		}
		e.Count += count
		if exp := nowTick + ttl; exp > e.ExpiresTick {
			e.ExpiresTick = exp
		}
		w.auditEvent(nowTick, actor, "ITEM_SPAWN", pos, reason, map[string]any{
			"entity_id": e.EntityID,
			"item":      item,
			"count":     count,
			"merged":    true,
		})
		return e.EntityID
	}

	id := w.newItemEntityID()
	w.items[id] = &ItemEntity{
		EntityID:    id,
		Pos:         pos,
		Item:        item,
		Count:       count,
		CreatedTick: nowTick,
		ExpiresTick: nowTick + ttl,
	}
	w.itemsAt[pos] = append(w.itemsAt[pos], id)
	w.auditEvent(nowTick, actor, "ITEM_SPAWN", pos, reason, map[string]any{
		"entity_id": id,
		"item":      item,
		"count":     count,
		"merged":    false,
	})
	return id
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (w *World) unindexItem(pos Vec3i, id string) {
	ids := removeID(w.itemsAt[pos], id)
	if len(ids) == 0 {
		delete(w.itemsAt, pos)
	} else {
		w.itemsAt[pos] = ids
	}
}

func (w *World) removeItemEntity(nowTick uint64, actor string, id string, reason string) {
	e := w.items[id]
	if e == nil {
		return
	}
	delete(w.items, id)
	w.unindexItem(e.Pos, id)
	w.auditEvent(nowTick, actor, "ITEM_DESPAWN", e.Pos, reason, map[string]any{
		"entity_id": id,
		"item":      e.Item,
		"count":     e.Count,
	})
}

func (w *World) moveItemEntity(nowTick uint64, actor string, id string, to Vec3i, reason string) {
	e := w.items[id]
	if e == nil || e.Pos == to {
		return
	}
	from := e.Pos
	w.unindexItem(from, id)
	w.itemsAt[to] = append(w.itemsAt[to], id)
	e.Pos = to

	w.auditEvent(nowTick, actor, "ITEM_MOVE", from, reason, map[string]any{
		"entity_id": id,
		"to":        to.ToArray(),
		"item":      e.Item,
		"count":     e.Count,
	})
}

func (w *World) hasLiveItemAt(pos Vec3i) bool {
	for _, id := range w.itemsAt[pos] {
		if w.items[id].live() {
			return true
		}
	}
	return false
}

func (w *World) sortedItemIDs() []string {
	out := make([]string, 0, len(w.items))
	for id := range w.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (w *World) cleanupExpiredItemEntities(nowTick uint64) {
	for _, id := range w.sortedItemIDs() {
		e := w.items[id]
		if !e.live() || (e.ExpiresTick != 0 && nowTick >= e.ExpiresTick) {
			w.removeItemEntity(nowTick, "WORLD", id, "EXPIRE")
		}
	}
}
