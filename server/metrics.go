package server

import (
	"sync/atomic"
)

// RoomMetrics records runtime counters for one room, generalizing the
// teacher's single-room metrics to this spec's richer command surface.
// Counters are updated from the room's own goroutine, from each bound
// connection's writePump (AddBroadcast), and from Room.Enqueue callers
// (IncCommandsDropped); every counter is an atomic word, so Snapshot is
// safe to call from the admin HTTP handler concurrently.
type RoomMetrics struct {
	TickCount          int64
	InputsSampled      int64
	CommandsDropped    int64
	BroadcastBytes     int64
	BroadcastFrames    int64
	CompressedFrames   int64
	TotalTickNs        int64
	PlayerCount        int64
}

func (m *RoomMetrics) IncInputsSampled()   { atomic.AddInt64(&m.InputsSampled, 1) }
func (m *RoomMetrics) IncCommandsDropped() { atomic.AddInt64(&m.CommandsDropped, 1) }

// SetPlayerCount publishes the current room membership size so the
// Manager's health/admin endpoints can read it without touching the room's
// own Players map from another goroutine.
func (m *RoomMetrics) SetPlayerCount(n int) { atomic.StoreInt64(&m.PlayerCount, int64(n)) }

// PlayerCountValue returns the last published membership size.
func (m *RoomMetrics) PlayerCountValue() int { return int(atomic.LoadInt64(&m.PlayerCount)) }

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *RoomMetrics) AddBroadcast(bytes int, compressed bool) {
	atomic.AddInt64(&m.BroadcastBytes, int64(bytes))
	atomic.AddInt64(&m.BroadcastFrames, 1)
	if compressed {
		atomic.AddInt64(&m.CompressedFrames, 1)
	}
}

// Snapshot returns a read-only copy suitable for JSON serving.
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"inputs_sampled":    atomic.LoadInt64(&m.InputsSampled),
		"commands_dropped":  atomic.LoadInt64(&m.CommandsDropped),
		"broadcast_bytes":   atomic.LoadInt64(&m.BroadcastBytes),
		"broadcast_frames":  atomic.LoadInt64(&m.BroadcastFrames),
		"compressed_frames": atomic.LoadInt64(&m.CompressedFrames),
		"avg_tick_ms":       avgMs,
		"player_count":      atomic.LoadInt64(&m.PlayerCount),
	}
}
