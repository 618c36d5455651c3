package server

import "math"

// PlayerID is the logical, client-chosen identity of a participant; it
// survives reconnects and is distinct from the slot and from any
// connection id.
type PlayerID string

// GameStatus is the authoritative phase of a room's current round.
type GameStatus string

const (
	StatusWaiting GameStatus = "waiting"
	StatusPlaying GameStatus = "playing"
	StatusDead    GameStatus = "dead"
	StatusWon     GameStatus = "won"
)

// InputFrame is the last intent sampled for a player; last-write-wins.
type InputFrame struct {
	Left  bool
	Right bool
	Jump  bool
}

// LobbyPlayer is the pre-round view of a room member.
type LobbyPlayer struct {
	Hero  *string
	Ready bool
	Name  string
}

// slotColors gives each of the four possible slots a deterministic color,
// independent of join order beyond the slot number itself.
var slotColors = [...]string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f"}

func colorForSlot(slot int) string {
	if slot-1 >= 0 && slot-1 < len(slotColors) {
		return slotColors[slot-1]
	}
	return "#ffffff"
}

// PlayerState is the per-tick simulation entity driven by physics.go.
type PlayerState struct {
	Slot             int
	PlayerID         PlayerID
	Hero             *string
	Name             string
	X, Y             float64
	VX, VY           float64
	OnGround         bool
	FacingRight      bool
	AnimFrame        int
	Color            string
	Dead             bool
	StandingOnPlayer *int
	PrevY            float64
}

// AABB returns the current collider for this player.
func (p *PlayerState) AABB() AABB {
	return AABB{X: p.X, Y: p.Y, W: playerWidth, H: playerHeight}
}

// Repair reseats a player with non-finite coordinates to the default spawn
// for their slot; simulation faults never propagate past this point (see
// the error-handling taxonomy).
func (p *PlayerState) Repair(rt *WorldRuntime) {
	if isFinite(p.X) && isFinite(p.Y) && isFinite(p.VX) && isFinite(p.VY) {
		return
	}
	x, y := rt.SpawnPosition(p.Slot)
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
