package server

// Evaluate applies the post-step invariants for one room in order: round
// reset on respawn-timer expiry, key pickup, hazard contact (World2 only),
// door completion, and the default "playing" status. While the room is dead
// and the respawn timer has not yet elapsed, nothing else is evaluated.
func (r *Room) Evaluate(now int64) {
	if r.GameState.GameStatus == StatusDead {
		if now >= r.DeadUntil {
			r.resetRound(now)
		}
		return
	}

	if !r.GameState.KeyCollected {
		for _, pid := range r.PlayerOrder {
			ps := r.PlayerStates[pid]
			if ps != nil && !ps.Dead && Intersects(ps.AABB(), r.WorldRuntime.Key) {
				r.GameState.KeyCollected = true
				break
			}
		}
	}

	if r.WorldRuntime.ID == World2 {
		for _, pid := range r.PlayerOrder {
			ps := r.PlayerStates[pid]
			if ps == nil || ps.Dead {
				continue
			}
			for _, haz := range r.WorldRuntime.DangerButtons {
				if Intersects(ps.AABB(), haz) {
					r.enterDead(now)
					return
				}
			}
		}
	}

	if r.GameState.KeyCollected {
		atDoor := make([]int, 0, len(r.PlayerOrder))
		for _, pid := range r.PlayerOrder {
			ps := r.PlayerStates[pid]
			if ps != nil && !ps.Dead && Intersects(ps.AABB(), r.WorldRuntime.Door) {
				atDoor = append(atDoor, ps.Slot)
			}
		}
		r.GameState.PlayersAtDoor = atDoor
		if len(atDoor) > 0 && len(atDoor) == len(r.Players) {
			r.GameState.GameStatus = StatusWon
			return
		}
	}

	r.GameState.GameStatus = StatusPlaying
}

// enterDead transitions the room into the dead/respawning phase.
func (r *Room) enterDead(now int64) {
	r.GameState.GameStatus = StatusDead
	r.DeadUntil = now + int64(r.respawnDelayMs())
}

// resetRound rebuilds the world runtime and every player's position for a
// fresh attempt at the same world, clearing all round-scoped state.
func (r *Room) resetRound(now int64) {
	r.WorldRuntime = CloneRuntime(r.World, r.World2BaseY)
	r.GameState = &Snapshot{
		GameStatus: StatusPlaying,
		World:      r.World,
	}
	r.DeadUntil = 0

	for slot, pid := range r.PlayerOrder {
		if pid == "" {
			continue
		}
		lp := r.Players[pid]
		ps := r.PlayerStates[pid]
		if ps == nil {
			ps = &PlayerState{}
			r.PlayerStates[pid] = ps
		}
		x, y := r.WorldRuntime.SpawnPosition(slot + 1)
		*ps = PlayerState{
			Slot:     slot + 1,
			PlayerID: pid,
			X:        x,
			Y:        y,
			Color:    colorForSlot(slot + 1),
		}
		if lp != nil {
			ps.Hero = lp.Hero
			ps.Name = lp.Name
		}
	}
}
