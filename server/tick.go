package server

// onTick is the fixed-rate simulation driver for one room: compute dtScale
// from wallclock elapsed time, advance world decorations, step every
// player, resolve player-vs-player stacking, run the round evaluator, and
// broadcast the resulting snapshot. Skips entirely if the room hasn't
// started — matching the teacher's "BeginTick / ProcessInputs / UpdateWorld
// / BroadcastDelta" sequencing, generalized to this spec's richer per-tick
// pipeline.
func (r *Room) onTick(now int64) {
	if !r.Started {
		return
	}
	processStart := nowMs()

	nominal := 1000.0 / float64(r.tickRateHz())
	var elapsedMs float64
	if r.LastStepAt == 0 {
		elapsedMs = nominal
	} else {
		elapsedMs = float64(now - r.LastStepAt)
	}
	r.LastStepAt = now

	dtScale := clampF(elapsedMs/nominal, 0.5, 2.5)

	r.WorldRuntime.AdvancePlatforms(dtScale)

	for _, pid := range r.PlayerOrder {
		if pid == "" {
			continue
		}
		ps := r.ensurePlayerState(pid)
		in := r.Inputs[pid]
		res := StepPlayer(ps, in, r.WorldRuntime, dtScale)
		if res.FellOut {
			r.enterDead(now)
		}
		r.metrics.IncInputsSampled()
	}

	players := make([]*PlayerState, 0, len(r.PlayerOrder))
	for _, pid := range r.PlayerOrder {
		if pid == "" {
			continue
		}
		players = append(players, r.PlayerStates[pid])
	}
	ResolvePlayerStacking(players, r.WorldRuntime.Width)

	r.Evaluate(now)
	r.emitGameState()

	r.metrics.AddTick(nowMs() - processStart)
}
