package server

import "time"

// armGrace (re)starts the disconnect grace timer for pid. Arming is
// idempotent: any prior timer for the same player is cancelled first, so a
// player who drops a second connection while already in grace doesn't get
// removed early.
func (r *Room) armGrace(pid PlayerID) {
	r.cancelGrace(pid)
	delay := time.Duration(r.disconnectGraceMs()) * time.Millisecond
	r.graceTimers[pid] = time.AfterFunc(delay, func() {
		r.Enqueue(&cmdGraceExpired{playerID: pid})
	})
}

// cancelGrace stops any pending grace timer for pid; a successful reconnect
// calls this so the player is never removed despite having rejoined.
func (r *Room) cancelGrace(pid PlayerID) {
	if t, ok := r.graceTimers[pid]; ok {
		t.Stop()
		delete(r.graceTimers, pid)
	}
}
