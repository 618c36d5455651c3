package server

import "testing"

// newLifecycleRoom builds a room the way Manager.handleCreateRoom does, with
// a no-op broadcastFn and bindFn so commands can be applied directly without
// a real transport or connection registry.
func newLifecycleRoom(maxPlayers int) *Room {
	r := NewRoom("ABCD", maxPlayers, "host", "Host", testConfig(), testLogger())
	r.broadcastFn = func(event string, payload interface{}) {}
	r.bindFn = func(conn *ClientConn, pid PlayerID) []*ClientConn { return nil }
	return r
}

func TestCmdJoinAddsNewPlayerToLobby(t *testing.T) {
	r := newLifecycleRoom(4)
	cmd := &cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Alice"}

	cmd.apply(r, 0)

	if _, ok := r.Players["p1"]; !ok {
		t.Fatal("joining player should be present in r.Players")
	}
	if r.slotOf("p1") != 2 {
		t.Fatalf("slotOf(p1) = %d, want 2 (host already occupies slot 1)", r.slotOf("p1"))
	}
}

func TestCmdJoinDeniesWhenRoomIsFull(t *testing.T) {
	r := newLifecycleRoom(1) // host already fills the only slot
	conn := &ClientConn{}
	cmd := &cmdJoin{conn: conn, playerID: "p1", name: "Alice"}

	cmd.apply(r, 0)

	if _, ok := r.Players["p1"]; ok {
		t.Fatal("a full room must not admit another player")
	}
}

func TestCmdJoinDeniesWhenRoomAlreadyStarted(t *testing.T) {
	r := newLifecycleRoom(4)
	r.Started = true
	cmd := &cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Alice"}

	cmd.apply(r, 0)

	if _, ok := r.Players["p1"]; ok {
		t.Fatal("a started room must deny new joins")
	}
}

func TestCmdJoinReconnectKeepsLobbyStateAndCancelsGrace(t *testing.T) {
	r := newLifecycleRoom(4)
	hero := "knight"
	r.Players["host"].Hero = &hero
	r.Players["host"].Ready = true
	r.armGrace("host")

	cmd := &cmdJoin{conn: &ClientConn{}, playerID: "host", name: "Host"}
	cmd.apply(r, 0)

	if _, armed := r.graceTimers["host"]; armed {
		t.Fatal("reconnecting should cancel the pending grace timer")
	}
	if r.Players["host"].Hero == nil || *r.Players["host"].Hero != "knight" {
		t.Fatal("reconnect must preserve the player's existing hero selection")
	}
}

func TestCmdSelectHeroDeniesDuplicateHero(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)

	(&cmdSelectHero{conn: &ClientConn{}, playerID: "host", hero: "knight"}).apply(r, 0)
	(&cmdSelectHero{conn: &ClientConn{}, playerID: "p1", hero: "knight"}).apply(r, 0)

	if r.Players["p1"].Hero != nil {
		t.Fatal("a hero already taken by another player must be denied")
	}
	if r.Players["host"].Hero == nil || *r.Players["host"].Hero != "knight" {
		t.Fatal("the first player to pick a hero should keep it")
	}
}

func TestCmdSelectHeroResetsReadyFlag(t *testing.T) {
	r := newLifecycleRoom(4)
	r.Players["host"].Ready = true

	(&cmdSelectHero{conn: &ClientConn{}, playerID: "host", hero: "knight"}).apply(r, 0)

	if r.Players["host"].Ready {
		t.Fatal("changing hero should clear the ready flag")
	}
}

func TestCmdSetReadyRequiresHeroFirst(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdSetReady{conn: &ClientConn{}, playerID: "host", ready: true}).apply(r, 0)

	if r.Players["host"].Ready {
		t.Fatal("a player without a hero selected should not be able to ready up")
	}
}

func TestCmdStartGameNowRequiresEveryoneReady(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)
	hero := "knight"
	r.Players["host"].Hero = &hero
	r.Players["host"].Ready = true
	// p1 has not picked a hero yet.

	(&cmdStartGameNow{conn: &ClientConn{}, playerID: "host"}).apply(r, 0)

	if r.Started {
		t.Fatal("game must not start while any player is unready or heroless")
	}
}

func TestCmdStartGameNowOnlyHostCanStart(t *testing.T) {
	r := newLifecycleRoom(4)
	hero := "knight"
	r.Players["host"].Hero = &hero
	r.Players["host"].Ready = true

	(&cmdStartGameNow{conn: &ClientConn{}, playerID: "someone-else"}).apply(r, 0)

	if r.Started {
		t.Fatal("only the host may start the game")
	}
}

func TestCmdStartGameNowSucceedsAndSeedsPlayerStates(t *testing.T) {
	r := newLifecycleRoom(4)
	hero := "knight"
	r.Players["host"].Hero = &hero
	r.Players["host"].Ready = true

	(&cmdStartGameNow{conn: &ClientConn{}, playerID: "host"}).apply(r, 0)

	if !r.Started {
		t.Fatal("expected the room to be marked Started")
	}
	if _, ok := r.PlayerStates["host"]; !ok {
		t.Fatal("starting the game should seed a PlayerState for every member")
	}
	if r.GameState.GameStatus != StatusPlaying {
		t.Fatalf("GameStatus = %v, want playing", r.GameState.GameStatus)
	}
}

func TestCmdGraceExpiredRemovesPlayerAndReelectsHost(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)

	(&cmdGraceExpired{playerID: "host"}).apply(r, 0)

	if _, ok := r.Players["host"]; ok {
		t.Fatal("the expired player should be removed")
	}
	if r.HostID != "p1" {
		t.Fatalf("HostID = %q, want re-election to the remaining player p1", r.HostID)
	}
}

func TestCmdGraceExpiredOnLastPlayerSignalsRoomEmpty(t *testing.T) {
	r := newLifecycleRoom(4)
	emptied := ""
	r.onEmpty = func(code string) { emptied = code }

	(&cmdGraceExpired{playerID: "host"}).apply(r, 0)

	if emptied != "ABCD" {
		t.Fatal("removing the last player should invoke onEmpty with the room code")
	}
}

func TestCmdGraceExpiredDoesNotRenumberSurvivingSlots(t *testing.T) {
	r := newLifecycleRoom(4) // host takes slot 1
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)   // slot 2
	(&cmdJoin{conn: &ClientConn{}, playerID: "p2", name: "Cleo"}).apply(r, 0) // slot 3

	(&cmdGraceExpired{playerID: "p1"}).apply(r, 0) // departs from the middle slot

	if got := r.slotOf("p2"); got != 3 {
		t.Fatalf("slotOf(p2) = %d, want 3 unchanged; a mid-order departure must not renumber survivors", got)
	}
	if got := r.slotOf("host"); got != 1 {
		t.Fatalf("slotOf(host) = %d, want 1 unchanged", got)
	}
	if r.PlayerOrder[1] != "" {
		t.Fatalf("PlayerOrder[1] = %q, want the departed player's slot left vacant, not shifted", r.PlayerOrder[1])
	}
}

func TestCmdJoinFillsVacatedSlotOfDepartedPlayer(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)  // slot 2
	(&cmdJoin{conn: &ClientConn{}, playerID: "p2", name: "Cleo"}).apply(r, 0) // slot 3
	(&cmdGraceExpired{playerID: "p1"}).apply(r, 0)                           // slot 2 now vacant

	(&cmdJoin{conn: &ClientConn{}, playerID: "p3", name: "Dee"}).apply(r, 0)

	if got := r.slotOf("p3"); got != 2 {
		t.Fatalf("slotOf(p3) = %d, want 2 (the first vacant slot), not appended past the existing occupants", got)
	}
	if got := r.slotOf("p2"); got != 3 {
		t.Fatalf("slotOf(p2) = %d, want unchanged at 3", got)
	}
}

func TestCmdGraceExpiredIsNoopIfPlayerAlreadyGone(t *testing.T) {
	r := newLifecycleRoom(4)
	called := false
	r.onEmpty = func(code string) { called = true }

	(&cmdGraceExpired{playerID: "never-joined"}).apply(r, 0)

	if called {
		t.Fatal("a grace expiry for a player no longer present must be a no-op")
	}
}

func TestCmdSetWorldDeniedAfterStart(t *testing.T) {
	r := newLifecycleRoom(4)
	r.Started = true
	r.World = World1

	(&cmdSetWorld{playerID: "host", worldID: World2}).apply(r, 0)

	if r.World != World1 {
		t.Fatal("world changes must be silently denied once the room has started")
	}
}

func TestCmdSetWorldOnlyHostCanChange(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdJoin{conn: &ClientConn{}, playerID: "p1", name: "Bob"}).apply(r, 0)

	(&cmdSetWorld{playerID: "p1", worldID: World2}).apply(r, 0)

	if r.World != World1 {
		t.Fatal("a non-host changing the world should be ignored")
	}
}

func TestCmdPlayerInputIgnoredBeforeStart(t *testing.T) {
	r := newLifecycleRoom(4)
	(&cmdPlayerInput{playerID: "host", input: InputFrame{Left: true}}).apply(r, 0)

	if _, ok := r.Inputs["host"]; ok {
		t.Fatal("input before the room has started should be dropped")
	}
}

func TestCmdPlayerInputRecordsLatestFrame(t *testing.T) {
	r := newLifecycleRoom(4)
	r.Started = true

	(&cmdPlayerInput{playerID: "host", input: InputFrame{Right: true}}).apply(r, 0)

	if !r.Inputs["host"].Right {
		t.Fatal("expected the latest input frame to be recorded for the player")
	}
}
