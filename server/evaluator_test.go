package server

import "testing"

func newTestRoomForEvaluator() *Room {
	r := NewRoom("ABCD", 2, "host", "Host", testConfig(), testLogger())
	r.World = World1
	r.WorldRuntime = CloneRuntime(World1, 0)
	r.GameState = &Snapshot{GameStatus: StatusPlaying, World: World1}
	return r
}

func TestEvaluateKeyPickup(t *testing.T) {
	r := newTestRoomForEvaluator()
	ps := &PlayerState{Slot: 1, PlayerID: "host", X: r.WorldRuntime.Key.X, Y: r.WorldRuntime.Key.Y}
	r.PlayerOrder = []PlayerID{"host"}
	r.PlayerStates["host"] = ps

	r.Evaluate(0)

	if !r.GameState.KeyCollected {
		t.Fatal("a player standing on the key should collect it")
	}
}

func TestEvaluateDoorCompletionRequiresAllLivingPlayers(t *testing.T) {
	r := newTestRoomForEvaluator()
	delete(r.Players, r.HostID)
	r.GameState.KeyCollected = true
	atDoor := &PlayerState{Slot: 1, PlayerID: "p1", X: r.WorldRuntime.Door.X, Y: r.WorldRuntime.Door.Y}
	notAtDoor := &PlayerState{Slot: 2, PlayerID: "p2", X: 0, Y: 0}
	r.Players["p1"] = &LobbyPlayer{}
	r.Players["p2"] = &LobbyPlayer{}
	r.PlayerOrder = []PlayerID{"p1", "p2"}
	r.PlayerStates["p1"] = atDoor
	r.PlayerStates["p2"] = notAtDoor

	r.Evaluate(0)

	if r.GameState.GameStatus == StatusWon {
		t.Fatal("round should not be won while one living player is not at the door")
	}
	if len(r.GameState.PlayersAtDoor) != 1 {
		t.Fatalf("PlayersAtDoor = %v, want exactly the one player standing there", r.GameState.PlayersAtDoor)
	}
}

func TestEvaluateDoorCompletionWinsWhenEveryoneArrives(t *testing.T) {
	r := newTestRoomForEvaluator()
	r.GameState.KeyCollected = true
	ps := &PlayerState{Slot: 1, PlayerID: r.HostID, X: r.WorldRuntime.Door.X, Y: r.WorldRuntime.Door.Y}
	r.PlayerOrder = []PlayerID{r.HostID}
	r.PlayerStates[r.HostID] = ps

	r.Evaluate(0)

	if r.GameState.GameStatus != StatusWon {
		t.Fatalf("GameStatus = %v, want won", r.GameState.GameStatus)
	}
}

func TestEvaluateHazardContactEntersDead(t *testing.T) {
	r := newTestRoomForEvaluator()
	r.World = World2
	r.WorldRuntime = CloneRuntime(World2, 900)
	haz := r.WorldRuntime.DangerButtons[0]
	ps := &PlayerState{Slot: 1, PlayerID: "host", X: haz.X, Y: haz.Y}
	r.PlayerOrder = []PlayerID{"host"}
	r.PlayerStates["host"] = ps

	r.Evaluate(0)

	if r.GameState.GameStatus != StatusDead {
		t.Fatalf("GameStatus = %v, want dead after hazard contact", r.GameState.GameStatus)
	}
	if r.DeadUntil == 0 {
		t.Fatal("entering dead should schedule a respawn via DeadUntil")
	}
}

func TestEvaluateResetsRoundOnceRespawnTimerElapses(t *testing.T) {
	r := newTestRoomForEvaluator()
	r.GameState.GameStatus = StatusDead
	r.DeadUntil = 1000
	r.Players["host"] = &LobbyPlayer{}
	r.PlayerOrder = []PlayerID{"host"}
	r.PlayerStates["host"] = &PlayerState{Slot: 1, PlayerID: "host", Dead: true}

	r.Evaluate(1000)

	if r.GameState.GameStatus != StatusPlaying {
		t.Fatalf("GameStatus after respawn = %v, want playing", r.GameState.GameStatus)
	}
	if r.PlayerStates["host"].Dead {
		t.Fatal("resetRound should revive every player")
	}
}

func TestEvaluateDoesNotResetBeforeDeadUntil(t *testing.T) {
	r := newTestRoomForEvaluator()
	r.GameState.GameStatus = StatusDead
	r.DeadUntil = 1000

	r.Evaluate(500)

	if r.GameState.GameStatus != StatusDead {
		t.Fatal("should remain dead until DeadUntil elapses")
	}
}
