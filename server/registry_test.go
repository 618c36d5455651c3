package server

import "testing"

func TestConnectionRegistryBindSetsConnFields(t *testing.T) {
	cr := NewConnectionRegistry()
	c := &ClientConn{}

	cr.Bind(c, "ABCD", "p1")

	if c.roomCode != "ABCD" || c.playerID != "p1" {
		t.Fatalf("Bind did not set conn binding fields, got roomCode=%q playerID=%q", c.roomCode, c.playerID)
	}
}

func TestConnectionRegistryBindReturnsStaleConnsOnReconnect(t *testing.T) {
	cr := NewConnectionRegistry()
	old := &ClientConn{}
	fresh := &ClientConn{}

	cr.Bind(old, "ABCD", "p1")
	stale := cr.Bind(fresh, "ABCD", "p1")

	if len(stale) != 1 || stale[0] != old {
		t.Fatalf("Bind(fresh) stale = %v, want [old]", stale)
	}
	if !cr.PlayerHasLiveConn("ABCD", "p1") {
		t.Fatal("p1 should still have a live conn after reconnect")
	}
}

func TestConnectionRegistryBindSameConnTwiceReturnsNoStale(t *testing.T) {
	cr := NewConnectionRegistry()
	c := &ClientConn{}

	cr.Bind(c, "ABCD", "p1")
	stale := cr.Bind(c, "ABCD", "p1")

	if len(stale) != 0 {
		t.Fatalf("rebinding the same conn should report no stale conns, got %v", stale)
	}
}

func TestConnectionRegistryUnbindRemovesBinding(t *testing.T) {
	cr := NewConnectionRegistry()
	c := &ClientConn{}
	cr.Bind(c, "ABCD", "p1")

	cr.Unbind(c)

	if cr.PlayerHasLiveConn("ABCD", "p1") {
		t.Fatal("p1 should have no live conn after Unbind")
	}
	if len(cr.ConnsFor("ABCD")) != 0 {
		t.Fatal("room should have no conns left after its only binding is unbound")
	}
}

func TestConnectionRegistryUnboundConnIsNoop(t *testing.T) {
	cr := NewConnectionRegistry()
	c := &ClientConn{}
	cr.Unbind(c) // never bound; must not panic or corrupt state
}

func TestConnectionRegistryConnsForFanOutAcrossPlayers(t *testing.T) {
	cr := NewConnectionRegistry()
	a, b := &ClientConn{}, &ClientConn{}
	cr.Bind(a, "ABCD", "p1")
	cr.Bind(b, "ABCD", "p2")

	conns := cr.ConnsFor("ABCD")

	if len(conns) != 2 {
		t.Fatalf("ConnsFor returned %d conns, want 2", len(conns))
	}
}

func TestConnectionRegistryConnsForUnknownRoomIsEmpty(t *testing.T) {
	cr := NewConnectionRegistry()
	if got := cr.ConnsFor("NOPE"); got != nil {
		t.Fatalf("ConnsFor(unknown room) = %v, want nil", got)
	}
}

func TestConnectionRegistryDropRoomForgetsAllBindingsWithoutClosing(t *testing.T) {
	cr := NewConnectionRegistry()
	c := &ClientConn{}
	cr.Bind(c, "ABCD", "p1")

	cr.DropRoom("ABCD")

	if cr.PlayerHasLiveConn("ABCD", "p1") {
		t.Fatal("DropRoom should forget the binding entirely")
	}
	if c.roomCode != "ABCD" {
		t.Fatal("DropRoom forgets the registry's bookkeeping, not the conn's own fields")
	}
}
