package server

// views.go shapes the internal Room/Snapshot state into the exact wire
// payloads described in spec.md §4.8.

type lobbyPlayerView struct {
	Hero  *string `json:"hero"`
	Ready bool    `json:"ready"`
	Name  string  `json:"name"`
}

type roomStateView struct {
	Type       string                     `json:"type"`
	RoomCode   string                     `json:"roomCode"`
	MaxPlayers int                        `json:"maxPlayers"`
	HostID     string                     `json:"hostId"`
	Started    bool                       `json:"started"`
	World      int                        `json:"world"`
	Players    map[string]lobbyPlayerView `json:"players"`
}

func (r *Room) buildRoomStateView() roomStateView {
	players := make(map[string]lobbyPlayerView, len(r.Players))
	for pid, lp := range r.Players {
		players[string(pid)] = lobbyPlayerView{Hero: lp.Hero, Ready: lp.Ready, Name: lp.Name}
	}
	return roomStateView{
		Type:       EventRoomState,
		RoomCode:   r.Code,
		MaxPlayers: r.MaxPlayers,
		HostID:     string(r.HostID),
		Started:    r.Started,
		World:      r.World,
		Players:    players,
	}
}

type playerView struct {
	ID               int     `json:"id"`
	Hero             *string `json:"hero"`
	Name             string  `json:"name"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	VX               float64 `json:"vx"`
	VY               float64 `json:"vy"`
	OnGround         bool    `json:"onGround"`
	FacingRight      bool    `json:"facingRight"`
	AnimFrame        int     `json:"animFrame"`
	Color            string  `json:"color"`
	Dead             bool    `json:"dead"`
	StandingOnPlayer *int    `json:"standingOnPlayer"`
}

type AABBView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func aabbView(a AABB) AABBView { return AABBView{X: a.X, Y: a.Y, W: a.W, H: a.H} }

type gameStateView struct {
	Type             string                `json:"type"`
	Players          map[string]playerView `json:"players"`
	KeyCollected     bool                  `json:"keyCollected"`
	PlayersAtDoor    []int                 `json:"playersAtDoor"`
	GameStatus       string                `json:"gameStatus"`
	World            int                   `json:"world"`
	Key              AABBView              `json:"key"`
	Door             AABBView              `json:"door"`
	DangerButtons    []AABBView            `json:"dangerButtons"`
	MovingPlatforms  []AABBView            `json:"movingPlatforms"`
	FallingPlatforms []AABBView            `json:"fallingPlatforms"`
}

func (r *Room) buildGameStateView() gameStateView {
	players := make(map[string]playerView, len(r.GameState.Players))
	for pid, ps := range r.GameState.Players {
		if ps == nil {
			continue
		}
		players[string(pid)] = playerView{
			ID: ps.Slot, Hero: ps.Hero, Name: ps.Name,
			X: ps.X, Y: ps.Y, VX: ps.VX, VY: ps.VY,
			OnGround: ps.OnGround, FacingRight: ps.FacingRight,
			AnimFrame: ps.AnimFrame, Color: ps.Color, Dead: ps.Dead,
			StandingOnPlayer: ps.StandingOnPlayer,
		}
	}

	view := gameStateView{
		Type:          EventGameState,
		Players:       players,
		KeyCollected:  r.GameState.KeyCollected,
		PlayersAtDoor: r.GameState.PlayersAtDoor,
		GameStatus:    string(r.GameState.GameStatus),
		World:         r.GameState.World,
	}
	if r.WorldRuntime != nil {
		view.Key = aabbView(r.WorldRuntime.Key)
		view.Door = aabbView(r.WorldRuntime.Door)
		view.DangerButtons = make([]AABBView, len(r.WorldRuntime.DangerButtons))
		for i, a := range r.WorldRuntime.DangerButtons {
			view.DangerButtons[i] = aabbView(a)
		}
		view.MovingPlatforms = make([]AABBView, len(r.WorldRuntime.MovingPlatforms))
		for i, mp := range r.WorldRuntime.MovingPlatforms {
			view.MovingPlatforms[i] = aabbView(mp.AABB)
		}
		view.FallingPlatforms = make([]AABBView, len(r.WorldRuntime.FallingPlatforms))
		for i, fp := range r.WorldRuntime.FallingPlatforms {
			view.FallingPlatforms[i] = aabbView(fp.AABB)
		}
	}
	if view.PlayersAtDoor == nil {
		view.PlayersAtDoor = []int{}
	}
	return view
}
