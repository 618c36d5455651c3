package server

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Wire event names, both directions.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventSetPlayerName = "setPlayerName"
	EventSetWorld     = "setWorld"
	EventSetLevel     = "setLevel"
	EventSelectHero   = "selectHero"
	EventSetReady     = "setReady"
	EventStartGameNow = "startGameNow"
	EventPlayerInput  = "playerInput"
	EventPlayerMove   = "playerMove"
	EventDisconnect   = "disconnect"

	EventJoinSuccess  = "joinSuccess"
	EventCreateDenied = "createDenied"
	EventJoinDenied   = "joinDenied"
	EventHeroDenied   = "heroDenied"
	EventReadyDenied  = "readyDenied"
	EventStartDenied  = "startDenied"
	EventStartGame    = "startGame"
	EventRoomState    = "roomState"
	EventGameState    = "gameState"
)

// envelope is the minimal shape every inbound wire frame satisfies: enough
// to read the tag and dispatch, with the full raw bytes kept for a second,
// type-specific unmarshal.
type envelope struct {
	Type string `json:"type"`
}

type createRoomMsg struct {
	RoomCode     string          `json:"roomCode"`
	MaxPlayers   int             `json:"maxPlayers"`
	HostID       string          `json:"hostId"`
	PlayerName   string          `json:"playerName"`
	World        json.RawMessage `json:"world"`
	Level        json.RawMessage `json:"level"`
	CanvasHeight *float64        `json:"canvasHeight"`
}

type joinRoomMsg struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type setPlayerNameMsg struct {
	Name string `json:"name"`
}

type setWorldMsg struct {
	World json.RawMessage `json:"world"`
}

type setLevelMsg struct {
	Level json.RawMessage `json:"level"`
	World json.RawMessage `json:"world"`
}

type selectHeroMsg struct {
	Hero string `json:"hero"`
}

type setReadyMsg struct {
	Ready bool `json:"ready"`
}

type inputFields struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

type playerInputMsg struct {
	Input          *inputFields `json:"input"`
	Keys           *inputFields `json:"keys"`
	Left           *bool        `json:"left"`
	Right          *bool        `json:"right"`
	Jump           *bool        `json:"jump"`
	CanvasHeight   *float64     `json:"canvasHeight"`
	ViewportHeight *float64     `json:"viewportHeight"`
	Height         *float64     `json:"height"`
}

// parseInputFrame accepts any of the three wire shapes the spec tolerates:
// {input:{...}}, {keys:{...}}, or flat {left,right,jump}.
func parseInputFrame(msg playerInputMsg) InputFrame {
	if msg.Input != nil {
		return InputFrame{Left: msg.Input.Left, Right: msg.Input.Right, Jump: msg.Input.Jump}
	}
	if msg.Keys != nil {
		return InputFrame{Left: msg.Keys.Left, Right: msg.Keys.Right, Jump: msg.Keys.Jump}
	}
	frame := InputFrame{}
	if msg.Left != nil {
		frame.Left = *msg.Left
	}
	if msg.Right != nil {
		frame.Right = *msg.Right
	}
	if msg.Jump != nil {
		frame.Jump = *msg.Jump
	}
	return frame
}

// reportedViewportHeight extracts whichever of the three tolerated field
// names the client used to report its canvas/viewport height, if any.
func (m playerInputMsg) reportedViewportHeight() (float64, bool) {
	switch {
	case m.CanvasHeight != nil:
		return *m.CanvasHeight, true
	case m.ViewportHeight != nil:
		return *m.ViewportHeight, true
	case m.Height != nil:
		return *m.Height, true
	default:
		return 0, false
	}
}

// normalizeWorld accepts {1,2,"1","2","map1","map2","world1","world2"} (and
// their raw-JSON-encoded forms) and defaults to World1 for anything else.
func normalizeWorld(raw json.RawMessage) int {
	if len(raw) == 0 {
		return World1
	}
	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		if asInt == World2 {
			return World2
		}
		return World1
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return normalizeWorldString(asString)
	}
	return World1
}

func normalizeWorldString(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2", "map2", "world2":
		return World2
	case "1", "map1", "world1":
		return World1
	default:
		if n, err := strconv.Atoi(s); err == nil && n == World2 {
			return World2
		}
		return World1
	}
}

// trimName trims whitespace and truncates to at most 20 characters. It is
// idempotent: trimName(trimName(x)) == trimName(x).
func trimName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if runes := []rune(trimmed); len(runes) > 20 {
		trimmed = strings.TrimSpace(string(runes[:20]))
	}
	return trimmed
}

// sanitizeName applies trimName and falls back to "Player N" when the
// result is empty — the default-name path used on join. setPlayerName uses
// trimName directly and ignores an empty result instead of defaulting.
func sanitizeName(raw string, slot int) string {
	if trimmed := trimName(raw); trimmed != "" {
		return trimmed
	}
	return "Player " + strconv.Itoa(slot)
}
