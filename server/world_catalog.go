package server

// World ids understood by the catalog.
const (
	World1 = 1
	World2 = 2
)

const (
	playerWidth  = 45
	playerHeight = 55
)

// PhysicsConstants tune how a PlayerState integrates per tick. Defaults come
// from defaultPhysicsByWorld; LoadTuning applies an optional override per
// world id.
type PhysicsConstants struct {
	Gravity      float64
	MoveSpeed    float64
	JumpForce    float64
	MaxFallSpeed float64
	Friction     float64
}

// MovingPlatformBlueprint describes a platform that patrols between two x
// coordinates at a fixed speed.
type MovingPlatformBlueprint struct {
	AABB
	StartX, EndX float64
	Speed        float64
}

// FallingPlatformBlueprint describes a platform that stays put until a
// player lands on it, then begins to drop after a delay.
type FallingPlatformBlueprint struct {
	AABB
}

// WorldBlueprint is the read-only template for a level, never mutated.
type WorldBlueprint struct {
	ID               int
	Width            float64
	GroundY          float64
	HasGlobalFloor   bool
	StopOnRelease    bool
	Physics          PhysicsConstants
	Platforms        []AABB
	MovingPlatforms  []MovingPlatformBlueprint
	FallingPlatforms []FallingPlatformBlueprint
	Key              AABB
	Door             AABB
	DangerButtons    []AABB
}

// MovingPlatformRuntime is the live, mutable state of a moving platform.
type MovingPlatformRuntime struct {
	AABB
	StartX, EndX float64
	Speed        float64
	Direction    int // +1 or -1
	DeltaX       float64
}

// FallingPlatformRuntime is the live, mutable state of a falling platform.
type FallingPlatformRuntime struct {
	AABB
	OriginalY float64
	Falling   bool
	FallTimer int
}

// WorldRuntime is a deep, mutable clone of a blueprint created at round
// start. The simulator never writes back into the blueprint it came from.
type WorldRuntime struct {
	ID               int
	Width            float64
	GroundY          float64
	HasGlobalFloor   bool
	StopOnRelease    bool
	Physics          PhysicsConstants
	Platforms        []AABB
	MovingPlatforms  []MovingPlatformRuntime
	FallingPlatforms []FallingPlatformRuntime
	Key              AABB
	Door             AABB
	DangerButtons    []AABB
}

var defaultPhysicsByWorld = map[int]PhysicsConstants{
	World1: {Gravity: 0.8, MoveSpeed: 5, JumpForce: -14, MaxFallSpeed: 18, Friction: 1},
	World2: {Gravity: 0.8, MoveSpeed: 5, JumpForce: -14, MaxFallSpeed: 18, Friction: 0.8},
}

// world1Blueprint builds the parkour level: a chain of static platforms
// leading from the shared spawn strip to a key and a door. No moving or
// falling platforms appear in the shipped blueprint, but the runtime format
// supports them for any future level (see world_catalog_test.go).
func world1Blueprint() WorldBlueprint {
	const groundY = 600
	return WorldBlueprint{
		ID:             World1,
		Width:          6000,
		GroundY:        groundY,
		HasGlobalFloor: false,
		StopOnRelease:  false,
		Physics:        physicsFor(World1),
		Platforms: []AABB{
			{X: 0, Y: groundY, W: 500, H: 40},
			{X: 600, Y: groundY - 40, W: 300, H: 40},
			{X: 1000, Y: groundY, W: 300, H: 40},
			{X: 1400, Y: groundY - 40, W: 250, H: 40},
			{X: 1750, Y: groundY, W: 400, H: 40},
			{X: 2300, Y: groundY - 40, W: 300, H: 40},
			{X: 2700, Y: groundY, W: 450, H: 40},
			{X: 3250, Y: groundY - 40, W: 300, H: 40},
			{X: 3650, Y: groundY, W: 400, H: 40},
			{X: 4150, Y: groundY - 40, W: 350, H: 40},
		},
		Key:  AABB{X: 1950, Y: 535, W: 40, H: 40},
		Door: AABB{X: 3030, Y: 525, W: 55, H: 75},
	}
}

// world2Blueprint builds the danger-buttons level. baseY is the dynamic
// ground height reported by the client's viewport (clamped by the caller);
// the key, door, and all 31 hazards are positioned relative to it.
func world2Blueprint(baseY float64) WorldBlueprint {
	const width = 8200
	const hazardCount = 31
	start, end := 300.0, width-500.0
	step := (end - start) / float64(hazardCount-1)
	hazards := make([]AABB, hazardCount)
	for i := 0; i < hazardCount; i++ {
		hazards[i] = AABB{X: start + step*float64(i), Y: baseY - 20, W: 40, H: 20}
	}
	return WorldBlueprint{
		ID:             World2,
		Width:          width,
		GroundY:        baseY,
		HasGlobalFloor: true,
		StopOnRelease:  true,
		Physics:        physicsFor(World2),
		Key:            AABB{X: 4000, Y: baseY - 40, W: 40, H: 40},
		Door:           AABB{X: width - 400, Y: baseY - 75, W: 55, H: 75},
		DangerButtons:  hazards,
	}
}

func physicsFor(worldID int) PhysicsConstants {
	if override, ok := activeTuning.physics[worldID]; ok {
		return override
	}
	return defaultPhysicsByWorld[worldID]
}

// ClampWorld2BaseY enforces the [500, 1400] bound from the spec.
func ClampWorld2BaseY(y float64) float64 {
	return clampF(y, 500, 1400)
}

// CloneRuntime returns a fresh mutable WorldRuntime for worldID. baseY only
// matters for World2; it is ignored for World1.
func CloneRuntime(worldID int, baseY float64) *WorldRuntime {
	var bp WorldBlueprint
	switch worldID {
	case World2:
		bp = world2Blueprint(ClampWorld2BaseY(baseY))
	default:
		bp = world1Blueprint()
	}

	rt := &WorldRuntime{
		ID:             bp.ID,
		Width:          bp.Width,
		GroundY:        bp.GroundY,
		HasGlobalFloor: bp.HasGlobalFloor,
		StopOnRelease:  bp.StopOnRelease,
		Physics:        bp.Physics,
		Key:            bp.Key,
		Door:           bp.Door,
	}
	rt.Platforms = append([]AABB(nil), bp.Platforms...)
	rt.DangerButtons = append([]AABB(nil), bp.DangerButtons...)

	rt.MovingPlatforms = make([]MovingPlatformRuntime, len(bp.MovingPlatforms))
	for i, mp := range bp.MovingPlatforms {
		rt.MovingPlatforms[i] = MovingPlatformRuntime{
			AABB: mp.AABB, StartX: mp.StartX, EndX: mp.EndX, Speed: mp.Speed, Direction: 1,
		}
	}
	rt.FallingPlatforms = make([]FallingPlatformRuntime, len(bp.FallingPlatforms))
	for i, fp := range bp.FallingPlatforms {
		rt.FallingPlatforms[i] = FallingPlatformRuntime{AABB: fp.AABB, OriginalY: fp.Y}
	}
	return rt
}

// AdvancePlatforms steps moving and falling platforms for one tick.
func (rt *WorldRuntime) AdvancePlatforms(dtScale float64) {
	for i := range rt.MovingPlatforms {
		mp := &rt.MovingPlatforms[i]
		delta := mp.Speed * float64(mp.Direction) * dtScale
		mp.X += delta
		mp.DeltaX = delta
		if mp.X <= mp.StartX {
			mp.X = mp.StartX
			mp.Direction = 1
		} else if mp.X >= mp.EndX {
			mp.X = mp.EndX
			mp.Direction = -1
		}
	}
	for i := range rt.FallingPlatforms {
		fp := &rt.FallingPlatforms[i]
		if !fp.Falling {
			continue
		}
		fp.FallTimer++
		if fp.FallTimer > 30 {
			fp.Y += 8 * dtScale
		}
	}
}

// Collidables returns the set of boxes a player can stand on or bump into
// this tick: every static platform, every moving platform, and every
// falling platform that hasn't dropped past the fall-out threshold.
func (rt *WorldRuntime) Collidables() []AABB {
	out := make([]AABB, 0, len(rt.Platforms)+len(rt.MovingPlatforms)+len(rt.FallingPlatforms))
	out = append(out, rt.Platforms...)
	for _, mp := range rt.MovingPlatforms {
		out = append(out, mp.AABB)
	}
	for _, fp := range rt.FallingPlatforms {
		if fp.Y < rt.GroundY+300 {
			out = append(out, fp.AABB)
		}
	}
	return out
}

// fallingIndexForAABB returns the index in FallingPlatforms of the falling
// platform whose box equals box, or -1 if none does.
func (rt *WorldRuntime) fallingIndexForAABB(box AABB) int {
	for i, fp := range rt.FallingPlatforms {
		if fp.AABB == box {
			return i
		}
	}
	return -1
}

// SpawnPosition returns the spawn coordinates for a player slot (1-based):
// the top of whichever static platform spans that x column, falling back
// to the ground floor when the world has one.
func (rt *WorldRuntime) SpawnPosition(slot int) (x, y float64) {
	x = 100 * float64(slot)
	for _, p := range rt.Platforms {
		if x >= p.X && x <= p.Right() {
			return x, p.Y - playerHeight
		}
	}
	if rt.HasGlobalFloor {
		return x, rt.GroundY - playerHeight
	}
	return x, rt.GroundY - playerHeight
}
