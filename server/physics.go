package server

import "math"

// stepResult carries the side effects of a physics step that the caller
// (the room's tick handler) needs to act on but that don't belong inside
// PlayerState itself.
type stepResult struct {
	FellOut bool
}

// StepPlayer advances one player by one tick: input integration, horizontal
// motion and collision, vertical motion and collision, global floor,
// moving-platform carry, and the fall-out check. Player-vs-player
// resolution happens separately in stacking.go once every player has run
// this step.
func StepPlayer(p *PlayerState, in InputFrame, rt *WorldRuntime, dtScale float64) stepResult {
	if p.Dead {
		return stepResult{}
	}

	applyHorizontalIntent(p, in, rt, dtScale)

	if in.Jump && p.OnGround {
		p.VY = rt.Physics.JumpForce
		p.OnGround = false
	}

	collidables := rt.Collidables()

	stepHorizontal(p, rt, collidables, dtScale)
	stepVertical(p, rt, collidables, dtScale)

	if rt.HasGlobalFloor {
		applyGlobalFloor(p, rt)
	}

	applyMovingPlatformCarry(p, rt)

	if p.Y > rt.GroundY+300 {
		p.Dead = true
		return stepResult{FellOut: true}
	}
	return stepResult{}
}

func applyHorizontalIntent(p *PlayerState, in InputFrame, rt *WorldRuntime, dtScale float64) {
	switch {
	case in.Left:
		p.VX = -rt.Physics.MoveSpeed
		p.FacingRight = false
		p.AnimFrame = (p.AnimFrame + 1) % 4
	case in.Right:
		p.VX = rt.Physics.MoveSpeed
		p.FacingRight = true
		p.AnimFrame = (p.AnimFrame + 1) % 4
	default:
		if rt.StopOnRelease && p.OnGround {
			p.VX = 0
		} else {
			p.VX *= math.Pow(rt.Physics.Friction, dtScale)
			if math.Abs(p.VX) < 0.1 {
				p.VX = 0
			}
		}
		p.AnimFrame = 0
	}
}

func stepHorizontal(p *PlayerState, rt *WorldRuntime, collidables []AABB, dtScale float64) {
	movingRight := p.VX > 0
	p.X += p.VX * dtScale
	p.X = clampF(p.X, 0, rt.Width-playerWidth)

	box := p.AABB()
	for _, plat := range collidables {
		if !Intersects(box, plat) {
			continue
		}
		if movingRight {
			p.X = plat.X - playerWidth
		} else if p.VX < 0 {
			p.X = plat.Right()
		} else {
			continue
		}
		p.VX = 0
		break
	}
}

func stepVertical(p *PlayerState, rt *WorldRuntime, collidables []AABB, dtScale float64) {
	p.PrevY = p.Y
	prevBottom := p.PrevY + playerHeight

	p.VY += rt.Physics.Gravity * dtScale
	if p.VY > rt.Physics.MaxFallSpeed {
		p.VY = rt.Physics.MaxFallSpeed
	}
	p.Y += p.VY * dtScale
	p.OnGround = false

	for i, plat := range collidables {
		currBottom := p.Y + playerHeight
		landing := prevBottom <= plat.Y && currBottom >= plat.Y && p.VY >= 0
		underside := p.PrevY >= plat.Bottom() && p.Y <= plat.Bottom() && p.VY < 0

		if landing {
			p.Y = plat.Y - playerHeight
			p.VY = 0
			p.OnGround = true
			if idx := rt.fallingIndexForAABB(plat); idx >= 0 && !rt.FallingPlatforms[idx].Falling {
				rt.FallingPlatforms[idx].Falling = true
				rt.FallingPlatforms[idx].FallTimer = 0
			}
			_ = i
			break
		}
		if underside {
			p.Y = plat.Bottom()
			p.VY = 0
			break
		}
	}
}

func applyGlobalFloor(p *PlayerState, rt *WorldRuntime) {
	if p.Y+playerHeight > rt.GroundY {
		p.Y = rt.GroundY - playerHeight
		p.VY = 0
		p.OnGround = true
	}
}

func applyMovingPlatformCarry(p *PlayerState, rt *WorldRuntime) {
	if !p.OnGround {
		return
	}
	bottom := p.Y + playerHeight
	for _, mp := range rt.MovingPlatforms {
		withinBand := bottom >= mp.Y-8 && bottom <= mp.Y+10
		overlapsX := p.X < mp.Right() && p.X+playerWidth > mp.X
		if withinBand && overlapsX {
			p.X += mp.DeltaX
			p.X = clampF(p.X, 0, rt.Width-playerWidth)
			return
		}
	}
}
