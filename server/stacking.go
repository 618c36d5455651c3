package server

// ResolvePlayerStacking runs the player-vs-player pass described by the
// one-way stacking rule: each player resolves collisions against every
// other living player in turn, but only ever moves itself. This asymmetry
// is what prevents oscillation when both participants in a pair run their
// own resolution.
func ResolvePlayerStacking(players []*PlayerState, worldWidth float64) {
	for _, self := range players {
		if self.Dead {
			continue
		}
		for _, other := range players {
			if other == self || other.Dead {
				continue
			}
			resolvePair(self, other, worldWidth)
		}
	}
}

func resolvePair(self, other *PlayerState, worldWidth float64) {
	selfBox, otherBox := self.AABB(), other.AABB()
	if !Intersects(selfBox, otherBox) {
		return
	}

	penLeft := selfBox.Right() - otherBox.X
	penRight := otherBox.Right() - selfBox.X
	penTop := selfBox.Bottom() - otherBox.Y
	penBottom := otherBox.Bottom() - selfBox.Y

	minHoriz := minF(penLeft, penRight)
	minVert := minF(penTop, penBottom)

	if minHoriz < minVert {
		if penLeft < penRight {
			self.X -= penLeft
		} else {
			self.X += penRight
		}
		self.X = clampF(self.X, 0, worldWidth-playerWidth)
		self.VX = 0
		return
	}

	otherPrevBottom := other.PrevY + playerHeight
	selfPrevBottom := self.PrevY + playerHeight

	landing := self.VY >= 0 && self.Y < other.Y && selfPrevBottom <= other.Y+12 && selfBox.Bottom() >= other.Y
	underside := self.VY < 0 && self.PrevY >= otherPrevBottom-8 && self.Y <= otherBox.Bottom()

	switch {
	case underside:
		self.Y = otherBox.Bottom()
		self.VY = 0
	case landing, self.Y < other.Y:
		slot := other.Slot
		self.Y = other.Y - playerHeight
		self.VY = 0
		self.OnGround = true
		self.StandingOnPlayer = &slot
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
