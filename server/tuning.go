package server

import (
	"os"

	"gopkg.in/yaml.v3"
)

// tuningFile is the optional on-disk override for compiled-in physics and
// timing constants, loaded once at boot from config.TuningPath. Grounded on
// the pack's own yaml.v3-based tuning file pattern; absence of the file, or
// of any individual key, falls back to the compiled default.
type tuningFile struct {
	TickRateHz        *int                     `yaml:"tick_rate_hz"`
	RespawnDelayMs    *int                     `yaml:"respawn_delay_ms"`
	DisconnectGraceMs *int                     `yaml:"disconnect_grace_ms"`
	Worlds            map[int]tuningPhysicsRaw `yaml:"worlds"`
}

type tuningPhysicsRaw struct {
	Gravity      *float64 `yaml:"gravity"`
	MoveSpeed    *float64 `yaml:"move_speed"`
	JumpForce    *float64 `yaml:"jump_force"`
	MaxFallSpeed *float64 `yaml:"max_fall_speed"`
	Friction     *float64 `yaml:"friction"`
}

// activeTuning holds the parsed overrides in effect for the process, keyed
// by world id. An empty activeTuning (the zero value) means every world
// uses its compiled default, which is also what LoadTuning("") produces.
type tuningState struct {
	physics           map[int]PhysicsConstants
	tickRateHz        int
	respawnDelayMs    int
	disconnectGraceMs int
}

var activeTuning = tuningState{physics: map[int]PhysicsConstants{}}

// LoadTuning reads path (if non-empty and present) and installs any
// overrides it contains as the process-wide tuning in effect. Missing file,
// empty path, or a key absent from the file all silently keep the compiled
// default for that value.
func LoadTuning(path string) error {
	activeTuning = tuningState{physics: map[int]PhysicsConstants{}}
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var tf tuningFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return err
	}

	if tf.TickRateHz != nil {
		activeTuning.tickRateHz = *tf.TickRateHz
	}
	if tf.RespawnDelayMs != nil {
		activeTuning.respawnDelayMs = *tf.RespawnDelayMs
	}
	if tf.DisconnectGraceMs != nil {
		activeTuning.disconnectGraceMs = *tf.DisconnectGraceMs
	}
	for worldID, raw := range tf.Worlds {
		base, ok := defaultPhysicsByWorld[worldID]
		if !ok {
			continue
		}
		if raw.Gravity != nil {
			base.Gravity = *raw.Gravity
		}
		if raw.MoveSpeed != nil {
			base.MoveSpeed = *raw.MoveSpeed
		}
		if raw.JumpForce != nil {
			base.JumpForce = *raw.JumpForce
		}
		if raw.MaxFallSpeed != nil {
			base.MaxFallSpeed = *raw.MaxFallSpeed
		}
		if raw.Friction != nil {
			base.Friction = *raw.Friction
		}
		activeTuning.physics[worldID] = base
	}
	return nil
}
