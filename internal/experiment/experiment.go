// Package experiment runs the stress/isolation drift experiment over a profile.
//
// A run has three phases: the baseline profile, the stressed profile produced
// by applying a trigger, and the isolated profile produced once the trigger is
// withdrawn and energy partially recovers. Each phase is fingerprinted and its
// node-set drift from the baseline is measured.
package experiment

import (
	"github.com/starford/onto16/internal/models"
)

// Params are the numeric knobs of a run.
type Params struct {
	// DecayFactor multiplies energy for each applied trigger node.
	DecayFactor float64 `json:"decay_factor"`
	// RecoveryFactor multiplies energy when the trigger is withdrawn.
	RecoveryFactor float64 `json:"recovery_factor"`
	// IrreversibleThreshold is the final distance above which the run is irreversible.
	IrreversibleThreshold float64 `json:"irreversible_threshold"`
	// DecayPerNode applies DecayFactor once per node instead of once per trigger.
	DecayPerNode bool `json:"decay_per_node"`
}

// DefaultParams returns the reference experiment settings.
func DefaultParams() Params {
	return Params{
		DecayFactor:           0.85,
		RecoveryFactor:        1.1,
		IrreversibleThreshold: 0.62,
		DecayPerNode:          true,
	}
}

// BaseProfile returns the reference baseline: one rational, stable node.
func BaseProfile() models.Profile {
	return models.NewProfile([]models.Node{
		models.NewNode("base-n1", true, "действие должно быть безопасным", 0.9, []string{}),
	}, 1.0, 1)
}

// ApplyTrigger returns p with nodes appended, energy decayed and version bumped once.
func ApplyTrigger(p models.Profile, nodes []models.Node, params Params) models.Profile {
	energy := p.EnergyState
	decay := float32(params.DecayFactor)
	if params.DecayPerNode {
		for range nodes {
			energy *= decay
		}
	} else if len(nodes) > 0 {
		energy *= decay
	}

	return p.WithOverrides(
		models.WithAppendedNodes(nodes...),
		models.WithEnergyState(energy),
		models.WithVersion(p.Version+1),
	)
}

// Isolate returns p with only its energy scaled by the recovery factor.
func Isolate(p models.Profile, params Params) models.Profile {
	return p.WithOverrides(models.WithEnergyState(p.EnergyState * float32(params.RecoveryFactor)))
}
