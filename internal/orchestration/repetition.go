package orchestration

import "github.com/modelbench/modelbench/internal/models"

// Baseline repeat counts. Positive-temperature configurations sample, so
// more repeats are needed to average the noise; deterministic
// configurations only need enough repeats to detect divergence.
const (
	SamplingRepeats    = 5
	DeterminismRepeats = 2
)

// PlanRepeats derives the repeat policy for one configuration. An override
// above zero replaces the count but never the kind: a deterministic
// configuration forced to 10 repeats still gets the divergence check.
func PlanRepeats(cfg models.ConfigSpec, override int) models.RepeatPolicy {
	policy := models.RepeatPolicy{Kind: models.RepeatSampling, Count: SamplingRepeats}
	if cfg.Deterministic() {
		policy = models.RepeatPolicy{Kind: models.RepeatDeterminism, Count: DeterminismRepeats}
	}
	if override > 0 {
		policy.Count = override
	}
	return policy
}
