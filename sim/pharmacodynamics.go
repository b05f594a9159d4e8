package sim

import "math"

// KillRate evaluates the Hill/Emax dose-response curve for one drug:
//
//	rate = KMax * C^h / (EC50^h + C^h) = KMax / (1 + (EC50/C)^h)
//
// The second form is evaluated so large C^h cannot overflow. A zero
// concentration yields a zero rate.
func KillRate(p DrugParams) float64 {
	if p.Concentration == 0 {
		return 0
	}
	return p.KMax / (1 + math.Pow(p.EC50/p.Concentration, p.Hill))
}

// MaxKillRate returns the largest single-drug rate among drugs.
// Active drugs do not add up: the most effective one dominates.
func MaxKillRate(drugs []DrugParams) float64 {
	best := 0.0
	for _, d := range drugs {
		if r := KillRate(d); r > best {
			best = r
		}
	}
	return best
}

// KillProbability converts a daily kill rate into a daily kill probability,
// p = 1 - exp(-rate), clamped to [0, 1].
func KillProbability(rate float64) float64 {
	if math.IsNaN(rate) {
		return 0
	}
	return clampProbability(1 - math.Exp(-rate))
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
