package opt

import (
	"fmt"
	"math"
)

// deriveWeights resolves the objective weight vector for a composition.
//
// Explicit weights are validated and passed through: the vector must have
// one entry per application and every entry must lie in [0, 1]. When no
// weights are given they are derived from traffic volumes so that
// lower-volume applications weigh more: w_i = 1 - v_i / sum(v). With a
// single application, or when no application carries volume, the derivation
// degenerates and every application gets weight 1/n instead.
func deriveWeights(apps []*Application, explicit []float64) ([]float64, error) {
	n := len(apps)
	if explicit != nil {
		if len(explicit) != n {
			return nil, fmt.Errorf("%w: got %d weights for %d applications", ErrValidation, len(explicit), n)
		}
		for i, w := range explicit {
			if math.IsNaN(w) || w < 0 || w > 1 {
				return nil, fmt.Errorf("%w: weight[%d] = %v outside [0, 1]", ErrValidation, i, w)
			}
		}
		out := make([]float64, n)
		copy(out, explicit)
		return out, nil
	}

	volumes := make([]float64, n)
	total := 0.0
	for i, app := range apps {
		volumes[i] = app.Volume()
		total += volumes[i]
	}
	weights := make([]float64, n)
	if total == 0 || n == 1 {
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
		return weights, nil
	}
	for i, v := range volumes {
		weights[i] = 1 - v/total
	}
	return weights, nil
}
