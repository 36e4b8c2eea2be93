package engine

// Factor is one weighted component of a score. Default is substituted when
// the input field is absent; Transform, when set, is applied to the raw
// value before weighting (e.g. inverting "age in years" into a freshness
// score).
type Factor struct {
	Name      string
	Weight    float64
	Default   float64
	Transform func(float64) float64
}

// WeightTable aggregates weighted factors into a single clamped score.
type WeightTable struct {
	Factors []Factor
	Min     float64
	Max     float64
}

// Table builds a WeightTable with the conventional [0,100] range.
func Table(factors ...Factor) WeightTable {
	return WeightTable{Factors: factors, Min: 0, Max: 100}
}

// WithRange overrides the clamp range, e.g. [0,1] for probability scores.
func (t WeightTable) WithRange(min, max float64) WeightTable {
	t.Min = min
	t.Max = max
	return t
}

// Score computes sum(transform(value_i) * weight_i) clamped to the table's
// range. Missing fields fall back to their factor default; a malformed value
// surfaces as a *TypeError.
func (t WeightTable) Score(in Input) (float64, error) {
	var total float64
	for _, f := range t.Factors {
		v, err := in.Number(f.Name, f.Default)
		if err != nil {
			return 0, err
		}
		if f.Transform != nil {
			v = f.Transform(v)
		}
		total += v * f.Weight
	}
	return Clamp(total, t.Min, t.Max), nil
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Mean averages values, returning 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
