package engine

import "sort"

// Band maps an inclusive lower bound to a label.
type Band struct {
	Threshold float64
	Label     string
}

// Scale is an ordered set of classification bands. Bands are evaluated
// high-to-low and a score meeting or exceeding a threshold takes that
// band's label, so ties at an exact boundary resolve to the higher band.
type Scale struct {
	bands    []Band
	fallback string
}

// NewScale builds a Scale. The fallback label applies below every band.
// Bands may be given in any order; they are kept sorted descending.
func NewScale(fallback string, bands ...Band) Scale {
	sorted := append([]Band(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold > sorted[j].Threshold
	})
	return Scale{bands: sorted, fallback: fallback}
}

// Classify returns the label for score.
func (s Scale) Classify(score float64) string {
	for _, b := range s.bands {
		if score >= b.Threshold {
			return b.Label
		}
	}
	return s.fallback
}

// Rank returns the severity order of a label: 0 for the fallback, counting
// up toward the highest band. Unknown labels rank -1.
func (s Scale) Rank(label string) int {
	if label == s.fallback {
		return 0
	}
	for i, b := range s.bands {
		if b.Label == label {
			return len(s.bands) - i
		}
	}
	return -1
}

// Labels lists every label from highest band to fallback.
func (s Scale) Labels() []string {
	out := make([]string, 0, len(s.bands)+1)
	for _, b := range s.bands {
		out = append(out, b.Label)
	}
	return append(out, s.fallback)
}
