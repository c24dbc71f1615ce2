package batch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/maze3d/internal/maze/solve"
)

// Summary describes one metric over the successful iterations.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Stats summarises the successful iterations of a run.
type Stats struct {
	Distance      Summary
	ReachableOpen Summary
	BraidOpened   Summary
	Tiers         map[solve.Tier]int
}

func computeStats(outcomes []Outcome) Stats {
	var dist, reach, braid []float64
	tiers := map[solve.Tier]int{}
	for _, o := range outcomes {
		if !o.OK {
			continue
		}
		dist = append(dist, float64(o.Distance))
		reach = append(reach, float64(o.ReachableOpen))
		braid = append(braid, float64(o.BraidOpened))
		tiers[o.Tier]++
	}
	return Stats{
		Distance:      summarise(dist),
		ReachableOpen: summarise(reach),
		BraidOpened:   summarise(braid),
		Tiers:         tiers,
	}
}

// summarise returns zero values for an empty sample and a zero deviation for
// a single value.
func summarise(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	return s
}

// Distances returns the goal distance of every successful iteration in
// iteration order.
func (r *Report) Distances() []float64 {
	out := make([]float64, 0, r.OK)
	for _, o := range r.Iterations {
		if o.OK {
			out = append(out, float64(o.Distance))
		}
	}
	return out
}
