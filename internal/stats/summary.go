// Package stats condenses simulation traces into per-population series and
// summary figures for reporting.
package stats

import "allopatry/internal/model"

// Series is the distance history of one population across generations.
type Series struct {
	Label       string
	Generations []int
	Means       []float64
}

// Final returns the last recorded mean distance, or 0 for an empty series.
func (s Series) Final() float64 {
	if len(s.Means) == 0 {
		return 0
	}
	return s.Means[len(s.Means)-1]
}

// Max returns the largest recorded mean distance.
func (s Series) Max() float64 {
	max := 0.0
	for _, v := range s.Means {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean returns the average of the recorded mean distances.
func (s Series) Mean() float64 {
	if len(s.Means) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range s.Means {
		total += v
	}
	return total / float64(len(s.Means))
}

// BySeries groups a flattened distance history into one series per
// population, in first-seen order.
func BySeries(samples []model.DistanceSample) []Series {
	index := map[string]int{}
	var series []Series
	for _, sample := range samples {
		i, ok := index[sample.Population]
		if !ok {
			i = len(series)
			index[sample.Population] = i
			series = append(series, Series{Label: sample.Population})
		}
		series[i].Generations = append(series[i].Generations, sample.Generation)
		series[i].Means = append(series[i].Means, sample.Mean)
	}
	return series
}

// FinalDistances maps each population label to its last mean distance.
func FinalDistances(samples []model.DistanceSample) map[string]float64 {
	final := map[string]float64{}
	for _, sample := range samples {
		final[sample.Population] = sample.Mean
	}
	return final
}
