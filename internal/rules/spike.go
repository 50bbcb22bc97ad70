package rules

import "math"

// excludeSpikes removes single-month outliers from a monthly series: values
// beyond stdDevs standard deviations of the series are dropped. It returns
// the surviving values and the number excluded. Series too short for a
// meaningful deviation test pass through untouched.
func excludeSpikes(monthly []float64, stdDevs float64) ([]float64, int) {
	if len(monthly) < 3 || stdDevs <= 0 {
		return monthly, 0
	}

	m := mean(monthly)
	var sumSq float64
	for _, v := range monthly {
		d := v - m
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(len(monthly)))
	if sd == 0 {
		return monthly, 0
	}

	kept := make([]float64, 0, len(monthly))
	for _, v := range monthly {
		if math.Abs(v-m) > stdDevs*sd {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return monthly, 0
	}
	return kept, len(monthly) - len(kept)
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
