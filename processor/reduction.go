package processor

import (
	"fmt"
	"math"
)

// Stat enumerates the supported time-axis reductions. Statistic names are
// resolved once, at configuration time, so an unknown name can never reach
// compute.
type Stat int

const (
	StatMin Stat = iota
	StatMax
	StatMean
)

var statNames = map[Stat]string{
	StatMin:  "min",
	StatMax:  "max",
	StatMean: "mean",
}

var statLookup = map[string]Stat{
	"min":  StatMin,
	"max":  StatMax,
	"mean": StatMean,
}

func (s Stat) String() string {
	return statNames[s]
}

// DefaultStats are applied when a product names no statistics.
var DefaultStats = []string{"min", "max", "mean"}

// ParseStats resolves statistic names to their reduction, rejecting
// unknown names. An empty list selects DefaultStats.
func ParseStats(names []string) ([]Stat, error) {
	if len(names) == 0 {
		names = DefaultStats
	}

	stats := make([]Stat, len(names))
	for i, name := range names {
		stat, ok := statLookup[name]
		if !ok {
			return nil, fmt.Errorf("unknown statistic: '%v'", name)
		}
		stats[i] = stat
	}
	return stats, nil
}

// Reduce collapses the time axis of tr into a 2-D layer. NaN cells are
// treated as missing samples; a cell is NaN only when every time step is
// missing.
func (s Stat) Reduce(tr *TimeRaster) *Float32Raster {
	nCells := tr.Height * tr.Width
	nSteps := tr.TimeSteps()
	nan := float32(math.NaN())

	out := &Float32Raster{
		Data:   make([]float32, nCells),
		Height: tr.Height,
		Width:  tr.Width,
		NoData: math.NaN(),
	}

	for i := 0; i < nCells; i++ {
		count := 0
		var minVal, maxVal float32
		var sum float64
		for t := 0; t < nSteps; t++ {
			v := tr.Data[t*nCells+i]
			if v != v {
				continue
			}
			if count == 0 {
				minVal, maxVal = v, v
			} else {
				if v < minVal {
					minVal = v
				}
				if v > maxVal {
					maxVal = v
				}
			}
			sum += float64(v)
			count++
		}

		if count == 0 {
			out.Data[i] = nan
			continue
		}

		switch s {
		case StatMin:
			out.Data[i] = minVal
		case StatMax:
			out.Data[i] = maxVal
		case StatMean:
			out.Data[i] = float32(sum / float64(count))
		}
	}

	return out
}
