package processor

import (
	"fmt"

	"github.com/nci/dcstats/utils"
)

// Statistic is the contract between the orchestrating framework and a
// statistics plugin. Measurements declares the output layers ahead of
// execution so the framework can allocate storage; Compute produces
// exactly those layers for one data chunk. Implementations hold no
// mutable state after construction and are safe for concurrent Compute
// calls on independent chunks.
type Statistic interface {
	Compute(ds *Dataset) (map[string]*Float32Raster, error)
	Measurements(inputMeasurements []utils.Measurement) []utils.Measurement
}

// NewStatisticFromProduct builds the Statistic a product configuration
// describes: the four-band brightness index, or an expression-based index
// when the product carries a band expression.
func NewStatisticFromProduct(p *utils.StatProduct) (Statistic, error) {
	if len(p.Expression) > 0 {
		return NewIndexStatistic(p.Expression, p.OutputName, p.Stats)
	}
	if len(p.Bands) != 4 {
		return nil, fmt.Errorf("product '%s': expected 4 bands, found %d", p.Name, len(p.Bands))
	}
	return NewBrightness(p.Bands[0], p.Bands[1], p.Bands[2], p.Bands[3], p.OutputName, p.Stats)
}

func statMeasurements(prefix string, stats []Stat) []utils.Measurement {
	measurements := make([]utils.Measurement, len(stats))
	for i, stat := range stats {
		measurements[i] = utils.Measurement{
			Name:   prefix + "_" + stat.String(),
			DType:  utils.Float32DType,
			NoData: nan64,
			Units:  utils.DimensionlessUnits,
		}
	}
	return measurements
}

func reduceAll(nd *TimeRaster, stats []Stat, prefix, crs string) map[string]*Float32Raster {
	outputs := make(map[string]*Float32Raster, len(stats))
	for _, stat := range stats {
		layer := stat.Reduce(nd)
		layer.NameSpace = prefix + "_" + stat.String()
		layer.CRS = crs
		outputs[layer.NameSpace] = layer
	}
	return outputs
}
