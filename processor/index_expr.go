package processor

import (
	"fmt"
	"math"

	"github.com/nci/dcstats/utils"
)

// IndexStatistic generalizes Brightness to an arbitrary per-cell band
// expression. The expression and the statistic names are validated at
// construction; evaluation failures at compute time can only come from
// the data itself.
type IndexStatistic struct {
	Name string

	bandExpr *utils.BandExpressions
	stats    []Stat
}

func NewIndexStatistic(expression, name string, stats []string) (*IndexStatistic, error) {
	parsed, err := ParseStats(stats)
	if err != nil {
		return nil, err
	}

	bandExpr, err := utils.ParseBandExpressions([]string{expression})
	if err != nil {
		return nil, err
	}
	if len(bandExpr.Expressions) != 1 {
		return nil, fmt.Errorf("expected a single index expression, found %d", len(bandExpr.Expressions))
	}

	return &IndexStatistic{
		Name:     name,
		bandExpr: bandExpr,
		stats:    parsed,
	}, nil
}

func (s *IndexStatistic) Compute(ds *Dataset) (map[string]*Float32Raster, error) {
	varList := s.bandExpr.VarList
	rasters := make([]*TimeRaster, len(varList))
	for i, name := range varList {
		tr, err := ds.Band(name)
		if err != nil {
			return nil, err
		}
		rasters[i] = tr
	}
	if len(rasters) == 0 {
		return nil, fmt.Errorf("index expression '%s' references no bands", s.bandExpr.ExprText[0])
	}

	base := rasters[0]
	for i, tr := range rasters[1:] {
		if tr.Height != base.Height || tr.Width != base.Width || len(tr.Data) != len(base.Data) {
			return nil, fmt.Errorf("band '%s' shape (%dx%dx%d) does not match band '%s' shape (%dx%dx%d)",
				varList[i+1], tr.TimeSteps(), tr.Height, tr.Width,
				varList[0], base.TimeSteps(), base.Height, base.Width)
		}
	}

	nd := &TimeRaster{
		Data:       make([]float32, len(base.Data)),
		TimeStamps: base.TimeStamps,
		Height:     base.Height,
		Width:      base.Width,
		NoData:     nan64,
		NameSpace:  s.Name,
	}

	nan := float32(math.NaN())
	parameters := make(map[string]interface{}, len(varList))
	for i := range nd.Data {
		missing := false
		for iv, name := range varList {
			v := cellValue(rasters[iv], i)
			if math.IsNaN(v) {
				missing = true
				break
			}
			parameters[name] = v
		}
		if missing {
			nd.Data[i] = nan
			continue
		}

		val, err := s.bandExpr.EvalFloat64(0, parameters)
		if err != nil {
			return nil, err
		}
		nd.Data[i] = float32(val)
	}

	return reduceAll(nd, s.stats, s.Name, ds.CRS), nil
}

func (s *IndexStatistic) Measurements(inputMeasurements []utils.Measurement) []utils.Measurement {
	return statMeasurements(s.Name, s.stats)
}
