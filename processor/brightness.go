package processor

import (
	"fmt"
	"math"

	"github.com/nci/dcstats/utils"
)

var nan64 = math.NaN()

// Brightness computes summary statistics on a 4 band brightness index:
//
//	sqrt(band1^2 + band2^2 + band3^2 + band4^2)
//
// The index is reduced over the time axis once per configured statistic
// and returned as named output layers.
type Brightness struct {
	Band1 string
	Band2 string
	Band3 string
	Band4 string
	Name  string

	stats []Stat
}

// NewBrightness validates the statistic names up front so a misconfigured
// product fails before any data is dispatched to it.
func NewBrightness(band1, band2, band3, band4, name string, stats []string) (*Brightness, error) {
	parsed, err := ParseStats(stats)
	if err != nil {
		return nil, err
	}
	return &Brightness{
		Band1: band1,
		Band2: band2,
		Band3: band3,
		Band4: band4,
		Name:  name,
		stats: parsed,
	}, nil
}

func (b *Brightness) bandNames() []string {
	return []string{b.Band1, b.Band2, b.Band3, b.Band4}
}

func (b *Brightness) Compute(ds *Dataset) (map[string]*Float32Raster, error) {
	rasters := make([]*TimeRaster, 4)
	for i, name := range b.bandNames() {
		tr, err := ds.Band(name)
		if err != nil {
			return nil, err
		}
		rasters[i] = tr
	}

	base := rasters[0]
	for i, tr := range rasters[1:] {
		if tr.Height != base.Height || tr.Width != base.Width || len(tr.Data) != len(base.Data) {
			return nil, fmt.Errorf("band '%s' shape (%dx%dx%d) does not match band '%s' shape (%dx%dx%d)",
				b.bandNames()[i+1], tr.TimeSteps(), tr.Height, tr.Width,
				b.Band1, base.TimeSteps(), base.Height, base.Width)
		}
	}

	nd := &TimeRaster{
		Data:       make([]float32, len(base.Data)),
		TimeStamps: base.TimeStamps,
		Height:     base.Height,
		Width:      base.Width,
		NoData:     nan64,
		NameSpace:  b.Name,
	}

	for i := range nd.Data {
		v1 := cellValue(rasters[0], i)
		v2 := cellValue(rasters[1], i)
		v3 := cellValue(rasters[2], i)
		v4 := cellValue(rasters[3], i)
		nd.Data[i] = float32(math.Sqrt(v1*v1 + v2*v2 + v3*v3 + v4*v4))
	}

	return reduceAll(nd, b.stats, b.Name, ds.CRS), nil
}

func (b *Brightness) Measurements(inputMeasurements []utils.Measurement) []utils.Measurement {
	return statMeasurements(b.Name, b.stats)
}

// cellValue reads one cell as float64 with the band's nodata mapped to NaN
// so downstream reductions treat it as a missing sample.
func cellValue(tr *TimeRaster, i int) float64 {
	v := float64(tr.Data[i])
	if !math.IsNaN(tr.NoData) && v == tr.NoData {
		return nan64
	}
	return v
}
