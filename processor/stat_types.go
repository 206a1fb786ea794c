package processor

import (
	"fmt"
	"time"

	"github.com/nci/dcstats/metrics"
)

// TimeRaster is one band as a time-stacked raster. Data holds
// len(TimeStamps) x Height x Width cells in time-major order.
type TimeRaster struct {
	Data          []float32
	TimeStamps    []time.Time
	Height, Width int
	NoData        float64
	NameSpace     string
}

func (tr *TimeRaster) GetNoData() float64 {
	return tr.NoData
}

// TimeSteps is derived from the cell count rather than the timestamp list
// so ad hoc rasters without timestamps still reduce correctly.
func (tr *TimeRaster) TimeSteps() int {
	nCells := tr.Height * tr.Width
	if nCells == 0 {
		return 0
	}
	return len(tr.Data) / nCells
}

// Dataset is the labeled band collection the orchestrator hands over for
// one data chunk, tagged with the chunk's coordinate reference system.
type Dataset struct {
	Bands map[string]*TimeRaster
	CRS   string
}

// Band looks up a named band. A missing band is the caller's configuration
// error and is reported by name.
func (d *Dataset) Band(name string) (*TimeRaster, error) {
	tr, ok := d.Bands[name]
	if !ok {
		return nil, fmt.Errorf("band '%s' not found in dataset", name)
	}
	return tr, nil
}

// Float32Raster is one 2-D output layer tagged with the CRS of the input
// dataset it was reduced from.
type Float32Raster struct {
	Data          []float32
	Height, Width int
	NoData        float64
	NameSpace     string
	CRS           string
}

func (f32 *Float32Raster) GetNoData() float64 {
	return f32.NoData
}

// StatRequest is one statistics invocation over a full product extent.
type StatRequest struct {
	Product          string
	Dataset          *Dataset
	MetricsCollector *metrics.MetricsCollector
}

// StatChunk is a row slab of a StatRequest's dataset.
type StatChunk struct {
	Dataset          *Dataset
	OffY             int
	Height, Width    int
	MetricsCollector *metrics.MetricsCollector
}

// StatResult carries the output layers of one chunk plus its placement in
// the full extent.
type StatResult struct {
	Outputs       map[string]*Float32Raster
	OffY          int
	Height, Width int
}

// StatOutput is the merged result of one invocation: the full product
// layers and a CSV summary of them.
type StatOutput struct {
	Layers  map[string]*Float32Raster
	Summary string
}
