package utils

// Float32DType is the dtype string declared for all derived-index outputs.
const Float32DType = "float32"

// DimensionlessUnits is the unit string for index values.
const DimensionlessUnits = "1"

// Measurement describes one output raster layer so the orchestrating
// framework can allocate storage before compute is invoked.
type Measurement struct {
	Name   string
	DType  string
	NoData float64
	Units  string
}
