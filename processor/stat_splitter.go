package processor

import (
	"fmt"
)

// ChunkSplitter splits a statistics request into row slabs so independent
// chunks can be computed concurrently downstream.
type ChunkSplitter struct {
	In           chan *StatRequest
	Out          chan *StatChunk
	Error        chan error
	RowsPerChunk int
}

func NewChunkSplitter(rowsPerChunk int, errChan chan error) *ChunkSplitter {
	return &ChunkSplitter{
		In:           make(chan *StatRequest, 100),
		Out:          make(chan *StatChunk, 100),
		Error:        errChan,
		RowsPerChunk: rowsPerChunk,
	}
}

func (cs *ChunkSplitter) Run() {
	defer close(cs.Out)
	for statReq := range cs.In {
		height, width, err := datasetShape(statReq.Dataset)
		if err != nil {
			cs.sendError(err)
			continue
		}

		step := cs.RowsPerChunk
		if step <= 0 || step > height {
			step = height
		}

		for r0 := 0; r0 < height; r0 += step {
			r1 := r0 + step
			if r1 > height {
				r1 = height
			}

			chunk := &Dataset{Bands: make(map[string]*TimeRaster, len(statReq.Dataset.Bands)), CRS: statReq.Dataset.CRS}
			for name, tr := range statReq.Dataset.Bands {
				chunk.Bands[name] = sliceRows(tr, r0, r1)
			}

			cs.Out <- &StatChunk{
				Dataset:          chunk,
				OffY:             r0,
				Height:           r1 - r0,
				Width:            width,
				MetricsCollector: statReq.MetricsCollector,
			}
		}
	}
}

func (cs *ChunkSplitter) sendError(err error) {
	select {
	case cs.Error <- err:
	default:
	}
}

// datasetShape returns the shared spatial shape of all bands.
func datasetShape(ds *Dataset) (int, int, error) {
	if ds == nil || len(ds.Bands) == 0 {
		return 0, 0, fmt.Errorf("dataset has no bands")
	}

	height, width := -1, -1
	for name, tr := range ds.Bands {
		if height < 0 {
			height, width = tr.Height, tr.Width
			continue
		}
		if tr.Height != height || tr.Width != width {
			return 0, 0, fmt.Errorf("band '%s' spatial shape (%dx%d) differs from (%dx%d)", name, tr.Height, tr.Width, height, width)
		}
	}
	return height, width, nil
}

// sliceRows copies rows [r0, r1) of every time step into a new raster.
// Inputs are never aliased so chunks stay independent.
func sliceRows(tr *TimeRaster, r0, r1 int) *TimeRaster {
	nSteps := tr.TimeSteps()
	nRows := r1 - r0
	out := &TimeRaster{
		Data:       make([]float32, nSteps*nRows*tr.Width),
		TimeStamps: tr.TimeStamps,
		Height:     nRows,
		Width:      tr.Width,
		NoData:     tr.NoData,
		NameSpace:  tr.NameSpace,
	}

	for t := 0; t < nSteps; t++ {
		src := tr.Data[t*tr.Height*tr.Width : (t+1)*tr.Height*tr.Width]
		dst := out.Data[t*nRows*tr.Width : (t+1)*nRows*tr.Width]
		copy(dst, src[r0*tr.Width:r1*tr.Width])
	}
	return out
}
