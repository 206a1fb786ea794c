package processor

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/nci/dcstats/utils"
)

// StatMerger reassembles chunk outputs into full product layers and
// renders the CSV layer summary.
type StatMerger struct {
	Context context.Context
	In      chan *StatResult
	Out     chan *StatOutput
	Error   chan error
}

func NewStatMerger(ctx context.Context, errChan chan error) *StatMerger {
	return &StatMerger{
		Context: ctx,
		In:      make(chan *StatResult, 100),
		Out:     make(chan *StatOutput),
		Error:   errChan,
	}
}

func (sm *StatMerger) Run(height, width int, crs string, templateFileName string, verbose bool) {
	if verbose {
		defer log.Printf("Stat Merger done")
	}
	defer close(sm.Out)

	nan := float32(math.NaN())
	layers := make(map[string]*Float32Raster)

	for res := range sm.In {
		if res.OffY < 0 || res.OffY+res.Height > height || res.Width != width {
			sm.sendError(fmt.Errorf("Stat Merger: chunk at row %d (%dx%d) out of bounds for %dx%d", res.OffY, res.Height, res.Width, height, width))
			return
		}

		for name, chunkLayer := range res.Outputs {
			layer, ok := layers[name]
			if !ok {
				layer = &Float32Raster{
					Data:      make([]float32, height*width),
					Height:    height,
					Width:     width,
					NoData:    chunkLayer.NoData,
					NameSpace: name,
					CRS:       crs,
				}
				for i := range layer.Data {
					layer.Data[i] = nan
				}
				layers[name] = layer
			}

			for r := 0; r < res.Height; r++ {
				copy(layer.Data[(res.OffY+r)*width:(res.OffY+r+1)*width], chunkLayer.Data[r*width:(r+1)*width])
			}
		}
	}
	if len(layers) == 0 {
		return
	}

	var names []string
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)

	var csv strings.Builder
	for _, name := range names {
		count := 0
		var minVal, maxVal float64
		total := 0.0
		for _, v := range layers[name].Data {
			if v != v {
				continue
			}
			val := float64(v)
			if count == 0 {
				minVal, maxVal = val, val
			} else {
				if val < minVal {
					minVal = val
				}
				if val > maxVal {
					maxVal = val
				}
			}
			total += val
			count++
		}

		fmt.Fprintf(&csv, "%s,%d", name, count)
		if count > 0 {
			fmt.Fprintf(&csv, ",%f,%f,%f", minVal, maxVal, total/float64(count))
		} else {
			fmt.Fprint(&csv, ",,,")
		}
		fmt.Fprint(&csv, "\n")
	}

	summary := csv.String()
	if len(templateFileName) > 0 {
		var out strings.Builder
		err := utils.ExecuteWriteTemplateFile(&out, csv.String(), templateFileName)
		if err != nil {
			sm.sendError(fmt.Errorf("Stat Merger: output template error: %v", err))
			return
		}
		summary = out.String()
	}

	if sm.checkCancellation() {
		return
	}
	sm.Out <- &StatOutput{Layers: layers, Summary: summary}
}

func (sm *StatMerger) sendError(err error) {
	select {
	case sm.Error <- err:
	default:
	}
}

func (sm *StatMerger) checkCancellation() bool {
	select {
	case <-sm.Context.Done():
		sm.sendError(fmt.Errorf("Stat Merger: context has been cancel: %v", sm.Context.Err()))
		return true
	default:
		return false
	}
}
