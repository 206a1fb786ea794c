package processor

import (
	"context"
	"time"

	"github.com/nci/dcstats/utils"
)

// StatPipeline wires splitter, runner and merger for one statistics
// invocation. The orchestrator owns request scheduling; the pipeline only
// spans a single request.
type StatPipeline struct {
	Context context.Context
	Error   chan error
	Cache   *utils.StatsCache
}

func InitStatPipeline(ctx context.Context, cache *utils.StatsCache, errChan chan error) *StatPipeline {
	return &StatPipeline{
		Context: ctx,
		Error:   errChan,
		Cache:   cache,
	}
}

func (sp *StatPipeline) Process(statReq *StatRequest, stat Statistic, rowsPerChunk, concurrency int, templateFileName string, verbose bool) chan *StatOutput {
	height, width, err := datasetShape(statReq.Dataset)
	if err != nil {
		select {
		case sp.Error <- err:
		default:
		}
		out := make(chan *StatOutput)
		close(out)
		return out
	}

	if statReq.MetricsCollector != nil {
		statReq.MetricsCollector.Info.ReqTime = time.Now().Format(utils.ISOFormat)
		statReq.MetricsCollector.Info.Product = statReq.Product
		statReq.MetricsCollector.Info.NumStats = len(stat.Measurements(nil))
	}

	splt := NewChunkSplitter(rowsPerChunk, sp.Error)
	go func() {
		splt.In <- statReq
		close(splt.In)
	}()

	runner := NewStatRunner(sp.Context, stat, statReq.Product, concurrency, sp.Cache, sp.Error)
	merger := NewStatMerger(sp.Context, sp.Error)

	runner.In = splt.Out
	merger.In = runner.Out

	go splt.Run()
	go runner.Run(verbose)
	go merger.Run(height, width, statReq.Dataset.CRS, templateFileName, verbose)

	return merger.Out
}
