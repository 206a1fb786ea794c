package processor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/nci/dcstats/metrics"
	"github.com/nci/dcstats/utils"
)

const summaryTemplateName = "stats_csv.tpl"

// StatService owns the per-deployment resources a statistics invocation
// needs: the chunk cache, the summary template and the metrics logger, all
// built from the loaded service configuration.
type StatService struct {
	Pipeline         *StatPipeline
	TemplateFileName string
	Logger           metrics.Logger
}

func NewStatService(ctx context.Context, svcConfig *utils.ServiceConfig, verbose bool, errChan chan error) *StatService {
	cache := utils.NewStatsCache(svcConfig.MemcacheURI, verbose)

	templateFileName := ""
	if len(svcConfig.TemplateRoot) > 0 {
		templateFileName = filepath.Join(svcConfig.TemplateRoot, summaryTemplateName)
	}

	var logger metrics.Logger
	if len(svcConfig.MetricsLogDir) > 0 {
		logger = metrics.NewFileLogger(svcConfig.MetricsLogDir, 0, 0, verbose)
	} else {
		logger = metrics.NewStdoutLogger()
	}

	return &StatService{
		Pipeline:         InitStatPipeline(ctx, cache, errChan),
		TemplateFileName: templateFileName,
		Logger:           logger,
	}
}

// Process runs one product invocation end to end and logs its metrics once
// the output has been delivered.
func (s *StatService) Process(statReq *StatRequest, product *utils.StatProduct, verbose bool) (chan *StatOutput, error) {
	stat, err := NewStatisticFromProduct(product)
	if err != nil {
		return nil, err
	}

	if statReq.MetricsCollector == nil {
		statReq.MetricsCollector = metrics.NewMetricsCollector(s.Logger)
	}
	collector := statReq.MetricsCollector

	t0 := time.Now()
	out := s.Pipeline.Process(statReq, stat, product.RowsPerChunk, product.Concurrency, s.TemplateFileName, verbose)

	result := make(chan *StatOutput)
	go func() {
		defer close(result)
		for output := range out {
			result <- output
		}
		collector.Info.ReqDuration = time.Since(t0)
		collector.Log()
	}()
	return result, nil
}
