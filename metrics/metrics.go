package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

// ComputeInfo accumulates over all chunks of one invocation.
type ComputeInfo struct {
	Duration       time.Duration `json:"duration"`
	NumChunks      int           `json:"num_chunks"`
	NumCells       int64         `json:"num_cells"`
	BytesProcessed int64         `json:"bytes_processed"`
	CacheHits      int           `json:"cache_hits"`
}

type StatsInfo struct {
	ReqTime     string        `json:"req_time"`
	ReqDuration time.Duration `json:"req_duration"`
	Product     string        `json:"product"`
	NumStats    int           `json:"num_stats"`
	Compute     *ComputeInfo  `json:"compute"`
}

type MetricsCollector struct {
	Info   *StatsInfo
	logger Logger
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info: &StatsInfo{
			Compute: &ComputeInfo{},
		},
		logger: logger,
	}
}

func (m *MetricsCollector) Log() {
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *StatsInfo) ToJSON() (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(i)
	if err == nil {
		return buf.String(), nil
	} else {
		return "", err
	}
}
