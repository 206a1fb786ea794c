package processor

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/nci/dcstats/utils"
	"golang.org/x/net/context"
)

// StatRunner invokes one configured Statistic per chunk under a bounded
// concurrency limit. Outputs are optionally cached so re-dispatched chunks
// skip recomputation.
type StatRunner struct {
	Context     context.Context
	In          chan *StatChunk
	Out         chan *StatResult
	Error       chan error
	Stat        Statistic
	Product     string
	Concurrency int
	Cache       *utils.StatsCache

	metricsMu sync.Mutex
}

func NewStatRunner(ctx context.Context, stat Statistic, product string, concurrency int, cache *utils.StatsCache, errChan chan error) *StatRunner {
	if concurrency <= 0 {
		concurrency = utils.DefaultConcurrency
	}
	return &StatRunner{
		Context:     ctx,
		In:          make(chan *StatChunk, 100),
		Out:         make(chan *StatResult, 100),
		Error:       errChan,
		Stat:        stat,
		Product:     product,
		Concurrency: concurrency,
		Cache:       cache,
	}
}

func (sr *StatRunner) Run(verbose bool) {
	if verbose {
		defer log.Printf("Stat Runner done")
	}
	defer close(sr.Out)

	cLimiter := NewConcLimiter(sr.Concurrency)
	for chunk := range sr.In {
		select {
		case <-sr.Context.Done():
			sr.sendError(fmt.Errorf("Stat Runner: context has been cancel: %v", sr.Context.Err()))
			cLimiter.Wait()
			return
		default:
			cLimiter.Increase()
			go func(c *StatChunk, conc *ConcLimiter) {
				defer conc.Decrease()
				res, err := sr.computeChunk(c)
				if err != nil {
					sr.sendError(err)
					return
				}
				sr.Out <- res
			}(chunk, cLimiter)
		}
	}
	cLimiter.Wait()
}

func (sr *StatRunner) computeChunk(c *StatChunk) (*StatResult, error) {
	t0 := time.Now()

	var key string
	if sr.Cache != nil {
		key = chunkCacheKey(sr.Product, c)
		if blob, ok := sr.Cache.Get(key); ok {
			outputs, err := decodeOutputs(blob)
			if err == nil {
				sr.collectMetrics(c, t0, true)
				return &StatResult{Outputs: outputs, OffY: c.OffY, Height: c.Height, Width: c.Width}, nil
			}
		}
	}

	outputs, err := sr.Stat.Compute(c.Dataset)
	if err != nil {
		return nil, err
	}

	if sr.Cache != nil {
		if blob, err := encodeOutputs(outputs); err == nil {
			sr.Cache.Put(key, blob)
		}
	}

	sr.collectMetrics(c, t0, false)
	return &StatResult{Outputs: outputs, OffY: c.OffY, Height: c.Height, Width: c.Width}, nil
}

func (sr *StatRunner) collectMetrics(c *StatChunk, t0 time.Time, cacheHit bool) {
	if c.MetricsCollector == nil {
		return
	}
	var numCells int64
	var numBytes int64
	for _, tr := range c.Dataset.Bands {
		numCells += int64(len(tr.Data))
		numBytes += int64(len(tr.Data)) * 4
	}

	sr.metricsMu.Lock()
	info := c.MetricsCollector.Info.Compute
	info.Duration += time.Since(t0)
	info.NumChunks++
	info.NumCells += numCells
	info.BytesProcessed += numBytes
	if cacheHit {
		info.CacheHits++
	}
	sr.metricsMu.Unlock()
}

func (sr *StatRunner) sendError(err error) {
	select {
	case sr.Error <- err:
	default:
	}
}

// chunkCacheKey hashes the chunk identity: product, placement, CRS, band
// names, timestamps and the raw cell values.
func chunkCacheKey(product string, c *StatChunk) string {
	h := md5.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%s", product, c.OffY, c.Height, c.Width, c.Dataset.CRS)

	names := make([]string, 0, len(c.Dataset.Bands))
	for name := range c.Dataset.Bands {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := make([]byte, 8)
	for _, name := range names {
		tr := c.Dataset.Bands[name]
		fmt.Fprintf(h, "|%s", name)
		for _, ts := range tr.TimeStamps {
			binary.LittleEndian.PutUint64(buf, uint64(ts.UnixNano()))
			h.Write(buf)
		}
		for _, v := range tr.Data {
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
			h.Write(buf[:4])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encodeOutputs(outputs map[string]*Float32Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(outputs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeOutputs(blob []byte) (map[string]*Float32Raster, error) {
	var outputs map[string]*Float32Raster
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}
