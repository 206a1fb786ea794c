package processor

import (
	"sync"
)

// ConcLimiter bounds the number of chunk computations in flight. Increase
// blocks once the pool is full; Wait blocks until every admitted worker has
// called Decrease.
type ConcLimiter struct {
	wg   sync.WaitGroup
	pool chan struct{}
}

func NewConcLimiter(concurrency int) *ConcLimiter {
	return &ConcLimiter{pool: make(chan struct{}, concurrency)}
}

func (c *ConcLimiter) Increase() {
	c.wg.Add(1)
	c.pool <- struct{}{}
}

func (c *ConcLimiter) Decrease() {
	select {
	case <-c.pool:
		c.wg.Done()
	default:
	}
}

func (c *ConcLimiter) Wait() {
	c.wg.Wait()
}
