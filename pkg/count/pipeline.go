package count

import (
	"fmt"
	"sync"

	"github.com/seqstats/exoncount/pkg/regions"
)

// Source is a pull-based stream of alignment records. Next returns false
// when the stream is exhausted or broken; Err distinguishes the two.
type Source interface {
	Next() (Record, bool)
	Err() error
}

// Run classifies every record from src in a single forward pass and
// returns the accumulated totals. A source error is fatal: no partial
// totals are returned, since counts from a corrupted stream are
// misleading.
func Run(src Source, idx *regions.Index, cfg FilterConfig) (Counters, error) {
	var totals Counters
	for {
		rec, ok := src.Next()
		if !ok {
			break
		}
		totals.Record(Classify(rec, idx, cfg))
	}
	if err := src.Err(); err != nil {
		return Counters{}, fmt.Errorf("failed to read alignment stream: %w", err)
	}
	return totals, nil
}

// Record batches keep channel traffic low relative to per-record work.
const batchSize = 4096

// RunParallel distributes classification over workers goroutines. The
// source is still consumed by a single goroutine, in order; workers keep
// private Counters that are summed at the end, so the result is identical
// to Run. workers <= 1 falls back to the sequential pass.
func RunParallel(src Source, idx *regions.Index, cfg FilterConfig, workers int) (Counters, error) {
	if workers <= 1 {
		return Run(src, idx, cfg)
	}

	batches := make(chan []Record, workers*2)
	partials := make(chan Counters, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var totals Counters
			for batch := range batches {
				for _, rec := range batch {
					totals.Record(Classify(rec, idx, cfg))
				}
			}
			partials <- totals
		}()
	}

	batch := make([]Record, 0, batchSize)
	for {
		rec, ok := src.Next()
		if !ok {
			break
		}
		batch = append(batch, rec)
		if len(batch) == batchSize {
			batches <- batch
			batch = make([]Record, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		batches <- batch
	}
	close(batches)
	wg.Wait()
	close(partials)

	if err := src.Err(); err != nil {
		return Counters{}, fmt.Errorf("failed to read alignment stream: %w", err)
	}
	var totals Counters
	for partial := range partials {
		totals.Add(partial)
	}
	return totals, nil
}
