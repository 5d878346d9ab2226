package processor

import (
	"sync"

	"github.com/phambaophuc/image-watermark/internal/models"
)

const DefaultWorkers = 5

// BatchWatermark applies opts to every source on a bounded worker pool.
// Results keep the order of sources.
func (p *ImageProcessor) BatchWatermark(sources [][]byte, opts models.WatermarkOptions) []Output {
	results := make([]Output, len(sources))
	if len(sources) == 0 {
		return results
	}

	jobs := make(chan int, len(sources))

	numWorkers := min(p.workers, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Apply(sources[i], opts)
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
