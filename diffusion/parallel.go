package diffusion

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum box count to split a pass across
// workers. Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 32 * 32 * 32

// slabFunc processes the boxes whose z index lies in [k0, k1).
type slabFunc func(k0, k1 int)

// workChunk represents a range of z slabs for a worker to process.
type workChunk struct {
	k0, k1 int
	fn     slabFunc
}

// workerPool runs slab passes on persistent goroutines. Every pass reads an
// immutable snapshot and writes disjoint slabs of a separate array, so no
// locking is needed beyond the completion handshake.
type workerPool struct {
	numWorkers int
	threshold  int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{
		numWorkers: numWorkers,
		threshold:  parallelThreshold,
	}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.k0, chunk.k1)
			p.doneChan <- struct{}{}
		}
	}
}

// run applies fn to slabs [0, slabs) and returns when all are done.
func (p *workerPool) run(slabs, boxes int, fn slabFunc) {
	if p.numWorkers <= 1 || boxes < p.threshold || slabs < 2 {
		fn(0, slabs)
		return
	}
	if !p.running {
		p.start()
	}

	chunkSize := (slabs + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		k0 := w * chunkSize
		k1 := min(k0+chunkSize, slabs)
		if k0 >= k1 {
			continue
		}
		p.workChan <- workChunk{k0: k0, k1: k1, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
