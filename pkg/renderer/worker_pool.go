package renderer

import (
	"sync"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/integrator"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile *Tile
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TileID int
	Worker int
	Stats  TileStats
}

// WorkerPool runs tile tasks on a fixed set of goroutines
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	wg          sync.WaitGroup
}

// Worker renders tiles with its own arena cache and integrator context
type Worker struct {
	ID          int
	renderer    *Renderer
	cache       *arena.ThreadCache
	ctx         *integrator.Context
	stats       WorkerStats
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates numWorkers workers for r. Both queues hold
// maxTiles entries so submitting never blocks.
func NewWorkerPool(r *Renderer, numWorkers, maxTiles int) *WorkerPool {
	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),
		resultQueue: make(chan TileResult, maxTiles),
	}

	for i := 0; i < numWorkers; i++ {
		cache := r.allocator.Cache(i)
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    r,
			cache:       cache,
			ctx:         integrator.NewContext(nil, cache, r.splats),
			stats:       WorkerStats{ID: i},
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return len(wp.workers)
}

// WorkerStats returns the per-worker totals. Only valid after Stop.
func (wp *WorkerPool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(wp.workers))
	for i, w := range wp.workers {
		stats[i] = w.stats
	}
	return stats
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		start := time.Now()
		stats := w.renderer.renderTile(w, task.Tile)
		w.stats.add(stats, time.Since(start))

		w.resultQueue <- TileResult{
			TileID: task.Tile.ID,
			Worker: w.ID,
			Stats:  stats,
		}
	}
}
