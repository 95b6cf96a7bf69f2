package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rgoodwin/lexchunk/internal/chunker"
	"github.com/rgoodwin/lexchunk/internal/config"
	"github.com/rgoodwin/lexchunk/internal/extract"
	"github.com/rgoodwin/lexchunk/internal/indexstore"
)

// Orchestrator manages the document processing pipeline.
type Orchestrator struct {
	jobs  *JobStore
	docs  *DocumentStore
	queue chan *Job
	index *indexstore.Client
	stats *extract.StageStats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, index *indexstore.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		docs:  NewDocumentStore(),
		queue: make(chan *Job, cfg.MaxQueueSize),
		index: index,
		stats: extract.NewStageStats(24 * time.Hour),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	chunkCfg := chunker.DefaultConfig()
	if o.cfg.DefaultMaxChars > 0 {
		chunkCfg.MaxChars = o.cfg.DefaultMaxChars
	}

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.docs, o.index, o.stats, o.log, chunkCfg, o.cfg.PDFFallbackPdftotext, o.cfg.IndexingEnabled)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Docs returns the document registry for direct use by API handlers.
func (o *Orchestrator) Docs() *DocumentStore {
	return o.docs
}

// Stats returns the per-stage latency recorder.
func (o *Orchestrator) Stats() *extract.StageStats {
	return o.stats
}

// IndexClient returns the index client, nil when indexing is disabled.
func (o *Orchestrator) IndexClient() *indexstore.Client {
	return o.index
}
