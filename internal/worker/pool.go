// Package worker runs queued production jobs on a fixed pool of goroutines.
package worker

import (
	"sync"

	"github.com/DJIMIGA/latigue/internal/config"
)

// Job is a unit of work the pool can run.
type Job interface {
	Execute() error
	ID() string
}

// Worker pulls jobs from its own channel after registering it with the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Quit       chan bool
	Wg         *sync.WaitGroup
}

// NewWorker creates a worker bound to the shared pool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Quit:       make(chan bool),
		Wg:         wg,
	}
}

// Start makes the worker listen for jobs on its JobChannel.
func (w Worker) Start() {
	w.Wg.Add(1)
	go func() {
		defer w.Wg.Done()
		for {
			// Re-register after every job; the dispatcher hands the next job
			// to whichever channel it pulls from the pool.
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				log := config.Log.WithFields(map[string]interface{}{
					"worker": w.ID,
					"job_id": job.ID(),
				})
				log.Info("Started job")
				if err := job.Execute(); err != nil {
					log.WithField("error", err.Error()).Error("Job failed")
				} else {
					log.Info("Finished job")
				}
			case <-w.Quit:
				return
			}
		}
	}()
}

// Stop signals the worker to exit after its current job.
func (w Worker) Stop() {
	go func() {
		w.Quit <- true
	}()
}

// Dispatcher feeds a buffered job queue into the worker pool.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker
	Wg         sync.WaitGroup
	Quit       chan bool
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(maxWorkers, jobQueueSize int) *Dispatcher {
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		Quit:       make(chan bool),
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	config.Log.WithField("workers", d.MaxWorkers).Info("Starting job dispatcher")
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.WorkerPool, &d.Wg)
		d.Workers = append(d.Workers, worker)
		worker.Start()
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.JobQueue:
			go func(job Job) {
				jobChannel := <-d.WorkerPool
				jobChannel <- job
			}(job)
		case <-d.Quit:
			return
		}
	}
}

// Submit enqueues a job without blocking. Returns false when the queue is
// full; the caller decides whether that is an error.
func (d *Dispatcher) Submit(job Job) bool {
	select {
	case d.JobQueue <- job:
		config.Log.WithField("job_id", job.ID()).Info("Job queued")
		return true
	default:
		config.Log.WithField("job_id", job.ID()).Warn("Job queue full")
		return false
	}
}

// Stop drains the dispatch loop and waits for workers to finish their
// current jobs.
func (d *Dispatcher) Stop() {
	d.Quit <- true
	for _, worker := range d.Workers {
		worker.Stop()
	}
	d.Wg.Wait()
	config.Log.Info("Job dispatcher stopped")
}
