package jobs

import (
	"context"
	"log"
	"time"
)

// Sweeper defines the interface for one periodic sweep pass
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Worker runs a Sweeper on a fixed interval until stopped
type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(sweeper Sweeper, interval time.Duration) *Worker {
	return &Worker{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the worker's sweep loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Sweep worker started with interval: %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweep worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Sweep worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.sweeper.Sweep(ctx); err != nil {
				log.Printf("Error running sweep: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Sweep worker shutdown complete")
}
